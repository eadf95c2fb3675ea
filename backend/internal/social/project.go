package social

import (
	"math"
	"math/rand"
)

// ============================================================================
// Graph Projector
// ============================================================================

// Projector turns a user snapshot into a renderable node/edge structure.
// It is a pure read-side derivation: no mutation, no I/O.
type Projector struct {
	Radius         float64
	CenterX        float64
	CenterY        float64
	ScoreThreshold float64
	// Jitter is the maximum absolute offset added to each coordinate.
	// Zero (the default) keeps layouts fully deterministic; when positive,
	// offsets come from a source derived from seed on every Project call,
	// so a seeded projector always yields the same layout and concurrent
	// projections share no mutable state.
	Jitter float64

	seed   int64
	seeded bool
}

// NewProjector returns a projector with the reference layout: a circle of
// radius 200 around (400,300), "high" above a score of 5.0, no jitter.
func NewProjector() *Projector {
	return &Projector{
		Radius:         200,
		CenterX:        400,
		CenterY:        300,
		ScoreThreshold: 5.0,
	}
}

// Seed enables jittered layouts with a reproducible random source.
func (p *Projector) Seed(seed int64) {
	p.seed = seed
	p.seeded = true
}

// Project lays the snapshot out on a circle, one node per user in snapshot
// order, and emits exactly one edge per unordered friend pair. The jitter
// source is local to the call, keeping Project a pure function of the
// snapshot that is safe to run from concurrent readers.
func (p *Projector) Project(users []*User) GraphView {
	view := GraphView{
		Nodes: make([]Node, 0, len(users)),
		Edges: []Edge{},
	}

	var rng *rand.Rand
	if p.Jitter > 0 && p.seeded {
		rng = rand.New(rand.NewSource(p.seed))
	}

	n := len(users)
	for i, u := range users {
		angle := 2 * math.Pi * float64(i) / float64(max(n, 1))
		view.Nodes = append(view.Nodes, Node{
			ID:       u.ID,
			Username: u.Username,
			Score:    u.PopularityScore,
			Category: p.category(u.PopularityScore),
			X:        p.CenterX + p.Radius*math.Cos(angle) + jitterOffset(rng, p.Jitter),
			Y:        p.CenterY + p.Radius*math.Sin(angle) + jitterOffset(rng, p.Jitter),
		})
	}

	// A symmetric friendship shows up from both sides; the canonical pair
	// key collapses (a,b) and (b,a) into a single edge.
	seen := make(map[[2]string]struct{})
	for _, u := range users {
		for _, fid := range u.Friends {
			key := pairKey(u.ID, fid)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			view.Edges = append(view.Edges, Edge{Source: key[0], Target: key[1]})
		}
	}

	return view
}

func (p *Projector) category(score float64) string {
	if score > p.ScoreThreshold {
		return CategoryHigh
	}
	return CategoryLow
}

func jitterOffset(rng *rand.Rand, amount float64) float64 {
	if rng == nil {
		return 0
	}
	return (rng.Float64()*2 - 1) * amount
}

// pairKey orders the two ids so both directions of a friendship map to the
// same key.
func pairKey(a, b string) [2]string {
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}
