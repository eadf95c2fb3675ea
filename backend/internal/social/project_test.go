package social

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestProject_NodesAndEdges(t *testing.T) {
	proj := NewProjector()
	users := []*User{
		{ID: "a", Username: "alice", Friends: []string{"b", "c"}},
		{ID: "b", Username: "bob", Friends: []string{"a"}},
		{ID: "c", Username: "carol", Friends: []string{"a"}},
	}

	view := proj.Project(users)

	require.Len(t, view.Nodes, 3)
	// two symmetric friendships project to exactly two edges, not four
	require.Len(t, view.Edges, 2)
	assert.Contains(t, view.Edges, Edge{Source: "a", Target: "b"})
	assert.Contains(t, view.Edges, Edge{Source: "a", Target: "c"})
}

func TestProject_CircularLayout(t *testing.T) {
	proj := NewProjector()
	users := []*User{
		{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"},
	}

	view := proj.Project(users)
	require.Len(t, view.Nodes, 4)

	// quarter turns around (400,300) with radius 200, no jitter
	assert.InDelta(t, 600, view.Nodes[0].X, 1e-9)
	assert.InDelta(t, 300, view.Nodes[0].Y, 1e-9)
	assert.InDelta(t, 400, view.Nodes[1].X, 1e-9)
	assert.InDelta(t, 500, view.Nodes[1].Y, 1e-9)
	assert.InDelta(t, 200, view.Nodes[2].X, 1e-9)
	assert.InDelta(t, 300, view.Nodes[2].Y, 1e-9)

	for _, n := range view.Nodes {
		dist := math.Hypot(n.X-proj.CenterX, n.Y-proj.CenterY)
		assert.InDelta(t, proj.Radius, dist, 1e-9)
	}
}

func TestProject_Categories(t *testing.T) {
	proj := NewProjector()
	users := []*User{
		{ID: "a", PopularityScore: 7.5},
		{ID: "b", PopularityScore: 5.0}, // threshold is exclusive
		{ID: "c", PopularityScore: 0},
	}

	view := proj.Project(users)
	assert.Equal(t, CategoryHigh, view.Nodes[0].Category)
	assert.Equal(t, CategoryLow, view.Nodes[1].Category)
	assert.Equal(t, CategoryLow, view.Nodes[2].Category)
}

func TestProject_JitterBounded(t *testing.T) {
	proj := NewProjector()
	proj.Jitter = 50
	proj.Seed(1)

	users := []*User{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	view := proj.Project(users)

	base := NewProjector().Project(users)
	for i, n := range view.Nodes {
		assert.LessOrEqual(t, math.Abs(n.X-base.Nodes[i].X), 50.0)
		assert.LessOrEqual(t, math.Abs(n.Y-base.Nodes[i].Y), 50.0)
	}

	// same seed, same layout
	again := NewProjector()
	again.Jitter = 50
	again.Seed(1)
	assert.Equal(t, view, again.Project(users))
}

func TestProject_ConcurrentWithJitter(t *testing.T) {
	proj := NewProjector()
	proj.Jitter = 50
	proj.Seed(7)

	users := []*User{
		{ID: "a", Friends: []string{"b"}},
		{ID: "b", Friends: []string{"a"}},
		{ID: "c"},
	}
	want := proj.Project(users)

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			for j := 0; j < 100; j++ {
				got := proj.Project(users)
				if !assert.ObjectsAreEqual(want, got) {
					return fmt.Errorf("projection diverged between calls")
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestProject_Empty(t *testing.T) {
	view := NewProjector().Project(nil)
	assert.Empty(t, view.Nodes)
	assert.Empty(t, view.Edges)
}

func TestPairKey_Canonical(t *testing.T) {
	assert.Equal(t, pairKey("a", "b"), pairKey("b", "a"))
	assert.Equal(t, [2]string{"a", "b"}, pairKey("b", "a"))
}
