package social

import "github.com/shopspring/decimal"

// ============================================================================
// Score Engine
// ============================================================================

// overlapWeight is the contribution of each shared hobby to the score.
var overlapWeight = decimal.NewFromFloat(0.5)

// computeScore evaluates the popularity formula:
//
//	score = |friends| + 0.5 × Σ |hobbies(user) ∩ hobbies(friend)|
//
// rounded half-up to two decimal places. A user with no friends scores 0
// regardless of hobbies. The friend records passed in are read as-is, so the
// result reflects each friend's hobby set at the moment of recomputation.
func computeScore(user *User, friends []*User) float64 {
	if len(friends) == 0 {
		return 0
	}

	overlap := 0
	for _, f := range friends {
		overlap += sharedHobbyCount(user.Hobbies, f.Hobbies)
	}

	score := decimal.NewFromInt(int64(len(friends))).
		Add(overlapWeight.Mul(decimal.NewFromInt(int64(overlap))))

	// decimal.Round is half away from zero, which for a non-negative score
	// is exactly half-up.
	result, _ := score.Round(2).Float64()
	return result
}

// sharedHobbyCount counts the intersection of two hobby sets. Hobby slices
// are stored deduplicated, so membership counting is enough.
func sharedHobbyCount(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, h := range a {
		set[h] = struct{}{}
	}
	shared := 0
	for _, h := range b {
		if _, ok := set[h]; ok {
			shared++
		}
	}
	return shared
}
