package social

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	apperrors "friendnet/backend/pkg/errors"
)

// TopUserCount is the size of the leaderboard returned by Stats.
const TopUserCount = 5

// ============================================================================
// Query / Aggregate Layer
// ============================================================================

// Stats computes the aggregate view over a consistent snapshot. Each
// friendship is counted once: the friend-list sum is halved, and an odd sum
// means the symmetry invariant is broken somewhere, which is reported as an
// internal error rather than silently truncated.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users, err := s.listUsers(ctx)
	if err != nil {
		return nil, err
	}

	friendRefs := 0
	scoreSum := decimal.Zero
	for _, u := range users {
		friendRefs += len(u.Friends)
		scoreSum = scoreSum.Add(decimal.NewFromFloat(u.PopularityScore))
	}
	if friendRefs%2 != 0 {
		return nil, apperrors.NewBrokenSymmetry(fmt.Sprintf("friend references sum to %d, which is not an even number", friendRefs))
	}

	average := 0.0
	if len(users) > 0 {
		average, _ = scoreSum.
			Div(decimal.NewFromInt(int64(len(users)))).
			Round(2).
			Float64()
	}

	return &Stats{
		TotalUsers:       len(users),
		TotalFriendships: friendRefs / 2,
		AverageScore:     average,
		TopUsers:         topByScore(users, TopUserCount),
	}, nil
}

// Hobbies returns the sorted, deduplicated union of every user's hobby set.
func (s *Service) Hobbies(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users, err := s.listUsers(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	hobbies := []string{}
	for _, u := range users {
		for _, h := range u.Hobbies {
			if _, dup := seen[h]; dup {
				continue
			}
			seen[h] = struct{}{}
			hobbies = append(hobbies, h)
		}
	}
	sort.Strings(hobbies)
	return hobbies, nil
}

// topByScore ranks by score descending with the id as a stable tiebreak.
func topByScore(users []*User, n int) []*User {
	ranked := append([]*User(nil), users...)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].PopularityScore != ranked[j].PopularityScore {
			return ranked[i].PopularityScore > ranked[j].PopularityScore
		}
		return ranked[i].ID < ranked[j].ID
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
