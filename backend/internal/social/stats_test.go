package social

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "friendnet/backend/pkg/errors"
)

func TestStats(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	a := mustCreate(t, svc, "alice", "coding", "gaming")
	b := mustCreate(t, svc, "bob", "coding", "music")
	c := mustCreate(t, svc, "carol", "gaming", "sports")
	mustCreate(t, svc, "dave")

	require.NoError(t, svc.Link(ctx, a.ID, b.ID))
	require.NoError(t, svc.Link(ctx, a.ID, c.ID))

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalUsers)
	// each symmetric pair counts once
	assert.Equal(t, 2, stats.TotalFriendships)
	// (3.0 + 1.5 + 1.5 + 0) / 4
	assert.Equal(t, 1.5, stats.AverageScore)

	require.Len(t, stats.TopUsers, 4)
	assert.Equal(t, "alice", stats.TopUsers[0].Username)
	// bob and carol tie on 1.5, broken by id
	if b.ID < c.ID {
		assert.Equal(t, "bob", stats.TopUsers[1].Username)
		assert.Equal(t, "carol", stats.TopUsers[2].Username)
	} else {
		assert.Equal(t, "carol", stats.TopUsers[1].Username)
		assert.Equal(t, "bob", stats.TopUsers[2].Username)
	}
	assert.Equal(t, "dave", stats.TopUsers[3].Username)
}

func TestStats_Empty(t *testing.T) {
	svc := newTestService()

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalUsers)
	assert.Equal(t, 0, stats.TotalFriendships)
	assert.Equal(t, 0.0, stats.AverageScore)
	assert.Empty(t, stats.TopUsers)
}

func TestStats_TopUserCap(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	for _, name := range []string{"u1", "u2", "u3", "u4", "u5", "u6", "u7"} {
		mustCreate(t, svc, name)
	}

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Len(t, stats.TopUsers, TopUserCount)
}

func TestStats_DetectsBrokenSymmetry(t *testing.T) {
	// write an asymmetric edge straight into the store, bypassing the engine
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Insert(ctx, &User{ID: "a", Username: "alice", Friends: []string{"b"}}))
	require.NoError(t, store.Insert(ctx, &User{ID: "b", Username: "bob", Friends: []string{}}))

	svc := NewService(store, NewProjector())
	_, err := svc.Stats(ctx)
	require.Error(t, err)
	assert.IsType(t, &apperrors.ErrBrokenSymmetry{}, err)
}

func TestHobbies_UnionSortedDeduplicated(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	mustCreate(t, svc, "alice", "coding", "gaming")
	mustCreate(t, svc, "bob", "coding", "music")
	mustCreate(t, svc, "carol")

	hobbies, err := svc.Hobbies(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"coding", "gaming", "music"}, hobbies)
}
