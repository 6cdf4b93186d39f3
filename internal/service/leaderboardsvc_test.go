package service_test

import (
	"context"
	"testing"
	"time"

	"FlashLeaderserver/internal/domain"
	"FlashLeaderserver/internal/ranking"
	"FlashLeaderserver/internal/service"

	"github.com/stretchr/testify/require"
)

func scored(id string, points int64, friends ...string) domain.User {
	return domain.User{ID: id, Email: id + "@example.com", Username: id, Points: points, Friends: friends}
}

func TestLeaderboardStableTies(t *testing.T) {
	store := newStore(t, scored("A", 10), scored("B", 30), scored("C", 30), scored("D", 5))
	svc := &service.LeaderboardService{Users: store}

	entries, err := svc.Get(context.Background(), "A", ranking.ByPoints, false, 10)
	require.NoError(t, err)
	require.Equal(t, []domain.LeaderboardEntry{
		{Rank: 1, UserID: "B", Username: "B", Score: 30},
		{Rank: 2, UserID: "C", Username: "C", Score: 30},
		{Rank: 3, UserID: "A", Username: "A", Score: 10},
		{Rank: 4, UserID: "D", Username: "D", Score: 5},
	}, entries)
}

func TestLeaderboardFriendsOnlyIncludesSelf(t *testing.T) {
	store := newStore(t, scored("loner", 1), scored("A", 50, "B"), scored("B", 20, "A"), scored("C", 99))
	svc := &service.LeaderboardService{Users: store}
	ctx := context.Background()

	entries, err := svc.Get(ctx, "loner", ranking.ByPoints, true, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "loner", entries[0].UserID)
	require.Equal(t, 1, entries[0].Rank)

	entries, err = svc.Get(ctx, "B", ranking.ByPoints, true, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "A", entries[0].UserID)
	require.Equal(t, "B", entries[1].UserID)

	_, err = svc.Get(ctx, "ghost", ranking.ByPoints, true, 10)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLeaderboardLimitAndCap(t *testing.T) {
	store := newStore(t, scored("A", 1), scored("B", 2), scored("C", 3), scored("D", 4), scored("E", 5))
	ctx := context.Background()

	svc := &service.LeaderboardService{Users: store}
	entries, err := svc.Get(ctx, "A", ranking.ByPoints, false, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, 1, entries[0].Rank)
	require.Equal(t, "E", entries[0].UserID)
	require.Equal(t, 2, entries[1].Rank)

	capped := &service.LeaderboardService{Users: store, MaxLimit: 3}
	entries, err = capped.Get(ctx, "A", ranking.ByPoints, false, 100)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	entries, err = capped.Get(ctx, "A", ranking.ByPoints, false, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
}

func TestLeaderboardStudyTimeTreatsNilAsZero(t *testing.T) {
	hour := time.Hour
	a := scored("A", 0)
	b := scored("B", 0)
	b.StudyTime = &hour
	store := newStore(t, a, b)
	svc := &service.LeaderboardService{Users: store}

	entries, err := svc.Get(context.Background(), "A", ranking.ByStudyTime, false, 0)
	require.NoError(t, err)
	require.Equal(t, "B", entries[0].UserID)
	require.Equal(t, int64(3600), entries[0].Score)
	require.Equal(t, int64(0), entries[1].Score)
}
