package service

import (
	"context"
	"fmt"

	"FlashLeaderserver/internal/domain"
	"FlashLeaderserver/internal/ranking"
)

type LeaderboardService struct {
	Users UsersStore
	// MaxLimit caps the number of returned entries; zero means no cap.
	MaxLimit int
}

// Get ranks all users, or only userID and their friends. Candidates are
// loaded in creation order so equal scores keep a stable order.
func (s *LeaderboardService) Get(ctx context.Context, userID string, criterion ranking.Criterion, friendsOnly bool, limit int) ([]domain.LeaderboardEntry, error) {
	if s.MaxLimit > 0 && (limit <= 0 || limit > s.MaxLimit) {
		limit = s.MaxLimit
	}

	var (
		candidates []domain.User
		err        error
	)
	if friendsOnly {
		user, getErr := s.Users.GetUserByID(ctx, userID)
		if getErr != nil {
			return nil, getErr
		}
		ids := make([]string, 0, len(user.Friends)+1)
		ids = append(ids, user.ID)
		ids = append(ids, user.Friends...)
		candidates, err = s.Users.ListUsersByIDs(ctx, ids)
	} else {
		candidates, err = s.Users.ListUsers(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("load leaderboard candidates: %w", err)
	}

	return ranking.Rank(candidates, criterion, limit), nil
}
