package service

import (
	"context"
	"fmt"
	"log/slog"
)

type PurgeResult struct {
	SessionsRemoved int `json:"sessions_removed"`
	FriendsRemoved  int `json:"friends_removed"`
}

// AccountService runs the cleanup an account deletion needs from this core.
type AccountService struct {
	Games   *GameService
	Friends *FriendsService
	Logger  *slog.Logger
}

func (s *AccountService) Purge(ctx context.Context, userID string) (PurgeResult, error) {
	var res PurgeResult
	n, err := s.Games.RemoveAllForUser(ctx, userID)
	if err != nil {
		return res, fmt.Errorf("purge sessions: %w", err)
	}
	res.SessionsRemoved = n

	n, err = s.Friends.RemoveAllFriends(ctx, userID)
	res.FriendsRemoved = n
	if err != nil {
		return res, fmt.Errorf("purge friends: %w", err)
	}

	loggerOrDefault(s.Logger).Info("account: purged", "user_id", userID, "sessions", res.SessionsRemoved, "friends", res.FriendsRemoved)
	return res, nil
}
