// Package activity delivers domain events (game started, friend invited, ...)
// to side channels. Delivery is best-effort; callers log failures and move on.
package activity

import (
	"context"
	"errors"
	"log/slog"

	"FlashLeaderserver/internal/domain"
)

type Sink interface {
	Log(ctx context.Context, ev domain.ActivityEvent) error
}

// SlogSink writes events to a structured logger.
type SlogSink struct {
	Logger *slog.Logger
}

func (s SlogSink) Log(ctx context.Context, ev domain.ActivityEvent) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "activity",
		"type", string(ev.Type),
		"user_id", ev.UserID,
		"target_id", ev.TargetID,
		"at", ev.At,
	)
	return nil
}

// Multi fans an event out to every sink and joins their errors.
type Multi []Sink

func (m Multi) Log(ctx context.Context, ev domain.ActivityEvent) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Log(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
