package service

import (
	"context"
	"log/slog"
	"time"

	"FlashLeaderserver/internal/domain"
)

type ActivityLogger interface {
	Log(ctx context.Context, ev domain.ActivityEvent) error
}

// recordActivity is fire-and-forget: failures are logged and never returned.
func recordActivity(ctx context.Context, sink ActivityLogger, logger *slog.Logger, at time.Time, userID, targetID string, typ domain.ActivityType) {
	if sink == nil {
		return
	}
	ev := domain.ActivityEvent{UserID: userID, TargetID: targetID, Type: typ, At: at}
	if err := sink.Log(ctx, ev); err != nil {
		logger.Warn("activity: log failed", "err", err, "type", string(typ), "user_id", userID)
	}
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
