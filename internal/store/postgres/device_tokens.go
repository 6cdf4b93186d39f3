package postgres

import (
	"context"
	"fmt"

	"FlashLeaderserver/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DeviceTokensStore struct {
	pool *pgxpool.Pool
}

func NewDeviceTokensStore(pool *pgxpool.Pool) *DeviceTokensStore {
	return &DeviceTokensStore{pool: pool}
}

// UpsertDeviceToken claims the token for t.UserID; a token re-registered by
// another account moves to it.
func (s *DeviceTokensStore) UpsertDeviceToken(ctx context.Context, t domain.DeviceToken) (domain.DeviceToken, error) {
	const q = `
		INSERT INTO device_tokens (token, user_id, platform, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (token) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			platform = EXCLUDED.platform,
			updated_at = EXCLUDED.updated_at
		RETURNING token, user_id, platform, created_at, updated_at
	`
	var out domain.DeviceToken
	err := s.pool.QueryRow(ctx, q, t.Token, t.UserID, t.Platform, t.CreatedAt, t.UpdatedAt).Scan(
		&out.Token,
		&out.UserID,
		&out.Platform,
		&out.CreatedAt,
		&out.UpdatedAt,
	)
	if err != nil {
		return domain.DeviceToken{}, fmt.Errorf("upsert device token: %w", err)
	}
	return out, nil
}

func (s *DeviceTokensStore) DeleteDeviceToken(ctx context.Context, userID, token string) error {
	const q = `DELETE FROM device_tokens WHERE user_id = $1 AND token = $2`
	if _, err := s.pool.Exec(ctx, q, userID, token); err != nil {
		return fmt.Errorf("delete device token: %w", err)
	}
	return nil
}

func (s *DeviceTokensStore) ListDeviceTokens(ctx context.Context, userID string) ([]domain.DeviceToken, error) {
	const q = `
		SELECT token, user_id, platform, created_at, updated_at
		FROM device_tokens
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`
	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list device tokens: %w", err)
	}
	defer rows.Close()

	var out []domain.DeviceToken
	for rows.Next() {
		var t domain.DeviceToken
		if err := rows.Scan(&t.Token, &t.UserID, &t.Platform, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan device token: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list device tokens: %w", err)
	}
	return out, nil
}
