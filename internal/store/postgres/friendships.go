package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FlashLeaderserver/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FriendshipsStore struct {
	pool *pgxpool.Pool
}

func NewFriendshipsStore(pool *pgxpool.Pool) *FriendshipsStore {
	return &FriendshipsStore{pool: pool}
}

const invitationColumns = `id, sender_id, recipient_id, status, created_at, responded_at`

func scanInvitation(row pgx.Row) (domain.FriendInvitation, error) {
	var (
		inv       domain.FriendInvitation
		responded pgtype.Timestamptz
	)
	if err := row.Scan(&inv.ID, &inv.SenderID, &inv.RecipientID, &inv.Status, &inv.CreatedAt, &responded); err != nil {
		return domain.FriendInvitation{}, err
	}
	inv.RespondedAt = timestamptzPtr(responded)
	return inv, nil
}

func (s *FriendshipsStore) CreatePendingInvitation(ctx context.Context, inv domain.FriendInvitation) error {
	const q = `
		INSERT INTO friend_invitations (id, sender_id, recipient_id, status, created_at)
		VALUES ($1, $2, $3, 'pending', $4)
	`
	_, err := s.pool.Exec(ctx, q, inv.ID, inv.SenderID, inv.RecipientID, inv.CreatedAt)
	if err != nil {
		if uniqueViolation(err, "friend_invitations_one_pending_uq") {
			return domain.NewConflict(domain.ErrDuplicatePending)
		}
		return fmt.Errorf("create invitation: %w", err)
	}
	return nil
}

func (s *FriendshipsStore) GetInvitation(ctx context.Context, id string) (domain.FriendInvitation, error) {
	q := `SELECT ` + invitationColumns + ` FROM friend_invitations WHERE id = $1`
	inv, err := scanInvitation(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.FriendInvitation{}, domain.ErrNotFound
		}
		return domain.FriendInvitation{}, fmt.Errorf("get invitation: %w", err)
	}
	return inv, nil
}

// ResolveInvitation is a compare-and-set from pending. When accepting, both
// friend edges are inserted in the same transaction.
func (s *FriendshipsStore) ResolveInvitation(ctx context.Context, id string, status domain.InvitationStatus, when time.Time) (domain.FriendInvitation, error) {
	var out domain.FriendInvitation
	err := withTx(ctx, s.pool, func(tx pgx.Tx) error {
		q := `
			UPDATE friend_invitations
			SET status = $2, responded_at = $3
			WHERE id = $1 AND status = 'pending'
			RETURNING ` + invitationColumns
		inv, err := scanInvitation(tx.QueryRow(ctx, q, id, status, when))
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("resolve invitation: %w", err)
			}
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM friend_invitations WHERE id = $1)`, id).Scan(&exists); err != nil {
				return fmt.Errorf("resolve invitation: %w", err)
			}
			if !exists {
				return domain.ErrNotFound
			}
			return domain.ErrConflict
		}

		if status == domain.InvitationAccepted {
			const edges = `
				INSERT INTO user_friends (user_id, friend_id, created_at)
				VALUES ($1, $2, $3), ($2, $1, $3)
				ON CONFLICT (user_id, friend_id) DO NOTHING
			`
			if _, err := tx.Exec(ctx, edges, inv.SenderID, inv.RecipientID, when); err != nil {
				return fmt.Errorf("add friendship: %w", err)
			}
		}
		out = inv
		return nil
	})
	if err != nil {
		return domain.FriendInvitation{}, err
	}
	return out, nil
}

func (s *FriendshipsStore) ListPendingReceived(ctx context.Context, userID string) ([]domain.FriendInvitation, error) {
	q := `SELECT ` + invitationColumns + ` FROM friend_invitations
		WHERE recipient_id = $1 AND status = 'pending'
		ORDER BY created_at, id`
	return s.list(ctx, q, userID)
}

func (s *FriendshipsStore) ListPendingSent(ctx context.Context, userID string) ([]domain.FriendInvitation, error) {
	q := `SELECT ` + invitationColumns + ` FROM friend_invitations
		WHERE sender_id = $1 AND status = 'pending'
		ORDER BY created_at, id`
	return s.list(ctx, q, userID)
}

func (s *FriendshipsStore) list(ctx context.Context, q, userID string) ([]domain.FriendInvitation, error) {
	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()

	out := []domain.FriendInvitation{}
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return out, nil
}

// RemoveFriendship deletes both directed edges in one statement.
func (s *FriendshipsStore) RemoveFriendship(ctx context.Context, userID, friendID string) error {
	const q = `
		DELETE FROM user_friends
		WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
	`
	ct, err := s.pool.Exec(ctx, q, userID, friendID)
	if err != nil {
		return fmt.Errorf("remove friendship: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFriends
	}
	return nil
}
