package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"FlashLeaderserver/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersStore struct {
	pool *pgxpool.Pool
}

func NewUsersStore(pool *pgxpool.Pool) *UsersStore {
	return &UsersStore{pool: pool}
}

const userColumns = `
	u.id, u.email, u.username, u.display_name, u.created_at,
	u.points, u.games_played, u.streak, u.study_time_ms,
	ARRAY(SELECT f.friend_id FROM user_friends f WHERE f.user_id = u.id ORDER BY f.created_at, f.friend_id)
`

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		u         domain.User
		studyTime pgtype.Int8
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.DisplayName,
		&u.CreatedAt,
		&u.Points,
		&u.GamesPlayed,
		&u.Streak,
		&studyTime,
		&u.Friends,
	)
	if err != nil {
		return domain.User{}, err
	}
	u.StudyTime = durationPtr(studyTime)
	return u, nil
}

// UpsertUser writes profile fields. Progression stats and friends are owned
// by the game and friendship stores and are left untouched on update.
func (s *UsersStore) UpsertUser(ctx context.Context, u domain.User) (domain.User, error) {
	const q = `
		INSERT INTO users (id, email, username, display_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			username = EXCLUDED.username,
			display_name = EXCLUDED.display_name
	`
	if _, err := s.pool.Exec(ctx, q, u.ID, strings.TrimSpace(u.Email), u.Username, u.DisplayName); err != nil {
		if uniqueViolation(err, "users_email_uq") {
			return domain.User{}, domain.ErrConflict
		}
		return domain.User{}, fmt.Errorf("upsert user: %w", err)
	}
	return s.GetUserByID(ctx, u.ID)
}

func (s *UsersStore) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1`
	u, err := scanUser(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UsersStore) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users u WHERE lower(u.email) = lower($1)`
	u, err := scanUser(s.pool.QueryRow(ctx, q, strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *UsersStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users u ORDER BY u.seq`
	return s.list(ctx, q)
}

func (s *UsersStore) ListUsersByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	if len(ids) == 0 {
		return []domain.User{}, nil
	}
	q := `SELECT ` + userColumns + ` FROM users u WHERE u.id = ANY($1) ORDER BY u.seq`
	return s.list(ctx, q, ids)
}

func (s *UsersStore) list(ctx context.Context, q string, args ...any) ([]domain.User, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}
