package postgres

import (
	"context"
	"errors"
	"fmt"

	"FlashLeaderserver/internal/domain"
	"FlashLeaderserver/internal/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GameSessionsStore struct {
	pool *pgxpool.Pool
}

func NewGameSessionsStore(pool *pgxpool.Pool) *GameSessionsStore {
	return &GameSessionsStore{pool: pool}
}

const sessionColumns = `
	id, user_id, deck_id, status, score, correct_count, wrong_count,
	question_count, started_at, finished_at
`

func scanSession(row pgx.Row) (domain.GameSession, error) {
	var (
		gs       domain.GameSession
		finished pgtype.Timestamptz
	)
	err := row.Scan(
		&gs.ID,
		&gs.UserID,
		&gs.DeckID,
		&gs.Status,
		&gs.Score,
		&gs.CorrectCount,
		&gs.WrongCount,
		&gs.QuestionCount,
		&gs.StartedAt,
		&finished,
	)
	if err != nil {
		return domain.GameSession{}, err
	}
	gs.FinishedAt = timestamptzPtr(finished)
	return gs, nil
}

func (s *GameSessionsStore) GetPendingSession(ctx context.Context, userID, deckID string) (domain.GameSession, error) {
	q := `SELECT ` + sessionColumns + ` FROM game_sessions
		WHERE user_id = $1 AND deck_id = $2 AND status = 'pending'`
	gs, err := scanSession(s.pool.QueryRow(ctx, q, userID, deckID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.GameSession{}, domain.ErrNotFound
		}
		return domain.GameSession{}, fmt.Errorf("get pending session: %w", err)
	}
	return gs, nil
}

func (s *GameSessionsStore) CreateSession(ctx context.Context, gs domain.GameSession) error {
	const q = `
		INSERT INTO game_sessions (id, user_id, deck_id, status, started_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.pool.Exec(ctx, q, gs.ID, gs.UserID, gs.DeckID, gs.Status, gs.StartedAt)
	if err != nil {
		if uniqueViolation(err, "game_sessions_one_pending_uq") || uniqueViolation(err, "game_sessions_pkey") {
			return domain.ErrConflict
		}
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// FinalizeSession flips the session to finished and credits the owner in one
// transaction. The status guard makes concurrent finalizers lose cleanly.
func (s *GameSessionsStore) FinalizeSession(ctx context.Context, p service.FinalizeParams) (domain.GameSession, error) {
	var out domain.GameSession
	err := withTx(ctx, s.pool, func(tx pgx.Tx) error {
		q := `
			UPDATE game_sessions SET
				status = 'finished',
				score = $3,
				correct_count = $4,
				wrong_count = $5,
				question_count = $6,
				finished_at = $7
			WHERE id = $1 AND user_id = $2 AND status = 'pending'
			RETURNING ` + sessionColumns
		gs, err := scanSession(tx.QueryRow(ctx, q,
			p.SessionID, p.UserID, p.Score, p.CorrectCount, p.WrongCount, p.QuestionCount, p.FinishedAt))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNoActiveSession
			}
			return fmt.Errorf("finish session: %w", err)
		}

		const credit = `
			UPDATE users SET
				games_played = games_played + 1,
				points = points + $2,
				study_time_ms = COALESCE(study_time_ms, 0) + $3
			WHERE id = $1
		`
		ct, err := tx.Exec(ctx, credit, p.UserID, int64(p.Score), p.StudyTime.Milliseconds())
		if err != nil {
			return fmt.Errorf("credit user stats: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		out = gs
		return nil
	})
	if err != nil {
		return domain.GameSession{}, err
	}
	return out, nil
}

func (s *GameSessionsStore) GetSession(ctx context.Context, id string) (domain.GameSession, error) {
	q := `SELECT ` + sessionColumns + ` FROM game_sessions WHERE id = $1`
	gs, err := scanSession(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.GameSession{}, domain.ErrNotFound
		}
		return domain.GameSession{}, fmt.Errorf("get session: %w", err)
	}
	return gs, nil
}

func (s *GameSessionsStore) ListSessions(ctx context.Context, userID, deckID string) ([]domain.GameSession, error) {
	q := `SELECT ` + sessionColumns + ` FROM game_sessions
		WHERE user_id = $1 AND ($2 = '' OR deck_id = $2)
		ORDER BY started_at DESC, id`
	rows, err := s.pool.Query(ctx, q, userID, deckID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	out := []domain.GameSession{}
	for rows.Next() {
		gs, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, gs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return out, nil
}

func (s *GameSessionsStore) DeleteSessionsForUser(ctx context.Context, userID string) (int, error) {
	ct, err := s.pool.Exec(ctx, `DELETE FROM game_sessions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete sessions: %w", err)
	}
	return int(ct.RowsAffected()), nil
}
