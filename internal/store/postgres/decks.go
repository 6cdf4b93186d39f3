package postgres

import (
	"context"
	"errors"
	"fmt"

	"FlashLeaderserver/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DecksStore is the read side the game service needs. Deck authoring lives
// elsewhere; CreateDeck exists for seeding.
type DecksStore struct {
	pool *pgxpool.Pool
}

func NewDecksStore(pool *pgxpool.Pool) *DecksStore {
	return &DecksStore{pool: pool}
}

func (s *DecksStore) GetDeck(ctx context.Context, deckID, ownerID string) (domain.Deck, error) {
	const q = `SELECT id, owner_id, name, kind FROM decks WHERE id = $1 AND owner_id = $2`
	var d domain.Deck
	err := s.pool.QueryRow(ctx, q, deckID, ownerID).Scan(&d.ID, &d.OwnerID, &d.Name, &d.Kind)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Deck{}, domain.ErrNotFound
		}
		return domain.Deck{}, fmt.Errorf("get deck: %w", err)
	}
	return d, nil
}

func (s *DecksStore) ListQuestions(ctx context.Context, deckID string) ([]domain.Question, error) {
	const q = `
		SELECT id, deck_id, prompt, correct_answers, incorrect_answers
		FROM questions
		WHERE deck_id = $1
		ORDER BY position, id
	`
	rows, err := s.pool.Query(ctx, q, deckID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	out := []domain.Question{}
	for rows.Next() {
		var qn domain.Question
		if err := rows.Scan(&qn.ID, &qn.DeckID, &qn.Prompt, &qn.CorrectAnswers, &qn.IncorrectAnswers); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		qn.CorrectAnswers = stringsOrEmpty(qn.CorrectAnswers)
		qn.IncorrectAnswers = stringsOrEmpty(qn.IncorrectAnswers)
		out = append(out, qn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return out, nil
}

func (s *DecksStore) CreateDeck(ctx context.Context, d domain.Deck, questions []domain.Question) error {
	if !d.Kind.Valid() {
		return domain.NewValidationError(map[string]string{"kind": "must be questions or cards"})
	}
	return withTx(ctx, s.pool, func(tx pgx.Tx) error {
		const insertDeck = `INSERT INTO decks (id, owner_id, name, kind) VALUES ($1, $2, $3, $4)`
		if _, err := tx.Exec(ctx, insertDeck, d.ID, d.OwnerID, d.Name, d.Kind); err != nil {
			if uniqueViolation(err, "decks_pkey") {
				return domain.ErrConflict
			}
			return fmt.Errorf("create deck: %w", err)
		}

		batch := &pgx.Batch{}
		for i, qn := range questions {
			batch.Queue(
				`INSERT INTO questions (id, deck_id, position, prompt, correct_answers, incorrect_answers)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				qn.ID, d.ID, i, qn.Prompt, stringsOrEmpty(qn.CorrectAnswers), stringsOrEmpty(qn.IncorrectAnswers),
			)
		}
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("create questions: %w", err)
		}
		return nil
	})
}
