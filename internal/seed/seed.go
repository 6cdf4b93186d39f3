// Package seed loads users and decks from a YAML fixture file into a store.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"FlashLeaderserver/internal/domain"
	"FlashLeaderserver/internal/frn"

	"gopkg.in/yaml.v2"
)

type File struct {
	Users []User `yaml:"users"`
	Decks []Deck `yaml:"decks"`
}

type User struct {
	ID          string `yaml:"id"`
	Email       string `yaml:"email"`
	Username    string `yaml:"username"`
	DisplayName string `yaml:"display_name"`
}

type Deck struct {
	ID string `yaml:"id"`
	// Owner is a user id or the email of a user in the same file.
	Owner     string     `yaml:"owner"`
	Name      string     `yaml:"name"`
	Kind      string     `yaml:"kind"`
	Questions []Question `yaml:"questions"`
}

type Question struct {
	ID               string   `yaml:"id"`
	Prompt           string   `yaml:"question"`
	CorrectAnswers   []string `yaml:"correct_answers"`
	IncorrectAnswers []string `yaml:"incorrect_answers"`
}

type Target interface {
	UpsertUser(ctx context.Context, u domain.User) (domain.User, error)
	CreateDeck(ctx context.Context, d domain.Deck, questions []domain.Question) error
}

type Result struct {
	Users int
	Decks int
	// SkippedDecks counts decks whose id already existed.
	SkippedDecks int
}

func Load(path string) (File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	return Parse(raw)
}

func Parse(raw []byte) (File, error) {
	var f File
	if err := yaml.UnmarshalStrict(raw, &f); err != nil {
		return File{}, fmt.Errorf("parse seed: %w", err)
	}
	return f, nil
}

// Apply upserts every user, then creates every deck. Missing ids are minted.
// Re-applying a file with fixed deck ids leaves existing decks alone.
func Apply(ctx context.Context, t Target, f File) (Result, error) {
	var res Result
	byEmail := make(map[string]string, len(f.Users))

	for i, u := range f.Users {
		email := strings.ToLower(strings.TrimSpace(u.Email))
		if email == "" {
			return res, fmt.Errorf("users[%d]: %w", i, domain.NewValidationError(map[string]string{"email": "required"}))
		}
		id := strings.TrimSpace(u.ID)
		if id == "" {
			id = frn.New(frn.KindUser)
		}
		username := strings.TrimSpace(u.Username)
		if username == "" {
			username = strings.SplitN(email, "@", 2)[0]
		}
		saved, err := t.UpsertUser(ctx, domain.User{ID: id, Email: email, Username: username, DisplayName: u.DisplayName})
		if err != nil {
			return res, fmt.Errorf("users[%d] %s: %w", i, email, err)
		}
		byEmail[email] = saved.ID
		res.Users++
	}

	for i, d := range f.Decks {
		owner := strings.TrimSpace(d.Owner)
		if id, ok := byEmail[strings.ToLower(owner)]; ok {
			owner = id
		}
		if owner == "" {
			return res, fmt.Errorf("decks[%d]: %w", i, domain.NewValidationError(map[string]string{"owner": "required"}))
		}
		kind := domain.DeckKind(strings.ToLower(strings.TrimSpace(d.Kind)))
		if kind == "" {
			kind = domain.DeckKindQuestions
		}
		deck := domain.Deck{ID: strings.TrimSpace(d.ID), OwnerID: owner, Name: d.Name, Kind: kind}
		if deck.ID == "" {
			deck.ID = frn.New(frn.KindDeck)
		}

		questions := make([]domain.Question, 0, len(d.Questions))
		for _, q := range d.Questions {
			id := strings.TrimSpace(q.ID)
			if id == "" {
				id = frn.New(frn.KindQuestion)
			}
			questions = append(questions, domain.Question{
				ID:               id,
				DeckID:           deck.ID,
				Prompt:           q.Prompt,
				CorrectAnswers:   q.CorrectAnswers,
				IncorrectAnswers: q.IncorrectAnswers,
			})
		}

		if err := t.CreateDeck(ctx, deck, questions); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				res.SkippedDecks++
				continue
			}
			return res, fmt.Errorf("decks[%d] %s: %w", i, deck.ID, err)
		}
		res.Decks++
	}
	return res, nil
}
