package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"FlashLeaderserver/internal/domain"
	"FlashLeaderserver/internal/frn"
	"FlashLeaderserver/internal/lock"
	"FlashLeaderserver/internal/scoring"
)

type GameSessionsStore interface {
	// GetPendingSession returns domain.ErrNotFound when the pair has no pending session.
	GetPendingSession(ctx context.Context, userID, deckID string) (domain.GameSession, error)
	// CreateSession returns domain.ErrConflict when a pending session already exists.
	CreateSession(ctx context.Context, s domain.GameSession) error
	// FinalizeSession marks the session finished and credits the owner's stats
	// as one unit. It returns domain.ErrNoActiveSession if the session is no
	// longer pending.
	FinalizeSession(ctx context.Context, p FinalizeParams) (domain.GameSession, error)
	GetSession(ctx context.Context, id string) (domain.GameSession, error)
	ListSessions(ctx context.Context, userID, deckID string) ([]domain.GameSession, error)
	DeleteSessionsForUser(ctx context.Context, userID string) (int, error)
}

type FinalizeParams struct {
	SessionID     string
	UserID        string
	Score         int
	CorrectCount  int
	WrongCount    int
	QuestionCount int
	FinishedAt    time.Time
	StudyTime     time.Duration
}

type DecksStore interface {
	// GetDeck returns domain.ErrNotFound unless the deck exists and is owned by ownerID.
	GetDeck(ctx context.Context, deckID, ownerID string) (domain.Deck, error)
	ListQuestions(ctx context.Context, deckID string) ([]domain.Question, error)
}

type StartResult struct {
	Session   domain.GameSession `json:"session"`
	Questions []domain.Question  `json:"questions"`
	Resumed   bool               `json:"resumed"`
}

var errNoLocker = errors.New("game service: no locker configured")

type GameService struct {
	Sessions GameSessionsStore
	Decks    DecksStore
	Locker   lock.Locker
	Activity ActivityLogger
	Metrics  *Metrics
	Logger   *slog.Logger
	Mode     scoring.Mode
	Now      func() time.Time
}

func (s *GameService) Start(ctx context.Context, userID, deckID string) (StartResult, error) {
	userID, deckID, err := sessionKey(userID, deckID)
	if err != nil {
		return StartResult{}, err
	}
	logger := loggerOrDefault(s.Logger)

	if s.Locker == nil {
		return StartResult{}, errNoLocker
	}
	release, err := s.Locker.Acquire(ctx, "game:"+userID+":"+deckID)
	if err != nil {
		return StartResult{}, fmt.Errorf("acquire session lock: %w", err)
	}
	session, resumed, err := s.openSession(ctx, userID, deckID)
	release()
	if err != nil {
		return StartResult{}, err
	}

	questions, err := s.Decks.ListQuestions(ctx, deckID)
	if err != nil {
		return StartResult{}, fmt.Errorf("list questions: %w", err)
	}
	if questions == nil {
		questions = []domain.Question{}
	}

	s.Metrics.sessionStarted(resumed)
	recordActivity(ctx, s.Activity, logger, s.now(), userID, session.ID, domain.ActivityGameStarted)
	logger.Debug("game: session started", "user_id", userID, "deck_id", deckID, "session_id", session.ID, "resumed", resumed)

	return StartResult{Session: session, Questions: questions, Resumed: resumed}, nil
}

// openSession runs inside the per-(user, deck) critical section.
func (s *GameService) openSession(ctx context.Context, userID, deckID string) (domain.GameSession, bool, error) {
	existing, err := s.Sessions.GetPendingSession(ctx, userID, deckID)
	switch {
	case err == nil:
		return existing, true, nil
	case !errors.Is(err, domain.ErrNotFound):
		return domain.GameSession{}, false, fmt.Errorf("lookup pending session: %w", err)
	}

	if _, err := s.Decks.GetDeck(ctx, deckID, userID); err != nil {
		return domain.GameSession{}, false, err
	}

	session := domain.GameSession{
		ID:        frn.New(frn.KindSession),
		UserID:    userID,
		DeckID:    deckID,
		Status:    domain.GameStatusPending,
		StartedAt: s.now(),
	}
	if err := s.Sessions.CreateSession(ctx, session); err != nil {
		if !errors.Is(err, domain.ErrConflict) {
			return domain.GameSession{}, false, fmt.Errorf("create session: %w", err)
		}
		// Another process won the insert; resume its session.
		existing, getErr := s.Sessions.GetPendingSession(ctx, userID, deckID)
		if getErr != nil {
			return domain.GameSession{}, false, fmt.Errorf("reload pending session: %w", getErr)
		}
		return existing, true, nil
	}
	return session, false, nil
}

func (s *GameService) End(ctx context.Context, userID, deckID string, answers []domain.AnswerSubmission) (domain.GameSession, error) {
	userID, deckID, err := sessionKey(userID, deckID)
	if err != nil {
		return domain.GameSession{}, err
	}
	logger := loggerOrDefault(s.Logger)

	pending, err := s.Sessions.GetPendingSession(ctx, userID, deckID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.GameSession{}, domain.ErrNoActiveSession
		}
		return domain.GameSession{}, fmt.Errorf("lookup pending session: %w", err)
	}

	canonical, err := s.Decks.ListQuestions(ctx, deckID)
	if err != nil {
		return domain.GameSession{}, fmt.Errorf("list questions: %w", err)
	}
	result, err := scoring.Score(s.Mode, canonical, answers)
	if err != nil {
		return domain.GameSession{}, err
	}

	finishedAt := s.now()
	pending.FinishedAt = &finishedAt
	studyTime := pending.Duration()
	finished, err := s.Sessions.FinalizeSession(ctx, FinalizeParams{
		SessionID:     pending.ID,
		UserID:        userID,
		Score:         result.Score,
		CorrectCount:  result.Correct,
		WrongCount:    result.Wrong,
		QuestionCount: len(answers),
		FinishedAt:    finishedAt,
		StudyTime:     studyTime,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveSession) {
			return domain.GameSession{}, domain.ErrNoActiveSession
		}
		logger.Error("game: finalize failed", "err", err, "user_id", userID, "session_id", pending.ID)
		return domain.GameSession{}, fmt.Errorf("%w: finalize session: %w", domain.ErrInternal, err)
	}

	s.Metrics.sessionFinished(finished.Score)
	recordActivity(ctx, s.Activity, logger, finishedAt, userID, finished.ID, domain.ActivityGameFinished)
	logger.Info("game: session finished", "user_id", userID, "session_id", finished.ID, "score", finished.Score)

	return finished, nil
}

func (s *GameService) Get(ctx context.Context, userID, deckID, sessionID string) (domain.GameSession, error) {
	session, err := s.Sessions.GetSession(ctx, strings.TrimSpace(sessionID))
	if err != nil {
		return domain.GameSession{}, err
	}
	// Sessions owned by someone else, or in another deck, are invisible.
	if session.UserID != userID || (deckID != "" && session.DeckID != deckID) {
		return domain.GameSession{}, domain.ErrNotFound
	}
	return session, nil
}

func (s *GameService) List(ctx context.Context, userID, deckID string) ([]domain.GameSession, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.Sessions.ListSessions(ctx, userID, strings.TrimSpace(deckID))
}

func (s *GameService) RemoveAllForUser(ctx context.Context, userID string) (int, error) {
	n, err := s.Sessions.DeleteSessionsForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("delete sessions: %w", err)
	}
	return n, nil
}

func (s *GameService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func sessionKey(userID, deckID string) (string, string, error) {
	userID = strings.TrimSpace(userID)
	deckID = strings.TrimSpace(deckID)
	if userID == "" {
		return "", "", domain.ErrUnauthorized
	}
	if deckID == "" {
		return "", "", domain.NewValidationError(map[string]string{"deck_id": "required"})
	}
	return userID, deckID, nil
}
