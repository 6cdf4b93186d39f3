package domain

import "time"

type GameStatus string

const (
	GameStatusPending  GameStatus = "pending"
	GameStatusFinished GameStatus = "finished"
)

type GameSession struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	DeckID        string     `json:"deck_id"`
	Status        GameStatus `json:"status"`
	Score         int        `json:"score"`
	CorrectCount  int        `json:"correct_count"`
	WrongCount    int        `json:"wrong_count"`
	QuestionCount int        `json:"question_count"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}

func (s GameSession) Duration() time.Duration {
	if s.FinishedAt == nil {
		return 0
	}
	d := s.FinishedAt.Sub(s.StartedAt)
	if d < 0 {
		return 0
	}
	return d
}

type AnswerSubmission struct {
	Question       string   `json:"question"`
	CorrectAnswers []string `json:"correct_answers"`
}
