package domain

type DeckKind string

const (
	DeckKindQuestions DeckKind = "questions"
	DeckKindCards     DeckKind = "cards"
)

func (k DeckKind) Valid() bool {
	switch k {
	case DeckKindQuestions, DeckKindCards:
		return true
	default:
		return false
	}
}

type Deck struct {
	ID      string   `json:"id"`
	OwnerID string   `json:"owner_id"`
	Name    string   `json:"name"`
	Kind    DeckKind `json:"kind"`
}

type Question struct {
	ID               string   `json:"id"`
	DeckID           string   `json:"deck_id"`
	Prompt           string   `json:"question"`
	CorrectAnswers   []string `json:"correct_answers"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}
