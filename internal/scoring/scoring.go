// Package scoring grades a submitted answer set against a deck's canonical
// questions.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"FlashLeaderserver/internal/domain"

	"golang.org/x/text/cases"
)

type Mode string

const (
	// ModeAdditive awards 5 points per correct answer and takes 4 per wrong one.
	ModeAdditive Mode = "additive"
	// ModePercentage scores round(100 * correct / submitted).
	ModePercentage Mode = "percentage"
)

const (
	correctPoints = 5
	wrongPenalty  = 4
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAdditive, nil
	case ModeAdditive, ModePercentage:
		return m, nil
	default:
		return "", fmt.Errorf("unknown scoring mode %q", s)
	}
}

type Result struct {
	Correct int
	Wrong   int
	Score   int
}

// Score grades every submission. Any submission naming a prompt that is not
// in canonical fails the whole call.
func Score(mode Mode, canonical []domain.Question, submitted []domain.AnswerSubmission) (Result, error) {
	if mode == ModePercentage && len(submitted) == 0 {
		return Result{}, domain.NewValidationReason(domain.ErrEmptySubmission, map[string]string{"answers": "at least one answer required"})
	}

	byPrompt := make(map[string]domain.Question, len(canonical))
	for _, q := range canonical {
		key := promptKey(q.Prompt)
		if _, dup := byPrompt[key]; !dup {
			byPrompt[key] = q
		}
	}

	var res Result
	for _, sub := range submitted {
		q, ok := byPrompt[promptKey(sub.Question)]
		if !ok {
			return Result{}, domain.NewValidationReason(domain.ErrUnknownQuestion, map[string]string{"question": sub.Question})
		}
		if sameSet(q.CorrectAnswers, sub.CorrectAnswers) {
			res.Correct++
		} else {
			res.Wrong++
		}
	}

	switch mode {
	case ModePercentage:
		res.Score = int(math.Round(100 * float64(res.Correct) / float64(len(submitted))))
	default:
		res.Score = res.Correct*correctPoints - res.Wrong*wrongPenalty
	}
	return res, nil
}

// promptKey case-folds the trimmed prompt, so two prompts share a key when
// strings.EqualFold would match them.
func promptKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// sameSet compares answers as sets: order and duplicates are ignored, case is not.
func sameSet(a, b []string) bool {
	as := make(map[string]struct{}, len(a))
	for _, s := range a {
		as[s] = struct{}{}
	}
	bs := make(map[string]struct{}, len(b))
	for _, s := range b {
		if _, ok := as[s]; !ok {
			return false
		}
		bs[s] = struct{}{}
	}
	return len(as) == len(bs)
}
