package ranking

import (
	"testing"
	"time"

	"FlashLeaderserver/internal/domain"

	"github.com/brianvoe/gofakeit/v7"
)

func durationPtr(d time.Duration) *time.Duration { return &d }

func TestRankStableTies(t *testing.T) {
	users := []domain.User{
		{ID: "A", Points: 10},
		{ID: "B", Points: 30},
		{ID: "C", Points: 30},
		{ID: "D", Points: 5},
	}
	got := Rank(users, ByPoints, 10)
	want := []struct {
		rank int
		id   string
	}{{1, "B"}, {2, "C"}, {3, "A"}, {4, "D"}}

	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].Rank != w.rank || got[i].UserID != w.id {
			t.Fatalf("entry %d: got %d:%s want %d:%s", i, got[i].Rank, got[i].UserID, w.rank, w.id)
		}
	}
}

func TestRankLimitDoesNotRenumber(t *testing.T) {
	users := []domain.User{
		{ID: "u1", Points: 1},
		{ID: "u2", Points: 2},
		{ID: "u3", Points: 3},
		{ID: "u4", Points: 4},
		{ID: "u5", Points: 5},
	}
	got := Rank(users, ByPoints, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].UserID != "u5" || got[0].Rank != 1 || got[1].UserID != "u4" || got[1].Rank != 2 {
		t.Fatalf("unexpected entries: %+v", got)
	}
}

func TestRankStudyTimeNilIsZero(t *testing.T) {
	users := []domain.User{
		{ID: "never"},
		{ID: "some", StudyTime: durationPtr(90 * time.Second)},
		{ID: "zero", StudyTime: durationPtr(0)},
	}
	got := Rank(users, ByStudyTime, 0)
	if got[0].UserID != "some" || got[0].Score != 90 {
		t.Fatalf("unexpected leader: %+v", got[0])
	}
	if got[1].UserID != "never" || got[2].UserID != "zero" {
		t.Fatalf("expected nil study time to tie with zero in input order: %+v", got)
	}
}

func TestRankStudyTimeComparesFullDuration(t *testing.T) {
	users := []domain.User{
		{ID: "A", StudyTime: durationPtr(1200 * time.Millisecond)},
		{ID: "B", StudyTime: durationPtr(1900 * time.Millisecond)},
		{ID: "C", StudyTime: durationPtr(1200 * time.Millisecond)},
	}
	got := Rank(users, ByStudyTime, 10)
	if got[0].UserID != "B" || got[0].Rank != 1 {
		t.Fatalf("expected B to lead on more study time: %+v", got)
	}
	if got[1].UserID != "A" || got[2].UserID != "C" {
		t.Fatalf("expected equal durations in input order: %+v", got)
	}
	for _, e := range got {
		if e.Score != 1 {
			t.Fatalf("expected score in whole seconds, got %+v", e)
		}
	}
}

func TestRankCriteria(t *testing.T) {
	users := []domain.User{
		{ID: "a", Points: 100, GamesPlayed: 1, Streak: 7},
		{ID: "b", Points: -5, GamesPlayed: 9, Streak: 2},
	}
	if got := Rank(users, ByGamesPlayed, 0); got[0].UserID != "b" || got[0].Score != 9 {
		t.Fatalf("games played: %+v", got)
	}
	if got := Rank(users, ByStreak, 0); got[0].UserID != "a" || got[0].Score != 7 {
		t.Fatalf("streak: %+v", got)
	}
	if got := Rank(users, ParseCriterion("bogus"), 0); got[0].UserID != "a" || got[1].Score != -5 {
		t.Fatalf("default criterion: %+v", got)
	}
}

func TestParseCriterion(t *testing.T) {
	tests := map[string]Criterion{
		"":             ByPoints,
		"points":       ByPoints,
		"studyTime":    ByStudyTime,
		"study_time":   ByStudyTime,
		"gamesPlayed":  ByGamesPlayed,
		"games_played": ByGamesPlayed,
		"STREAK":       ByStreak,
		"karma":        ByPoints,
	}
	for in, want := range tests {
		if got := ParseCriterion(in); got != want {
			t.Fatalf("ParseCriterion(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRankIsSortedAndDense(t *testing.T) {
	f := gofakeit.New(42)
	users := make([]domain.User, 200)
	for i := range users {
		users[i] = domain.User{
			ID:       f.UUID(),
			Username: f.Username(),
			Points:   int64(f.Number(-50, 50)),
		}
	}

	got := Rank(users, ByPoints, 0)
	if len(got) != len(users) {
		t.Fatalf("expected %d entries, got %d", len(users), len(got))
	}
	pos := make(map[string]int, len(users))
	for i, u := range users {
		pos[u.ID] = i
	}
	for i := range got {
		if got[i].Rank != i+1 {
			t.Fatalf("rank %d at index %d", got[i].Rank, i)
		}
		if i == 0 {
			continue
		}
		prev, cur := got[i-1], got[i]
		if prev.Score < cur.Score {
			t.Fatalf("not descending at %d: %d < %d", i, prev.Score, cur.Score)
		}
		if prev.Score == cur.Score && pos[prev.UserID] > pos[cur.UserID] {
			t.Fatalf("tie at %d not in input order", i)
		}
	}
}
