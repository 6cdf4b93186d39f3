// Package ranking orders users by a progression criterion.
package ranking

import (
	"sort"
	"strings"

	"FlashLeaderserver/internal/domain"
)

type Criterion string

const (
	ByPoints      Criterion = "points"
	ByStudyTime   Criterion = "studyTime"
	ByGamesPlayed Criterion = "gamesPlayed"
	ByStreak      Criterion = "streak"
)

// ParseCriterion accepts the camelCase and snake_case spellings; anything
// else ranks by points.
func ParseCriterion(s string) Criterion {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "")) {
	case "studytime":
		return ByStudyTime
	case "gamesplayed":
		return ByGamesPlayed
	case "streak":
		return ByStreak
	default:
		return ByPoints
	}
}

// Value projects u onto c for display. Study time is reported in whole seconds.
func Value(u domain.User, c Criterion) int64 {
	switch c {
	case ByStudyTime:
		if u.StudyTime == nil {
			return 0
		}
		return int64(u.StudyTime.Seconds())
	case ByGamesPlayed:
		return int64(u.GamesPlayed)
	case ByStreak:
		return int64(u.Streak)
	default:
		return u.Points
	}
}

// sortKey is Value without the display rounding: study time compares on the
// full duration.
func sortKey(u domain.User, c Criterion) int64 {
	if c == ByStudyTime {
		if u.StudyTime == nil {
			return 0
		}
		return int64(*u.StudyTime)
	}
	return Value(u, c)
}

// Rank sorts users descending by c, keeping the input order for ties, and
// returns at most limit entries (limit <= 0 means all). Ranks are 1-based
// positions in the full ordering.
func Rank(users []domain.User, c Criterion, limit int) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(users))
	keys := make([]int64, 0, len(users))
	for _, u := range users {
		entries = append(entries, domain.LeaderboardEntry{
			UserID:   u.ID,
			Username: u.Username,
			Score:    Value(u, c),
		})
		keys = append(keys, sortKey(u, c))
	}

	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return keys[order[i]] > keys[order[j]]
	})
	ranked := make([]domain.LeaderboardEntry, len(entries))
	for pos, idx := range order {
		ranked[pos] = entries[idx]
		ranked[pos].Rank = pos + 1
	}
	entries = ranked

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
