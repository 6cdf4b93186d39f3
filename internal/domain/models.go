package domain

import "time"

type User struct {
	ID          string
	Email       string
	Username    string
	DisplayName string
	CreatedAt   time.Time

	Points      int64
	GamesPlayed int
	Streak      int
	// StudyTime is nil until the user finishes a first session.
	StudyTime *time.Duration

	// Friends is a set of user ids; order carries no meaning.
	Friends []string
}

func (u User) HasFriend(id string) bool {
	for _, f := range u.Friends {
		if f == id {
			return true
		}
	}
	return false
}

func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, DisplayName: u.DisplayName}
}

type UserSummary struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
}

type Progression struct {
	Points           int64 `json:"points"`
	GamesPlayed      int   `json:"games_played"`
	Streak           int   `json:"streak"`
	StudyTimeSeconds int64 `json:"study_time_seconds"`
}

func (u User) Progression() Progression {
	p := Progression{Points: u.Points, GamesPlayed: u.GamesPlayed, Streak: u.Streak}
	if u.StudyTime != nil {
		p.StudyTimeSeconds = int64(u.StudyTime.Seconds())
	}
	return p
}
