package domain

import "time"

type ActivityType string

const (
	ActivityLogin                 ActivityType = "LOGIN"
	ActivityGameStarted           ActivityType = "GAME_STARTED"
	ActivityGameFinished          ActivityType = "GAME_FINISHED"
	ActivityFriendInvited         ActivityType = "FRIEND_INVITED"
	ActivityFriendInviteResponded ActivityType = "FRIEND_INVITE_RESPONDED"
	ActivityFriendRemoved         ActivityType = "FRIEND_REMOVED"
)

type ActivityEvent struct {
	UserID   string       `json:"user_id"`
	TargetID string       `json:"target_id,omitempty"`
	Type     ActivityType `json:"type"`
	At       time.Time    `json:"at"`
}
