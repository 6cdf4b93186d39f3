package domain

import "time"

type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "pending"
	InvitationAccepted  InvitationStatus = "accepted"
	InvitationRejected  InvitationStatus = "rejected"
	InvitationCancelled InvitationStatus = "cancelled"
)

func ParseInvitationStatus(s string) (InvitationStatus, bool) {
	switch st := InvitationStatus(s); st {
	case InvitationPending, InvitationAccepted, InvitationRejected, InvitationCancelled:
		return st, true
	default:
		return "", false
	}
}

func (s InvitationStatus) Terminal() bool {
	return s == InvitationAccepted || s == InvitationRejected || s == InvitationCancelled
}

type FriendInvitation struct {
	ID          string           `json:"id"`
	SenderID    string           `json:"sender_id"`
	RecipientID string           `json:"recipient_id"`
	Status      InvitationStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	RespondedAt *time.Time       `json:"responded_at,omitempty"`
}
