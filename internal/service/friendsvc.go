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
)

type UsersStore interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	// ListUsers and ListUsersByIDs return users in creation order.
	ListUsers(ctx context.Context) ([]domain.User, error)
	ListUsersByIDs(ctx context.Context, ids []string) ([]domain.User, error)
}

type FriendshipsStore interface {
	// CreatePendingInvitation fails with a domain.ErrDuplicatePending conflict
	// when the ordered pair already has a pending invitation.
	CreatePendingInvitation(ctx context.Context, inv domain.FriendInvitation) error
	GetInvitation(ctx context.Context, id string) (domain.FriendInvitation, error)
	// ResolveInvitation moves a pending invitation to status. Only one caller
	// wins; the rest get domain.ErrConflict. Accepting adds both friend edges
	// in the same unit.
	ResolveInvitation(ctx context.Context, id string, status domain.InvitationStatus, when time.Time) (domain.FriendInvitation, error)
	ListPendingReceived(ctx context.Context, userID string) ([]domain.FriendInvitation, error)
	ListPendingSent(ctx context.Context, userID string) ([]domain.FriendInvitation, error)
	// RemoveFriendship drops both edges or neither; domain.ErrNotFriends if absent.
	RemoveFriendship(ctx context.Context, userID, friendID string) error
}

type FriendInviteNotification struct {
	InvitationID string
	SenderID     string
	RecipientID  string
}

type FriendInviteNotifier interface {
	NotifyFriendInvitation(ctx context.Context, n FriendInviteNotification) error
}

type FriendsService struct {
	Users       UsersStore
	Friendships FriendshipsStore
	Notifier    FriendInviteNotifier
	Activity    ActivityLogger
	Metrics     *Metrics
	Logger      *slog.Logger
	Now         func() time.Time
}

func (s *FriendsService) Send(ctx context.Context, senderID, recipientEmail string) (domain.FriendInvitation, error) {
	if strings.TrimSpace(senderID) == "" {
		return domain.FriendInvitation{}, domain.ErrUnauthorized
	}
	logger := loggerOrDefault(s.Logger)

	email := strings.ToLower(strings.TrimSpace(recipientEmail))
	if email == "" {
		return domain.FriendInvitation{}, domain.NewValidationError(map[string]string{"email": "required"})
	}
	if !strings.Contains(email, "@") {
		return domain.FriendInvitation{}, domain.NewValidationError(map[string]string{"email": "invalid"})
	}

	recipient, err := s.Users.GetUserByEmail(ctx, email)
	if err != nil {
		return domain.FriendInvitation{}, err
	}
	if recipient.ID == senderID {
		return domain.FriendInvitation{}, domain.NewValidationReason(domain.ErrSelfInvite, map[string]string{"email": "cannot invite yourself"})
	}
	if recipient.HasFriend(senderID) {
		return domain.FriendInvitation{}, domain.NewConflict(domain.ErrAlreadyFriends)
	}

	inv := domain.FriendInvitation{
		ID:          frn.New(frn.KindInvitation),
		SenderID:    senderID,
		RecipientID: recipient.ID,
		Status:      domain.InvitationPending,
		CreatedAt:   s.now(),
	}
	if err := s.Friendships.CreatePendingInvitation(ctx, inv); err != nil {
		return domain.FriendInvitation{}, fmt.Errorf("create invitation: %w", err)
	}

	s.Metrics.invitation("sent")
	if s.Notifier != nil {
		err := s.Notifier.NotifyFriendInvitation(ctx, FriendInviteNotification{
			InvitationID: inv.ID,
			SenderID:     senderID,
			RecipientID:  recipient.ID,
		})
		if err != nil {
			logger.Warn("friends: invitation notice failed", "err", err, "invitation_id", inv.ID)
		}
	}
	recordActivity(ctx, s.Activity, logger, inv.CreatedAt, senderID, inv.ID, domain.ActivityFriendInvited)

	return inv, nil
}

// Respond applies a terminal status on behalf of actingUserID. Recipients may
// accept or reject; senders may only cancel.
func (s *FriendsService) Respond(ctx context.Context, invitationID, actingUserID string, status domain.InvitationStatus) (domain.FriendInvitation, error) {
	logger := loggerOrDefault(s.Logger)

	inv, err := s.Friendships.GetInvitation(ctx, strings.TrimSpace(invitationID))
	if err != nil {
		return domain.FriendInvitation{}, err
	}

	switch actingUserID {
	case inv.RecipientID:
		if status != domain.InvitationAccepted && status != domain.InvitationRejected {
			return domain.FriendInvitation{}, domain.ErrInvalidTransition
		}
	case inv.SenderID:
		if status != domain.InvitationCancelled {
			return domain.FriendInvitation{}, domain.ErrUnauthorized
		}
	default:
		return domain.FriendInvitation{}, domain.ErrUnauthorized
	}

	if inv.Status != domain.InvitationPending {
		return domain.FriendInvitation{}, domain.ErrConflict
	}

	when := s.now()
	resolved, err := s.Friendships.ResolveInvitation(ctx, inv.ID, status, when)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound) {
			return domain.FriendInvitation{}, err
		}
		logger.Error("friends: resolve invitation failed", "err", err, "invitation_id", inv.ID)
		return domain.FriendInvitation{}, fmt.Errorf("%w: resolve invitation: %w", domain.ErrInternal, err)
	}

	s.Metrics.invitation(string(status))
	recordActivity(ctx, s.Activity, logger, when, actingUserID, inv.ID, domain.ActivityFriendInviteResponded)

	return resolved, nil
}

func (s *FriendsService) ListReceived(ctx context.Context, userID string) ([]domain.FriendInvitation, error) {
	return s.Friendships.ListPendingReceived(ctx, userID)
}

func (s *FriendsService) ListSent(ctx context.Context, userID string) ([]domain.FriendInvitation, error) {
	return s.Friendships.ListPendingSent(ctx, userID)
}

func (s *FriendsService) ListFriends(ctx context.Context, userID string) ([]domain.UserSummary, error) {
	user, err := s.Users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.UserSummary, 0, len(user.Friends))
	if len(user.Friends) == 0 {
		return out, nil
	}
	friends, err := s.Users.ListUsersByIDs(ctx, user.Friends)
	if err != nil {
		return nil, fmt.Errorf("load friends: %w", err)
	}
	for _, f := range friends {
		out = append(out, f.Summary())
	}
	return out, nil
}

func (s *FriendsService) DeleteFriend(ctx context.Context, userID, friendID string) error {
	friendID = strings.TrimSpace(friendID)
	user, err := s.Users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if friendID == "" || !user.HasFriend(friendID) {
		return domain.ErrNotFriends
	}
	if err := s.Friendships.RemoveFriendship(ctx, userID, friendID); err != nil {
		if errors.Is(err, domain.ErrNotFriends) {
			return err
		}
		return fmt.Errorf("%w: remove friendship: %w", domain.ErrInternal, err)
	}

	logger := loggerOrDefault(s.Logger)
	s.Metrics.friendRemoved()
	recordActivity(ctx, s.Activity, logger, s.now(), userID, friendID, domain.ActivityFriendRemoved)
	return nil
}

// RemoveAllFriends drops every friendship of userID. Edges removed
// concurrently by someone else are skipped.
func (s *FriendsService) RemoveAllFriends(ctx context.Context, userID string) (int, error) {
	user, err := s.Users.GetUserByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, friendID := range user.Friends {
		if err := s.Friendships.RemoveFriendship(ctx, userID, friendID); err != nil {
			if errors.Is(err, domain.ErrNotFriends) {
				continue
			}
			return removed, fmt.Errorf("remove friendship %s: %w", friendID, err)
		}
		removed++
		s.Metrics.friendRemoved()
	}
	return removed, nil
}

func (s *FriendsService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}
