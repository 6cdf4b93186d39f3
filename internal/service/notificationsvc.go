package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"FlashLeaderserver/internal/domain"
	"FlashLeaderserver/internal/notifications"
)

type DeviceTokensStore interface {
	UpsertDeviceToken(ctx context.Context, t domain.DeviceToken) (domain.DeviceToken, error)
	DeleteDeviceToken(ctx context.Context, userID, token string) error
	ListDeviceTokens(ctx context.Context, userID string) ([]domain.DeviceToken, error)
}

type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
}

type PushSender interface {
	Send(ctx context.Context, deviceToken string, msg notifications.Message) error
}

// NotificationService registers device tokens and pushes friend-invitation
// notices. It satisfies FriendInviteNotifier.
type NotificationService struct {
	Tokens DeviceTokensStore
	Users  UserLookup
	Sender PushSender
	Logger *slog.Logger
	Now    func() time.Time
}

func (s *NotificationService) RegisterToken(ctx context.Context, userID, token, platform string) (domain.DeviceToken, error) {
	if s.Tokens == nil {
		return domain.DeviceToken{}, errors.New("notifications unavailable")
	}
	fields := map[string]string{}
	token = strings.TrimSpace(token)
	if token == "" {
		fields["token"] = "required"
	}
	p, ok := domain.ParseDevicePlatform(platform)
	if !ok {
		fields["platform"] = "must be ios or android"
	}
	if len(fields) > 0 {
		return domain.DeviceToken{}, domain.NewValidationError(fields)
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	when := now().UTC().Truncate(time.Millisecond)
	return s.Tokens.UpsertDeviceToken(ctx, domain.DeviceToken{
		UserID:    userID,
		Token:     token,
		Platform:  p,
		CreatedAt: when,
		UpdatedAt: when,
	})
}

func (s *NotificationService) DeleteToken(ctx context.Context, userID, token string) error {
	if s.Tokens == nil {
		return errors.New("notifications unavailable")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.NewValidationError(map[string]string{"token": "required"})
	}
	return s.Tokens.DeleteDeviceToken(ctx, userID, token)
}

func (s *NotificationService) NotifyFriendInvitation(ctx context.Context, n FriendInviteNotification) error {
	if s.Tokens == nil || s.Sender == nil || s.Users == nil {
		return nil
	}
	logger := loggerOrDefault(s.Logger)

	tokens, err := s.Tokens.ListDeviceTokens(ctx, n.RecipientID)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}
	sender, err := s.Users.GetUserByID(ctx, n.SenderID)
	if err != nil {
		return err
	}

	name := strings.TrimSpace(sender.DisplayName)
	if name == "" {
		name = sender.Username
	}
	data := map[string]string{
		"type":          "friend_invitation",
		"invitation_id": n.InvitationID,
		"sender_id":     sender.ID,
		"display_name":  name,
	}
	alert := &notifications.Notification{
		Title: "New friend invitation",
		Body:  "You received a friend invitation.",
	}
	if name != "" {
		alert.Body = name + " wants to be your friend."
	}

	for _, t := range tokens {
		msg := notifications.Message{Data: data}
		// iOS drops data-only pushes when the app is backgrounded.
		if t.Platform == domain.PlatformIOS {
			msg.Notification = alert
		}
		err := s.Sender.Send(ctx, t.Token, msg)
		switch {
		case err == nil:
		case errors.Is(err, notifications.ErrInvalidToken):
			if delErr := s.Tokens.DeleteDeviceToken(ctx, n.RecipientID, t.Token); delErr != nil {
				logger.Error("notifications: delete stale token failed", "err", delErr, "user_id", n.RecipientID)
			}
		default:
			logger.Error("notifications: send failed", "err", err, "user_id", n.RecipientID)
		}
	}
	return nil
}
