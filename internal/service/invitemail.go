package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"FlashLeaderserver/internal/email"
)

type MailSender interface {
	Send(ctx context.Context, msg email.Message) error
}

// InviteMailer emails the recipient of a new friend invitation.
type InviteMailer struct {
	Users UserLookup
	Mail  MailSender
}

func (m *InviteMailer) NotifyFriendInvitation(ctx context.Context, n FriendInviteNotification) error {
	if m.Users == nil || m.Mail == nil {
		return nil
	}
	recipient, err := m.Users.GetUserByID(ctx, n.RecipientID)
	if err != nil {
		return fmt.Errorf("load recipient: %w", err)
	}
	if strings.TrimSpace(recipient.Email) == "" {
		return nil
	}
	sender, err := m.Users.GetUserByID(ctx, n.SenderID)
	if err != nil {
		return fmt.Errorf("load sender: %w", err)
	}

	name := strings.TrimSpace(sender.DisplayName)
	if name == "" {
		name = sender.Username
	}
	return m.Mail.Send(ctx, email.Message{
		To:      recipient.Email,
		Subject: name + " wants to be your friend",
		Body: fmt.Sprintf(
			"%s sent you a friend invitation.\n\nOpen the app to accept or reject it.\n",
			name,
		),
	})
}

// InviteNotifiers fans a notification out to every notifier and joins
// their errors.
type InviteNotifiers []FriendInviteNotifier

func (ns InviteNotifiers) NotifyFriendInvitation(ctx context.Context, n FriendInviteNotification) error {
	var errs []error
	for _, notifier := range ns {
		if err := notifier.NotifyFriendInvitation(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
