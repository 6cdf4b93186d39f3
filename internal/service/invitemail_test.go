package service_test

import (
	"context"
	"testing"

	"FlashLeaderserver/internal/domain"
	"FlashLeaderserver/internal/email"
	"FlashLeaderserver/internal/service"

	"github.com/stretchr/testify/require"
)

type recordingMail struct {
	sent []email.Message
	err  error
}

func (r *recordingMail) Send(_ context.Context, msg email.Message) error {
	r.sent = append(r.sent, msg)
	return r.err
}

func TestInviteMailer_SendsToRecipient(t *testing.T) {
	store := newStore(t,
		domain.User{ID: "a", Email: "a@example.com", Username: "ann", DisplayName: "Ann"},
		user("b", "b@example.com"),
	)
	mail := &recordingMail{}
	m := &service.InviteMailer{Users: store, Mail: mail}

	err := m.NotifyFriendInvitation(context.Background(), service.FriendInviteNotification{
		InvitationID: "inv-1", SenderID: "a", RecipientID: "b",
	})
	require.NoError(t, err)
	require.Len(t, mail.sent, 1)
	require.Equal(t, "b@example.com", mail.sent[0].To)
	require.Equal(t, "Ann wants to be your friend", mail.sent[0].Subject)
	require.Contains(t, mail.sent[0].Body, "Ann sent you a friend invitation.")
}

func TestInviteMailer_UnknownRecipient(t *testing.T) {
	store := newStore(t, user("a", "a@example.com"))
	m := &service.InviteMailer{Users: store, Mail: &recordingMail{}}

	err := m.NotifyFriendInvitation(context.Background(), service.FriendInviteNotification{SenderID: "a", RecipientID: "ghost"})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInviteNotifiers_JoinsErrors(t *testing.T) {
	store := newStore(t, user("a", "a@example.com"), user("b", "b@example.com"))
	ok := &recordingMail{}
	failing := &recordingMail{err: errBoom}

	ns := service.InviteNotifiers{
		&service.InviteMailer{Users: store, Mail: failing},
		&service.InviteMailer{Users: store, Mail: ok},
	}
	err := ns.NotifyFriendInvitation(context.Background(), service.FriendInviteNotification{SenderID: "a", RecipientID: "b"})
	require.ErrorIs(t, err, errBoom)
	require.Len(t, ok.sent, 1)
}

func TestFriendsService_EmailsInviteOnSend(t *testing.T) {
	store := newStore(t, user("a", "a@example.com"), user("b", "b@example.com"))
	mail := &recordingMail{}
	svc := &service.FriendsService{
		Users:       store,
		Friendships: store,
		Notifier:    &service.InviteMailer{Users: store, Mail: mail},
	}

	_, err := svc.Send(context.Background(), "a", "b@example.com")
	require.NoError(t, err)
	require.Len(t, mail.sent, 1)
	require.Equal(t, "a wants to be your friend", mail.sent[0].Subject)
}
