package service_test

import (
	"context"
	"testing"

	"FlashLeaderserver/internal/domain"
	"FlashLeaderserver/internal/lock"
	"FlashLeaderserver/internal/service"

	"github.com/stretchr/testify/require"
)

func TestPurgeRemovesSessionsAndFriendships(t *testing.T) {
	store := newStore(t, user("ana", "ana@example.com"), user("bo", "bo@example.com"))
	require.NoError(t, store.AddDeck(domain.Deck{ID: "d1", OwnerID: "ana", Kind: domain.DeckKindCards}, nil))
	ctx := context.Background()

	games := &service.GameService{Sessions: store, Decks: store, Locker: lock.NewKeyed()}
	friends := &service.FriendsService{Users: store, Friendships: store}
	_, err := games.Start(ctx, "ana", "d1")
	require.NoError(t, err)
	inv, err := friends.Send(ctx, "bo", "ana@example.com")
	require.NoError(t, err)
	_, err = friends.Respond(ctx, inv.ID, "ana", domain.InvitationAccepted)
	require.NoError(t, err)

	svc := &service.AccountService{Games: games, Friends: friends}
	res, err := svc.Purge(ctx, "ana")
	require.NoError(t, err)
	require.Equal(t, service.PurgeResult{SessionsRemoved: 1, FriendsRemoved: 1}, res)

	bo, err := store.GetUserByID(ctx, "bo")
	require.NoError(t, err)
	require.Empty(t, bo.Friends)
	sessions, err := games.List(ctx, "ana", "")
	require.NoError(t, err)
	require.Empty(t, sessions)
}
