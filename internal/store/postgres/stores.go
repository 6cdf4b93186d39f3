package postgres

import (
	"FlashLeaderserver/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	_ service.UsersStore        = (*UsersStore)(nil)
	_ service.GameSessionsStore = (*GameSessionsStore)(nil)
	_ service.FriendshipsStore  = (*FriendshipsStore)(nil)
	_ service.DecksStore        = (*DecksStore)(nil)
	_ service.DeviceTokensStore = (*DeviceTokensStore)(nil)
)

// Stores bundles every store built on one pool.
type Stores struct {
	Users        *UsersStore
	Sessions     *GameSessionsStore
	Friendships  *FriendshipsStore
	Decks        *DecksStore
	DeviceTokens *DeviceTokensStore
}

func NewStores(pool *pgxpool.Pool) Stores {
	return Stores{
		Users:        NewUsersStore(pool),
		Sessions:     NewGameSessionsStore(pool),
		Friendships:  NewFriendshipsStore(pool),
		Decks:        NewDecksStore(pool),
		DeviceTokens: NewDeviceTokensStore(pool),
	}
}
