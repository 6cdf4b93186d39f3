package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"FlashLeaderserver/internal/domain"
	"FlashLeaderserver/internal/store/memory"

	"github.com/stretchr/testify/require"
)

type recordingActivity struct {
	mu     sync.Mutex
	events []domain.ActivityEvent
	err    error
}

func (r *recordingActivity) Log(_ context.Context, ev domain.ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recordingActivity) types() []domain.ActivityType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ActivityType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

var errBoom = errors.New("boom")

func newStore(t *testing.T, users ...domain.User) *memory.Store {
	t.Helper()
	s := memory.New()
	for _, u := range users {
		require.NoError(t, s.AddUser(u))
	}
	return s
}

func user(id, email string) domain.User {
	return domain.User{ID: id, Email: email, Username: id}
}
