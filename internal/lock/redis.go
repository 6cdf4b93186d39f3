package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	defaultRedisTTL   = 10 * time.Second
	defaultRetryEvery = 25 * time.Millisecond
)

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// Redis is a Locker shared by every server instance pointed at the same Redis.
// A holder that dies leaves the key to expire after TTL.
type Redis struct {
	Client     *redis.Client
	Prefix     string
	TTL        time.Duration
	RetryEvery time.Duration
	Logger     *slog.Logger
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{Client: client, Prefix: "lock:", TTL: ttl}
}

func (l *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	ttl := l.TTL
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	every := l.RetryEvery
	if every <= 0 {
		every = defaultRetryEvery
	}
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}
	fullKey := l.Prefix + key

	for {
		ok, err := l.Client.SetNX(ctx, fullKey, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			break
		}
		t := time.NewTimer(every)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	return func() {
		// Release must run even when the request context is already cancelled.
		relCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(relCtx, l.Client, []string{fullKey}, token).Err(); err != nil && err != redis.Nil {
			logger.Error("redis lock: release failed", "err", err, "key", key)
		}
	}, nil
}

func newToken() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("lock token: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}
