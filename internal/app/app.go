// Package app wires configuration into stores, infrastructure and services.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"FlashLeaderserver/internal/activity"
	"FlashLeaderserver/internal/config"
	"FlashLeaderserver/internal/domain"
	"FlashLeaderserver/internal/email"
	"FlashLeaderserver/internal/lock"
	"FlashLeaderserver/internal/notifications"
	"FlashLeaderserver/internal/seed"
	"FlashLeaderserver/internal/service"
	"FlashLeaderserver/internal/store/memory"
	"FlashLeaderserver/internal/store/postgres"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type App struct {
	Logger   *slog.Logger
	Registry *prometheus.Registry

	Games         *service.GameService
	Friends       *service.FriendsService
	Leaderboard   *service.LeaderboardService
	Notifications *service.NotificationService
	Accounts      *service.AccountService

	Users  service.UsersStore
	Seeder seed.Target

	// DBPing is nil when running on the in-memory store.
	DBPing func(context.Context) error

	closers []func() error
}

type stores struct {
	users       service.UsersStore
	sessions    service.GameSessionsStore
	decks       service.DecksStore
	friendships service.FriendshipsStore
	tokens      service.DeviceTokensStore
	seeder      seed.Target
}

// New builds every dependency cfg asks for. Optional backends (Redis, AMQP,
// FCM) are skipped when unconfigured. Call Close when done.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Logger: logger, Registry: prometheus.NewRegistry()}
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	st, err := a.openStores(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	locker, err := a.openLocker(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	sink, err := a.openActivity(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	var sender service.PushSender
	if cfg.PushEnabled() {
		fcm, err := notifications.NewFCMSender(ctx, cfg.FCMProjectID, cfg.FCMCredentials)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("fcm: %w", err)
		}
		sender = fcm
		logger.Info("push notifications enabled", "project_id", cfg.FCMProjectID)
	} else {
		logger.Info("push notifications disabled")
	}

	metrics := service.NewMetrics(a.Registry)

	a.Notifications = &service.NotificationService{
		Tokens: st.tokens,
		Users:  st.users,
		Sender: sender,
		Logger: logger,
	}
	a.Games = &service.GameService{
		Sessions: st.sessions,
		Decks:    st.decks,
		Locker:   locker,
		Activity: sink,
		Metrics:  metrics,
		Logger:   logger,
		Mode:     cfg.ScoringMode,
	}
	a.Friends = &service.FriendsService{
		Users:       st.users,
		Friendships: st.friendships,
		Activity:    sink,
		Metrics:     metrics,
		Logger:      logger,
	}
	var notifiers service.InviteNotifiers
	if sender != nil {
		notifiers = append(notifiers, a.Notifications)
	}
	if cfg.MailEnabled() {
		mailer := email.NewMailer(email.Settings{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			Username:  cfg.SMTPUsername,
			Password:  cfg.SMTPPassword,
			TLS:       cfg.SMTPTLS,
			FromName:  cfg.SMTPFromName,
			FromEmail: cfg.SMTPFrom,
		})
		notifiers = append(notifiers, &service.InviteMailer{Users: st.users, Mail: mailer})
		logger.Info("invitation emails enabled", "smtp_host", cfg.SMTPHost)
	}
	if len(notifiers) > 0 {
		a.Friends.Notifier = notifiers
	}
	a.Leaderboard = &service.LeaderboardService{Users: st.users, MaxLimit: cfg.LeaderboardMaxLimit}
	a.Accounts = &service.AccountService{Games: a.Games, Friends: a.Friends, Logger: logger}
	a.Users = st.users
	a.Seeder = st.seeder

	if cfg.SeedFile != "" {
		f, err := seed.Load(cfg.SeedFile)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("APP_SEED_FILE: %w", err)
		}
		res, err := seed.Apply(ctx, st.seeder, f)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("apply seed: %w", err)
		}
		logger.Info("seed applied", "file", cfg.SeedFile, "users", res.Users, "decks", res.Decks, "skipped_decks", res.SkippedDecks)
	}

	return a, nil
}

func (a *App) openStores(ctx context.Context, cfg config.Config) (stores, error) {
	if cfg.DBDSN == "" {
		a.Logger.Warn("APP_DB_DSN not set; using in-memory store")
		m := memory.New()
		return stores{users: m, sessions: m, decks: m, friendships: m, tokens: m, seeder: m}, nil
	}

	pool, err := postgres.Open(ctx, cfg.DBDSN)
	if err != nil {
		return stores{}, fmt.Errorf("db open: %w", err)
	}
	a.closers = append(a.closers, func() error { pool.Close(); return nil })
	if err := postgres.Migrate(ctx, pool); err != nil {
		return stores{}, fmt.Errorf("db migrate: %w", err)
	}
	a.DBPing = pool.Ping

	pg := postgres.NewStores(pool)
	return stores{
		users:       pg.Users,
		sessions:    pg.Sessions,
		decks:       pg.Decks,
		friendships: pg.Friendships,
		tokens:      pg.DeviceTokens,
		seeder:      postgresSeeder{users: pg.Users, decks: pg.Decks},
	}, nil
}

type postgresSeeder struct {
	users *postgres.UsersStore
	decks *postgres.DecksStore
}

func (s postgresSeeder) UpsertUser(ctx context.Context, u domain.User) (domain.User, error) {
	return s.users.UpsertUser(ctx, u)
}

func (s postgresSeeder) CreateDeck(ctx context.Context, d domain.Deck, questions []domain.Question) error {
	return s.decks.CreateDeck(ctx, d, questions)
}

func (a *App) openLocker(ctx context.Context, cfg config.Config) (lock.Locker, error) {
	if cfg.RedisAddr == "" {
		a.Logger.Info("session locks are process-local", "reason", "APP_REDIS_ADDR not set")
		return lock.NewKeyed(), nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	a.closers = append(a.closers, client.Close)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}
	l := lock.NewRedis(client, cfg.LockTTL)
	l.Logger = a.Logger
	a.Logger.Info("session locks use redis", "addr", cfg.RedisAddr, "ttl", cfg.LockTTL)
	return l, nil
}

func (a *App) openActivity(cfg config.Config) (activity.Sink, error) {
	sinks := activity.Multi{activity.SlogSink{Logger: a.Logger}}
	if cfg.AMQPURL == "" {
		return sinks, nil
	}
	pub, err := activity.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, pub.Close)
	a.Logger.Info("activity events published", "exchange", pub.Exchange)
	return append(sinks, pub), nil
}

// Close releases connections in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// NewLogger returns a text logger in dev and a JSON logger in prod.
func NewLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProd() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
