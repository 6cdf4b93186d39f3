package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"FlashLeaderserver/internal/email"
	"FlashLeaderserver/internal/scoring"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	Addr     string
	DBDSN    string
	LogLevel string

	RedisAddr     string
	RedisPassword string
	LockTTL       time.Duration

	AMQPURL      string
	AMQPExchange string

	ScoringMode         scoring.Mode
	LeaderboardMaxLimit int

	FCMProjectID   string
	FCMCredentials string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPTLS      email.TLSMode
	SMTPFrom     string
	SMTPFromName string

	// SeedFile is a YAML fixture of users and decks applied at startup.
	SeedFile string
}

// Load reads ./.env (if present) into the process environment without
// overriding existing variables, then resolves the config from the env and
// the optional APP_CONFIG_FILE.
func Load() (Config, error) {
	if err := loadDotEnvFile(".env", os.Setenv, os.Getenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf(".env: %w", err)
	}
	return LoadFromEnv(os.Getenv)
}

func LoadFromEnv(getenv func(string) string) (Config, error) {
	if path := strings.TrimSpace(getenv("APP_CONFIG_FILE")); path != "" {
		defaults, err := readConfigFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("APP_CONFIG_FILE: %w", err)
		}
		getenv = layered(getenv, defaults)
	}

	cfg := Config{
		Env:            getenv("APP_ENV"),
		Addr:           getenv("APP_ADDR"),
		DBDSN:          getenv("APP_DB_DSN"),
		LogLevel:       getenv("APP_LOG_LEVEL"),
		RedisAddr:      strings.TrimSpace(getenv("APP_REDIS_ADDR")),
		RedisPassword:  getenv("APP_REDIS_PASSWORD"),
		AMQPURL:        strings.TrimSpace(getenv("APP_AMQP_URL")),
		AMQPExchange:   strings.TrimSpace(getenv("APP_AMQP_EXCHANGE")),
		FCMProjectID:   strings.TrimSpace(getenv("APP_FCM_PROJECT_ID")),
		FCMCredentials: strings.TrimSpace(getenv("APP_FCM_CREDENTIALS")),
		SeedFile:       strings.TrimSpace(getenv("APP_SEED_FILE")),
		SMTPHost:       strings.TrimSpace(getenv("APP_SMTP_HOST")),
		SMTPUsername:   getenv("APP_SMTP_USERNAME"),
		SMTPPassword:   getenv("APP_SMTP_PASSWORD"),
		SMTPFrom:       strings.TrimSpace(getenv("APP_SMTP_FROM")),
		SMTPFromName:   strings.TrimSpace(getenv("APP_SMTP_FROM_NAME")),
	}

	if cfg.Env == "" {
		cfg.Env = "dev"
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8080"
	}
	if cfg.AMQPExchange == "" {
		cfg.AMQPExchange = "activity_events"
	}

	switch cfg.Env {
	case "dev", "prod", "test":
	default:
		return Config{}, errors.New("APP_ENV: must be one of dev, test, prod")
	}

	mode, err := scoring.ParseMode(getenv("APP_SCORING_MODE"))
	if err != nil {
		return Config{}, fmt.Errorf("APP_SCORING_MODE: %w", err)
	}
	cfg.ScoringMode = mode

	ttlRaw := getenv("APP_LOCK_TTL")
	if ttlRaw == "" {
		cfg.LockTTL = 10 * time.Second
	} else {
		ttl, err := time.ParseDuration(ttlRaw)
		if err != nil {
			return Config{}, fmt.Errorf("APP_LOCK_TTL: %w", err)
		}
		if ttl <= 0 {
			return Config{}, errors.New("APP_LOCK_TTL: must be > 0")
		}
		cfg.LockTTL = ttl
	}

	limitRaw := getenv("APP_LEADERBOARD_MAX_LIMIT")
	if limitRaw == "" {
		cfg.LeaderboardMaxLimit = 100
	} else {
		n, err := strconv.Atoi(limitRaw)
		if err != nil {
			return Config{}, fmt.Errorf("APP_LEADERBOARD_MAX_LIMIT: %w", err)
		}
		if n <= 0 {
			return Config{}, errors.New("APP_LEADERBOARD_MAX_LIMIT: must be > 0")
		}
		cfg.LeaderboardMaxLimit = n
	}

	if cfg.FCMCredentials == "" && cfg.FCMProjectID != "" {
		return Config{}, errors.New("APP_FCM_CREDENTIALS: required when APP_FCM_PROJECT_ID is set")
	}

	tlsMode, err := email.ParseTLSMode(getenv("APP_SMTP_TLS"))
	if err != nil {
		return Config{}, fmt.Errorf("APP_SMTP_TLS: %w", err)
	}
	cfg.SMTPTLS = tlsMode

	portRaw := getenv("APP_SMTP_PORT")
	if portRaw == "" {
		cfg.SMTPPort = 587
	} else {
		port, err := strconv.Atoi(portRaw)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, errors.New("APP_SMTP_PORT: must be a port number")
		}
		cfg.SMTPPort = port
	}
	if cfg.SMTPHost != "" && cfg.SMTPFrom == "" {
		return Config{}, errors.New("APP_SMTP_FROM: required when APP_SMTP_HOST is set")
	}

	if cfg.IsProd() && cfg.DBDSN == "" {
		return Config{}, errors.New("APP_DB_DSN: required in prod")
	}

	return cfg, nil
}

func (c Config) IsProd() bool { return c.Env == "prod" }

func (c Config) PushEnabled() bool { return c.FCMCredentials != "" }

func (c Config) MailEnabled() bool { return c.SMTPHost != "" }

// loadDotEnvFile copies non-empty values from a dotenv file into the
// environment. Variables that are already set win.
func loadDotEnvFile(path string, setenv func(string, string) error, getenv func(string) string) error {
	values, err := godotenv.Read(path)
	if err != nil {
		return err
	}
	for k, v := range values {
		if v == "" || getenv(k) != "" {
			continue
		}
		if err := setenv(k, v); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}
	return nil
}

func layered(getenv func(string) string, defaults map[string]string) func(string) string {
	return func(k string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return defaults[k]
	}
}
