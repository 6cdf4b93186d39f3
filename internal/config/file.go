package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

// fileSchema is the YAML layout accepted through APP_CONFIG_FILE. Values act
// as defaults; the matching APP_* variable overrides each one.
type fileSchema struct {
	Env      string `yaml:"env"`
	Addr     string `yaml:"addr"`
	DBDSN    string `yaml:"db_dsn"`
	LogLevel string `yaml:"log_level"`
	SeedFile string `yaml:"seed_file"`
	Redis    struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		LockTTL  string `yaml:"lock_ttl"`
	} `yaml:"redis"`
	AMQP struct {
		URL      string `yaml:"url"`
		Exchange string `yaml:"exchange"`
	} `yaml:"amqp"`
	Scoring struct {
		Mode string `yaml:"mode"`
	} `yaml:"scoring"`
	Leaderboard struct {
		MaxLimit int `yaml:"max_limit"`
	} `yaml:"leaderboard"`
	FCM struct {
		ProjectID   string `yaml:"project_id"`
		Credentials string `yaml:"credentials"`
	} `yaml:"fcm"`
	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		TLS      string `yaml:"tls"`
		From     string `yaml:"from"`
		FromName string `yaml:"from_name"`
	} `yaml:"smtp"`
}

func readConfigFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fileSchema
	if err := yaml.UnmarshalStrict(raw, &f); err != nil {
		return nil, err
	}

	out := map[string]string{
		"APP_ENV":             f.Env,
		"APP_ADDR":            f.Addr,
		"APP_DB_DSN":          f.DBDSN,
		"APP_LOG_LEVEL":       f.LogLevel,
		"APP_SEED_FILE":       f.SeedFile,
		"APP_REDIS_ADDR":      f.Redis.Addr,
		"APP_REDIS_PASSWORD":  f.Redis.Password,
		"APP_LOCK_TTL":        f.Redis.LockTTL,
		"APP_AMQP_URL":        f.AMQP.URL,
		"APP_AMQP_EXCHANGE":   f.AMQP.Exchange,
		"APP_SCORING_MODE":    f.Scoring.Mode,
		"APP_FCM_PROJECT_ID":  f.FCM.ProjectID,
		"APP_FCM_CREDENTIALS": f.FCM.Credentials,
		"APP_SMTP_HOST":       f.SMTP.Host,
		"APP_SMTP_USERNAME":   f.SMTP.Username,
		"APP_SMTP_PASSWORD":   f.SMTP.Password,
		"APP_SMTP_TLS":        f.SMTP.TLS,
		"APP_SMTP_FROM":       f.SMTP.From,
		"APP_SMTP_FROM_NAME":  f.SMTP.FromName,
	}
	if f.Leaderboard.MaxLimit != 0 {
		out["APP_LEADERBOARD_MAX_LIMIT"] = strconv.Itoa(f.Leaderboard.MaxLimit)
	}
	if f.SMTP.Port != 0 {
		out["APP_SMTP_PORT"] = strconv.Itoa(f.SMTP.Port)
	}
	return out, nil
}
