// Package config loads the service settings from the environment, after
// merging an optional .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppEnv string

const (
	EnvDevelopment AppEnv = "development"
	EnvProduction  AppEnv = "production"
)

// DevJWTSecret is the fallback signing key. It is refused in production.
const DevJWTSecret = "dev-secret-change-me"

// Config holds every setting of the API server.
type Config struct {
	Addr     string
	Env      AppEnv
	LogLevel slog.Level

	DBDriver        string
	DatabaseURL     string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration
	SlowQuery       time.Duration
	LogQueryArgs    bool
	AutoMigrate     bool

	JWTSecret      string
	AccessTokenTTL time.Duration
	BcryptCost     int

	CORSOrigins []string
}

// IsProduction reports whether APP_ENV is "production".
func (c Config) IsProduction() bool { return c.Env == EnvProduction }

// Load reads .env files (if any) and then the process environment. Malformed
// values fall back to their defaults with a warning; only settings that make
// the service unsafe are errors.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load env file: %w", err)
	}

	cfg := Config{
		Addr:     GetString("API_ADDR", ":8000"),
		Env:      AppEnv(GetString("APP_ENV", string(EnvDevelopment))),
		LogLevel: parseLevel(GetString("LOG_LEVEL", "info")),

		DBDriver:        GetString("DB_DRIVER", "sqlite3"),
		DatabaseURL:     GetString("DATABASE_URL", "todo.db?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"),
		MaxOpenConns:    GetInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    GetInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: GetDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		QueryTimeout:    GetDuration("DB_QUERY_TIMEOUT", 5*time.Second),
		SlowQuery:       GetDuration("DB_SLOW_QUERY", 200*time.Millisecond),
		LogQueryArgs:    GetBool("DB_LOG_ARGS", false),
		AutoMigrate:     GetBool("DB_AUTO_MIGRATE", true),

		JWTSecret:      GetString("JWT_SECRET", DevJWTSecret),
		AccessTokenTTL: GetDuration("ACCESS_TOKEN_TTL", 30*time.Minute),
		BcryptCost:     GetInt("BCRYPT_COST", 10),

		CORSOrigins: splitList(GetString("CORS_ORIGINS", "*")),
	}

	switch cfg.Env {
	case EnvDevelopment, EnvProduction:
	default:
		return Config{}, fmt.Errorf("config: APP_ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, cfg.Env)
	}
	switch cfg.DBDriver {
	case "postgres", "pgx", "sqlite3":
	default:
		return Config{}, fmt.Errorf("config: DB_DRIVER must be postgres, pgx or sqlite3, got %q", cfg.DBDriver)
	}
	if cfg.IsProduction() && (cfg.JWTSecret == "" || cfg.JWTSecret == DevJWTSecret) {
		return Config{}, errors.New("config: JWT_SECRET must be set in production")
	}
	if cfg.IsProduction() && cfg.LogQueryArgs {
		slog.Warn("config: DB_LOG_ARGS is on in production; statement arguments include emails and password digests")
	}
	if cfg.AccessTokenTTL <= 0 {
		return Config{}, errors.New("config: ACCESS_TOKEN_TTL must be positive")
	}
	return cfg, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Environment helpers
// ─────────────────────────────────────────────────────────────────────────────

func GetString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func GetInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			slog.Warn("config: env must be an integer, using fallback", "key", key, "value", val, "fallback", fallback)
			return fallback
		}
		return i
	}
	return fallback
}

func GetDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			slog.Warn("config: env must be a duration, using fallback", "key", key, "value", val, "fallback", fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func GetBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			slog.Warn("config: env must be a boolean, using fallback", "key", key, "value", val, "fallback", fallback)
			return fallback
		}
		return b
	}
	return fallback
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
			out = append(out, o)
		}
	}
	return out
}
