package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// 存储驱动
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config 服务运行配置，全部来自环境变量
type Config struct {
	Port          string
	StoreDriver   string
	DatabaseURL   string
	SessionSecret string

	// CivicTimezone 决定“今天”的边界，以及无时区时间戳的解释方式
	CivicTimezone string

	LogLevel  string
	LogFormat string

	FetchTimeout     time.Duration
	FetchConcurrency int
	TermHorizonDays  int
	SnapshotCacheTTL time.Duration

	LLMBaseURL     string
	LLMToken       string
	LLMModel       string
	AITimeout      time.Duration
	AISystemUserID string

	BriefRefreshHour int
}

// Load 读取 .env（可选）和环境变量
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, reading config from environment")
	}

	cfg := Config{
		Port:             envStr("PORT", "8080"),
		StoreDriver:      envStr("STORE_DRIVER", DriverPostgres),
		DatabaseURL:      envStr("DATABASE_URL", ""),
		SessionSecret:    envStr("SESSION_SECRET", "civicpulse_change_me"),
		CivicTimezone:    envStr("CIVIC_TIMEZONE", "Asia/Kolkata"),
		LogLevel:         envStr("LOG_LEVEL", "info"),
		LogFormat:        envStr("LOG_FORMAT", "json"),
		FetchTimeout:     envDuration("FETCH_TIMEOUT", 3*time.Second),
		FetchConcurrency: envInt("FETCH_CONCURRENCY", 8),
		TermHorizonDays:  envInt("TERM_HORIZON_DAYS", 30),
		SnapshotCacheTTL: envDuration("SNAPSHOT_CACHE_TTL", time.Minute),
		LLMBaseURL:       envStr("LLM_BASE_URL", ""),
		LLMToken:         envStr("LLM_TOKEN", ""),
		LLMModel:         envStr("LLM_MODEL", "gpt-4o-mini"),
		AITimeout:        envDuration("AI_TIMEOUT", 20*time.Second),
		AISystemUserID:   envStr("AI_SYSTEM_USER_ID", "00000000-0000-0000-0000-000000000000"),
		BriefRefreshHour: envInt("BRIEF_REFRESH_HOUR", 3),
	}
	return cfg, cfg.Validate()
}

// Validate 检查配置组合是否可用
func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.FetchTimeout <= 0 {
		return errors.New("config: FETCH_TIMEOUT must be positive")
	}
	if c.FetchConcurrency <= 0 {
		return errors.New("config: FETCH_CONCURRENCY must be positive")
	}
	if c.TermHorizonDays < 0 {
		return errors.New("config: TERM_HORIZON_DAYS must not be negative")
	}
	if c.AITimeout <= 0 {
		return errors.New("config: AI_TIMEOUT must be positive")
	}
	if c.BriefRefreshHour < 0 || c.BriefRefreshHour > 23 {
		return errors.New("config: BRIEF_REFRESH_HOUR must be between 0 and 23")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location 返回公民时区
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.CivicTimezone)
	if err != nil {
		return nil, fmt.Errorf("config: CIVIC_TIMEZONE %q: %w", c.CivicTimezone, err)
	}
	return loc, nil
}

// AIEnabled reports whether an LLM endpoint is configured.
func (c Config) AIEnabled() bool {
	return c.LLMToken != ""
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
