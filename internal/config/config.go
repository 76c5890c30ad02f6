package config

import (
	"os"
	"strconv"
	"sync"
	"time"
)

// Config holds application configuration from environment.
type Config struct {
	HTTPPort         string
	DatabasePath     string
	HistoryPath      string
	RedisURL         string
	RedisPoolSize    int
	CacheTTL         int // seconds
	ReminderFrom     string
	ReminderInterval time.Duration // 0 disables the scheduled bulk send
}

var (
	cfg     *Config
	cfgOnce sync.Once
)

// Get returns the application config (loads once from env).
func Get() *Config {
	cfgOnce.Do(func() {
		cfg = &Config{
			HTTPPort:         getEnv("HTTP_PORT", "8080"),
			DatabasePath:     getEnv("DATABASE_PATH", "todo.db"),
			HistoryPath:      getEnv("EMAIL_HISTORY_PATH", "email_history.json"),
			RedisURL:         os.Getenv("REDIS_URL"),
			RedisPoolSize:    getIntEnv("REDIS_POOL_SIZE", 10),
			CacheTTL:         getIntEnv("CACHE_TTL_SEC", 300),
			ReminderFrom:     getEnv("REMINDER_FROM", "tasker@example.com"),
			ReminderInterval: parseIntervalHours(os.Getenv("REMINDER_INTERVAL_HOURS")),
		}
	})
	return cfg
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func parseIntervalHours(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}
