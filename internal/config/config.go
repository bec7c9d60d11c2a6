package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/Freeeeeet/slotswap_bot/internal/service"
	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string `mapstructure:"TELEGRAM_TOKEN"`
	DBDSN         string `mapstructure:"DB_DSN"`
	Environment   string `mapstructure:"ENV"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`
	MigrationsDir string `mapstructure:"MIGRATIONS_DIR"`

	DBTimeout           time.Duration `mapstructure:"DB_TIMEOUT"`
	CompensationRetries uint64        `mapstructure:"COMPENSATION_RETRIES"`
	CompensationBackoff time.Duration `mapstructure:"COMPENSATION_BACKOFF"`
	AuditInterval       time.Duration `mapstructure:"AUDIT_INTERVAL"`
}

// Load читает .env (если есть) и переменные окружения
func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return FromEnv()
}

// FromEnv собирает конфиг из переменных окружения и проверяет его
func FromEnv() (*Config, error) {
	cfg := &Config{
		DBDSN:         os.Getenv("DB_DSN"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		Environment:   getString("ENV", "development"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		MigrationsDir: getString("MIGRATIONS_DIR", "."),
	}

	defaults := service.DefaultSwapConfig()

	var err error
	if cfg.DBTimeout, err = getDuration("DB_TIMEOUT", defaults.OpTimeout); err != nil {
		return nil, err
	}
	if cfg.CompensationRetries, err = getUint("COMPENSATION_RETRIES", defaults.CompensationRetries); err != nil {
		return nil, err
	}
	if cfg.CompensationBackoff, err = getDuration("COMPENSATION_BACKOFF", defaults.CompensationBackoff); err != nil {
		return nil, err
	}
	if cfg.AuditInterval, err = getDuration("AUDIT_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required but not set")
	}
	if cfg.AuditInterval <= 0 {
		return nil, fmt.Errorf("AUDIT_INTERVAL must be positive, got %s", cfg.AuditInterval)
	}

	return cfg, nil
}

// SwapConfig параметры протокола обмена
func (c *Config) SwapConfig() service.SwapConfig {
	cfg := service.DefaultSwapConfig()
	cfg.OpTimeout = c.DBTimeout
	cfg.CompensationRetries = c.CompensationRetries
	cfg.CompensationBackoff = c.CompensationBackoff
	return cfg
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: negative duration %s", key, d)
	}
	return d, nil
}

func getUint(key string, fallback uint64) (uint64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
