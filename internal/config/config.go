package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPAddr       string
	CORSOrigins    string
	LoginRateLimit int
	SecureCookies  bool

	DatabaseDriver string
	DatabaseURL    string

	Timezone string

	SessionSecret string
	SessionTTL    time.Duration

	AdminName     string
	AdminEmail    string
	AdminPassword string

	PageSize      int
	AllowRedecide bool

	TelegramToken       string
	TelegramAdminChatID int64

	LogLevel logrus.Level
}

var instance *Config
var once sync.Once

// GetConfig loads the process configuration once and exits on invalid values.
func GetConfig() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			logrus.Infof("no .env file loaded: %s", err.Error())
		}

		cfg, err := Load()
		if err != nil {
			logrus.Fatalf("invalid configuration: %s", err.Error())
		}
		instance = cfg
	})

	return instance
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:            getEnv("HTTP_ADDR", ":3000"),
		CORSOrigins:         getEnv("CORS_ORIGINS", "*"),
		LoginRateLimit:      int(getEnvAsInt("LOGIN_RATE_LIMIT", 10)),
		SecureCookies:       getEnvAsBool("SECURE_COOKIES", false),
		DatabaseDriver:      strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DatabaseURL:         getEnv("DATABASE_URL", "attendance.db?_foreign_keys=on"),
		Timezone:            getEnv("TIMEZONE", "America/Sao_Paulo"),
		SessionSecret:       getEnv("SESSION_SECRET", ""),
		SessionTTL:          time.Duration(getEnvAsInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		AdminName:           getEnv("ADMIN_NAME", "Administrador"),
		AdminEmail:          getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword:       getEnv("ADMIN_PASSWORD", "admin123"),
		PageSize:            int(getEnvAsInt("PAGE_SIZE", 10)),
		AllowRedecide:       getEnvAsBool("ALLOW_REDECIDE", false),
		TelegramToken:       getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramAdminChatID: getEnvAsInt("TELEGRAM_ADMIN_CHAT_ID", 0),
		LogLevel:            logrus.InfoLevel,
	}

	if cfg.SessionSecret == "" {
		return nil, errors.New("SESSION_SECRET is required")
	}

	if cfg.DatabaseDriver != "sqlite" && cfg.DatabaseDriver != "postgres" {
		return nil, errors.Errorf("unsupported DB_DRIVER %q", cfg.DatabaseDriver)
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	if cfg.SessionTTL <= 0 {
		return nil, errors.New("SESSION_TTL_HOURS must be positive")
	}

	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}

	if cfg.LoginRateLimit <= 0 {
		return nil, errors.New("LOGIN_RATE_LIMIT must be positive")
	}

	if cfg.TelegramToken != "" && cfg.TelegramAdminChatID == 0 {
		return nil, errors.New("TELEGRAM_ADMIN_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}

	if lvl := getEnv("LOG_LEVEL", ""); lvl != "" {
		parsed, err := logrus.ParseLevel(lvl)
		if err != nil {
			return nil, errors.Wrap(err, "invalid LOG_LEVEL")
		}
		cfg.LogLevel = parsed
	}

	return cfg, nil
}

// NotificationsEnabled reports whether a Telegram notifier should be started.
func (c *Config) NotificationsEnabled() bool {
	return c.TelegramToken != "" && c.TelegramAdminChatID != 0
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultVal
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsInt(name string, defaultVal int64) int64 {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseInt(valStr, 10, 64); err == nil {
		return val
	}

	return defaultVal
}
