package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config application configuration
type Config struct {
	// Telegram
	TelegramToken string `env:"TELEGRAM_BOT_TOKEN,required"`

	// Credentials (shared secret with the mail backend that issues them)
	CredentialSecret string `env:"CREDENTIAL_SECRET,required"`

	// Key-value store
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Mail archive
	ArchivePath string `env:"ARCHIVE_PATH" envDefault:"./data/mailgate.db"`

	// Localization
	DefaultLang   string `env:"DEFAULT_LANG" envDefault:"zh"`
	AllowUserLang bool   `env:"ALLOW_USER_LANG" envDefault:"false"`

	// Address info shown in /start
	AddressPrefix string   `env:"ADDRESS_PREFIX"`
	MailDomains   []string `env:"MAIL_DOMAINS" envSeparator:","`

	// Upstream mail admin API (optional)
	MailAPIURL string `env:"MAIL_API_URL"`
	MailAPIKey string `env:"MAIL_API_KEY"`

	// Catch-all IMAP ingest (optional)
	IMAPServer       string        `env:"IMAP_SERVER"` // host:port
	IMAPUser         string        `env:"IMAP_USER"`
	IMAPPassword     string        `env:"IMAP_PASSWORD"`
	IMAPDialTimeout  time.Duration `env:"IMAP_DIAL_TIMEOUT" envDefault:"30s"`
	IMAPPollInterval time.Duration `env:"IMAP_POLL_INTERVAL" envDefault:"15s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
}

// MailAPIEnabled returns true if the upstream admin API is configured
func (c *Config) MailAPIEnabled() bool {
	return c.MailAPIURL != "" && c.MailAPIKey != ""
}

// IngestEnabled returns true if the catch-all IMAP listener is configured
func (c *Config) IngestEnabled() bool {
	return c.IMAPServer != "" && c.IMAPUser != "" && c.IMAPPassword != ""
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.DefaultLang != "zh" && cfg.DefaultLang != "en" {
		return nil, fmt.Errorf("DEFAULT_LANG must be zh or en, got %q", cfg.DefaultLang)
	}

	return cfg, nil
}
