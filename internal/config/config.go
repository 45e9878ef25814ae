package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	ShopifyStoreURL      string `env:"SHOPIFY_STORE_URL,required" validate:"required"`
	ShopifyAPIToken      string `env:"SHOPIFY_API_TOKEN,required" validate:"required"`
	ShopifyWebhookSecret string `env:"SHOPIFY_WEBHOOK_SECRET,required" validate:"required"`

	PrintNodeAPIKey            string `env:"PRINTNODE_API_KEY"`
	PrintNodeInvoicePrinterID  int64  `env:"PRINTNODE_INVOICE_PRINTER_ID" validate:"gte=0"`
	PrintNodeGiftCardPrinterID int64  `env:"PRINTNODE_GIFTCARD_PRINTER_ID" validate:"gte=0"`

	CacheProvider         string        `env:"CACHE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	RedisConnectionString string        `env:"REDIS_CONNECTION_STRING" envDefault:"redis://localhost:6379/0" validate:"required_if=CacheProvider redis"`
	WebhookDedupTTL       time.Duration `env:"WEBHOOK_DEDUP_TTL" envDefault:"24h" validate:"gt=0"`
	RecentOrdersCapacity  int           `env:"RECENT_ORDERS_CAPACITY" envDefault:"200" validate:"gt=0,lte=10000"`

	ShopProfilePath string        `env:"SHOP_PROFILE_PATH"`
	ChromePath      string        `env:"CHROME_PATH"`
	PDFTimeout      time.Duration `env:"PDF_TIMEOUT" envDefault:"30s" validate:"gt=0"`
	PrintTimeout    time.Duration `env:"PRINT_TIMEOUT" envDefault:"2m" validate:"gt=0"`

	ResendAPIKey   string   `env:"RESEND_API_KEY"`
	AlertEmailFrom string   `env:"ALERT_EMAIL_FROM" validate:"omitempty,email"`
	AlertEmailTo   []string `env:"ALERT_EMAIL_TO" envSeparator:"," validate:"dive,email"`

	SentryDSN string `env:"SENTRY_DSN" validate:"omitempty,url"`

	BaseURL   string     `env:"BASE_URL" validate:"omitempty,url"`
	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"text" validate:"omitempty,oneof=text json"`
	Port      string     `env:"PORT" envDefault:"8080"`
}

var configValidator = validator.New()

// Load reads .env files (when present) and then the process environment.
// Variables already set in the environment win over .env values.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// PrintingEnabled reports whether print jobs can reach PrintNode.
func (c *Config) PrintingEnabled() bool {
	return strings.TrimSpace(c.PrintNodeAPIKey) != "" && c.PrintNodeInvoicePrinterID != 0
}

// AlertsEnabled reports whether print failures are emailed.
func (c *Config) AlertsEnabled() bool {
	return strings.TrimSpace(c.ResendAPIKey) != ""
}

func (c *Config) validate() error {
	if err := configValidator.Struct(c); err != nil {
		return err
	}

	hasPrinter := c.PrintNodeInvoicePrinterID != 0 || c.PrintNodeGiftCardPrinterID != 0
	if hasPrinter && strings.TrimSpace(c.PrintNodeAPIKey) == "" {
		return fmt.Errorf("PRINTNODE_API_KEY is required when a printer id is set")
	}

	if c.AlertsEnabled() && (strings.TrimSpace(c.AlertEmailFrom) == "" || len(c.AlertEmailTo) == 0) {
		return fmt.Errorf("ALERT_EMAIL_FROM and ALERT_EMAIL_TO are required when RESEND_API_KEY is set")
	}

	baseURL := strings.TrimSpace(c.BaseURL)
	if baseURL != "" {
		parsed, err := url.Parse(baseURL)
		if err != nil || parsed.Hostname() == "" {
			return fmt.Errorf("BASE_URL must be a valid absolute URL")
		}
		if !isLocalHost(parsed.Hostname()) && !strings.EqualFold(parsed.Scheme, "https") {
			return fmt.Errorf("BASE_URL must use https outside local development")
		}
	}

	return nil
}

func isLocalHost(host string) bool {
	switch strings.ToLower(strings.TrimSpace(host)) {
	case "localhost", "127.0.0.1", "::1":
		return true
	default:
		return false
	}
}
