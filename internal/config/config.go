package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rupeetrack/rupeetrack-bfa-go/internal/format"
)

// Page source kinds.
const (
	SourceHTTP = "http"
	SourceFile = "file"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Page source
	PageSource string // http | file
	PageURL    string // base URL of the tracker
	PagePath   string // dashboard path on PageURL
	PageFile   string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int // concurrent PNG renders

	// View store
	ViewTTL time.Duration

	// Currency rule for tables and chart axes
	CurrencySymbol string
	CurrencyLocale string

	// Observability
	OTLPEndpoint string // empty disables trace export
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		PageSource: getEnv("PAGE_SOURCE", SourceHTTP),
		PageURL:    getEnv("PAGE_URL", "http://localhost:5000"),
		PagePath:   getEnv("PAGE_PATH", "/"),
		PageFile:   getEnv("PAGE_FILE", "dashboard.html"),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 4),

		ViewTTL: getEnvDuration("VIEW_TTL", 30*time.Minute),

		CurrencySymbol: getEnv("CURRENCY_SYMBOL", format.DefaultCurrency.Symbol),
		CurrencyLocale: getEnv("CURRENCY_LOCALE", format.DefaultCurrency.Locale),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
}

// Currency builds the currency rule from the configured symbol and locale.
func (c *Config) Currency() (format.Currency, error) {
	return format.NewCurrency(c.CurrencySymbol, c.CurrencyLocale)
}

// PageEndpoint joins PageURL and PagePath.
func (c *Config) PageEndpoint() string {
	return strings.TrimRight(c.PageURL, "/") + "/" + strings.TrimLeft(c.PagePath, "/")
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	switch c.PageSource {
	case SourceHTTP:
		if c.PageURL == "" {
			errs = append(errs, errors.New("PAGE_URL is required when PAGE_SOURCE=http"))
		}
	case SourceFile:
		if c.PageFile == "" {
			errs = append(errs, errors.New("PAGE_FILE is required when PAGE_SOURCE=file"))
		}
	default:
		errs = append(errs, fmt.Errorf("PAGE_SOURCE %q must be %s or %s", c.PageSource, SourceHTTP, SourceFile))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, errors.New("MAX_RETRIES must not be negative"))
	}
	if c.ViewTTL <= 0 {
		errs = append(errs, errors.New("VIEW_TTL must be positive"))
	}
	if _, err := c.Currency(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
