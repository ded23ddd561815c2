package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"lifeledger/internal/calendar/ics"
)

// Calendar providers.
const (
	CalendarNone   = "none"
	CalendarICS    = "ics"
	CalendarGoogle = "google"
)

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int
	ShutdownTimeout    time.Duration
	DefaultUserID      string

	// Logging
	LogLevel  string
	LogFormat string

	// Backend selection
	DataBackend  string
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// External calendar
	CalendarProvider     string
	ICSSources           string
	ICSCacheDir          string
	GoogleCalendarIDs    []string
	Timezone             string
	ExternalWindowMonths int
	CalendarCacheTTL     time.Duration
	CalendarCacheSize    int
	CalendarRefreshCron  string

	// Google OAuth, read by the google provider and oauth-init
	GoogleOAuthClientFile string
	GoogleOAuthTokenFile  string
	GoogleOAuthClientJSON string
	GoogleOAuthTokenJSON  string
}

func Load() *Config {
	cfg := &Config{
		Port:               getEnv("PORT", "8081"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		DefaultUserID:      getEnv("DEFAULT_USER_ID", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/lifeledger.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "lifeledger"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "record_changes"),

		CalendarProvider:     strings.ToLower(getEnv("CALENDAR_PROVIDER", CalendarNone)),
		ICSSources:           getEnv("ICS_SOURCES", ""),
		ICSCacheDir:          getEnv("ICS_CACHE_DIR", "./data/ics"),
		GoogleCalendarIDs:    getEnvList("GOOGLE_CALENDAR_IDS"),
		Timezone:             getEnv("TZ_NAME", "Asia/Seoul"),
		ExternalWindowMonths: getEnvInt("EXTERNAL_WINDOW_MONTHS", 6),
		CalendarCacheTTL:     getEnvDuration("CALENDAR_CACHE_TTL", 10*time.Minute),
		CalendarCacheSize:    getEnvInt("CALENDAR_CACHE_SIZE", 256),
		CalendarRefreshCron:  getEnv("CALENDAR_REFRESH_CRON", "*/15 * * * *"),

		GoogleOAuthClientFile: getEnv("GOOGLE_OAUTH_CLIENT_FILE", ""),
		GoogleOAuthTokenFile:  getEnv("GOOGLE_OAUTH_TOKEN_FILE", ""),
		GoogleOAuthClientJSON: getEnv("GOOGLE_OAUTH_CLIENT_JSON", ""),
		GoogleOAuthTokenJSON:  getEnv("GOOGLE_OAUTH_TOKEN_JSON", ""),
	}

	return cfg
}

// Location resolves Timezone, falling back to the local zone.
func (c *Config) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Timezone); err == nil {
		return loc
	}
	return time.Local
}

// Validate validates the configuration and returns an error listing every
// problem found.
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 per minute", c.RateLimitPerMinute))
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	// Validate data backend
	switch c.DataBackend {
	case "memory":
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of [memory sqlite]", c.DataBackend))
	}

	// AMQP is optional; when set it must be complete
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	switch c.CalendarProvider {
	case CalendarNone:
	case CalendarICS:
		sources, err := ics.ParseSources(c.ICSSources)
		switch {
		case err != nil:
			errors = append(errors, fmt.Sprintf("invalid ICS_SOURCES: %v", err))
		case len(sources) == 0:
			errors = append(errors, "ICS_SOURCES is required when using the ics calendar provider")
		}
	case CalendarGoogle:
		if c.GoogleOAuthClientFile == "" && c.GoogleOAuthClientJSON == "" &&
			os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON") == "" && os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE") == "" &&
			os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
			errors = append(errors, "google calendar provider needs GOOGLE_OAUTH_CLIENT_FILE, GOOGLE_OAUTH_CLIENT_JSON or service account credentials")
		}
		if c.GoogleOAuthClientFile != "" {
			if _, err := os.Stat(c.GoogleOAuthClientFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google OAuth client file does not exist: %s", c.GoogleOAuthClientFile))
			}
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid calendar provider '%s': must be one of [none ics google]", c.CalendarProvider))
	}

	if c.ExternalWindowMonths < 1 || c.ExternalWindowMonths > 24 {
		errors = append(errors, fmt.Sprintf("invalid external window %d: must be between 1 and 24 months", c.ExternalWindowMonths))
	}
	if c.CalendarCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid calendar cache TTL %v: must be at least 1 second", c.CalendarCacheTTL))
	}
	if c.CalendarCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid calendar cache size %d: must be at least 1", c.CalendarCacheSize))
	}
	if c.CalendarRefreshCron != "" {
		if _, err := cron.ParseStandard(c.CalendarRefreshCron); err != nil {
			errors = append(errors, fmt.Sprintf("invalid calendar refresh schedule '%s': %v", c.CalendarRefreshCron, err))
		}
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
