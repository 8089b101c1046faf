package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Source backends
const (
	BackendSheets = "sheets"
	BackendBucket = "bucket"
)

// ScheduleOff disables a scheduled sending
const ScheduleOff = "off"

// Config holds all configuration for the application
type Config struct {
	// Server settings
	Port string `json:"port"`
	Host string `json:"host"`

	// Workbook settings
	SourceBackend   string `json:"source_backend"` // "sheets" or "bucket"
	SpreadsheetID   string `json:"spreadsheet_id"`
	SourceBucket    string `json:"source_bucket"`
	SourcePrefix    string `json:"source_prefix"`
	CredentialsFile string `json:"-"` // Don't expose in JSON

	// Mail settings
	OwnerEmail    string `json:"-"`
	SenderName    string `json:"sender_name"`
	SenderAddress string `json:"-"`

	// Slack settings
	SlackBotToken string `json:"-"` // Don't expose in JSON
	SlackChannel  string `json:"slack_channel"`

	// Schedules, standard cron specs
	OwnerSchedule      string `json:"owner_schedule"`
	SubscriberSchedule string `json:"subscriber_schedule"`

	// Cache settings
	CacheDuration int `json:"cache_duration"` // in hours

	// Subscription intake
	IntakeLockTimeoutSeconds int `json:"intake_lock_timeout_seconds"`
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	config := &Config{
		Port:                     getEnvOrDefault("PORT", "8080"),
		Host:                     getEnvOrDefault("HOST", "0.0.0.0"),
		SourceBackend:            getEnvOrDefault("SOURCE_BACKEND", BackendSheets),
		SpreadsheetID:            getEnvOrDefault("SPREADSHEET_ID", ""),
		SourceBucket:             getEnvOrDefault("SOURCE_BUCKET", ""),
		SourcePrefix:             getEnvOrDefault("SOURCE_PREFIX", ""),
		CredentialsFile:          getEnvOrDefault("GOOGLE_CREDENTIALS_FILE", ""),
		OwnerEmail:               getEnvOrDefault("OWNER_EMAIL", ""),
		SenderName:               getEnvOrDefault("SENDER_NAME", "Article SRS bot"),
		SenderAddress:            getEnvOrDefault("SENDER_ADDRESS", ""),
		SlackBotToken:            getEnvOrDefault("SLACK_BOT_TOKEN", ""),
		SlackChannel:             getEnvOrDefault("SLACK_CHANNEL", "#general"),
		OwnerSchedule:            getEnvOrDefault("OWNER_SCHEDULE", ScheduleOff),
		SubscriberSchedule:       getEnvOrDefault("SUBSCRIBER_SCHEDULE", "0 4 * * *"),
		CacheDuration:            getEnvOrDefaultInt("CACHE_DURATION_HOURS", 1),
		IntakeLockTimeoutSeconds: getEnvOrDefaultInt("INTAKE_LOCK_TIMEOUT_SECONDS", 10),
	}

	return config, config.validate()
}

// validate checks if required configuration values are present
func (c *Config) validate() error {
	switch c.SourceBackend {
	case BackendSheets:
		if c.SpreadsheetID == "" {
			return &ConfigError{Field: "SPREADSHEET_ID", Message: "spreadsheet ID is required"}
		}
	case BackendBucket:
		if c.SourceBucket == "" {
			return &ConfigError{Field: "SOURCE_BUCKET", Message: "bucket name is required for the bucket backend"}
		}
	default:
		return &ConfigError{Field: "SOURCE_BACKEND", Message: "must be 'sheets' or 'bucket'"}
	}

	if c.OwnerSchedule != ScheduleOff && c.OwnerEmail == "" {
		return &ConfigError{Field: "OWNER_EMAIL", Message: "owner email is required when OWNER_SCHEDULE is set"}
	}
	if err := validateSchedule("OWNER_SCHEDULE", c.OwnerSchedule); err != nil {
		return err
	}
	if err := validateSchedule("SUBSCRIBER_SCHEDULE", c.SubscriberSchedule); err != nil {
		return err
	}

	if c.CacheDuration <= 0 {
		return &ConfigError{Field: "CACHE_DURATION_HOURS", Message: "must be positive"}
	}
	if c.IntakeLockTimeoutSeconds <= 0 {
		return &ConfigError{Field: "INTAKE_LOCK_TIMEOUT_SECONDS", Message: "must be positive"}
	}
	return nil
}

// CacheTTL returns how long a rendered preview stays cached
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheDuration) * time.Hour
}

// IntakeLockTimeout returns how long a subscription waits for the intake lock
func (c *Config) IntakeLockTimeout() time.Duration {
	return time.Duration(c.IntakeLockTimeoutSeconds) * time.Second
}

// SlackEnabled reports whether digest notifications go to Slack
func (c *Config) SlackEnabled() bool {
	return c.SlackBotToken != ""
}

func validateSchedule(field, spec string) error {
	if spec == ScheduleOff {
		return nil
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return &ConfigError{Field: field, Message: "invalid cron spec: " + err.Error()}
	}
	return nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default if not set
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
