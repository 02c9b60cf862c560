package core

import (
	"net/url"
	"slices"
	"strings"
	"time"
)

const (
	DefaultShortcutBaseURL       = "https://api.app.shortcut.com/api/v3"
	DefaultSlackBaseURL          = "https://slack.com/api"
	DefaultNeedsTestingChannel   = "shortcut-needs-testing"
	DefaultUATNotApprovedChannel = "shortcut-uat-not-approved"
	DefaultSignatureHeader       = "Payload-Signature"
	defaultRequestTimeoutSeconds = 30
	defaultReportCacheTTLSeconds = 300
	DatabaseDriverSQLite         = "sqlite3"
	DatabaseDriverPostgres       = "postgres"
	defaultDatabaseDSN           = "file:messenger.db?cache=shared&_foreign_keys=on"
	defaultHTTPAddr              = ":8080"
	defaultLogLevel              = "info"
	defaultServiceName           = "messenger"
)

type ShortcutConfig struct {
	Token           string `koanf:"token" mapstructure:"token"`
	Secret          string `koanf:"secret" mapstructure:"secret"`
	BaseURL         string `koanf:"base_url" mapstructure:"base_url"`
	SignatureHeader string `koanf:"signature_header" mapstructure:"signature_header"`
}

type SlackConfig struct {
	Token                 string `koanf:"token" mapstructure:"token"`
	BaseURL               string `koanf:"base_url" mapstructure:"base_url"`
	NeedsTestingChannel   string `koanf:"needs_testing_channel" mapstructure:"needs_testing_channel"`
	UATNotApprovedChannel string `koanf:"uat_not_approved_channel" mapstructure:"uat_not_approved_channel"`
}

type DatabaseConfig struct {
	Driver          string `koanf:"driver" mapstructure:"driver"`
	DSN             string `koanf:"dsn" mapstructure:"dsn"`
	Debug           bool   `koanf:"debug" mapstructure:"debug"`
	CacheTTLSeconds int    `koanf:"cache_ttl_seconds" mapstructure:"cache_ttl_seconds"`
}

type HTTPConfig struct {
	Addr string `koanf:"addr" mapstructure:"addr"`
}

type LogConfig struct {
	Level       string `koanf:"level" mapstructure:"level"`
	Development bool   `koanf:"development" mapstructure:"development"`
}

type Config struct {
	ServiceName           string         `koanf:"service_name" mapstructure:"service_name"`
	RequestTimeoutSeconds int            `koanf:"request_timeout_seconds" mapstructure:"request_timeout_seconds"`
	Shortcut              ShortcutConfig `koanf:"shortcut" mapstructure:"shortcut"`
	Slack                 SlackConfig    `koanf:"slack" mapstructure:"slack"`
	Database              DatabaseConfig `koanf:"database" mapstructure:"database"`
	HTTP                  HTTPConfig     `koanf:"http" mapstructure:"http"`
	Log                   LogConfig      `koanf:"log" mapstructure:"log"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName:           defaultServiceName,
		RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
		Shortcut: ShortcutConfig{
			BaseURL:         DefaultShortcutBaseURL,
			SignatureHeader: DefaultSignatureHeader,
		},
		Slack: SlackConfig{
			BaseURL:               DefaultSlackBaseURL,
			NeedsTestingChannel:   DefaultNeedsTestingChannel,
			UATNotApprovedChannel: DefaultUATNotApprovedChannel,
		},
		Database: DatabaseConfig{
			Driver:          DatabaseDriverSQLite,
			DSN:             defaultDatabaseDSN,
			CacheTTLSeconds: defaultReportCacheTTLSeconds,
		},
		HTTP: HTTPConfig{Addr: defaultHTTPAddr},
		Log:  LogConfig{Level: defaultLogLevel},
	}
}

// Validate checks structural settings only. Credentials are checked by the
// components that need them, see RequireShortcutToken and RequireSlackToken.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return NewConfigError("service_name", "is required")
	}
	if c.RequestTimeoutSeconds < 0 {
		return NewConfigError("request_timeout_seconds", "must not be negative")
	}
	if err := validateBaseURL("shortcut.base_url", c.Shortcut.BaseURL); err != nil {
		return err
	}
	if err := validateBaseURL("slack.base_url", c.Slack.BaseURL); err != nil {
		return err
	}
	driver := strings.TrimSpace(c.Database.Driver)
	if driver != "" && !slices.Contains([]string{DatabaseDriverSQLite, DatabaseDriverPostgres}, driver) {
		return NewConfigError("database.driver", "must be sqlite3 or postgres")
	}
	if c.Database.CacheTTLSeconds < 0 {
		return NewConfigError("database.cache_ttl_seconds", "must not be negative")
	}
	return nil
}

func (c Config) RequireShortcutToken() error {
	if strings.TrimSpace(c.Shortcut.Token) == "" {
		return NewConfigError("shortcut.token", "SHORTCUT_TOKEN is required")
	}
	return nil
}

func (c Config) RequireSlackToken() error {
	if strings.TrimSpace(c.Slack.Token) == "" {
		return NewConfigError("slack.token", "SLACK_BOT_TOKEN is required")
	}
	return nil
}

func (c Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return defaultRequestTimeoutSeconds * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c Config) ReportCacheTTL() time.Duration {
	return time.Duration(c.Database.CacheTTLSeconds) * time.Second
}

func validateBaseURL(field string, value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return NewConfigError(field, "must be an absolute url")
	}
	return nil
}
