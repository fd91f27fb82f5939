package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

// Defaults applied when the ini file omits a key.
const (
	DefaultHost               = "api.sparkpost.com"
	DefaultProperties         = "recipient,type,description"
	DefaultTimezone           = "UTC"
	DefaultBatchSize          = 10000
	DefaultDeleteThreads      = 10
	DefaultEncodings          = "utf-8,utf-16,ascii,latin-1"
	DefaultTypeDefault        = "non_transactional"
	DefaultDescriptionDefault = "sparkysuppress import"
	DefaultSnoozeSeconds      = 10
	DefaultTimeoutSeconds     = 60
)

// Config holds all configuration for the tool. It is built once at
// startup and passed by value into every component.
type Config struct {
	APIKey             string
	Host               string
	Properties         []string
	TimezoneName       string
	BatchSize          int
	DeleteThreads      int
	Subaccount         int
	SubaccountSet      bool
	Encodings          []string
	TypeDefault        string
	DescriptionDefault string
	SnoozeSeconds      int
	TimeoutSeconds     int
}

// BaseURL returns the API root derived from Host.
func (c Config) BaseURL() string {
	return "https://" + c.Host + "/api/v1"
}

// Snooze returns the rate-limit wait as a duration.
func (c Config) Snooze() time.Duration {
	return time.Duration(c.SnoozeSeconds) * time.Second
}

// Timeout returns the per-request HTTP timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Location resolves the configured timezone name.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimezoneName)
	if err != nil {
		return nil, fmt.Errorf("unknown Timezone %q: %w", c.TimezoneName, err)
	}
	return loc, nil
}

// Load reads and parses the ini configuration file. Recognized keys live
// in the [SparkPost] section, matching the file format the SparkPost
// suppression UI documents.
func Load(path string) (Config, error) {
	var cfg Config

	f, err := ini.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	sec := f.Section("SparkPost")

	cfg.APIKey = sec.Key("Authorization").String()
	cfg.Host = sec.Key("Host").MustString(DefaultHost)
	cfg.Properties = splitList(sec.Key("Properties").MustString(DefaultProperties))
	cfg.TimezoneName = sec.Key("Timezone").MustString(DefaultTimezone)
	cfg.BatchSize = sec.Key("BatchSize").MustInt(DefaultBatchSize)
	cfg.DeleteThreads = sec.Key("DeleteThreads").MustInt(DefaultDeleteThreads)
	cfg.Encodings = splitList(sec.Key("FileCharacterEncodings").MustString(DefaultEncodings))
	cfg.TypeDefault = sec.Key("TypeDefault").MustString(DefaultTypeDefault)
	cfg.DescriptionDefault = sec.Key("DescriptionDefault").MustString(DefaultDescriptionDefault)
	cfg.SnoozeSeconds = sec.Key("SnoozeTime").MustInt(DefaultSnoozeSeconds)
	cfg.TimeoutSeconds = sec.Key("Timeout").MustInt(DefaultTimeoutSeconds)

	if sec.HasKey("Subaccount") {
		sub, err := sec.Key("Subaccount").Int()
		if err != nil {
			return cfg, fmt.Errorf("invalid Subaccount value %q", sec.Key("Subaccount").String())
		}
		cfg.Subaccount = sub
		cfg.SubaccountSet = true
	}

	return cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// A .env file (if present) is loaded first, so the API key can live in
// .env locally and in real env vars on a scheduler host.
func LoadFromEnv(path string) (Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}

	if apiKey := os.Getenv("SPARKPOST_API_KEY"); apiKey != "" {
		cfg.APIKey = apiKey
	}
	if host := os.Getenv("SPARKPOST_HOST"); host != "" {
		cfg.Host = host
	}

	return cfg, cfg.Validate()
}

// Validate reports the first fatal configuration problem. All of these
// abort the run before any file or network activity.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("missing Authorization in config (or SPARKPOST_API_KEY)")
	}
	if c.Host == "" || strings.ContainsAny(c.Host, "/: ") {
		return fmt.Errorf("malformed Host %q: expected a bare hostname", c.Host)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("BatchSize must be positive, got %d", c.BatchSize)
	}
	if c.DeleteThreads <= 0 {
		return fmt.Errorf("DeleteThreads must be positive, got %d", c.DeleteThreads)
	}
	if c.SnoozeSeconds <= 0 {
		return fmt.Errorf("SnoozeTime must be positive, got %d", c.SnoozeSeconds)
	}
	if c.TypeDefault != "transactional" && c.TypeDefault != "non_transactional" {
		return fmt.Errorf("TypeDefault must be transactional or non_transactional, got %q", c.TypeDefault)
	}
	if len(c.Encodings) == 0 {
		return fmt.Errorf("FileCharacterEncodings must list at least one encoding")
	}
	if len(c.Properties) == 0 {
		return fmt.Errorf("Properties must list at least one column")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// splitList parses a comma-separated config value, trimming whitespace
// and any stray CR/LF the ini file may carry.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
