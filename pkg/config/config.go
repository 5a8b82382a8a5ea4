// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/David-Botos/datahub/pkg/identifier"
	"github.com/David-Botos/datahub/pkg/report"
)

// Config represents the application configuration
type Config struct {
	// Identifier detection
	IDFragments []string

	// Report layout
	ReportRowCap     int
	ReportValueWidth int

	// Batch settings
	MaxFiles int // 0 means no limit

	// Notifications
	NotifyRecipient string

	// Logging
	LogLevel  string
	LogFormat string
}

// fileConfig is the optional YAML overlay
type fileConfig struct {
	Identifier struct {
		Fragments []string `yaml:"fragments"`
	} `yaml:"identifier"`
	Report struct {
		RowCap     *int `yaml:"row_cap"`
		ValueWidth *int `yaml:"value_width"`
	} `yaml:"report"`
	Notify struct {
		Recipient string `yaml:"recipient"`
	} `yaml:"notify"`
	MaxFiles *int `yaml:"max_files"`
}

// Default returns the built-in configuration
func Default() *Config {
	opts := report.DefaultOptions()
	return &Config{
		IDFragments:      append([]string(nil), identifier.DefaultFragments...),
		ReportRowCap:     opts.RowCap,
		ReportValueWidth: opts.ValueWidth,
		MaxFiles:         0,
		NotifyRecipient:  report.DefaultRecipient,
		LogLevel:         "info",
		LogFormat:        "json",
	}
}

// LoadDotEnv loads variables from .env files that exist; missing files are ignored
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// LoadConfig builds the configuration from defaults, the YAML file named by
// DATAHUB_CONFIG (if any) and environment variables, in increasing priority
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("DATAHUB_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	cfg.IDFragments = getEnvAsStringSlice("DATAHUB_ID_FRAGMENTS", cfg.IDFragments)
	cfg.ReportRowCap = getEnvAsInt("DATAHUB_REPORT_ROW_CAP", cfg.ReportRowCap)
	cfg.ReportValueWidth = getEnvAsInt("DATAHUB_REPORT_VALUE_WIDTH", cfg.ReportValueWidth)
	cfg.MaxFiles = getEnvAsInt("DATAHUB_MAX_FILES", cfg.MaxFiles)
	cfg.NotifyRecipient = getEnv("DATAHUB_NOTIFY_RECIPIENT", cfg.NotifyRecipient)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if len(fc.Identifier.Fragments) > 0 {
		c.IDFragments = fc.Identifier.Fragments
	}
	if fc.Report.RowCap != nil {
		c.ReportRowCap = *fc.Report.RowCap
	}
	if fc.Report.ValueWidth != nil {
		c.ReportValueWidth = *fc.Report.ValueWidth
	}
	if fc.Notify.Recipient != "" {
		c.NotifyRecipient = fc.Notify.Recipient
	}
	if fc.MaxFiles != nil {
		c.MaxFiles = *fc.MaxFiles
	}
	return nil
}

// ReportOptions returns the PDF layout settings
func (c *Config) ReportOptions() report.Options {
	return report.Options{
		RowCap:     c.ReportRowCap,
		ValueWidth: c.ReportValueWidth,
	}
}

// Validate ensures all configuration values are usable
func (c *Config) Validate() error {
	if len(c.IDFragments) == 0 {
		return errors.New("at least one identifier column fragment is required")
	}
	if c.ReportRowCap <= 0 {
		return errors.New("report row cap must be positive")
	}
	if c.ReportValueWidth <= 0 {
		return errors.New("report value width must be positive")
	}
	if c.MaxFiles < 0 {
		return errors.New("max files cannot be negative")
	}
	if !strings.Contains(c.NotifyRecipient, "@") {
		return fmt.Errorf("invalid notification recipient %q", c.NotifyRecipient)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsStringSlice parses a comma-separated list, trimming spaces and quotes
func getEnvAsStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.Trim(strings.TrimSpace(v), `"`); v != "" {
			result = append(result, v)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
