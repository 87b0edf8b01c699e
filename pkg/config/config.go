package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Ambiguity policies for items the API reports more than once
const (
	OnAmbiguousAbort = "abort"
	OnAmbiguousSkip  = "skip"
)

// Config holds all configuration options for the exporter
type Config struct {
	// Catalog site settings
	Site SiteConfig `yaml:"site" json:"site"`

	// HTTP transport settings
	HTTP HTTPConfig `yaml:"http" json:"http"`

	// Output file settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Export behaviour
	Export ExportConfig `yaml:"export" json:"export"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// SiteConfig describes the catalog website being exported from
type SiteConfig struct {
	BaseURL      string `yaml:"base_url" json:"base_url"`
	UserAgent    string `yaml:"user_agent" json:"user_agent"`
	ItemsPerPage int    `yaml:"items_per_page" json:"items_per_page"`
}

// HTTPConfig holds HTTP client configuration
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// OutputConfig holds output file configuration
type OutputConfig struct {
	Directory string `yaml:"directory" json:"directory"`
	CRLF      bool   `yaml:"crlf" json:"crlf"`
}

// ExportConfig holds export pipeline configuration
type ExportConfig struct {
	OnAmbiguous string `yaml:"on_ambiguous" json:"on_ambiguous"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			BaseURL:      "https://myfigurecollection.net",
			UserAgent:    "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			ItemsPerPage: 90,
		},
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
		},
		Output: OutputConfig{
			Directory: ".",
			CRLF:      true,
		},
		Export: ExportConfig{
			OnAmbiguous: OnAmbiguousAbort,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if baseURL := os.Getenv("MFCEXPORT_BASE_URL"); baseURL != "" {
		c.Site.BaseURL = baseURL
	}
	if userAgent := os.Getenv("MFCEXPORT_USER_AGENT"); userAgent != "" {
		c.Site.UserAgent = userAgent
	}

	if timeout := os.Getenv("MFCEXPORT_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid MFCEXPORT_TIMEOUT %q: %w", timeout, err)
		}
		c.HTTP.Timeout = d
	}

	if outputDir := os.Getenv("MFCEXPORT_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}
	if crlf := os.Getenv("MFCEXPORT_CRLF"); crlf != "" {
		val, err := strconv.ParseBool(crlf)
		if err != nil {
			return fmt.Errorf("invalid MFCEXPORT_CRLF %q: %w", crlf, err)
		}
		c.Output.CRLF = val
	}

	if policy := os.Getenv("MFCEXPORT_ON_AMBIGUOUS"); policy != "" {
		c.Export.OnAmbiguous = strings.ToLower(policy)
	}

	if logLevel := os.Getenv("MFCEXPORT_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("MFCEXPORT_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".mfcexport.yaml",
		".mfcexport.yml",
		filepath.Join(home, ".config", "mfcexport", "config.yaml"),
		filepath.Join(home, ".config", "mfcexport", "config.yml"),
		filepath.Join(home, ".mfcexport.yaml"),
		filepath.Join(home, ".mfcexport.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Site.BaseURL == "" {
		errs = append(errs, errors.New("site base URL is required"))
	} else if u, err := url.Parse(c.Site.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("site base URL %q is not an absolute URL", c.Site.BaseURL))
	}
	if c.Site.ItemsPerPage <= 0 {
		errs = append(errs, errors.New("items per page must be positive"))
	}

	if c.HTTP.Timeout < 0 {
		errs = append(errs, errors.New("http timeout cannot be negative"))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	switch strings.ToLower(c.Export.OnAmbiguous) {
	case OnAmbiguousAbort, OnAmbiguousSkip:
	default:
		errs = append(errs, fmt.Errorf("invalid ambiguity policy %q (want %s or %s)", c.Export.OnAmbiguous, OnAmbiguousAbort, OnAmbiguousSkip))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in the map are applied.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if baseURL, ok := flags["base-url"].(string); ok && baseURL != "" {
		c.Site.BaseURL = baseURL
	}
	if outputDir, ok := flags["output-dir"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if timeout, ok := flags["timeout"].(time.Duration); ok && timeout > 0 {
		c.HTTP.Timeout = timeout
	}
	if policy, ok := flags["on-ambiguous"].(string); ok && policy != "" {
		c.Export.OnAmbiguous = strings.ToLower(policy)
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile, ok := flags["log-file"].(string); ok && logFile != "" {
		c.Logging.File = logFile
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".mfcexport.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
