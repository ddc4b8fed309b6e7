package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Server settings
	Port string `json:"port"`
	Host string `json:"host"`

	// Wikimedia pageviews API settings
	Project   string `json:"project"`
	Access    string `json:"access"`
	UserAgent string `json:"user_agent"`

	// Report settings
	ReportLimit int `json:"report_limit"`

	// Archive settings
	ArchiveType   string `json:"archive_type"` // "local" or "gcs"
	OutputDir     string `json:"output_dir"`
	ArchiveBucket string `json:"archive_bucket"`
	ArchivePrefix string `json:"archive_prefix"`

	// Webhook settings
	WebhookAuthToken string `json:"-"` // Don't expose in JSON

	// Scheduled generation targets
	Targets map[string]Target `json:"targets"`
}

// Target is one scheduled report target for the server's cron runner.
type Target struct {
	Name     string `json:"name" yaml:"name"`
	Project  string `json:"project" yaml:"project"`
	Schedule string `json:"schedule" yaml:"schedule"`
	Enabled  bool   `json:"enabled" yaml:"enabled"`
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	config := &Config{
		Port:             getEnvOrDefault("PORT", "8080"),
		Host:             getEnvOrDefault("HOST", "0.0.0.0"),
		Project:          getEnvOrDefault("WIKI_PROJECT", "fi.wikipedia.org"),
		Access:           getEnvOrDefault("WIKI_ACCESS", "all-access"),
		UserAgent:        getEnvOrDefault("USER_AGENT", "wikiviews/1.0 (https://github.com/vkoski/wikiviews) Finnish Wikipedia pageview reports"),
		ReportLimit:      getEnvOrDefaultInt("REPORT_LIMIT", 1000),
		ArchiveType:      getEnvOrDefault("ARCHIVE_TYPE", "local"),
		OutputDir:        getEnvOrDefault("OUTPUT_DIR", "."),
		ArchiveBucket:    getEnvOrDefault("ARCHIVE_BUCKET", ""),
		ArchivePrefix:    getEnvOrDefault("ARCHIVE_PREFIX", ""),
		WebhookAuthToken: getEnvOrDefault("WEBHOOK_AUTH_TOKEN", ""),
	}

	targets, err := loadTargets(getEnvOrDefault("TARGETS_FILE", ""), config)
	if err != nil {
		return nil, err
	}
	config.Targets = targets

	return config, config.validate()
}

// loadTargets reads the YAML targets file, falling back to a single default
// target for the configured project on a monthly schedule.
func loadTargets(path string, cfg *Config) (map[string]Target, error) {
	if path == "" {
		return map[string]Target{
			"default": {
				Name:     "default",
				Project:  cfg.Project,
				Schedule: getEnvOrDefault("REPORT_SCHEDULE", "0 6 2 * *"),
				Enabled:  true,
			},
		}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading targets file %s: %w", path, err)
	}

	var file struct {
		Targets []Target `yaml:"targets"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing targets file %s: %w", path, err)
	}

	targets := make(map[string]Target, len(file.Targets))
	for _, t := range file.Targets {
		if t.Name == "" {
			return nil, &ConfigError{Field: "targets", Message: "target without a name in " + path}
		}
		if t.Project == "" {
			t.Project = cfg.Project
		}
		if t.Schedule == "" {
			t.Schedule = "0 6 2 * *"
		}
		targets[t.Name] = t
	}
	return targets, nil
}

// validate checks if required configuration values are present
func (c *Config) validate() error {
	if c.Project == "" {
		return &ConfigError{Field: "WIKI_PROJECT", Message: "wiki project is required"}
	}
	if c.UserAgent == "" {
		return &ConfigError{Field: "USER_AGENT", Message: "the Wikimedia API requires a User-Agent with contact information"}
	}
	if c.ReportLimit <= 0 {
		return &ConfigError{Field: "REPORT_LIMIT", Message: "report limit must be positive"}
	}
	switch c.ArchiveType {
	case "local":
	case "gcs":
		if c.ArchiveBucket == "" {
			return &ConfigError{Field: "ARCHIVE_BUCKET", Message: "bucket is required when ARCHIVE_TYPE is gcs"}
		}
	default:
		return &ConfigError{Field: "ARCHIVE_TYPE", Message: "must be local or gcs, got " + c.ArchiveType}
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
