// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/paperval/paperval/internal/compare"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	Host string `envconfig:"PAPERVAL_HOST" yaml:"host"`
	Port int    `envconfig:"PAPERVAL_PORT" yaml:"port"`

	// Comparison configuration
	Compare compare.Config `yaml:"compare"`

	// Evaluation configuration
	Evaluation EvaluationConfig `yaml:"evaluation"`

	// Bus configuration
	Bus BusConfig `yaml:"bus"`

	// History configuration
	History HistoryConfig `yaml:"history"`

	// Logging configuration
	Log LogConfig `yaml:"log"`

	// Security configuration
	Security SecurityConfig `yaml:"security"`
}

// EvaluationConfig holds corpus evaluation settings.
type EvaluationConfig struct {
	// Workers bounds concurrent per-paper evaluation. 0 means NumCPU.
	Workers int `envconfig:"PAPERVAL_EVAL_WORKERS" yaml:"workers"`
}

// BusConfig holds event bus settings.
type BusConfig struct {
	Type         string `envconfig:"PAPERVAL_BUS_TYPE" yaml:"type"`
	KafkaBrokers string `envconfig:"PAPERVAL_KAFKA_BROKERS" yaml:"kafka_brokers"`
	KafkaGroup   string `envconfig:"PAPERVAL_KAFKA_GROUP" yaml:"kafka_group"`
}

// HistoryConfig holds run-history settings.
type HistoryConfig struct {
	// MaxRuns bounds the in-memory run log.
	MaxRuns int `envconfig:"PAPERVAL_HISTORY_MAX_RUNS" yaml:"max_runs"`

	// RedisURL enables Redis persistence when set.
	RedisURL string `envconfig:"PAPERVAL_HISTORY_REDIS_URL" yaml:"redis_url"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `envconfig:"PAPERVAL_LOG_LEVEL" yaml:"level"`
	Format string `envconfig:"PAPERVAL_LOG_FORMAT" yaml:"format"`
}

// SecurityConfig holds security settings.
type SecurityConfig struct {
	APIKey    string `envconfig:"PAPERVAL_API_KEY" yaml:"api_key"`
	RateLimit int    `envconfig:"PAPERVAL_RATE_LIMIT" yaml:"rate_limit"` // 0 = disabled
}

// Load loads configuration from environment variables and optional config file.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Set defaults first
	setDefaults(cfg)

	// Load from YAML file if provided (overrides defaults)
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	// Override with environment variables (highest priority)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func setDefaults(cfg *Config) {
	cfg.Host = "0.0.0.0"
	cfg.Port = 8080

	cfg.Compare = compare.Config{
		NumericTolerance: 0,
		FuzzyStrings:     false,
		ListOrderMatters: false,
	}

	cfg.Evaluation = EvaluationConfig{
		Workers: 4,
	}

	cfg.Bus = BusConfig{
		Type: "memory",
	}

	cfg.History = HistoryConfig{
		MaxRuns: 500,
	}

	cfg.Log = LogConfig{
		Level:  "info",
		Format: "text",
	}

	cfg.Security = SecurityConfig{
		RateLimit: 0,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []string

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, "port must be between 1 and 65535")
	}

	if err := c.Compare.Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if c.Evaluation.Workers < 0 {
		errs = append(errs, "evaluation workers must be non-negative")
	}

	validBusTypes := map[string]bool{"": true, "memory": true, "kafka": true}
	if !validBusTypes[strings.ToLower(c.Bus.Type)] {
		errs = append(errs, fmt.Sprintf("invalid bus type: %s (must be memory or kafka)", c.Bus.Type))
	}

	if c.History.MaxRuns < 1 {
		errs = append(errs, "history max_runs must be positive")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s", c.Log.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s", c.Log.Format))
	}

	if c.Security.RateLimit < 0 {
		errs = append(errs, "rate_limit must be non-negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}
