package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Bus.Type != "memory" {
		t.Errorf("Bus.Type = %s, want memory", cfg.Bus.Type)
	}
	if cfg.Compare.NumericTolerance != 0 {
		t.Errorf("Compare.NumericTolerance = %f, want 0", cfg.Compare.NumericTolerance)
	}
	if cfg.History.MaxRuns != 500 {
		t.Errorf("History.MaxRuns = %d, want 500", cfg.History.MaxRuns)
	}
}

func TestLoadFromEnv(t *testing.T) {
	os.Setenv("PAPERVAL_PORT", "9090")
	os.Setenv("PAPERVAL_LOG_LEVEL", "debug")
	os.Setenv("PAPERVAL_FUZZY_STRINGS", "true")
	defer func() {
		os.Unsetenv("PAPERVAL_PORT")
		os.Unsetenv("PAPERVAL_LOG_LEVEL")
		os.Unsetenv("PAPERVAL_FUZZY_STRINGS")
	}()

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %s, want debug", cfg.Log.Level)
	}
	if !cfg.Compare.FuzzyStrings {
		t.Error("Compare.FuzzyStrings = false, want true")
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
host: "127.0.0.1"
port: 8888
log:
  level: warn
  format: json
compare:
  numeric_tolerance: 0.5
  list_order_matters: true
evaluation:
  workers: 8
bus:
  type: kafka
  kafka_brokers: "localhost:9092"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Host != "127.0.0.1" {
		t.Errorf("Host = %s, want 127.0.0.1", cfg.Host)
	}
	if cfg.Port != 8888 {
		t.Errorf("Port = %d, want 8888", cfg.Port)
	}
	if cfg.Compare.NumericTolerance != 0.5 {
		t.Errorf("NumericTolerance = %f, want 0.5", cfg.Compare.NumericTolerance)
	}
	if !cfg.Compare.ListOrderMatters {
		t.Error("ListOrderMatters = false, want true")
	}
	if cfg.Evaluation.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Evaluation.Workers)
	}
	if cfg.Bus.Type != "kafka" {
		t.Errorf("Bus.Type = %s, want kafka", cfg.Bus.Type)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("port: 8888\n"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	os.Setenv("PAPERVAL_PORT", "9999")
	defer os.Unsetenv("PAPERVAL_PORT")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 9999 {
		t.Errorf("Port = %d, want env override 9999", cfg.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"bad port", func(c *Config) { c.Port = 0 }, true},
		{"negative tolerance", func(c *Config) { c.Compare.NumericTolerance = -0.1 }, true},
		{"negative workers", func(c *Config) { c.Evaluation.Workers = -1 }, true},
		{"bad bus type", func(c *Config) { c.Bus.Type = "nats" }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"zero max runs", func(c *Config) { c.History.MaxRuns = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			setDefaults(cfg)
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
