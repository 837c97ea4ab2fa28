package config

import (
	"os"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// DatabaseConfig.GetDSN
// ---------------------------------------------------------------------------

func TestGetDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "standard config",
			cfg: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "backoffice",
				Password: "secret",
				Name:     "pawtrails_backoffice",
				SSLMode:  "require",
			},
			want: "host=localhost port=5432 user=backoffice password=secret dbname=pawtrails_backoffice sslmode=require",
		},
		{
			name: "disable ssl mode",
			cfg: DatabaseConfig{
				Host:     "db.example.com",
				Port:     5433,
				User:     "admin",
				Password: "pass",
				Name:     "mydb",
				SSLMode:  "disable",
			},
			want: "host=db.example.com port=5433 user=admin password=pass dbname=mydb sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.GetDSN()
			if got != tt.want {
				t.Errorf("GetDSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// ServerConfig.GetAddress
// ---------------------------------------------------------------------------

func TestGetAddress(t *testing.T) {
	tests := []struct {
		name string
		cfg  ServerConfig
		want string
	}{
		{"default", ServerConfig{Host: "0.0.0.0", Port: 8080}, "0.0.0.0:8080"},
		{"localhost", ServerConfig{Host: "localhost", Port: 3000}, "localhost:3000"},
		{"empty host", ServerConfig{Host: "", Port: 8080}, ":8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.GetAddress(); got != tt.want {
				t.Errorf("GetAddress() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Load / defaults
// ---------------------------------------------------------------------------

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Audit.MaxAttempts != 5 {
		t.Errorf("audit.max_attempts = %d, want 5", cfg.Audit.MaxAttempts)
	}
	if cfg.Audit.RetryBackoff != time.Minute {
		t.Errorf("audit.retry_backoff = %v, want 1m", cfg.Audit.RetryBackoff)
	}
	if cfg.Audit.DrainSchedule != "@every 1m" {
		t.Errorf("audit.drain_schedule = %q, want %q", cfg.Audit.DrainSchedule, "@every 1m")
	}
	if cfg.Audit.DrainBatchSize != 500 {
		t.Errorf("audit.drain_batch_size = %d, want 500", cfg.Audit.DrainBatchSize)
	}
	if cfg.Moderation.BatchSize != 100 {
		t.Errorf("moderation.batch_size = %d, want 100", cfg.Moderation.BatchSize)
	}
	if cfg.Moderation.MaxBulkItems != 1000 {
		t.Errorf("moderation.max_bulk_items = %d, want 1000", cfg.Moderation.MaxBulkItems)
	}
	if cfg.Moderation.MaxBlockDays != 365 {
		t.Errorf("moderation.max_block_days = %d, want 365", cfg.Moderation.MaxBlockDays)
	}
	if cfg.Notifications.Enabled {
		t.Error("notifications should be disabled by default")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	os.Setenv("PAW_DATABASE_HOST", "db.internal")
	os.Setenv("PAW_MODERATION_BATCH_SIZE", "25")
	defer os.Unsetenv("PAW_DATABASE_HOST")
	defer os.Unsetenv("PAW_MODERATION_BATCH_SIZE")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Database.Host != "db.internal" {
		t.Errorf("database.host = %q, want %q", cfg.Database.Host, "db.internal")
	}
	if cfg.Moderation.BatchSize != 25 {
		t.Errorf("moderation.batch_size = %d, want 25", cfg.Moderation.BatchSize)
	}
}

// ---------------------------------------------------------------------------
// Validate
// ---------------------------------------------------------------------------

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Host: "0.0.0.0", Port: 8080, BaseURL: "http://localhost:8080"},
		Database: DatabaseConfig{Host: "localhost", Port: 5432, Name: "db", User: "u"},
		Logging:  LoggingConfig{Level: "info", Format: "json"},
		Audit: AuditConfig{
			MaxAttempts:   5,
			RetryBackoff:  time.Minute,
			DrainSchedule: "@every 1m",
		},
		Moderation: ModerationConfig{BatchSize: 100, MaxBulkItems: 1000, MaxBlockDays: 365},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
		{"missing db host", func(c *Config) { c.Database.Host = "" }, true},
		{"zero max attempts", func(c *Config) { c.Audit.MaxAttempts = 0 }, true},
		{"negative backoff", func(c *Config) { c.Audit.RetryBackoff = -time.Second }, true},
		{"zero batch size", func(c *Config) { c.Moderation.BatchSize = 0 }, true},
		{"zero bulk cap", func(c *Config) { c.Moderation.MaxBulkItems = 0 }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"notifications without redis", func(c *Config) { c.Notifications.Enabled = true }, true},
		{
			"notifications with redis",
			func(c *Config) { c.Notifications.Enabled = true; c.Redis.Enabled = true },
			false,
		},
		{"tls without cert", func(c *Config) { c.Security.TLS.Enabled = true }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
