// internal/pkg/config/validators_test.go
package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/kirana-be/internal/pkg/config"
)

func devConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Environment: "development"},
		Database: config.DatabaseConfig{
			Host:           "localhost",
			Name:           "kirana_pos",
			SSLMode:        "disable",
			MaxConnections: 25,
			MinConnections: 5,
		},
		Redis:   config.RedisConfig{PoolSize: 10},
		Invoice: config.InvoiceConfig{SessionTTL: 12 * time.Hour},
		Security: config.SecurityConfig{
			UnlockPassword:    "admin123",
			RateLimitRequests: 100,
			RateLimitDuration: time.Minute,
			AllowedOrigins:    []string{"*"},
		},
		Server: config.ServerConfig{Port: "8080"},
	}
}

func prodConfig() *config.Config {
	cfg := devConfig()
	cfg.App.Environment = "production"
	cfg.Database.SSLMode = "require"
	cfg.Security.UnlockPassword = ""
	cfg.Security.UnlockSecretName = "kirana/unlock-password"
	cfg.Security.SecureHeaders = true
	cfg.Security.AllowedOrigins = []string{"https://pos.example.com"}
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:   "valid development config",
			mutate: func(*config.Config) {},
		},
		{
			name:    "missing database host",
			mutate:  func(c *config.Config) { c.Database.Host = "" },
			wantErr: "database host",
		},
		{
			name:    "missing database name",
			mutate:  func(c *config.Config) { c.Database.Name = "" },
			wantErr: "database name",
		},
		{
			name:    "missing server port",
			mutate:  func(c *config.Config) { c.Server.Port = "" },
			wantErr: "server port",
		},
		{
			name: "max connections below min",
			mutate: func(c *config.Config) {
				c.Database.MaxConnections = 2
				c.Database.MinConnections = 5
			},
			wantErr: "max_connections",
		},
		{
			name:    "zero redis pool",
			mutate:  func(c *config.Config) { c.Redis.PoolSize = 0 },
			wantErr: "pool_size",
		},
		{
			name:    "zero rate limit",
			mutate:  func(c *config.Config) { c.Security.RateLimitRequests = 0 },
			wantErr: "rate_limit_requests",
		},
		{
			name:    "zero session ttl",
			mutate:  func(c *config.Config) { c.Invoice.SessionTTL = 0 },
			wantErr: "session_ttl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := devConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_Production(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:   "valid production config",
			mutate: func(*config.Config) {},
		},
		{
			name: "no unlock password source",
			mutate: func(c *config.Config) {
				c.Security.UnlockPassword = ""
				c.Security.UnlockSecretName = ""
			},
			wantErr: "unlock password",
		},
		{
			name: "default unlock password",
			mutate: func(c *config.Config) {
				c.Security.UnlockPassword = "admin123"
			},
			wantErr: "default unlock password",
		},
		{
			name: "placeholder database password",
			mutate: func(c *config.Config) {
				c.Database.Password = "MISSING_DB_PASSWORD"
			},
			wantErr: "database password",
		},
		{
			name:    "ssl disabled",
			mutate:  func(c *config.Config) { c.Database.SSLMode = "disable" },
			wantErr: "SSL",
		},
		{
			name:    "secure headers off",
			mutate:  func(c *config.Config) { c.Security.SecureHeaders = false },
			wantErr: "secure headers",
		},
		{
			name:    "no allowed origins",
			mutate:  func(c *config.Config) { c.Security.AllowedOrigins = nil },
			wantErr: "allowed origins",
		},
		{
			name: "wildcard origin",
			mutate: func(c *config.Config) {
				c.Security.AllowedOrigins = []string{"*"}
			},
			wantErr: "wildcard origin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := prodConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
