package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, StorageTypeMemory, cfg.Storage.Type)
	assert.Equal(t, "localhost", cfg.RateLimit.Redis.Host)
	assert.Equal(t, 6379, cfg.RateLimit.Redis.Port)
	assert.Equal(t, 0, cfg.RateLimit.Redis.DB)
	assert.False(t, cfg.RateLimit.FailOpen, "limiter fails closed unless configured otherwise")
	assert.Empty(t, cfg.RateLimit.Buckets, "empty bucket list selects the built-in table")
	assert.Equal(t, 6, cfg.Embed.CodeSize)
	assert.Equal(t, "0123456789abcdef", cfg.Embed.CodeCharset)
	assert.Equal(t, "info", cfg.Logging.Level)

	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"invalid port", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, true},
		{"empty host", func(c *Config) { c.Server.Host = "" }, true},
		{"tls without cert", func(c *Config) { c.Server.TLSEnabled = true }, true},
		{"postgres without dsn", func(c *Config) { c.Storage.Type = StorageTypePostgres }, true},
		{"postgres with dsn", func(c *Config) {
			c.Storage.Type = StorageTypePostgres
			c.Storage.Database.DSN = "postgres://localhost/embeds"
		}, false},
		{"sqlite without dsn", func(c *Config) { c.Storage.Type = StorageTypeSQLite }, true},
		{"unknown storage type", func(c *Config) { c.Storage.Type = "etcd" }, true},
		{"bucket without name", func(c *Config) {
			c.RateLimit.Buckets = []BucketConfig{{Limit: 5, WindowSeconds: 10}}
		}, true},
		{"bucket zero limit", func(c *Config) {
			c.RateLimit.Buckets = []BucketConfig{{Name: "api", WindowSeconds: 10}}
		}, true},
		{"bucket zero window", func(c *Config) {
			c.RateLimit.Buckets = []BucketConfig{{Name: "api", Limit: 5}}
		}, true},
		{"valid bucket override", func(c *Config) {
			c.RateLimit.Buckets = []BucketConfig{{Name: "api", Limit: 5, WindowSeconds: 10}}
		}, false},
		{"negative redis db", func(c *Config) { c.RateLimit.Redis.DB = -1 }, true},
		{"code size too small", func(c *Config) { c.Embed.CodeSize = 3 }, true},
		{"code size too large", func(c *Config) { c.Embed.CodeSize = 257 }, true},
		{"charset too short", func(c *Config) { c.Embed.CodeCharset = "a" }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"file output without path", func(c *Config) { c.Logging.Output = "file" }, true},
		{"metrics without path", func(c *Config) { c.Metrics.Path = "" }, true},
		{"metrics disabled skips checks", func(c *Config) {
			c.Metrics.Enabled = false
			c.Metrics.Path = ""
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaultTimeouts(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, 5, cfg.Storage.Database.ConnectRetries)
}
