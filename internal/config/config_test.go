package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 60*time.Second, cfg.Chrome.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "us-east-1", cfg.S3.Region)
	assert.Equal(t, 15*time.Minute, cfg.S3.PresignTTL)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 10, cfg.RateLimit.ExportPerM)
	assert.NotEmpty(t, cfg.Workspace.Path)
	require.NoError(t, cfg.Validate())
}

func TestLoad_YAMLFile(t *testing.T) {
	content := `
server:
  addr: ":9090"
chrome:
  timeout: 15s
log:
  format: json
  level: debug
s3:
  bucket: cvs
  endpoint: http://127.0.0.1:9000
  path_style: true
`
	path := filepath.Join(t.TempDir(), "cvb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 15*time.Second, cfg.Chrome.Timeout)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "cvs", cfg.S3.Bucket)
	assert.True(t, cfg.S3.PathStyle)
	// untouched keys keep defaults
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
}

func TestLoad_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cvb.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"database": {"url": "postgres://localhost/cvs"}}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/cvs", cfg.Database.URL)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cvb.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9090\"\n"), 0o644))

	t.Setenv("CVB_SERVER_ADDR", ":7070")
	t.Setenv("CVB_CHROME_TIMEOUT", "5s")
	t.Setenv("CVB_REDIS_ADDR", "localhost:6379")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Chrome.Timeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/path/cvb.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cvb.json")
	require.NoError(t, os.WriteFile(path, []byte(`{ invalid json }`), 0o644))

	cfg, err := Load(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"zero chrome timeout", func(c *Config) { c.Chrome.Timeout = 0 }, "chrome.timeout"},
		{"negative cache ttl", func(c *Config) { c.Cache.TTL = -time.Second }, "cache.ttl"},
		{"negative redis db", func(c *Config) { c.Redis.DB = -1 }, "redis.db"},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"zero export limit", func(c *Config) { c.RateLimit.ExportPerM = 0 }, "rate limits"},
		{"zero burst", func(c *Config) { c.RateLimit.Burst = 0 }, "bursts"},
		{"s3 key without secret", func(c *Config) {
			c.S3.Bucket = "cvs"
			c.S3.AccessKey = "minio"
		}, "s3.secret_key"},
		{"empty workspace", func(c *Config) { c.Workspace.Path = "" }, "workspace.path"},
		{"missing font file", func(c *Config) { c.PDF.FontFile = "/nonexistent/NotoSans.ttf" }, "pdf.font_file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("existing font file", func(t *testing.T) {
		cfg := valid()
		cfg.PDF.FontFile = filepath.Join(t.TempDir(), "NotoSans.ttf")
		require.NoError(t, os.WriteFile(cfg.PDF.FontFile, []byte("ttf"), 0o644))
		assert.NoError(t, cfg.Validate())
	})

	t.Run("disabled rate limit ignores limits", func(t *testing.T) {
		cfg := valid()
		cfg.RateLimit.Enabled = false
		cfg.RateLimit.ExportPerM = 0
		assert.NoError(t, cfg.Validate())
	})
}
