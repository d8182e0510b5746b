// Package config loads service and CLI configuration.
//
// Values come from, in increasing priority: built-in defaults, an optional
// YAML or JSON file, and CVB_ prefixed environment variables
// (CVB_SERVER_ADDR, CVB_CHROME_TIMEOUT, ...).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides.
const EnvPrefix = "CVB"

// Config is the full configuration tree.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	S3        S3Config        `mapstructure:"s3"`
	Chrome    ChromeConfig    `mapstructure:"chrome"`
	PDF       PDFConfig       `mapstructure:"pdf"`
	Log       LogConfig       `mapstructure:"log"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Workspace WorkspaceConfig `mapstructure:"workspace"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type S3Config struct {
	Region     string        `mapstructure:"region"`
	Endpoint   string        `mapstructure:"endpoint"`
	AccessKey  string        `mapstructure:"access_key"`
	SecretKey  string        `mapstructure:"secret_key"`
	Bucket     string        `mapstructure:"bucket"`
	PathStyle  bool          `mapstructure:"path_style"`
	PresignTTL time.Duration `mapstructure:"presign_ttl"`
}

type ChromeConfig struct {
	Path     string        `mapstructure:"path"`
	Timeout  time.Duration `mapstructure:"timeout"`
	SpoolDir string        `mapstructure:"spool_dir"`
}

// PDFConfig holds PDF encoding settings. FontFile is a TrueType font for
// header and footer text outside Windows-1252.
type PDFConfig struct {
	FontFile string `mapstructure:"font_file"`
}

type LogConfig struct {
	Format string `mapstructure:"format"`
	Level  string `mapstructure:"level"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// WorkspaceConfig locates the local SQLite database used by the CLI.
type WorkspaceConfig struct {
	Path string `mapstructure:"path"`
}

// RateLimitConfig holds requests per minute for general and export routes.
type RateLimitConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	RequestsPerM int  `mapstructure:"requests_per_minute"`
	Burst        int  `mapstructure:"burst"`
	ExportPerM   int  `mapstructure:"export_per_minute"`
	ExportBurst  int  `mapstructure:"export_burst"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("database.url", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "cvb:")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.path_style", false)
	v.SetDefault("s3.presign_ttl", 15*time.Minute)
	v.SetDefault("chrome.path", "")
	v.SetDefault("chrome.timeout", 60*time.Second)
	v.SetDefault("chrome.spool_dir", filepath.Join(os.TempDir(), "cv-builder-spool"))
	v.SetDefault("pdf.font_file", "")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.level", "info")
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("workspace.path", defaultWorkspacePath())
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_minute", 120)
	v.SetDefault("rate_limit.burst", 30)
	v.SetDefault("rate_limit.export_per_minute", 10)
	v.SetDefault("rate_limit.export_burst", 3)
}

func defaultWorkspacePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "cv-builder.db"
	}
	return filepath.Join(home, ".cv-builder", "workspace.db")
}

// Load reads configuration. path may be empty, in which case only defaults
// and environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("config file not found: %s", path)
			}
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Validate checks ranges and combinations that Load cannot.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("config error: 'server.addr' is required")
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("config error: 'server.shutdown_timeout' must be non-negative")
	}
	if c.Chrome.Timeout <= 0 {
		return fmt.Errorf("config error: 'chrome.timeout' must be positive")
	}
	if c.PDF.FontFile != "" {
		if _, err := os.Stat(c.PDF.FontFile); err != nil {
			return fmt.Errorf("config error: 'pdf.font_file': %w", err)
		}
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("config error: 'cache.ttl' must be non-negative")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config error: 'redis.db' must be non-negative")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("config error: 'log.format' must be text or json, got %q", c.Log.Format)
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerM < 1 || c.RateLimit.ExportPerM < 1 {
			return fmt.Errorf("config error: rate limits must be at least 1 request per minute")
		}
		if c.RateLimit.Burst < 1 || c.RateLimit.ExportBurst < 1 {
			return fmt.Errorf("config error: rate limit bursts must be at least 1")
		}
	}
	if c.S3.Bucket != "" && c.S3.AccessKey != "" && c.S3.SecretKey == "" {
		return fmt.Errorf("config error: 's3.secret_key' is required when 's3.access_key' is set")
	}
	if c.Workspace.Path == "" {
		return fmt.Errorf("config error: 'workspace.path' is required")
	}
	return nil
}
