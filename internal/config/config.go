package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and
// environment variables. Durations are resolved from their *_seconds /
// *_ms counterparts during Load.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	SitesFile      string `mapstructure:"sites_file"`
	PublishersFile string `mapstructure:"publishers_file"`

	RequestDelayMs     int64         `mapstructure:"request_delay_ms"`
	MaxRetries         int           `mapstructure:"max_retries"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	RequestDelay       time.Duration `mapstructure:"-"`
	HTTPTimeout        time.Duration `mapstructure:"-"`

	CacheType            string        `mapstructure:"cache_type"`
	BBoltPath            string        `mapstructure:"bbolt_path"`
	CacheTTLSeconds      int64         `mapstructure:"cache_ttl_seconds"`
	CacheCleanupSeconds  int64         `mapstructure:"cache_cleanup_interval_seconds"`
	CacheTTL             time.Duration `mapstructure:"-"`
	CacheCleanupInterval time.Duration `mapstructure:"-"`

	MinTitleLength   int `mapstructure:"min_title_length"`
	MinContentLength int `mapstructure:"min_content_length"`

	OutputDir    string `mapstructure:"output_dir"`
	OutputFormat string `mapstructure:"output_format"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "bangla-khobor")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("sites_file", "")
	v.SetDefault("publishers_file", "")
	v.SetDefault("request_delay_ms", 1000)
	v.SetDefault("max_retries", 3)
	v.SetDefault("http_timeout_seconds", 15)
	v.SetDefault("cache_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/cache.db")
	v.SetDefault("cache_ttl_seconds", int64((24*time.Hour)/time.Second))
	v.SetDefault("cache_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))
	v.SetDefault("min_title_length", 5)
	v.SetDefault("min_content_length", 50)
	v.SetDefault("output_dir", "output")
	v.SetDefault("output_format", "json")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.RequestDelayMs < 0 {
		return nil, fmt.Errorf("invalid request_delay_ms (must not be negative)")
	}
	cfg.RequestDelay = time.Duration(cfg.RequestDelayMs) * time.Millisecond

	if cfg.MaxRetries <= 0 {
		return nil, fmt.Errorf("invalid max_retries (must be positive)")
	}
	if cfg.HTTPTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.CacheTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid cache_ttl_seconds (must be positive seconds)")
	}
	if cfg.CacheCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid cache_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.CacheTTL = time.Duration(cfg.CacheTTLSeconds) * time.Second
	cfg.CacheCleanupInterval = time.Duration(cfg.CacheCleanupSeconds) * time.Second

	if cfg.MinTitleLength <= 0 || cfg.MinContentLength <= 0 {
		return nil, fmt.Errorf("invalid validation thresholds (must be positive)")
	}

	switch cfg.OutputFormat {
	case "json", "csv":
	default:
		return nil, fmt.Errorf("invalid output_format %q (expected json or csv)", cfg.OutputFormat)
	}

	return &cfg, nil
}
