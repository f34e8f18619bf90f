package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Provider  ProviderConfig
	Affiliate AffiliateConfig
	Search    SearchConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CacheConfig holds result-cache configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds the sliding-window admission settings applied per
// platform key during orchestrated searches.
type RateLimitConfig struct {
	SearchMaxRequests int           `mapstructure:"search_max_requests"`
	SearchWindow      time.Duration `mapstructure:"search_window"`
}

// ProviderConfig selects and configures the marketplace search provider.
type ProviderConfig struct {
	Mode           string        `mapstructure:"mode"` // "mock" or "http"
	BaseURL        string        `mapstructure:"base_url"`
	UserAgent      string        `mapstructure:"user_agent"`
	Timeout        time.Duration `mapstructure:"timeout"`
	RequestsPerSec float64       `mapstructure:"requests_per_sec"`
	Burst          int           `mapstructure:"burst"`
}

// AffiliateConfig holds affiliate link processing configuration.
// EnableTracking seeds the host's tracking toggle alongside the affiliate
// one; both remain editable through the settings surface.
type AffiliateConfig struct {
	Enabled        bool              `mapstructure:"enabled"`
	EnableTracking bool              `mapstructure:"enable_tracking"`
	Tags           map[string]string `mapstructure:"tags"` // platform -> tag value
}

// SearchConfig holds defaults for the search flow.
type SearchConfig struct {
	PreferredPlatforms []string `mapstructure:"preferred_platforms"`
	PriceThreshold     float64  `mapstructure:"price_threshold"`
	EnableDebugLogging bool     `mapstructure:"enable_debug_logging"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pricelens/")

	// Environment variable settings; nested keys map to underscored
	// variables (server.port -> PRICELENS_SERVER_PORT)
	v.SetEnvPrefix("PRICELENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"chrome-extension://*"})

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "1h")

	// Rate limit defaults
	v.SetDefault("ratelimit.search_max_requests", 10)
	v.SetDefault("ratelimit.search_window", "1m")

	// Provider defaults
	v.SetDefault("provider.mode", "mock")
	v.SetDefault("provider.user_agent", "PriceLens/1.0")
	v.SetDefault("provider.timeout", "20s")
	v.SetDefault("provider.requests_per_sec", 2.0)
	v.SetDefault("provider.burst", 5)

	// Affiliate defaults
	v.SetDefault("affiliate.enabled", false)
	v.SetDefault("affiliate.enable_tracking", false)
	v.SetDefault("affiliate.tags", map[string]string{})

	// Search defaults
	v.SetDefault("search.preferred_platforms", []string{"amazon", "ebay", "walmart"})
	v.SetDefault("search.price_threshold", 0.0)
	v.SetDefault("search.enable_debug_logging", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}
	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("redis URL is required when cache type is 'redis'")
	}

	if config.Provider.Mode != "mock" && config.Provider.Mode != "http" {
		return fmt.Errorf("provider mode must be 'mock' or 'http', got: %s", config.Provider.Mode)
	}
	if config.Provider.Mode == "http" && config.Provider.BaseURL == "" {
		return fmt.Errorf("provider base URL is required when provider mode is 'http' (set PRICELENS_PROVIDER_BASE_URL)")
	}

	if config.RateLimit.SearchMaxRequests <= 0 {
		return fmt.Errorf("ratelimit search_max_requests must be positive")
	}
	if config.RateLimit.SearchWindow <= 0 {
		return fmt.Errorf("ratelimit search_window must be positive")
	}

	return nil
}
