package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig
	Recognition RecognitionConfig
	Planner     PlannerConfig
	Cache       CacheConfig
	Storage     StorageConfig
	Auth        AuthConfig
	Imaging     ImagingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RecognitionConfig holds meal recognition service configuration,
// including the retry and circuit breaker tuning for its client
type RecognitionConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	BaseDelay    time.Duration `mapstructure:"base_delay"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	WindowSize   int           `mapstructure:"window_size"`
	MinRequests  int           `mapstructure:"min_requests"`
	CoolDown     time.Duration `mapstructure:"cool_down"`
}

// PlannerConfig holds workout plan generator configuration
type PlannerConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// StorageConfig holds persistence configuration
type StorageConfig struct {
	SQLitePath string `mapstructure:"sqlite_path"`
	ImageDir   string `mapstructure:"image_dir"`
	CDNBaseURL string `mapstructure:"cdn_base_url"`
}

// AuthConfig holds token signing configuration
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// ImagingConfig holds image compression configuration
type ImagingConfig struct {
	MaxImageSizeKB int `mapstructure:"max_image_size_kb"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/fittrack/")

	// Environment variable settings
	v.SetEnvPrefix("FITTRACK")
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

	// Validate configuration
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
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Recognition client defaults
	v.SetDefault("recognition.base_url", "https://api.mealvision.example.com")
	v.SetDefault("recognition.timeout", "30s")
	v.SetDefault("recognition.max_attempts", 3)
	v.SetDefault("recognition.base_delay", "2s")
	v.SetDefault("recognition.failure_ratio", 0.5)
	v.SetDefault("recognition.window_size", 10)
	v.SetDefault("recognition.min_requests", 4)
	v.SetDefault("recognition.cool_down", "60s")

	// Planner client defaults
	v.SetDefault("planner.base_url", "https://api.mealvision.example.com")
	v.SetDefault("planner.timeout", "30s")
	v.SetDefault("planner.max_attempts", 2)
	v.SetDefault("planner.base_delay", "2s")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "24h")

	// Storage defaults
	v.SetDefault("storage.sqlite_path", "fittrack.db")
	v.SetDefault("storage.image_dir", "uploads")
	v.SetDefault("storage.cdn_base_url", "http://localhost:8080/uploads")

	// Auth defaults
	v.SetDefault("auth.token_ttl", "24h")

	// Imaging defaults
	v.SetDefault("imaging.max_image_size_kb", 1024)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Recognition.APIKey == "" {
		return fmt.Errorf("recognition API key is required (set FITTRACK_RECOGNITION_API_KEY)")
	}

	if config.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required (set FITTRACK_AUTH_JWT_SECRET)")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Recognition.FailureRatio <= 0 || config.Recognition.FailureRatio > 1 {
		return fmt.Errorf("recognition failure ratio must be in (0, 1], got: %v", config.Recognition.FailureRatio)
	}

	return nil
}
