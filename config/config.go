package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Version is the service version reported by /health and the CLI
const Version = "1.0.0"

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Index     IndexConfig     `mapstructure:"index"`
	Matching  MatchingConfig  `mapstructure:"matching"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxUploadMB    int      `mapstructure:"max_upload_mb"`
}

// CatalogConfig locates the product catalog
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// IndexConfig locates the persisted vector index
type IndexConfig struct {
	Path string `mapstructure:"path"`
}

// MatchingConfig tunes the recommendation engine
type MatchingConfig struct {
	TopK            int    `mapstructure:"top_k"`
	DefaultStrategy string `mapstructure:"default_strategy"` // "lexical" or "vector"
}

// OpenAIConfig holds hosted model configuration
type OpenAIConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	VisionModel       string        `mapstructure:"vision_model"`
	EmbeddingModel    string        `mapstructure:"embedding_model"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	MaxRetries        int           `mapstructure:"max_retries"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// Load loads configuration from .env, environment variables and config files
func Load() (*Config, error) {
	return load(true)
}

// LoadOffline loads configuration without requiring hosted-model credentials.
// Used by commands that only touch the local catalog.
func LoadOffline() (*Config, error) {
	return load(false)
}

func load(requireAPIKey bool) (*Config, error) {
	// .env is optional; real environment variables take precedence
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/roomlens/")

	v.SetEnvPrefix("ROOMLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config, requireAPIKey); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})
	v.SetDefault("server.max_upload_mb", 10)

	v.SetDefault("catalog.path", "furniture_db.json")
	v.SetDefault("index.path", "furniture_vectors.index")

	v.SetDefault("matching.top_k", 3)
	v.SetDefault("matching.default_strategy", "vector")

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.vision_model", "gpt-4o-mini")
	v.SetDefault("openai.embedding_model", "text-embedding-3-small")
	v.SetDefault("openai.requests_per_minute", 60)
	v.SetDefault("openai.max_retries", 3)
	v.SetDefault("openai.timeout", "60s")

	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "720h") // 30 days

	v.SetDefault("ratelimit.per_ip", 100)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// validate validates the configuration
func validate(config *Config, requireAPIKey bool) error {
	if requireAPIKey && config.OpenAI.APIKey == "" {
		return fmt.Errorf("OpenAI API key is required (set ROOMLENS_OPENAI_API_KEY)")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Matching.TopK <= 0 {
		return fmt.Errorf("matching top_k must be positive, got: %d", config.Matching.TopK)
	}

	if config.Matching.DefaultStrategy != "lexical" && config.Matching.DefaultStrategy != "vector" {
		return fmt.Errorf("matching default_strategy must be 'lexical' or 'vector', got: %s", config.Matching.DefaultStrategy)
	}

	return nil
}

// SetupLogger builds the zerolog logger described by the log section
func (c *Config) SetupLogger() zerolog.Logger {
	return NewLogger(c.Log, os.Stdout)
}

// NewLogger creates a logger writing to out
func NewLogger(cfg LogConfig, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var w io.Writer = out
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	return zerolog.New(w).Level(level).With().
		Timestamp().
		Str("service", "roomlens").
		Str("version", Version).
		Logger()
}
