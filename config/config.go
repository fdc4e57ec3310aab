package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Logging   LoggingConfig
	Metrics   MetricsConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Broadcast BroadcastConfig
	Updates   UpdatesConfig
	Social    SocialConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Host                    string
	Port                    int
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	IdleTimeout             time.Duration
	GracefulShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	SeedSources     bool
}

type LoggingConfig struct {
	Level  string
	Format string // json or text
}

type MetricsConfig struct {
	Enabled bool
	Port    int
	Path    string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

// CacheConfig controls the response cache. Redis is used when Redis.URL is set.
type CacheConfig struct {
	Prefix          string
	UpdatesTTL      time.Duration
	SocialTTL       time.Duration
	CleanupInterval time.Duration
}

// BroadcastConfig controls live fan-out of fresh result sets.
type BroadcastConfig struct {
	NATSURL       string
	SubjectPrefix string
	ClientName    string
}

type UpdatesConfig struct {
	LiveFetch       bool
	FetchTimeout    time.Duration
	RateLimit       float64 // outbound requests per second, shared by all live providers
	WorkerCount     int
	RefreshInterval time.Duration // 0 disables the background refresher
	DefaultLimit    int
	SearchLimit     int
}

type SocialConfig struct {
	PrimaryToken     string
	PrimaryBaseURL   string
	SecondaryToken   string
	SecondaryBaseURL string
	UserAgent        string
	Timeout          time.Duration
	DefaultLimit     int
}

type RateLimitConfig struct {
	RequestsPerMinute int // 0 disables
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Load loads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:                    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:                    getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:             getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:            getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:             getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			GracefulShutdownTimeout: getEnvDuration("SERVER_GRACEFUL_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvDuration("DB_MAX_CONN_LIFETIME", 1*time.Hour),
			MaxConnIdleTime: getEnvDuration("DB_MAX_CONN_IDLE_TIME", 30*time.Minute),
			SeedSources:     getEnvBool("DB_SEED_SOURCES", true),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Port:    getEnvInt("METRICS_PORT", 9090),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			Prefix:          getEnv("CACHE_PREFIX", "disasterfeed:v1"),
			UpdatesTTL:      getEnvDuration("CACHE_UPDATES_TTL", 5*time.Minute),
			SocialTTL:       getEnvDuration("CACHE_SOCIAL_TTL", 2*time.Minute),
			CleanupInterval: getEnvDuration("CACHE_CLEANUP_INTERVAL", 10*time.Minute),
		},
		Broadcast: BroadcastConfig{
			NATSURL:       getEnv("NATS_URL", ""),
			SubjectPrefix: getEnv("BROADCAST_SUBJECT_PREFIX", "disasterfeed"),
			ClientName:    getEnv("BROADCAST_CLIENT_NAME", "disasterfeed-api"),
		},
		Updates: UpdatesConfig{
			LiveFetch:       getEnvBool("UPDATES_LIVE_FETCH", false),
			FetchTimeout:    getEnvDuration("UPDATES_FETCH_TIMEOUT", 10*time.Second),
			RateLimit:       getEnvFloat("UPDATES_RATE_LIMIT", 5.0),
			WorkerCount:     getEnvInt("UPDATES_WORKER_COUNT", 4),
			RefreshInterval: getEnvDuration("UPDATES_REFRESH_INTERVAL", 0),
			DefaultLimit:    getEnvInt("UPDATES_DEFAULT_LIMIT", 20),
			SearchLimit:     getEnvInt("UPDATES_SEARCH_LIMIT", 20),
		},
		Social: SocialConfig{
			PrimaryToken:     getEnv("SOCIAL_PRIMARY_TOKEN", ""),
			PrimaryBaseURL:   getEnv("SOCIAL_PRIMARY_BASE_URL", "https://api.twitter.com"),
			SecondaryToken:   getEnv("SOCIAL_SECONDARY_TOKEN", ""),
			SecondaryBaseURL: getEnv("SOCIAL_SECONDARY_BASE_URL", "https://oauth.reddit.com"),
			UserAgent:        getEnv("SOCIAL_USER_AGENT", "DisasterFeed/1.0"),
			Timeout:          getEnvDuration("SOCIAL_TIMEOUT", 10*time.Second),
			DefaultLimit:     getEnvInt("SOCIAL_DEFAULT_LIMIT", 50),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvInt("RATE_LIMIT_RPM", 100),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}
	if c.Updates.WorkerCount < 1 {
		return fmt.Errorf("updates worker count must be at least 1")
	}
	if c.Updates.RateLimit <= 0 {
		return fmt.Errorf("updates rate limit must be positive")
	}
	if c.Updates.RefreshInterval < 0 {
		return fmt.Errorf("updates refresh interval must not be negative")
	}
	if c.Updates.DefaultLimit < 1 || c.Updates.SearchLimit < 1 || c.Social.DefaultLimit < 1 {
		return fmt.Errorf("default limits must be at least 1")
	}
	if c.Cache.UpdatesTTL <= 0 || c.Cache.SocialTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	if c.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
