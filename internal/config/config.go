package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the marketing dashboard service.
type Config struct {
	Server    ServerConfig
	Upload    UploadConfig
	Cache     CacheConfig
	Redis     RedisConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Metrics   MetricsConfig
	Analytics AnalyticsConfig
}

type ServerConfig struct {
	Addr            string
	Env             string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type UploadConfig struct {
	Dir string
	// MaxBytes caps the multipart body size.
	MaxBytes int64
	// ChunkThresholdBytes switches campaign processing to the batched
	// reader for files at or above this size.
	ChunkThresholdBytes int64
	BatchSize           int
}

type CacheConfig struct {
	Dir string
	TTL time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AuthConfig maps API keys to roles. Keys are compared in constant time;
// anything stronger is out of scope for this service.
type AuthConfig struct {
	Enabled    bool
	ViewerKeys []string
	EditorKeys []string
	AdminKeys  []string
	SkipPaths  []string
}

type RateLimitConfig struct {
	Enabled     bool
	RPS         float64
	Burst       int
	UploadRPS   float64
	UploadBurst int
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig configures the Prometheus listener.
type MetricsConfig struct {
	Enabled bool
	Addr    string
	Path    string
}

// AnalyticsConfig holds the tunable aggregation constants. The ROI
// multipliers are proxy calibrations inherited from the operators'
// spreadsheets, not business truth; they are configuration on purpose.
type AnalyticsConfig struct {
	TopCampaigns          int
	TopChannels           int
	TopCompanies          int
	CACSampleSize         int
	CampaignROIMultiplier float64
	ChannelROIMultiplier  float64
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("DASH_HTTP_ADDR", ":8080"),
			Env:             getEnv("DASH_ENV", "development"),
			ReadTimeout:     getDurationEnv("DASH_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("DASH_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getDurationEnv("DASH_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationEnv("DASH_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Upload: UploadConfig{
			Dir:                 getEnv("DASH_UPLOAD_DIR", "uploads"),
			MaxBytes:            getInt64Env("DASH_UPLOAD_MAX_BYTES", 256<<20),
			ChunkThresholdBytes: getInt64Env("DASH_UPLOAD_CHUNK_THRESHOLD", 50<<20),
			BatchSize:           getIntEnv("DASH_UPLOAD_BATCH_SIZE", 10000),
		},
		Cache: CacheConfig{
			Dir: getEnv("DASH_CACHE_DIR", "data"),
			TTL: getDurationEnv("DASH_CACHE_TTL", 0),
		},
		Redis: RedisConfig{
			Addr:     getEnv("DASH_REDIS_ADDR", ""),
			Password: getEnv("DASH_REDIS_PASSWORD", ""),
			DB:       getIntEnv("DASH_REDIS_DB", 0),
		},
		Auth: AuthConfig{
			Enabled:    getBoolEnv("DASH_AUTH_ENABLED", true),
			ViewerKeys: getSliceEnv("DASH_API_KEYS_VIEWER", nil),
			EditorKeys: getSliceEnv("DASH_API_KEYS_EDITOR", nil),
			AdminKeys:  getSliceEnv("DASH_API_KEYS_ADMIN", nil),
			SkipPaths:  getSliceEnv("DASH_AUTH_SKIP_PATHS", []string{"/health"}),
		},
		RateLimit: RateLimitConfig{
			Enabled:     getBoolEnv("DASH_RATE_LIMIT_ENABLED", true),
			RPS:         getFloatEnv("DASH_RATE_LIMIT_RPS", 100),
			Burst:       getIntEnv("DASH_RATE_LIMIT_BURST", 50),
			UploadRPS:   getFloatEnv("DASH_RATE_LIMIT_UPLOAD_RPS", 2),
			UploadBurst: getIntEnv("DASH_RATE_LIMIT_UPLOAD_BURST", 4),
		},
		Log: LogConfig{
			Level:  getEnv("DASH_LOG_LEVEL", "info"),
			Format: getEnv("DASH_LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolEnv("DASH_METRICS_ENABLED", true),
			Addr:    getEnv("DASH_METRICS_ADDR", ":9090"),
			Path:    getEnv("DASH_METRICS_PATH", "/metrics"),
		},
		Analytics: AnalyticsConfig{
			TopCampaigns:          getIntEnv("DASH_ANALYTICS_TOP_CAMPAIGNS", 3),
			TopChannels:           getIntEnv("DASH_ANALYTICS_TOP_CHANNELS", 2),
			TopCompanies:          getIntEnv("DASH_ANALYTICS_TOP_COMPANIES", 10),
			CACSampleSize:         getIntEnv("DASH_ANALYTICS_CAC_SAMPLE", 100),
			CampaignROIMultiplier: getFloatEnv("DASH_ANALYTICS_CAMPAIGN_ROI_MULT", 3.0),
			ChannelROIMultiplier:  getFloatEnv("DASH_ANALYTICS_CHANNEL_ROI_MULT", 2.5),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Auth.Enabled &&
		len(c.Auth.ViewerKeys) == 0 && len(c.Auth.EditorKeys) == 0 && len(c.Auth.AdminKeys) == 0 {
		return fmt.Errorf("at least one API key (DASH_API_KEYS_VIEWER/EDITOR/ADMIN) is required when auth is enabled")
	}
	if c.Upload.BatchSize <= 0 {
		return fmt.Errorf("DASH_UPLOAD_BATCH_SIZE must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// Helper functions for reading environment variables

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getInt64Env(key string, def int64) int64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return def
}

func getFloatEnv(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getSliceEnv(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return def
}
