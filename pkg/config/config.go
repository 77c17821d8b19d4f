package config

import (
	"fmt"
	"os"
	"time"

	"vodnet/pkg/utils"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Address         string        `yaml:"address"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	// Provider is the hosted auth+database backend everything is delegated to.
	Provider struct {
		BaseURL        string        `yaml:"base_url"`
		AnonKey        string        `yaml:"anon_key"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
		// SessionFile persists the device session across restarts. Empty keeps
		// the session in memory only.
		SessionFile string `yaml:"session_file"`
		Realtime    struct {
			Enabled      bool          `yaml:"enabled"`
			PingInterval time.Duration `yaml:"ping_interval"`
			ReconnectMin time.Duration `yaml:"reconnect_min"`
			ReconnectMax time.Duration `yaml:"reconnect_max"`
		} `yaml:"realtime"`
	} `yaml:"provider"`

	Locale struct {
		Default string `yaml:"default"`
	} `yaml:"locale"`

	Catalog struct {
		ListCacheTTL  time.Duration `yaml:"list_cache_ttl"`
		TitleCacheTTL time.Duration `yaml:"title_cache_ttl"`
	} `yaml:"catalog"`

	History struct {
		BatchSize     int           `yaml:"batch_size"`
		FlushInterval time.Duration `yaml:"flush_interval"`
	} `yaml:"history"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Tracing struct {
		Enabled     bool    `yaml:"enabled"`
		ServiceName string  `yaml:"service_name"`
		JaegerURL   string  `yaml:"jaeger_url"`
		Environment string  `yaml:"environment"`
		SampleRate  float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size"`
	} `yaml:"redis"`

	RateLimiting struct {
		Enabled bool `yaml:"enabled"`

		HTTP struct {
			RequestsPerSecond float64 `yaml:"requests_per_second"`
			Burst             int     `yaml:"burst"`
			MaxConcurrent     int     `yaml:"max_concurrent"` // global concurrent HTTP requests
		} `yaml:"http"`
	} `yaml:"rate_limiting"`
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	// Server
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be > 0")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be > 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}

	// Provider
	if c.Provider.BaseURL == "" {
		return fmt.Errorf("provider.base_url must not be empty")
	}
	if c.Provider.AnonKey == "" {
		return fmt.Errorf("provider.anon_key must not be empty")
	}
	if c.Provider.RequestTimeout <= 0 {
		return fmt.Errorf("provider.request_timeout must be > 0")
	}
	if c.Provider.Realtime.Enabled {
		if c.Provider.Realtime.PingInterval <= 0 {
			return fmt.Errorf("provider.realtime.ping_interval must be > 0 when realtime is enabled")
		}
		if c.Provider.Realtime.ReconnectMin <= 0 || c.Provider.Realtime.ReconnectMax < c.Provider.Realtime.ReconnectMin {
			return fmt.Errorf("provider.realtime reconnect delays must satisfy 0 < min <= max")
		}
	}

	// Locale
	if c.Locale.Default == "" {
		return fmt.Errorf("locale.default must not be empty")
	}

	// Catalog
	if c.Catalog.ListCacheTTL < 0 || c.Catalog.TitleCacheTTL < 0 {
		return fmt.Errorf("catalog cache TTLs must be >= 0")
	}

	// History
	if c.History.BatchSize <= 0 {
		return fmt.Errorf("history.batch_size must be > 0")
	}
	if c.History.FlushInterval <= 0 {
		return fmt.Errorf("history.flush_interval must be > 0")
	}

	// Monitoring
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort <= 0 {
		return fmt.Errorf("monitoring.prometheus_port must be > 0 when prometheus_enabled=true")
	}

	// Logging
	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level must not be empty")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Address == "" {
			return fmt.Errorf("redis.address must not be empty when redis.enabled=true")
		}
		if c.Redis.PoolSize <= 0 {
			return fmt.Errorf("redis.pool_size must be > 0 when redis.enabled=true")
		}
	}

	// Rate limiting
	if c.RateLimiting.Enabled {
		if c.RateLimiting.HTTP.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limiting.http.requests_per_second must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.HTTP.Burst <= 0 {
			return fmt.Errorf("rate_limiting.http.burst must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.HTTP.MaxConcurrent < 0 {
			return fmt.Errorf("rate_limiting.http.max_concurrent must be >= 0 when rate limiting is enabled")
		}
	}

	return nil
}

// Load reads configuration from YAML file, applies defaults and env overrides.
func Load(configPath string) (*Config, error) {
	// If file does not exist, fall back to defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	// Default values
	cfg.Server.Address = ":8080"
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.ShutdownTimeout = 30 * time.Second

	cfg.Provider.BaseURL = "http://localhost:54321"
	cfg.Provider.AnonKey = "dev-anon-key"
	cfg.Provider.RequestTimeout = 10 * time.Second
	cfg.Provider.Realtime.Enabled = true
	cfg.Provider.Realtime.PingInterval = 30 * time.Second
	cfg.Provider.Realtime.ReconnectMin = time.Second
	cfg.Provider.Realtime.ReconnectMax = 30 * time.Second

	cfg.Locale.Default = "ru"

	cfg.Catalog.ListCacheTTL = 2 * time.Minute
	cfg.Catalog.TitleCacheTTL = 5 * time.Minute

	cfg.History.BatchSize = 20
	cfg.History.FlushInterval = 10 * time.Second

	cfg.Monitoring.PrometheusEnabled = true
	cfg.Monitoring.PrometheusPort = 9090

	cfg.Tracing.Enabled = false
	cfg.Tracing.ServiceName = "vodnet"
	cfg.Tracing.JaegerURL = "http://localhost:14268/api/traces"
	cfg.Tracing.Environment = "development"
	cfg.Tracing.SampleRate = 1.0

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	cfg.Redis.Enabled = false
	cfg.Redis.Address = "localhost:6379"
	cfg.Redis.DB = 0
	cfg.Redis.PoolSize = 10

	// Rate limiting defaults (disabled by default)
	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.HTTP.RequestsPerSecond = 50
	cfg.RateLimiting.HTTP.Burst = 100
	cfg.RateLimiting.HTTP.MaxConcurrent = 0

	return cfg
}

func (c *Config) applyEnvOverrides() {
	// Apply environment variable overrides
	if addr := os.Getenv("VODNET_SERVER_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}
	if url := os.Getenv("VODNET_PROVIDER_URL"); url != "" {
		c.Provider.BaseURL = url
	}
	if key := os.Getenv("VODNET_PROVIDER_ANON_KEY"); key != "" {
		c.Provider.AnonKey = key
	}
	if level := os.Getenv("VODNET_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if raw := os.Getenv("VODNET_PROVIDER_TIMEOUT"); raw != "" {
		c.Provider.RequestTimeout = utils.ParseDurationSafe(raw, c.Provider.RequestTimeout)
	}
	if addr := os.Getenv("VODNET_REDIS_ADDRESS"); addr != "" {
		c.Redis.Address = addr
	}
}
