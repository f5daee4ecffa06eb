package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Search    SearchConfig    `mapstructure:"search"`
	Formatter FormatterConfig `mapstructure:"formatter"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port           int    `mapstructure:"port"`
	ReadTimeout    int    `mapstructure:"read_timeout"`
	WriteTimeout   int    `mapstructure:"write_timeout"`
	RequestTimeout int    `mapstructure:"request_timeout"`
	RateLimit      int    `mapstructure:"rate_limit"`
	CORSOrigins    string `mapstructure:"cors_origins"`
}

type ProvidersConfig struct {
	Postcodes EndpointConfig `mapstructure:"postcodes"`
	Routing   EndpointConfig `mapstructure:"routing"`
}

// EndpointConfig describes a keyless HTTP provider.
type EndpointConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"`
}

func (e EndpointConfig) TimeoutDuration() time.Duration {
	return time.Duration(e.Timeout) * time.Second
}

type SearchConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout int    `mapstructure:"timeout"`
}

type FormatterConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	Validation string `mapstructure:"validation"`
	Timeout    int    `mapstructure:"timeout"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

type ValkeyConfig struct {
	Addr    string `mapstructure:"addr"`
	Enabled bool   `mapstructure:"enabled"`
}

type TelemetryConfig struct {
	ServiceName  string `mapstructure:"service_name"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	Enabled      bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var validationPolicies = map[string]bool{"off": true, "warn": true, "reject": true, "truncate": true}

// Load reads configuration from .env, an optional config file and environment variables.
func Load(service string) (*Config, error) {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 60)
	v.SetDefault("server.request_timeout", 45)
	v.SetDefault("server.rate_limit", 30)
	v.SetDefault("server.cors_origins", "http://localhost:3000, http://localhost:5173")
	v.SetDefault("providers.postcodes.base_url", "https://api.postcodes.io")
	v.SetDefault("providers.postcodes.timeout", 10)
	v.SetDefault("providers.routing.base_url", "https://router.project-osrm.org")
	v.SetDefault("providers.routing.timeout", 8)
	v.SetDefault("search.base_url", "https://api.tavily.com")
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.timeout", 20)
	v.SetDefault("formatter.base_url", "https://api.openai.com/v1")
	v.SetDefault("formatter.api_key", "")
	v.SetDefault("formatter.model", "gpt-5-nano")
	v.SetDefault("formatter.validation", "off")
	v.SetDefault("formatter.timeout", 40)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.enabled", false)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.enabled", false)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: MEETPOINT_SEARCH_API_KEY → search.api_key
	v.SetEnvPrefix("MEETPOINT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Provider-conventional names are accepted too.
	_ = v.BindEnv("search.api_key", "MEETPOINT_SEARCH_API_KEY", "TAVILY_API_KEY")
	_ = v.BindEnv("formatter.api_key", "MEETPOINT_FORMATTER_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("log.level", "MEETPOINT_LOG_LEVEL", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "server.request_timeout must be positive")
	}
	if c.Providers.Postcodes.BaseURL == "" {
		errs = append(errs, "providers.postcodes.base_url is required")
	}
	if c.Providers.Routing.BaseURL == "" {
		errs = append(errs, "providers.routing.base_url is required")
	}
	if c.Search.APIKey == "" {
		errs = append(errs, "search.api_key is required (MEETPOINT_SEARCH_API_KEY or TAVILY_API_KEY)")
	}
	if c.Formatter.APIKey == "" {
		errs = append(errs, "formatter.api_key is required (MEETPOINT_FORMATTER_API_KEY or OPENAI_API_KEY)")
	}
	if c.Formatter.Model == "" {
		errs = append(errs, "formatter.model is required")
	}
	if !validationPolicies[c.Formatter.Validation] {
		errs = append(errs, fmt.Sprintf("formatter.validation must be off, warn, reject or truncate, got %q", c.Formatter.Validation))
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required when nats is enabled")
	}
	if c.Valkey.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required when valkey is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
