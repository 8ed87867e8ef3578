// Package config reads process configuration from TABILOG_* environment
// variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "TABILOG"

const (
	DataSourceFixture = "fixture"
	DataSourceRemote  = "remote"
)

// Config captures everything main needs to wire the server.
type Config struct {
	Env  string
	Addr string

	DataSource  string
	APIBaseURL  string
	HTTPTimeout time.Duration

	UseMockMap       bool
	GoogleMapsAPIKey string

	Redis    RedisConfig
	CacheTTL time.Duration

	// JWTSigningKey enables bearer-token verification; empty forwards
	// tokens unverified.
	JWTSigningKey string
	JWTIssuer     string

	// AdminToken guards the operator endpoints; empty disables them.
	AdminToken string

	LogLevel  string
	LogFormat string

	RateLimitEnabled        bool
	RateLimitReadPerMinute  int
	RateLimitWritePerMinute int

	SessionIdleTimeout   time.Duration
	SessionSweepInterval time.Duration
	ShutdownTimeout      time.Duration
}

// RedisConfig holds connection settings. An empty URL disables the cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// FromEnv builds a Config from the environment so main stays lean.
func FromEnv() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return Load(v)
}

// Load reads a Config from v, applying defaults first.
func Load(v *viper.Viper) (Config, error) {
	setDefaults(v)

	cfg := Config{
		Env:              strings.ToLower(v.GetString("env")),
		Addr:             v.GetString("addr"),
		DataSource:       strings.ToLower(strings.TrimSpace(v.GetString("data_source"))),
		APIBaseURL:       strings.TrimRight(strings.TrimSpace(v.GetString("api_base_url")), "/"),
		HTTPTimeout:      v.GetDuration("http_timeout"),
		UseMockMap:       v.GetBool("use_mock_map"),
		GoogleMapsAPIKey: v.GetString("google_maps_api_key"),
		Redis: RedisConfig{
			URL:          v.GetString("redis_url"),
			PoolSize:     v.GetInt("redis_pool_size"),
			MinIdleConns: v.GetInt("redis_min_idle_conns"),
			DialTimeout:  v.GetDuration("redis_dial_timeout"),
			ReadTimeout:  v.GetDuration("redis_read_timeout"),
			WriteTimeout: v.GetDuration("redis_write_timeout"),
		},
		CacheTTL:                v.GetDuration("cache_ttl"),
		JWTSigningKey:           v.GetString("jwt_signing_key"),
		JWTIssuer:               v.GetString("jwt_issuer"),
		AdminToken:              v.GetString("admin_token"),
		LogLevel:                strings.ToLower(v.GetString("log_level")),
		LogFormat:               strings.ToLower(v.GetString("log_format")),
		RateLimitEnabled:        v.GetBool("rate_limit_enabled"),
		RateLimitReadPerMinute:  v.GetInt("rate_limit_read_per_minute"),
		RateLimitWritePerMinute: v.GetInt("rate_limit_write_per_minute"),
		SessionIdleTimeout:      v.GetDuration("session_idle_timeout"),
		SessionSweepInterval:    v.GetDuration("session_sweep_interval"),
		ShutdownTimeout:         v.GetDuration("shutdown_timeout"),
	}

	if cfg.DataSource == "" {
		cfg.DataSource = DataSourceFixture
		if cfg.APIBaseURL != "" {
			cfg.DataSource = DataSourceRemote
		}
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("addr", ":8080")
	v.SetDefault("data_source", "")
	v.SetDefault("api_base_url", "")
	v.SetDefault("http_timeout", 10*time.Second)
	v.SetDefault("use_mock_map", false)
	v.SetDefault("google_maps_api_key", "")
	v.SetDefault("redis_url", "")
	v.SetDefault("redis_pool_size", 10)
	v.SetDefault("redis_min_idle_conns", 2)
	v.SetDefault("redis_dial_timeout", 5*time.Second)
	v.SetDefault("redis_read_timeout", 3*time.Second)
	v.SetDefault("redis_write_timeout", 3*time.Second)
	v.SetDefault("cache_ttl", time.Minute)
	v.SetDefault("jwt_signing_key", "")
	v.SetDefault("jwt_issuer", "")
	v.SetDefault("admin_token", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("rate_limit_enabled", true)
	v.SetDefault("rate_limit_read_per_minute", 120)
	v.SetDefault("rate_limit_write_per_minute", 30)
	v.SetDefault("session_idle_timeout", 2*time.Hour)
	v.SetDefault("session_sweep_interval", 5*time.Minute)
	v.SetDefault("shutdown_timeout", 10*time.Second)
}

func (c Config) validate() error {
	switch c.DataSource {
	case DataSourceFixture:
	case DataSourceRemote:
		if c.APIBaseURL == "" {
			return fmt.Errorf("%s_API_BASE_URL is required when the data source is remote", envPrefix)
		}
	default:
		return fmt.Errorf("%s_DATA_SOURCE must be %q or %q, got %q", envPrefix, DataSourceFixture, DataSourceRemote, c.DataSource)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("%s_HTTP_TIMEOUT must be positive", envPrefix)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("%s_CACHE_TTL must be positive", envPrefix)
	}
	if c.SessionIdleTimeout <= 0 || c.SessionSweepInterval <= 0 {
		return fmt.Errorf("%s_SESSION_IDLE_TIMEOUT and %s_SESSION_SWEEP_INTERVAL must be positive", envPrefix, envPrefix)
	}
	if c.RateLimitEnabled && (c.RateLimitReadPerMinute < 0 || c.RateLimitWritePerMinute < 0) {
		return fmt.Errorf("%s_RATE_LIMIT_*_PER_MINUTE must not be negative", envPrefix)
	}
	return nil
}
