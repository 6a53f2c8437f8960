package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vesi/backend/internal/domain/connect"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Storage   StorageConfig
	Redis     RedisConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Providers map[string]ProviderCredentials
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
	// BaseURL is the externally reachable origin used to build OAuth
	// redirect URIs (e.g. "https://app.vesi.example")
	BaseURL string
}

// StorageConfig selects the credential store backend
type StorageConfig struct {
	// Backend is one of "memory", "redis", "file"
	Backend string
	// FilePath is the sqlite database path for the file backend
	FilePath string
	// AllowMemoryFallback permits falling back to the in-memory store when
	// Redis is unreachable
	AllowMemoryFallback bool
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// ProviderCredentials holds the OAuth client credentials for one provider.
// A provider with an empty ClientID is not offered as connectable.
type ProviderCredentials struct {
	ClientID     string
	ClientSecret string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with VESI_ prefix (e.g. VESI_PROVIDERS_STRAVA_CLIENT_ID)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("VESI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:    v.GetString("app.name"),
			Env:     v.GetString("app.env"),
			Port:    v.GetString("app.port"),
			BaseURL: v.GetString("app.base_url"),
		},
		Storage: StorageConfig{
			Backend:             v.GetString("storage.backend"),
			FilePath:            v.GetString("storage.file_path"),
			AllowMemoryFallback: v.GetBool("storage.allow_memory_fallback"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Providers: loadProviderCredentials(v),
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadProviderCredentials reads the [providers.{name}] tables. Environment
// overrides follow the same keys: VESI_PROVIDERS_STRAVA_CLIENT_ID,
// VESI_PROVIDERS_STRAVA_CLIENT_SECRET, and so on per provider.
func loadProviderCredentials(v *viper.Viper) map[string]ProviderCredentials {
	creds := make(map[string]ProviderCredentials)
	for _, code := range connect.AllProviders() {
		name := code.String()
		creds[name] = ProviderCredentials{
			ClientID:     v.GetString("providers." + name + ".client_id"),
			ClientSecret: v.GetString("providers." + name + ".client_secret"),
		}
	}
	return creds
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "vesi-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.BaseURL == "" {
		cfg.App.BaseURL = "http://localhost:" + cfg.App.Port
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "file"
	}
	if cfg.Storage.FilePath == "" {
		cfg.Storage.FilePath = "vesi.db"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	// NOTE: CORS origins are intentionally not given a default fallback to "*".
	// An empty list means no cross-origin requests are allowed until explicitly
	// configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID"}
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "memory", "redis", "file":
	default:
		return fmt.Errorf("storage.backend must be one of memory, redis, file; got %q", c.Storage.Backend)
	}

	if c.App.Env == "production" {
		if !strings.HasPrefix(c.App.BaseURL, "https://") {
			return fmt.Errorf("app.base_url must be https in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		// A configured provider without a secret cannot complete the
		// code exchange server-side; fail fast instead of at callback time.
		for name, pc := range c.Providers {
			if pc.ClientID != "" && pc.ClientSecret == "" {
				return fmt.Errorf("providers.%s.client_secret is required when client_id is set in production", name)
			}
		}
	}

	return nil
}

// RedirectURI returns the OAuth callback URI registered with providers
func (c *Config) RedirectURI() string {
	return strings.TrimRight(c.App.BaseURL, "/") + "/api/v1/connect/callback"
}
