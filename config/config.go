package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Store     StoreConfig     `mapstructure:"store"`
	Batch     BatchConfig     `mapstructure:"batch"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string `mapstructure:"host"` // default: "0.0.0.0"
	Port int    `mapstructure:"port"` // default: 3000
	Mode string `mapstructure:"mode"` // "debug", "release", "test"; default: "release"

	// AllowedOrigins lists CORS origins. A trailing "*" matches by prefix.
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// StaticDir is served for every path no route claims. Empty disables it.
	StaticDir string `mapstructure:"static_dir"` // default: "public"
}

// FetchConfig controls outbound page fetching.
type FetchConfig struct {
	// Timeout is the hard budget for a single page fetch.
	Timeout time.Duration `mapstructure:"timeout"` // default: 12s

	// TLSFingerprint dials TLS with a Chrome ClientHello (utls).
	TLSFingerprint bool `mapstructure:"tls_fingerprint"` // default: true

	// MaxBodyBytes caps how much of a response body is read.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"` // default: 10 MiB
}

// AuthConfig controls identity verification and admin access.
type AuthConfig struct {
	// JWTSecret, when set, requires HS256-signed identity tokens.
	// When empty, token claims are decoded without signature verification.
	JWTSecret string `mapstructure:"jwt_secret"`

	// AdminKeys guard the /users/:email endpoints. Empty means open access.
	AdminKeys []string `mapstructure:"admin_keys"`
}

// RateLimitConfig controls per-client rate limiting of fetch endpoints.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per client IP.
	RequestsPerSecond float64 `mapstructure:"rps"` // default: 2

	// Burst is the maximum burst size per client IP.
	Burst int `mapstructure:"burst"` // default: 5
}

// StoreConfig selects and configures the user/item store.
type StoreConfig struct {
	Type string `mapstructure:"type"` // "file" or "mongo"; default: "file"

	// UsersFile and SignInLogFile are used by the file store.
	UsersFile     string `mapstructure:"users_file"`      // default: "users.json"
	SignInLogFile string `mapstructure:"signin_log_file"` // default: "signin_logs.json"

	// MongoURI and MongoDatabase are used by the mongo store.
	MongoURI      string `mapstructure:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database"` // default: "giftme"
}

// BatchConfig controls POST /fetch-items.
type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency"` // default: 4
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // default: "info"
	Format string `mapstructure:"format"` // "json" or "text"; default: "json"
}

// Load reads configuration from an optional config.yaml and GIFTME_*
// environment variables, on top of defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/giftme/")

	v.SetEnvPrefix("GIFTME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: invalid: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowed_origins", []string{
		"http://localhost:5500", "http://127.0.0.1:5500", "http://localhost:3000",
	})
	v.SetDefault("server.static_dir", "public")

	v.SetDefault("fetch.timeout", "12s")
	v.SetDefault("fetch.tls_fingerprint", true)
	v.SetDefault("fetch.max_body_bytes", 10<<20)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.admin_keys", []string{})

	v.SetDefault("ratelimit.rps", 2.0)
	v.SetDefault("ratelimit.burst", 5)

	v.SetDefault("store.type", "file")
	v.SetDefault("store.users_file", "users.json")
	v.SetDefault("store.signin_log_file", "signin_logs.json")
	v.SetDefault("store.mongo_uri", "")
	v.SetDefault("store.mongo_database", "giftme")

	v.SetDefault("batch.concurrency", 4)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

func validate(cfg *Config) error {
	switch cfg.Store.Type {
	case "file":
		if cfg.Store.UsersFile == "" {
			return fmt.Errorf("store.users_file is required for the file store")
		}
	case "mongo":
		if cfg.Store.MongoURI == "" {
			return fmt.Errorf("store.mongo_uri is required when store type is 'mongo' (set GIFTME_STORE_MONGO_URI)")
		}
	default:
		return fmt.Errorf("store type must be 'file' or 'mongo', got: %s", cfg.Store.Type)
	}

	if cfg.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be positive, got: %s", cfg.Fetch.Timeout)
	}
	if cfg.Batch.Concurrency < 1 {
		cfg.Batch.Concurrency = 1
	}
	return nil
}
