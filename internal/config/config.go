package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Cache    CacheConfig    `yaml:"cache"`
	Logging  LoggingConfig  `yaml:"logging"`
	CORS     CORSConfig     `yaml:"cors"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	SigningKey string        `yaml:"signing_key"`
	Issuer     string        `yaml:"issuer"`
	Expiry     time.Duration `yaml:"expiry"`
}

// UpstreamConfig points at the core DriveLink API, which owns event and
// approval-request state and is the final authority on every action.
type UpstreamConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	ServiceToken string        `yaml:"service_token"`
}

type CacheConfig struct {
	Backend   string        `yaml:"backend"` // "memory" or "redis"
	BundleTTL time.Duration `yaml:"bundle_ttl"`
	TierTTL   time.Duration `yaml:"tier_ttl"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Filename   string `yaml:"filename"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	ExposedHeaders   []string `yaml:"exposed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAge           int      `yaml:"max_age"`
}

// Load builds the configuration from defaults, an optional YAML file named
// by CONFIG_PATH, and environment variables, in that order (env wins).
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		JWT: JWTConfig{
			SigningKey: "default-signing-key-change-in-production",
			Issuer:     "drivelink",
			Expiry:     24 * time.Hour,
		},
		Upstream: UpstreamConfig{
			BaseURL: "http://localhost:9000",
			Timeout: 5 * time.Second,
		},
		Cache: CacheConfig{
			Backend:   "memory",
			BundleTTL: 30 * time.Second,
			TierTTL:   5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Filename:   "logs/dl-backend.log",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		},
		CORS: CORSConfig{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		},
	}
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Port, "SERVER_PORT")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "REDIS_DB")
	setString(&cfg.JWT.SigningKey, "JWT_SIGNING_KEY")
	setString(&cfg.JWT.Issuer, "JWT_ISSUER")
	setDuration(&cfg.JWT.Expiry, "JWT_EXPIRY")
	setString(&cfg.Upstream.BaseURL, "UPSTREAM_BASE_URL")
	setDuration(&cfg.Upstream.Timeout, "UPSTREAM_TIMEOUT")
	setString(&cfg.Upstream.ServiceToken, "UPSTREAM_SERVICE_TOKEN")
	setString(&cfg.Cache.Backend, "CACHE_BACKEND")
	setDuration(&cfg.Cache.BundleTTL, "CACHE_BUNDLE_TTL")
	setDuration(&cfg.Cache.TierTTL, "CACHE_TIER_TTL")
	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Logging.Format, "LOG_FORMAT")
	setString(&cfg.Logging.Filename, "LOG_FILENAME")
	setStringSlice(&cfg.CORS.AllowedOrigins, "CORS_ALLOWED_ORIGINS")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		*dst = out
	}
}
