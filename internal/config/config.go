package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName       string
	AppEnv        string
	AppPort       string
	DatabaseURL   string
	RedisURL      string
	NATSURL       string
	EventSubject  string
	JWTSecret     string
	MapCacheTTL   time.Duration
	RateLimitMax  int
	RateLimitSpan time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PEERGRADE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Peergrade API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("event.subject", "peergrade")
	v.SetDefault("map.cache_ttl", "5m")
	v.SetDefault("rate_limit_max", 30)
	v.SetDefault("rate_limit_span", "1m")

	ttl, err := time.ParseDuration(v.GetString("map.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid review map cache ttl: %w", err)
	}

	span, err := time.ParseDuration(v.GetString("rate_limit_span"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid rate limit span: %w", err)
	}

	cfg := Config{
		AppName:       v.GetString("app.name"),
		AppEnv:        v.GetString("app.env"),
		AppPort:       v.GetString("app.port"),
		DatabaseURL:   v.GetString("database.url"),
		RedisURL:      v.GetString("redis.url"),
		NATSURL:       v.GetString("nats.url"),
		EventSubject:  v.GetString("event.subject"),
		JWTSecret:     v.GetString("jwt.secret"),
		MapCacheTTL:   ttl,
		RateLimitMax:  v.GetInt("rate_limit_max"),
		RateLimitSpan: span,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.RateLimitMax <= 0 {
		cfg.RateLimitMax = 30
	}

	return cfg, nil
}
