package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the seedlift API server.
// It is constructed once at process start and injected into the session
// service, the token codec and the HTTP middleware.
type Config struct {
	HTTPPort        string
	MongoURI        string
	MongoDBName     string
	RedisAddr       string
	LogLevel        string
	LogPretty       bool
	OtelServiceName string

	// Session/token settings. These have no defaults: the process refuses
	// to start when any of them is missing or non-numeric.
	JWTSecret          string
	AccessTokenCookie  string
	RefreshTokenCookie string
	AccessTokenTTL     int // seconds
	RefreshTokenTTL    int // seconds

	CookieDomain string
	CookieSecure bool

	// GeoAPIURL overrides the geolocation endpoint, mainly for tests.
	GeoAPIURL string
}

// AccessTokenDuration returns the access token TTL as a duration.
func (c *Config) AccessTokenDuration() time.Duration {
	return time.Duration(c.AccessTokenTTL) * time.Second
}

// RefreshTokenDuration returns the refresh token TTL as a duration.
func (c *Config) RefreshTokenDuration() time.Duration {
	return time.Duration(c.RefreshTokenTTL) * time.Second
}

// LoadConfig reads configuration from environment variables (and an
// optional config.yaml in the working directory) and validates it.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017/seedlift_dev")
	v.SetDefault("MONGO_DB_NAME", "seedlift_dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", true)
	v.SetDefault("OTEL_SERVICE_NAME", "seedlift-api")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("COOKIE_DOMAIN", "")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("GEO_API_URL", "https://geolocation-db.com/json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		HTTPPort:        v.GetString("HTTP_PORT"),
		MongoURI:        v.GetString("MONGO_URI"),
		MongoDBName:     v.GetString("MONGO_DB_NAME"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogPretty:       v.GetBool("LOG_PRETTY"),
		OtelServiceName: v.GetString("OTEL_SERVICE_NAME"),

		JWTSecret:          v.GetString("JWT_SECRET"),
		AccessTokenCookie:  v.GetString("ACCESS_TOKEN_COOKIE"),
		RefreshTokenCookie: v.GetString("REFRESH_TOKEN_COOKIE"),
		AccessTokenTTL:     v.GetInt("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL:    v.GetInt("REFRESH_TOKEN_TTL"),

		CookieDomain: v.GetString("COOKIE_DOMAIN"),
		CookieSecure: v.GetBool("COOKIE_SECURE"),
		GeoAPIURL:    v.GetString("GEO_API_URL"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable not found")
	}
	if c.AccessTokenCookie == "" {
		return fmt.Errorf("ACCESS_TOKEN_COOKIE environment variable not found")
	}
	if c.RefreshTokenCookie == "" {
		return fmt.Errorf("REFRESH_TOKEN_COOKIE environment variable not found")
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL environment variable is not a positive number")
	}
	if c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("REFRESH_TOKEN_TTL environment variable is not a positive number")
	}
	return nil
}
