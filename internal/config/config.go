// Package config loads service settings from an optional .env file and the
// environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends.
const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

type Config struct {
	Port    string `mapstructure:"port"`
	Storage string `mapstructure:"storage"`
	Mongo   struct {
		URI      string `mapstructure:"uri"`
		Database string `mapstructure:"database"`
	} `mapstructure:"mongo"`
	JWT struct {
		Secret string        `mapstructure:"secret"`
		Expiry time.Duration `mapstructure:"expiry"`
	} `mapstructure:"jwt"`
	Logging struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"logging"`
	Frontend struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"frontend"`
	RateLimit struct {
		Enabled bool          `mapstructure:"enabled"`
		Max     int           `mapstructure:"max"`
		Window  time.Duration `mapstructure:"window"`
	} `mapstructure:"rate_limit"`
}

// Load reads .env files (if present) and then the environment.
func Load(envFiles ...string) (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	v.SetDefault("port", "8080")
	v.SetDefault("storage", StorageMongo)
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "busmaint")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("frontend.url", "http://localhost:3000")
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.max", 100)
	v.SetDefault("rate_limit.window", "15m")

	_ = v.BindEnv("port", "PORT")
	_ = v.BindEnv("storage", "STORAGE")
	_ = v.BindEnv("mongo.uri", "MONGO_URI")
	_ = v.BindEnv("mongo.database", "MONGO_DB")
	_ = v.BindEnv("jwt.secret", "JWT_SECRET")
	_ = v.BindEnv("jwt.expiry", "JWT_EXPIRY")
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.format", "LOG_FORMAT")
	_ = v.BindEnv("frontend.url", "FRONTEND_URL")
	_ = v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	_ = v.BindEnv("rate_limit.max", "RATE_LIMIT_MAX")
	_ = v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))

	switch c.Storage {
	case StorageMongo:
		if c.JWT.Secret == "" {
			return Config{}, fmt.Errorf("config: JWT_SECRET is required with mongo storage")
		}
	case StorageMemory:
	default:
		return Config{}, fmt.Errorf("config: unknown STORAGE %q", c.Storage)
	}
	if c.RateLimit.Enabled && (c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0) {
		return Config{}, fmt.Errorf("config: rate limit needs a positive RATE_LIMIT_MAX and RATE_LIMIT_WINDOW")
	}
	return c, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}
