package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"

	FeedRedis        = "redis"
	FeedChangeStream = "mongo"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Session SessionConfig
	Store   StoreConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

// SessionConfig drives the one-time sign-in. Without an initial token the
// process signs in anonymously.
type SessionConfig struct {
	AppID        string `env:"APP_ID, default=default-app-id"`
	InitialToken string `env:"INITIAL_AUTH_TOKEN"`
	TokenSecret  string `env:"AUTH_TOKEN_SECRET"`
}

type StoreConfig struct {
	Driver     string `env:"STORE_DRIVER, default=mongo"`
	FeedDriver string `env:"FEED_DRIVER,  default=redis"`
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,      default=supplier_registry"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	DB       int    `env:"REDIS_DB,   default=0"`
	Password string `env:"REDIS_PASSWORD"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration from l and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects driver combinations the server cannot assemble.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreMongo:
		switch c.Store.FeedDriver {
		case FeedRedis, FeedChangeStream:
		default:
			return fmt.Errorf("config: unknown FEED_DRIVER %q (want %q or %q)", c.Store.FeedDriver, FeedRedis, FeedChangeStream)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q (want %q or %q)", c.Store.Driver, StoreMongo, StoreMemory)
	}
	if c.Session.AppID == "" {
		return fmt.Errorf("config: APP_ID must not be empty")
	}
	if c.Session.InitialToken != "" && c.Session.TokenSecret == "" {
		return fmt.Errorf("config: INITIAL_AUTH_TOKEN requires AUTH_TOKEN_SECRET")
	}
	return nil
}

// Development reports whether human-friendly logging should be used.
func (c *Config) Development() bool {
	return c.Env == "development"
}
