package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "default-app-id", cfg.Session.AppID)
	assert.Equal(t, StoreMongo, cfg.Store.Driver)
	assert.Equal(t, FeedRedis, cfg.Store.FeedDriver)
	assert.Equal(t, "supplier_registry", cfg.Mongo.Database)
	assert.Equal(t, 10*time.Second, cfg.Mongo.Timeout)
	assert.True(t, cfg.Development())
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"APP_ID":             "providex",
		"INITIAL_AUTH_TOKEN": "tok",
		"AUTH_TOKEN_SECRET":  "secret",
		"STORE_DRIVER":       "mongo",
		"FEED_DRIVER":        "mongo",
		"REDIS_DB":           "3",
		"ENV":                "production",
	}))
	require.NoError(t, err)

	assert.Equal(t, "providex", cfg.Session.AppID)
	assert.Equal(t, "tok", cfg.Session.InitialToken)
	assert.Equal(t, FeedChangeStream, cfg.Store.FeedDriver)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.False(t, cfg.Development())
}

func TestLoadWith_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown store":      {"STORE_DRIVER": "postgres"},
		"unknown feed":       {"FEED_DRIVER": "kafka"},
		"token sans secret":  {"INITIAL_AUTH_TOKEN": "tok"},
		"malformed redis db": {"REDIS_DB": "one"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadWith(context.Background(), envconfig.MapLookuper(env))
			assert.Error(t, err)
		})
	}
}

func TestValidate_MemoryIgnoresFeed(t *testing.T) {
	cfg := &Config{
		Session: SessionConfig{AppID: "a"},
		Store:   StoreConfig{Driver: StoreMemory, FeedDriver: "whatever"},
	}
	assert.NoError(t, cfg.Validate())
}
