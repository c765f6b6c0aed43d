package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		StoreDriver:   StoreMongo,
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "hradmin",
		APIBasePath:   "/api/v1",
		MaxBodyBytes:  1048576,
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, StoreSQLite, cfg.StoreDriver)
	assert.Equal(t, "/api/v1", cfg.APIBasePath)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{name: "valid mongo", mutate: func(*Config) {}, ok: true},
		{name: "unknown driver", mutate: func(c *Config) { c.StoreDriver = "redis" }},
		{name: "postgres without url", mutate: func(c *Config) { c.StoreDriver = StorePostgres }},
		{name: "postgres with url", mutate: func(c *Config) {
			c.StoreDriver = StorePostgres
			c.DatabaseURL = "postgres://localhost/hr"
		}, ok: true},
		{name: "relative base path", mutate: func(c *Config) { c.APIBasePath = "api" }},
		{name: "production without secret", mutate: func(c *Config) { c.Environment = "production" }},
		{name: "tiny body limit", mutate: func(c *Config) { c.MaxBodyBytes = 10 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestLoadConsole(t *testing.T) {
	t.Setenv("HRADMIN_API_URL", "http://hr.internal/api/v1")
	t.Setenv("HRADMIN_TIMEOUT", "3s")

	cfg, err := LoadConsole()
	require.NoError(t, err)
	assert.Equal(t, "http://hr.internal/api/v1", cfg.APIURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, "en", cfg.Locale)
}
