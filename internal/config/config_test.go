package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
http:
  port: 8080
database:
  host: db.internal
  port: 5433
  user: fulfillment
  password: secret
  database: pedidos
rabbitmq:
  host: mq.internal
  port: 5673
  user: guest
  password: guest
fulfillment:
  block_on_shortage: true
  max_retries: 3
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "pedidos", cfg.Database.Database)
	assert.Equal(t, "mq.internal", cfg.RabbitMQ.Host)
	assert.True(t, cfg.Fulfillment.BlockOnShortage)
	assert.Equal(t, 3, cfg.Fulfillment.MaxRetries)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
rabbitmq:
  host: localhost
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.HTTP.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 5672, cfg.RabbitMQ.Port)
	assert.False(t, cfg.Fulfillment.BlockOnShortage)
	assert.Equal(t, 0, cfg.Fulfillment.MaxRetries)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "http: [not a mapping")
	_, err := Load(path)
	assert.Error(t, err)
}
