package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"peoplegomodule/logging"
	"peoplegomodule/people"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const configFileName = "config.yaml"

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), configFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "mongodb://localhost:27017", config.Mongo.URI)
	assert.Equal(t, "people", config.Mongo.Database)
	assert.Equal(t, people.MultiFood, config.FoodVariant())
	assert.Equal(t, "info", config.Logging.Level)
	assert.False(t, config.Events.Enabled)
	assert.True(t, config.Metrics.Enabled)
}

func TestLoadConfigWithEnvVars(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("MONGO_CONNECT_TIMEOUT", "3s")
	t.Setenv("PEOPLE_FOOD_VARIANT", "single")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_CONSOLE", "true")
	t.Setenv("EVENTS_ENABLED", "true")
	t.Setenv("EVENTS_BACKEND", "local")
	t.Setenv("EVENTS_PUBLISH_TIMEOUT", "750ms")
	t.Setenv("METRICS_NAMESPACE", "tutorial")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "mongodb://db:27017", config.Mongo.URI)
	assert.Equal(t, 3*time.Second, config.Mongo.ConnectTimeout)
	assert.Equal(t, people.SingleFood, config.FoodVariant())
	assert.Equal(t, "debug", config.Logging.Level)
	assert.True(t, config.Logging.Console)
	assert.True(t, config.Events.Enabled)
	assert.Equal(t, "local", config.Events.Backend)
	assert.Equal(t, 750*time.Millisecond, config.Events.PublishTimeout)
	assert.Equal(t, "tutorial", config.Metrics.Namespace)
	assert.Equal(t, "api", config.Metrics.Subsystem)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
mongo:
  uri: mongodb://file:27017
  database: tutorial
  connectTimeout: 5s
schema:
  foodVariant: single
logging:
  level: warn
  fileName: /var/log/people.log
events:
  enabled: true
  backend: local
  topic: people.changes
`)
	t.Setenv("MONGO_DATABASE", "from-env")

	config, err := LoadConfigFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "mongodb://file:27017", config.Mongo.URI)
	assert.Equal(t, "from-env", config.Mongo.Database, "env overrides the file")
	assert.Equal(t, 5*time.Second, config.Mongo.ConnectTimeout)
	assert.Equal(t, people.SingleFood, config.FoodVariant())
	assert.Equal(t, "people.changes", config.Events.Topic)
	assert.Equal(t, "kafka-producer.yaml", config.Events.KafkaConfFile, "defaults fill unset keys")
	assert.Equal(t, "main", config.Logging.LoggerName)
}

func TestLoadConfigFromFileErrors(t *testing.T) {
	_, err := LoadConfigFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "error reading config file")

	_, err = LoadConfigFromFile(writeConfig(t, "mongo: [not, a, map"))
	assert.ErrorContains(t, err, "error parsing YAML config file")

	_, err = LoadConfigFromFile(writeConfig(t, "schema:\n  foodVariant: both\n"))
	assert.ErrorContains(t, err, "unknown food variant")

	_, err = LoadConfigFromFile(writeConfig(t, "events:\n  enabled: true\n  backend: carrier-pigeon\n"))
	assert.ErrorContains(t, err, "unknown events backend")

	t.Setenv("LOG_MAX_BACKUPS", "many")
	_, err = LoadConfigFromFile(writeConfig(t, "mongo:\n  database: x\n"))
	assert.ErrorContains(t, err, "error parsing environment")
}

func TestLoadConfigWithDefaults(t *testing.T) {
	config, err := LoadConfigWithDefaults(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "people", config.Mongo.Database)

	config, err = LoadConfigWithDefaults(writeConfig(t, "mongo:\n  database: fromfile\n"))
	require.NoError(t, err)
	assert.Equal(t, "fromfile", config.Mongo.Database)

	_, err = LoadConfigWithDefaults(writeConfig(t, "mongo:\n  uri: \"\"\n"))
	assert.ErrorContains(t, err, "mongo uri is required")
}

func TestConvertToLoggerConfig(t *testing.T) {
	raw := DefaultConfig().Logging
	raw.Level = "error"

	cfg := raw.ConvertToLoggerConfig()
	assert.Equal(t, logging.ErrorLevel, cfg.Level)
	assert.Equal(t, "/tmp/people.log", cfg.FilePath)
	assert.Equal(t, "people", cfg.ServiceName)
	assert.Equal(t, logging.DefaultMaxBackups, cfg.MaxBackups)
	require.NoError(t, cfg.Validate())

	store := DefaultConfig().StoreConfig()
	assert.Equal(t, "people", store.Database)
}
