package app

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"peoplegomodule/docstore"
	"peoplegomodule/internal/config"
	"peoplegomodule/logging"
	"peoplegomodule/messagebus"
	"peoplegomodule/people"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, cfg *config.RawConfig, opts Options) (*Application, *logging.MockLogger) {
	t.Helper()
	logger := logging.NewMockLogger()
	app, err := NewApplication(context.Background(), cfg, logger, opts)
	require.NoError(t, err)
	return app, logger
}

func TestApplicationLocalLifecycle(t *testing.T) {
	cfg := config.DefaultConfig()
	app, logger := newTestApp(t, cfg, Options{Local: true})

	require.NoError(t, app.Start())
	assert.Same(t, cfg, app.Config())
	assert.Equal(t, people.MultiFood, app.Service().Schema().Variant)

	created, err := app.Service().CreateAndSavePerson(app.Context())
	require.NoError(t, err)
	found, err := app.Service().FindPersonByID(app.Context(), created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, created, found)

	var buf bytes.Buffer
	require.NoError(t, app.WriteMetrics(&buf))
	assert.Contains(t, buf.String(), `people_api_request_count{method="create_and_save_person"} 1`)
	assert.Contains(t, buf.String(), `people_api_request_latency_microseconds_count{method="find_person_by_id"} 1`)

	assert.False(t, app.IsShuttingDown())
	require.NoError(t, app.Shutdown())
	assert.True(t, app.IsShuttingDown())

	assert.True(t, logger.HasLogEntryContaining(logging.InfoLevel, "Application started successfully"))
	assert.True(t, logger.HasLogEntryContaining(logging.InfoLevel, "Method create_and_save_person"))
	assert.True(t, logger.HasLogEntryContaining(logging.InfoLevel, "Application shutdown completed"))
}

func TestApplicationWiresEvents(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Events.Enabled = true
	cfg.Events.Backend = messagebus.BackendLocal
	cfg.Events.Topic = "people.app"
	cfg.Schema.FoodVariant = "single"

	bus, err := messagebus.NewLocalProducer(nil)
	require.NoError(t, err)
	store, err := docstore.NewLocalDocStore("")
	require.NoError(t, err)

	app, _ := newTestApp(t, cfg, Options{Store: store, Producer: bus})
	defer app.Shutdown()

	_, err = app.Service().CreateAndSavePerson(context.Background())
	require.NoError(t, err)

	msgs := bus.Messages("people.app")
	require.Len(t, msgs, 1)
	assert.Equal(t, "person.create", msgs[0].Headers["operation"])

	n, err := store.CountDocuments(context.Background(), "people", map[string]any{"favoriteFood": people.SampleFood})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestApplicationLocalEventsBackendFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Events.Enabled = true
	cfg.Events.Backend = messagebus.BackendLocal
	cfg.Events.LocalDir = t.TempDir()
	cfg.Metrics.Enabled = false

	app, _ := newTestApp(t, cfg, Options{Local: true})
	_, err := app.Service().CreateAndSavePerson(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, app.WriteMetrics(&buf))
	assert.Empty(t, buf.String())
	require.NoError(t, app.Shutdown())

	matches, err := filepath.Glob(filepath.Join(cfg.Events.LocalDir, cfg.Events.Topic, "*.json"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestApplicationSnapshotSurvivesRestart(t *testing.T) {
	snapshot := filepath.Join(t.TempDir(), "people.bson")
	cfg := config.DefaultConfig()

	first, _ := newTestApp(t, cfg, Options{Local: true, SnapshotPath: snapshot})
	created, err := first.Service().CreateAndSavePerson(context.Background())
	require.NoError(t, err)
	require.NoError(t, first.Shutdown())

	second, _ := newTestApp(t, config.DefaultConfig(), Options{Local: true, SnapshotPath: snapshot})
	defer second.Shutdown()
	found, err := second.Service().FindPersonByID(context.Background(), created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, created.Name, found.Name)
}

func TestApplicationKafkaConfigMissing(t *testing.T) {
	t.Setenv("SERVICE_HOME", t.TempDir())
	cfg := config.DefaultConfig()
	cfg.Events.Enabled = true

	_, err := NewApplication(context.Background(), cfg, logging.NewMockLogger(), Options{Local: true})
	assert.ErrorContains(t, err, "failed to load producer config")
}
