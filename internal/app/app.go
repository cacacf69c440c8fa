package app

import (
	"context"
	"io"
	"os"
	"sync"

	"peoplegomodule/docstore"
	"peoplegomodule/internal/config"
	"peoplegomodule/logging"
	"peoplegomodule/messagebus"
	"peoplegomodule/people"
	"peoplegomodule/people/api"
	"peoplegomodule/people/events"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Options select the backends NewApplication wires. Zero values mean
// "build from config".
type Options struct {
	// Local uses an in-process LocalDocStore instead of MongoDB
	Local bool
	// SnapshotPath persists the local store between runs
	SnapshotPath string

	// Store and Producer replace the configured backends; the application
	// still closes them on Shutdown.
	Store    docstore.DocStore
	Producer messagebus.Producer
}

// Application holds configuration and the wired people service
type Application struct {
	rawconfig *config.RawConfig
	logger    logging.Logger
	store     docstore.DocStore
	producer  messagebus.Producer
	registry  *prometheus.Registry
	service   people.Service
	mutex     sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewApplication opens the store and producer and builds the service chain
// logging -> metrics -> events -> people.Service.
func NewApplication(ctx context.Context, cfg *config.RawConfig, logger logging.Logger, opts Options) (*Application, error) {
	appCtx, cancel := context.WithCancel(ctx)
	app := &Application{
		rawconfig: cfg,
		logger:    logger,
		registry:  prometheus.NewRegistry(),
		ctx:       appCtx,
		cancel:    cancel,
	}

	store, err := app.openStore(opts)
	if err != nil {
		cancel()
		return nil, err
	}
	app.store = store

	schema := people.NewSchema(cfg.FoodVariant())
	svc := people.NewService(store, schema)
	logger.Infow("Registered schema", "model", schema.Model, "collection", schema.Collection, "variant", schema.Variant)

	if cfg.Events.Enabled || opts.Producer != nil {
		producer, err := app.openProducer(opts)
		if err != nil {
			_ = store.Close()
			cancel()
			return nil, err
		}
		app.producer = producer
		svc = events.NewEventStoreMiddleware(svc, producer, cfg.Events.Topic, cfg.Events.PublishTimeout, logger.WithField("component", "events"))
	}

	if cfg.Metrics.Enabled {
		counter, latency := api.MakeMetrics(app.registry, cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
		svc = api.MetricsMiddleware(svc, counter, latency)
	}

	app.service = api.LoggingMiddleware(svc, logger.WithField("component", "people"))
	return app, nil
}

func (app *Application) openStore(opts Options) (docstore.DocStore, error) {
	if opts.Store != nil {
		return opts.Store, nil
	}

	if opts.Local {
		app.logger.Infow("Using local document store", "snapshot", opts.SnapshotPath)
		store, err := docstore.NewLocalDocStore(opts.SnapshotPath)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open local document store")
		}
		return store, nil
	}

	ctx := app.ctx
	if timeout := app.rawconfig.Mongo.ConnectTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	store, err := docstore.NewMongoDocStore(ctx, app.rawconfig.StoreConfig(), app.logger.WithField("component", "docstore"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open mongo document store")
	}
	return store, nil
}

func (app *Application) openProducer(opts Options) (messagebus.Producer, error) {
	if opts.Producer != nil {
		return opts.Producer, nil
	}

	cfg := app.rawconfig.Events
	var configMap map[string]any
	switch cfg.Backend {
	case messagebus.BackendKafka:
		loaded, err := messagebus.LoadProducerConfigMap(cfg.KafkaConfFile)
		if err != nil {
			return nil, errors.Wrap(err, "events")
		}
		configMap = loaded
	case messagebus.BackendLocal:
		configMap = map[string]any{"local.base.dir": cfg.LocalDir}
	}

	hostname, _ := os.Hostname()
	producer, err := messagebus.NewProducer(cfg.Backend, configMap, "peoplectl-"+hostname)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create event producer")
	}
	app.logger.Infow("Publishing change events", "backend", cfg.Backend, "topic", cfg.Topic)
	return producer, nil
}

// Config returns the application configuration
func (app *Application) Config() *config.RawConfig {
	app.mutex.RLock()
	defer app.mutex.RUnlock()
	return app.rawconfig
}

// Logger returns the application logger
func (app *Application) Logger() logging.Logger {
	app.mutex.RLock()
	defer app.mutex.RUnlock()
	return app.logger
}

// Context returns the application context
func (app *Application) Context() context.Context {
	return app.ctx
}

// Service returns the fully wrapped people service
func (app *Application) Service() people.Service {
	app.mutex.RLock()
	defer app.mutex.RUnlock()
	return app.service
}

// Registry returns the registry the operation metrics are registered on
func (app *Application) Registry() *prometheus.Registry {
	return app.registry
}

// Start checks the store is reachable. An unreachable store is logged and
// is not fatal: operations will report the driver's errors.
func (app *Application) Start() error {
	app.logger.Info("Starting application...")

	if err := app.store.Ping(app.ctx); err != nil {
		app.logger.Errorw("Document store is not reachable", "error", err)
	}

	app.logger.Info("Application started successfully")
	return nil
}

// WriteMetrics writes the gathered metrics in the Prometheus text format
func (app *Application) WriteMetrics(w io.Writer) error {
	families, err := app.registry.Gather()
	if err != nil {
		return errors.Wrap(err, "failed to gather metrics")
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return errors.Wrap(err, "failed to encode metrics")
		}
	}
	return nil
}

// Shutdown closes the producer, the store and the logger, in that order
func (app *Application) Shutdown() error {
	app.logger.Info("Shutting down application...")

	var firstErr error
	if app.producer != nil {
		if err := app.producer.Close(); err != nil {
			app.logger.Errorw("Error closing event producer", "error", err)
			firstErr = err
		}
	}

	if app.store != nil {
		if err := app.store.Close(); err != nil {
			app.logger.Errorw("Error closing document store", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	app.cancel()

	app.logger.Info("Application shutdown completed")
	if err := app.logger.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// IsShuttingDown returns true if the application is shutting down
func (app *Application) IsShuttingDown() bool {
	select {
	case <-app.ctx.Done():
		return true
	default:
		return false
	}
}
