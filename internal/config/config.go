package config

import (
	"os"
	"time"

	"peoplegomodule/docstore"
	"peoplegomodule/logging"
	"peoplegomodule/people"

	"github.com/caarlos0/env/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// RawConfig holds the application configuration as read from yaml and env
type RawConfig struct {
	Mongo   RawMongoConfig   `yaml:"mongo"`
	Schema  RawSchemaConfig  `yaml:"schema"`
	Logging RawLoggingConfig `yaml:"logging" envPrefix:"LOG_"`
	Events  RawEventsConfig  `yaml:"events" envPrefix:"EVENTS_"`
	Metrics RawMetricsConfig `yaml:"metrics" envPrefix:"METRICS_"`
}

// RawMongoConfig holds the document store connection settings
type RawMongoConfig struct {
	URI            string        `yaml:"uri" env:"MONGO_URI"`
	Database       string        `yaml:"database" env:"MONGO_DATABASE"`
	ConnectTimeout time.Duration `yaml:"connectTimeout" env:"MONGO_CONNECT_TIMEOUT"`
}

// RawSchemaConfig selects the Person food variant: "single" or "multi"
type RawSchemaConfig struct {
	FoodVariant string `yaml:"foodVariant" env:"PEOPLE_FOOD_VARIANT"`
}

// RawLoggingConfig holds logging-related configuration. Level is one of
// debug, info, warn or error.
type RawLoggingConfig struct {
	Level       string `yaml:"level" env:"LEVEL"`
	FileName    string `yaml:"fileName" env:"FILE_NAME"`
	Console     bool   `yaml:"console" env:"CONSOLE"`
	LoggerName  string `yaml:"loggerName" env:"LOGGER_NAME"`
	ServiceName string `yaml:"serviceName" env:"SERVICE_NAME"`
	MaxSizeMB   int    `yaml:"maxSizeMB" env:"MAX_SIZE_MB"`
	MaxBackups  int    `yaml:"maxBackups" env:"MAX_BACKUPS"`
	MaxAgeDays  int    `yaml:"maxAgeDays" env:"MAX_AGE_DAYS"`
	Compress    bool   `yaml:"compress" env:"COMPRESS"`
}

// RawEventsConfig controls change-event publishing. Backend is "kafka" or "local".
// PublishTimeout bounds each publish so a dead broker cannot stall writes.
type RawEventsConfig struct {
	Enabled        bool          `yaml:"enabled" env:"ENABLED"`
	Backend        string        `yaml:"backend" env:"BACKEND"`
	Topic          string        `yaml:"topic" env:"TOPIC"`
	KafkaConfFile  string        `yaml:"kafkaConfigFile" env:"KAFKA_CONFIG_FILE"`
	LocalDir       string        `yaml:"localDir" env:"LOCAL_DIR"`
	PublishTimeout time.Duration `yaml:"publishTimeout" env:"PUBLISH_TIMEOUT"`
}

// RawMetricsConfig names the operation metrics
type RawMetricsConfig struct {
	Enabled   bool   `yaml:"enabled" env:"ENABLED"`
	Namespace string `yaml:"namespace" env:"NAMESPACE"`
	Subsystem string `yaml:"subsystem" env:"SUBSYSTEM"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *RawConfig {
	return &RawConfig{
		Mongo: RawMongoConfig{
			URI:            "mongodb://localhost:27017",
			Database:       "people",
			ConnectTimeout: 10 * time.Second,
		},
		Schema: RawSchemaConfig{
			FoodVariant: string(people.MultiFood),
		},
		Logging: RawLoggingConfig{
			Level:       "info",
			FileName:    "/tmp/people.log",
			LoggerName:  "main",
			ServiceName: "people",
			MaxSizeMB:   logging.DefaultMaxSizeMB,
			MaxBackups:  logging.DefaultMaxBackups,
			MaxAgeDays:  logging.DefaultMaxAgeDays,
			Compress:    true,
		},
		Events: RawEventsConfig{
			Enabled:        false,
			Backend:        "kafka",
			Topic:          "people.events",
			KafkaConfFile:  "kafka-producer.yaml",
			PublishTimeout: 5 * time.Second,
		},
		Metrics: RawMetricsConfig{
			Enabled:   true,
			Namespace: "people",
			Subsystem: "api",
		},
	}
}

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig() (*RawConfig, error) {
	config := DefaultConfig()
	if err := env.Parse(config); err != nil {
		return nil, errors.Wrap(err, "error parsing environment")
	}
	return config, config.Validate()
}

// LoadConfigFromFile loads configuration from a YAML file; environment
// variables that are set override the file.
func LoadConfigFromFile(configPath string) (*RawConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading config file %s", configPath)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrapf(err, "error parsing YAML config file %s", configPath)
	}

	if err := env.Parse(config); err != nil {
		return nil, errors.Wrap(err, "error parsing environment")
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config file %s", configPath)
	}
	return config, nil
}

// LoadConfigWithDefaults loads configPath when it exists and falls back to
// environment variables and defaults when it does not. A file that exists
// but cannot be used is an error.
func LoadConfigWithDefaults(configPath string) (*RawConfig, error) {
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		return LoadConfig()
	}
	return LoadConfigFromFile(configPath)
}

// Validate checks the values later stages cannot fix up themselves
func (c *RawConfig) Validate() error {
	if c.Mongo.URI == "" {
		return errors.New("mongo uri is required")
	}
	if c.Mongo.Database == "" {
		return errors.New("mongo database is required")
	}
	if _, err := people.ParseFoodVariant(c.Schema.FoodVariant); err != nil {
		return errors.Wrap(err, "schema")
	}
	if c.Events.Enabled && c.Events.Backend != "kafka" && c.Events.Backend != "local" {
		return errors.Errorf("unknown events backend %q", c.Events.Backend)
	}
	return nil
}

// FoodVariant returns the configured schema variant
func (c *RawConfig) FoodVariant() people.FoodVariant {
	variant, err := people.ParseFoodVariant(c.Schema.FoodVariant)
	if err != nil {
		return people.MultiFood
	}
	return variant
}

// StoreConfig converts the mongo section to docstore.Config
func (c *RawConfig) StoreConfig() docstore.Config {
	return docstore.Config{
		URI:      c.Mongo.URI,
		Database: c.Mongo.Database,
	}
}

// ConvertToLoggerConfig converts RawLoggingConfig to logging.LoggerConfig
func (cfg RawLoggingConfig) ConvertToLoggerConfig() *logging.LoggerConfig {
	return &logging.LoggerConfig{
		Level:       logging.ParseLevel(cfg.Level),
		FilePath:    cfg.FileName,
		Console:     cfg.Console,
		LoggerName:  cfg.LoggerName,
		ServiceName: cfg.ServiceName,
		MaxSizeMB:   cfg.MaxSizeMB,
		MaxBackups:  cfg.MaxBackups,
		MaxAgeDays:  cfg.MaxAgeDays,
		Compress:    cfg.Compress,
	}
}
