package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const consoleTimeFormat = "2006-01-02 15:04:05"

// ZerologLogger implements Logger on top of zerolog. Fields are baked into
// the zerolog context, so derived loggers are cheap and never mutate the parent.
type ZerologLogger struct {
	mu     sync.RWMutex
	logger zerolog.Logger
	level  Level
	closer io.Closer
}

var _ Logger = (*ZerologLogger)(nil)

// NewLoggerWithConfig creates a ZerologLogger writing JSON lines to a rotating
// file and, when requested, pretty lines to stderr.
func NewLoggerWithConfig(config *LoggerConfig) (*ZerologLogger, error) {
	var (
		writers []io.Writer
		closer  io.Closer
	)

	if config.FilePath != "" {
		if err := ensureLogDir(config.FilePath); err != nil {
			return nil, fmt.Errorf("failed to prepare log directory for %s: %w", config.FilePath, err)
		}
		fileWriter := &lumberjack.Logger{
			Filename:   config.FilePath,
			MaxSize:    valueOr(config.MaxSizeMB, DefaultMaxSizeMB),
			MaxBackups: valueOr(config.MaxBackups, DefaultMaxBackups),
			MaxAge:     valueOr(config.MaxAgeDays, DefaultMaxAgeDays),
			Compress:   config.Compress,
		}
		writers = append(writers, fileWriter)
		closer = fileWriter
	}
	if config.Console {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: consoleTimeFormat})
	}

	var out io.Writer
	switch len(writers) {
	case 0:
		return nil, fmt.Errorf("no log output configured")
	case 1:
		out = writers[0]
	default:
		out = zerolog.MultiLevelWriter(writers...)
	}

	z := NewLoggerWithWriter(out, config)
	z.closer = closer
	return z, nil
}

// NewLoggerWithWriter creates a ZerologLogger writing JSON lines to w.
// The caller keeps ownership of w.
func NewLoggerWithWriter(w io.Writer, config *LoggerConfig) *ZerologLogger {
	if config == nil {
		config = DefaultConfig()
	}
	ctx := zerolog.New(w).With().Timestamp().Str("service", config.ServiceName)
	if config.LoggerName != "" {
		ctx = ctx.Str("logger", config.LoggerName)
	}
	return &ZerologLogger{
		logger: ctx.Logger().Level(levelToZerolog(config.Level)),
		level:  config.Level,
	}
}

// Close closes the rotating log file, if any
func (z *ZerologLogger) Close() error {
	z.mu.Lock()
	defer z.mu.Unlock()

	if z.closer != nil {
		err := z.closer.Close()
		z.closer = nil
		return err
	}
	return nil
}

// SetLevel sets the logging level
func (z *ZerologLogger) SetLevel(level Level) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.level = level
	z.logger = z.logger.Level(levelToZerolog(level))
}

// GetLevel returns the current logging level
func (z *ZerologLogger) GetLevel() Level {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return z.level
}

// IsLevelEnabled checks if the given level is enabled
func (z *ZerologLogger) IsLevelEnabled(level Level) bool {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return level >= z.level
}

func levelToZerolog(level Level) zerolog.Level {
	switch level {
	case DebugLevel:
		return zerolog.DebugLevel
	case InfoLevel:
		return zerolog.InfoLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (z *ZerologLogger) event(level Level) *zerolog.Event {
	z.mu.RLock()
	defer z.mu.RUnlock()

	switch level {
	case DebugLevel:
		return z.logger.Debug()
	case WarnLevel:
		return z.logger.Warn()
	case ErrorLevel:
		return z.logger.Error()
	default:
		return z.logger.Info()
	}
}

func (z *ZerologLogger) Debug(msg string) { z.event(DebugLevel).Msg(msg) }
func (z *ZerologLogger) Info(msg string)  { z.event(InfoLevel).Msg(msg) }
func (z *ZerologLogger) Warn(msg string)  { z.event(WarnLevel).Msg(msg) }
func (z *ZerologLogger) Error(msg string) { z.event(ErrorLevel).Msg(msg) }

func (z *ZerologLogger) Debugf(format string, args ...interface{}) {
	z.event(DebugLevel).Msgf(format, args...)
}

func (z *ZerologLogger) Infof(format string, args ...interface{}) {
	z.event(InfoLevel).Msgf(format, args...)
}

func (z *ZerologLogger) Warnf(format string, args ...interface{}) {
	z.event(WarnLevel).Msgf(format, args...)
}

func (z *ZerologLogger) Errorf(format string, args ...interface{}) {
	z.event(ErrorLevel).Msgf(format, args...)
}

func (z *ZerologLogger) Debugw(msg string, keysAndValues ...interface{}) {
	z.event(DebugLevel).Fields(map[string]interface{}(keysAndValuesToFields(keysAndValues...))).Msg(msg)
}

func (z *ZerologLogger) Infow(msg string, keysAndValues ...interface{}) {
	z.event(InfoLevel).Fields(map[string]interface{}(keysAndValuesToFields(keysAndValues...))).Msg(msg)
}

func (z *ZerologLogger) Warnw(msg string, keysAndValues ...interface{}) {
	z.event(WarnLevel).Fields(map[string]interface{}(keysAndValuesToFields(keysAndValues...))).Msg(msg)
}

func (z *ZerologLogger) Errorw(msg string, keysAndValues ...interface{}) {
	z.event(ErrorLevel).Fields(map[string]interface{}(keysAndValuesToFields(keysAndValues...))).Msg(msg)
}

// WithFields returns a derived logger carrying fields on every entry
func (z *ZerologLogger) WithFields(fields Fields) Logger {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return &ZerologLogger{
		logger: z.logger.With().Fields(map[string]interface{}(fields)).Logger(),
		level:  z.level,
		closer: z.closer,
	}
}

func (z *ZerologLogger) WithField(key string, value interface{}) Logger {
	return z.WithFields(Fields{key: value})
}

func (z *ZerologLogger) WithError(err error) Logger {
	if err == nil {
		return z
	}
	z.mu.RLock()
	defer z.mu.RUnlock()
	return &ZerologLogger{
		logger: z.logger.With().Err(err).Logger(),
		level:  z.level,
		closer: z.closer,
	}
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func valueOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
