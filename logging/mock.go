package logging

import (
	"fmt"
	"strings"
	"sync"
)

// LogEntry is one captured log call
type LogEntry struct {
	Level   Level
	Message string
	Fields  Fields
}

// entrySink is shared by a MockLogger and every logger derived from it, so a
// test holding the root mock sees entries written through WithField children.
type entrySink struct {
	mu      sync.RWMutex
	entries []LogEntry
}

func (s *entrySink) append(e LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
}

func (s *entrySink) snapshot() []LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]LogEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// MockLogger implements Logger and records entries for assertions in tests
type MockLogger struct {
	mu     sync.RWMutex
	level  Level
	fields Fields
	sink   *entrySink
}

var _ Logger = (*MockLogger)(nil)

// NewMockLogger creates a mock logger at InfoLevel
func NewMockLogger() *MockLogger {
	return &MockLogger{
		level:  InfoLevel,
		fields: make(Fields),
		sink:   &entrySink{},
	}
}

// NewMockLoggerWithLevel creates a mock logger with a specific level
func NewMockLoggerWithLevel(level Level) *MockLogger {
	m := NewMockLogger()
	m.level = level
	return m
}

func (m *MockLogger) SetLevel(level Level) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.level = level
}

func (m *MockLogger) GetLevel() Level {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.level
}

func (m *MockLogger) IsLevelEnabled(level Level) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return level >= m.level
}

func (m *MockLogger) Debug(msg string) { m.log(DebugLevel, msg, nil) }
func (m *MockLogger) Info(msg string)  { m.log(InfoLevel, msg, nil) }
func (m *MockLogger) Warn(msg string)  { m.log(WarnLevel, msg, nil) }
func (m *MockLogger) Error(msg string) { m.log(ErrorLevel, msg, nil) }

func (m *MockLogger) Debugf(format string, args ...interface{}) {
	m.log(DebugLevel, fmt.Sprintf(format, args...), nil)
}

func (m *MockLogger) Infof(format string, args ...interface{}) {
	m.log(InfoLevel, fmt.Sprintf(format, args...), nil)
}

func (m *MockLogger) Warnf(format string, args ...interface{}) {
	m.log(WarnLevel, fmt.Sprintf(format, args...), nil)
}

func (m *MockLogger) Errorf(format string, args ...interface{}) {
	m.log(ErrorLevel, fmt.Sprintf(format, args...), nil)
}

func (m *MockLogger) Debugw(msg string, keysAndValues ...interface{}) {
	m.log(DebugLevel, msg, keysAndValuesToFields(keysAndValues...))
}

func (m *MockLogger) Infow(msg string, keysAndValues ...interface{}) {
	m.log(InfoLevel, msg, keysAndValuesToFields(keysAndValues...))
}

func (m *MockLogger) Warnw(msg string, keysAndValues ...interface{}) {
	m.log(WarnLevel, msg, keysAndValuesToFields(keysAndValues...))
}

func (m *MockLogger) Errorw(msg string, keysAndValues ...interface{}) {
	m.log(ErrorLevel, msg, keysAndValuesToFields(keysAndValues...))
}

func (m *MockLogger) WithFields(fields Fields) Logger {
	m.mu.RLock()
	defer m.mu.RUnlock()

	merged := make(Fields, len(m.fields)+len(fields))
	for k, v := range m.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &MockLogger{level: m.level, fields: merged, sink: m.sink}
}

func (m *MockLogger) WithField(key string, value interface{}) Logger {
	return m.WithFields(Fields{key: value})
}

func (m *MockLogger) WithError(err error) Logger {
	if err == nil {
		return m
	}
	return m.WithField("error", err.Error())
}

func (m *MockLogger) Close() error { return nil }

func (m *MockLogger) log(level Level, msg string, extra Fields) {
	if !m.IsLevelEnabled(level) {
		return
	}

	m.mu.RLock()
	all := make(Fields, len(m.fields)+len(extra))
	for k, v := range m.fields {
		all[k] = v
	}
	m.mu.RUnlock()
	for k, v := range extra {
		all[k] = v
	}

	m.sink.append(LogEntry{Level: level, Message: msg, Fields: all})
}

// GetLogEntries returns a copy of every captured entry
func (m *MockLogger) GetLogEntries() []LogEntry {
	return m.sink.snapshot()
}

// GetLogEntriesByLevel returns entries captured at level
func (m *MockLogger) GetLogEntriesByLevel(level Level) []LogEntry {
	var filtered []LogEntry
	for _, entry := range m.sink.snapshot() {
		if entry.Level == level {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

// HasLogEntryContaining reports whether an entry at level contains text
func (m *MockLogger) HasLogEntryContaining(level Level, text string) bool {
	for _, entry := range m.GetLogEntriesByLevel(level) {
		if strings.Contains(entry.Message, text) {
			return true
		}
	}
	return false
}

// HasLogEntryWithField reports whether an entry at level has fieldKey == fieldValue
func (m *MockLogger) HasLogEntryWithField(level Level, fieldKey string, fieldValue interface{}) bool {
	for _, entry := range m.GetLogEntriesByLevel(level) {
		if val, exists := entry.Fields[fieldKey]; exists && val == fieldValue {
			return true
		}
	}
	return false
}

// ClearLogEntries drops captured entries
func (m *MockLogger) ClearLogEntries() {
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	m.sink.entries = nil
}

// GetLogCount returns the number of captured entries
func (m *MockLogger) GetLogCount() int {
	return len(m.sink.snapshot())
}
