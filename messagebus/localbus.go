package messagebus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
)

// LocalProducer keeps every message in memory, one partition per topic.
// With "local.base.dir" set it also writes each message to
// <dir>/<topic>/<offset>.json so other processes can inspect the stream.
type LocalProducer struct {
	mu      sync.RWMutex
	baseDir string
	topics  map[string][]Message
	closed  bool
}

// NewLocalProducer creates a local producer from a flat config map
func NewLocalProducer(configMap map[string]any) (*LocalProducer, error) {
	p := &LocalProducer{
		baseDir: GetStringValue(configMap, "local.base.dir", ""),
		topics:  make(map[string][]Message),
	}
	if p.baseDir != "" {
		if err := os.MkdirAll(p.baseDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create message bus directory: %w", err)
		}
	}
	return p, nil
}

func (p *LocalProducer) Send(ctx context.Context, message *Message) (int32, int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, 0, fmt.Errorf("producer is closed")
	}

	message.Timestamp = time.Now()
	message.Partition = 0
	message.Offset = int64(len(p.topics[message.Topic]))

	if p.baseDir != "" {
		if err := p.writeFile(message); err != nil {
			return 0, 0, err
		}
	}

	stored := *message
	stored.Value = append([]byte(nil), message.Value...)
	p.topics[message.Topic] = append(p.topics[message.Topic], stored)
	return message.Partition, message.Offset, nil
}

func (p *LocalProducer) writeFile(message *Message) error {
	topicDir := filepath.Join(p.baseDir, message.Topic)
	if err := os.MkdirAll(topicDir, 0o755); err != nil {
		return fmt.Errorf("failed to create topic directory: %w", err)
	}
	data, err := sonic.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	filename := filepath.Join(topicDir, fmt.Sprintf("%010d.json", message.Offset))
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write message file: %w", err)
	}
	return nil
}

// Messages returns a copy of everything sent to topic, oldest first
func (p *LocalProducer) Messages(topic string) []Message {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Message(nil), p.topics[topic]...)
}

func (p *LocalProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
