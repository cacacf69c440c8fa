package messagebus

import (
	"context"
	"fmt"
	"time"
)

// Message represents a message in the message bus
type Message struct {
	Topic     string            `json:"topic"`
	Key       string            `json:"key,omitempty"`
	Value     []byte            `json:"value"`
	Headers   map[string]string `json:"headers,omitempty"`
	Partition int32             `json:"partition,omitempty"`
	Offset    int64             `json:"offset,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Producer interface for publishing messages
type Producer interface {
	// Send sends a message synchronously and returns the partition and offset
	Send(ctx context.Context, message *Message) (partition int32, offset int64, err error)

	Close() error
}

// Producer backends
const (
	BackendKafka = "kafka"
	BackendLocal = "local"
)

// NewProducer builds the producer for backend from a flat client config map
func NewProducer(backend string, configMap map[string]any, clientID string) (Producer, error) {
	switch backend {
	case BackendKafka:
		return NewKafkaProducer(configMap, clientID)
	case BackendLocal:
		return NewLocalProducer(configMap)
	default:
		return nil, fmt.Errorf("unknown message bus backend %q", backend)
	}
}
