package messagebus

import (
	"context"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// KafkaProducer publishes to a Kafka cluster
type KafkaProducer struct {
	producer *kafka.Producer
}

// kafkaConfig maps the flat YAML properties onto a client config with defaults
func kafkaConfig(configMap map[string]any, clientID string) *kafka.ConfigMap {
	config := &kafka.ConfigMap{}

	config.SetKey("bootstrap.servers", GetStringValue(configMap, "bootstrap.servers", "localhost:9092"))
	config.SetKey("client.id", GetStringValue(configMap, "client.id", clientID))
	config.SetKey("acks", GetStringValue(configMap, "acks", "1"))
	config.SetKey("retries", GetIntValue(configMap, "retries", 3))
	config.SetKey("batch.size", GetIntValue(configMap, "batch.size", 16384))
	config.SetKey("linger.ms", GetIntValue(configMap, "linger.ms", 1))
	config.SetKey("security.protocol", GetStringValue(configMap, "security.protocol", "PLAINTEXT"))
	if ca := GetStringValue(configMap, "ssl.ca.location", ""); ca != "" {
		config.SetKey("ssl.ca.location", ca)
		config.SetKey("ssl.certificate.location", GetStringValue(configMap, "ssl.certificate.location", ""))
		config.SetKey("ssl.key.location", GetStringValue(configMap, "ssl.key.location", ""))
		config.SetKey("enable.ssl.certificate.verification", GetBoolValue(configMap, "enable.ssl.certificate.verification", false))
	}

	return config
}

// NewKafkaProducer creates a producer; no broker connection is made until
// the first message is produced.
func NewKafkaProducer(configMap map[string]any, clientID string) (*KafkaProducer, error) {
	producer, err := kafka.NewProducer(kafkaConfig(configMap, clientID))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return &KafkaProducer{producer: producer}, nil
}

func toKafkaMessage(message *Message) *kafka.Message {
	kafkaMessage := &kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &message.Topic,
			Partition: kafka.PartitionAny,
		},
		Value:     message.Value,
		Timestamp: message.Timestamp,
	}
	if message.Key != "" {
		kafkaMessage.Key = []byte(message.Key)
	}
	for key, value := range message.Headers {
		kafkaMessage.Headers = append(kafkaMessage.Headers, kafka.Header{
			Key:   key,
			Value: []byte(value),
		})
	}
	return kafkaMessage
}

// Send produces one message and waits for its delivery report
func (p *KafkaProducer) Send(ctx context.Context, message *Message) (int32, int64, error) {
	message.Timestamp = time.Now()

	// left open: librdkafka may still deliver a report after ctx is done
	deliveryChan := make(chan kafka.Event, 1)
	if err := p.producer.Produce(toKafkaMessage(message), deliveryChan); err != nil {
		return 0, 0, fmt.Errorf("failed to produce message: %w", err)
	}

	select {
	case event := <-deliveryChan:
		msg, ok := event.(*kafka.Message)
		if !ok {
			return 0, 0, fmt.Errorf("unexpected event type %T", event)
		}
		if msg.TopicPartition.Error != nil {
			return 0, 0, fmt.Errorf("delivery failed: %w", msg.TopicPartition.Error)
		}
		message.Partition = msg.TopicPartition.Partition
		message.Offset = int64(msg.TopicPartition.Offset)
		return message.Partition, message.Offset, nil
	case <-ctx.Done():
		return 0, 0, ctx.Err()
	}
}

// Close flushes outstanding messages for up to five seconds
func (p *KafkaProducer) Close() error {
	p.producer.Flush(5000)
	p.producer.Close()
	return nil
}
