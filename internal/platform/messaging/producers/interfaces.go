package producers

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// MessagePublisher publishes wallet events to their primary topic. The key is
// the wallet id, so every event for one wallet lands on the same partition.
type MessagePublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
	Close() error
}

// DeadLetterPublisher handles publishing messages to a Dead Letter Queue
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error
	Close() error
}

// KafkaWriter wraps kafka.Writer methods for testing
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
