package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/marketplace-wallet-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

// WalletEventProducer publishes projected wallet transactions to the wallet
// events topic so notification and reporting collaborators can react. The
// ledger itself never delivers notifications.
type WalletEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewWalletEventProducer creates the wallet events producer and ensures its topic exists
func NewWalletEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*WalletEventProducer, error) {
	if cfg.WalletEventTopic == "" {
		return nil, fmt.Errorf("kafka wallet event topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for wallet event producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.WalletEventTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure wallet event topic %s exists: %w", cfg.WalletEventTopic, err)
	}

	// RequireAll keeps the fan-out durable: the outbox poller only deletes
	// a message after this producer confirms the write.
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.WalletEventTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write wallet event messages", "topic", cfg.WalletEventTopic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Wrote wallet event messages", "topic", cfg.WalletEventTopic, "count", len(messages))
			}
		},
	}

	return &WalletEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.WalletEventTopic,
	}, nil
}

// Publish writes one wallet event keyed by wallet id, so events for the
// same wallet stay ordered within a partition.
func (p *WalletEventProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal wallet event value: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish wallet event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish wallet event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published wallet event",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *WalletEventProducer) Close() error {
	p.logger.Info("Closing wallet event Kafka producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close wallet event kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
