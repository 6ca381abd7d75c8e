package producers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockKafkaWriter is shared across package test files - defined in wallet_event_test.go

func TestDLQProducer_PublishToDLQ(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	dlqTopic := "contract-events-dlq"
	ctx := context.Background()

	t.Run("SuccessfulPublishToDLQ", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &DLQProducer{
			logger:   logger,
			writer:   mockWriter,
			dlqTopic: dlqTopic,
		}

		key := "contract-1"
		originalMessageValue := []byte(`{"event_id":"not-a-uuid"}`)
		reason := "unmarshal_failed"

		mockWriter.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
			if len(msgs) != 1 {
				return false
			}
			msg := msgs[0]
			if string(msg.Key) != key {
				return false
			}
			var payload map[string]string
			if err := json.Unmarshal(msg.Value, &payload); err != nil {
				return false
			}
			return payload["original_key"] == key &&
				payload["original_value"] == string(originalMessageValue) &&
				payload["dlq_reason"] == reason &&
				payload["timestamp"] != ""
		})).Return(nil).Once()

		err := producer.PublishToDLQ(ctx, key, originalMessageValue, reason)
		require.NoError(t, err)
		mockWriter.AssertExpectations(t)
	})

	t.Run("PublishToDLQReturnsErrorOnWriterError", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &DLQProducer{
			logger:   logger,
			writer:   mockWriter,
			dlqTopic: dlqTopic,
		}

		writerError := errors.New("kafka DLQ write error")
		mockWriter.On("WriteMessages", ctx, mock.AnythingOfType("[]kafka.Message")).Return(writerError).Once()

		err := producer.PublishToDLQ(ctx, "fail-key", []byte("fail_payload"), "writer_error")
		require.Error(t, err)
		assert.True(t, errors.Is(err, writerError) || strings.Contains(err.Error(), writerError.Error()))
		mockWriter.AssertExpectations(t)
	})

	t.Run("PublishToDLQWithNilWriter", func(t *testing.T) {
		producerWithNilWriter := &DLQProducer{
			logger:   logger,
			writer:   nil,
			dlqTopic: dlqTopic,
		}

		err := producerWithNilWriter.PublishToDLQ(ctx, "some-key", []byte("some_payload"), "disabled_test")
		require.Error(t, err)
		assert.Equal(t, "DLQ producer not initialized", err.Error())
	})
}

func TestDLQProducer_Close(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	dlqTopic := "contract-events-dlq"

	t.Run("SuccessfulClose", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &DLQProducer{
			logger:   logger,
			writer:   mockWriter,
			dlqTopic: dlqTopic,
		}
		mockWriter.On("Close").Return(nil).Once()
		require.NoError(t, producer.Close())
		mockWriter.AssertExpectations(t)
	})

	t.Run("CloseReturnsErrorOnWriterError", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &DLQProducer{
			logger:   logger,
			writer:   mockWriter,
			dlqTopic: dlqTopic,
		}
		closeError := errors.New("kafka DLQ close error")
		mockWriter.On("Close").Return(closeError).Once()
		err := producer.Close()
		require.Error(t, err)
		assert.True(t, errors.Is(err, closeError) || strings.Contains(err.Error(), closeError.Error()))
	})

	t.Run("CloseWithNilWriter", func(t *testing.T) {
		producerWithNilWriter := &DLQProducer{
			logger:   logger,
			writer:   nil,
			dlqTopic: dlqTopic,
		}
		require.NoError(t, producerWithNilWriter.Close(), "Close should be a no-op when the DLQ is disabled")
	})
}
