package producers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// createKafkaTopicIfNotExists creates the topic when reading its partitions
// shows it missing, retrying the read a few times to ride out broker startup.
func createKafkaTopicIfNotExists(conn *kafka.Conn, topicName string, numPartitions int, replicationFactor int, log *slog.Logger) error {
	var partitions []kafka.Partition
	var err error

	log.Info("Checking if Kafka topic exists", "topic", topicName)
	for i := 0; i < 5; i++ {
		partitions, err = conn.ReadPartitions(topicName)
		if err == nil {
			break
		}
		log.Warn("Failed to read partitions, retrying...", "topic", topicName, "attempt", i+1, "error", err)
		time.Sleep(2 * time.Second)
	}

	if len(partitions) == 0 {
		log.Info("Kafka topic does not exist or is not accessible, attempting to create it", "topic", topicName, "last_read_error", err)
		topicConfig := kafka.TopicConfig{
			Topic:             topicName,
			NumPartitions:     numPartitions,
			ReplicationFactor: replicationFactor,
		}
		if topicConfig.NumPartitions == 0 {
			topicConfig.NumPartitions = 1
		}
		if topicConfig.ReplicationFactor == 0 {
			topicConfig.ReplicationFactor = 1
		}

		if creationErr := conn.CreateTopics(topicConfig); creationErr != nil {
			return fmt.Errorf("failed to create kafka topic %s: %w", topicName, creationErr)
		}
		log.Info("Created Kafka topic", "topic", topicName)
		return nil
	}

	if err == nil {
		log.Info("Kafka topic already exists", "topic", topicName)
	} else {
		log.Warn("Kafka topic seems to exist but the final partition read failed", "topic", topicName, "error", err)
	}
	return nil
}
