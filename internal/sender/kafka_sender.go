package sender

import (
	"context"
	"fmt"

	"payment-failure-service/internal/domain"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	log "github.com/sirupsen/logrus"
)

const flushTimeoutMs = 5000

// Producer is the part of *kafka.Producer the sender uses.
type Producer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Flush(timeoutMs int) int
	Close()
}

type KafkaSender struct {
	producer Producer
	topic    string
}

func NewKafkaSender(bootstrapServers, topic string) (*KafkaSender, error) {
	configMap := &kafka.ConfigMap{
		"bootstrap.servers": bootstrapServers,
		"acks":              "all",
	}
	log.WithField("config", fmt.Sprintf("%+v", configMap)).Debug("Kafka producer config")
	producer, err := kafka.NewProducer(configMap)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return NewKafkaSenderWithProducer(producer, topic), nil
}

func NewKafkaSenderWithProducer(producer Producer, topic string) *KafkaSender {
	return &KafkaSender{producer: producer, topic: topic}
}

// Send produces the message keyed by account id and waits for its delivery report.
func (s *KafkaSender) Send(ctx context.Context, msg domain.NotificationMessage) error {
	body, err := encode(msg)
	if err != nil {
		return publishError(msg, err)
	}

	topic := s.topic
	delivery := make(chan kafka.Event, 1)
	err = s.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(msg.AccountID()),
		Value:          body,
		Headers:        []kafka.Header{{Key: dataExtensionAttribute, Value: []byte(msg.DataExtensionName)}},
	}, delivery)
	if err != nil {
		return publishError(msg, err)
	}

	select {
	case <-ctx.Done():
		return publishError(msg, ctx.Err())
	case ev := <-delivery:
		switch e := ev.(type) {
		case *kafka.Message:
			if e.TopicPartition.Error != nil {
				return publishError(msg, e.TopicPartition.Error)
			}
			log.WithFields(log.Fields{
				"topic":     topic,
				"partition": e.TopicPartition.Partition,
				"offset":    e.TopicPartition.Offset,
			}).Debug("Kafka delivery confirmed")
			return nil
		case kafka.Error:
			return publishError(msg, e)
		default:
			return publishError(msg, fmt.Errorf("unexpected delivery event %v", ev))
		}
	}
}

func (s *KafkaSender) Close() error {
	if remaining := s.producer.Flush(flushTimeoutMs); remaining > 0 {
		log.WithField("remaining", remaining).Warn("Kafka producer closed with undelivered messages")
	}
	s.producer.Close()
	return nil
}
