package sender

import (
	"context"
	"fmt"

	"payment-failure-service/internal/domain"

	"github.com/goccy/go-json"
)

// QueueSender makes one publish attempt for a notification message.
type QueueSender interface {
	Send(ctx context.Context, msg domain.NotificationMessage) error
	Close() error
}

const (
	BackendKafka    = "kafka"
	BackendSQS      = "sqs"
	BackendRabbitMQ = "rabbitmq"
)

const dataExtensionAttribute = "DataExtensionName"

func encode(msg domain.NotificationMessage) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification: %w", err)
	}
	return body, nil
}

func publishError(msg domain.NotificationMessage, err error) error {
	return fmt.Errorf("%w for account %s: %w", domain.ErrPublish, msg.AccountID(), err)
}
