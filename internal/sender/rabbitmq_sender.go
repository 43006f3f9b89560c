package sender

import (
	"context"
	"fmt"

	"payment-failure-service/internal/domain"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel is the part of *amqp.Channel the sender uses.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type RabbitMQSender struct {
	conn    *amqp.Connection
	channel Channel
	queue   string
}

// NewRabbitMQSender dials the broker and declares a durable queue.
func NewRabbitMQSender(url, queue string) (*RabbitMQSender, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	return &RabbitMQSender{conn: conn, channel: ch, queue: queue}, nil
}

func NewRabbitMQSenderWithChannel(ch Channel, queue string) *RabbitMQSender {
	return &RabbitMQSender{channel: ch, queue: queue}
}

func (s *RabbitMQSender) Send(ctx context.Context, msg domain.NotificationMessage) error {
	body, err := encode(msg)
	if err != nil {
		return publishError(msg, err)
	}

	err = s.channel.PublishWithContext(ctx,
		"",      // default exchange
		s.queue, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Headers:      amqp.Table{dataExtensionAttribute: string(msg.DataExtensionName)},
			Body:         body,
		},
	)
	if err != nil {
		return publishError(msg, err)
	}
	return nil
}

func (s *RabbitMQSender) Close() error {
	if err := s.channel.Close(); err != nil {
		return err
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
