package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"guestbook/internal/model"
)

const EventMessageCreated = "message.created"

// MessageCreatedEvent is the payload published after a message is stored.
type MessageCreatedEvent struct {
	Type    string        `json:"type"`
	Message model.Message `json:"message"`
}

type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// ChannelOpener is satisfied by *amqp.Connection.
type ChannelOpener interface {
	Channel() (*amqp.Channel, error)
}

type MessagePublisher struct {
	openChannel func() (Channel, error)
	queueName   string
}

func NewMessagePublisher(conn ChannelOpener, queueName string) *MessagePublisher {
	return &MessagePublisher{
		openChannel: func() (Channel, error) {
			ch, err := conn.Channel()
			if err != nil {
				return nil, err
			}
			return ch, nil
		},
		queueName: queueName,
	}
}

// PublishCreated sends the stored message to the durable queue. Each call
// uses its own channel, closed before returning.
func (p *MessagePublisher) PublishCreated(ctx context.Context, msg model.Message) error {
	ch, err := p.openChannel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(MessageCreatedEvent{Type: EventMessageCreated, Message: msg})
	if err != nil {
		return fmt.Errorf("marshal message payload failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         EventMessageCreated,
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish message failed: %w", err)
	}
	return nil
}
