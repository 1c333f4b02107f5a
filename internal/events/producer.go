// Package events publishes notifications about successful logins to a RabbitMQ
// exchange, so that other services can react to users signing in
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel represents the subset of AMQP channel functionality used to publish
// messages; satisfied by *amqp.Channel
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Producer struct {
	ch       Channel
	exchange string
	now      func() time.Time
}

// NewProducer opens a channel on the given connection and declares a durable fanout
// exchange with the given name
func NewProducer(conn *amqp.Connection, exchange string) (*Producer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open AMQP channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", exchange, err)
	}
	return &Producer{
		ch:       ch,
		exchange: exchange,
		now:      time.Now,
	}, nil
}

// PublishLogin records that the given user has authenticated via the given provider
func (p *Producer) PublishLogin(ctx context.Context, login Login) error {
	ev := Event{
		Id:        uuid.New(),
		Type:      EventTypeLogin,
		Timestamp: p.now().UTC(),
		Login:     &login,
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		MessageId:   ev.Id.String(),
		Timestamp:   ev.Timestamp,
		Body:        body,
	})
}

func (p *Producer) Close() error {
	return p.ch.Close()
}
