package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Publisher sends AuthEvents to a durable queue on the default exchange.  It
// dials per publish; auth traffic is low and this keeps no connection state
// that could go stale.
type Publisher struct {
	url   string
	queue string
	log   zerolog.Logger
}

func NewPublisher(url, queueName string, logger zerolog.Logger) *Publisher {
	return &Publisher{url: url, queue: queueName, log: logger.With().Str("component", "auth-publisher").Logger()}
}

// Publish delivers ev as a persistent JSON message.  Errors are logged and
// returned so the caller can choose to ignore them.
func (p *Publisher) Publish(ctx context.Context, ev AuthEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		p.log.Warn().Err(err).Str("queue", p.queue).Msg("rabbitmq queue declare failed")
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.log.Warn().Err(err).Str("event", ev.Type).Msg("rabbitmq publish failed")
		return err
	}
	return nil
}
