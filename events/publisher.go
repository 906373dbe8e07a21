package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Publisher sends domain events to the message bus. Publication is
// fire-and-forget from the caller's perspective: callers log failures and
// continue, no delivery guarantee is assumed.
type Publisher interface {
	Publish(msg Message) error
}

// AMQPPublisher publishes JSON payloads to per-message fanout exchanges.
type AMQPPublisher struct {
	logger zerolog.Logger

	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	declared map[string]bool
}

func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &AMQPPublisher{
		logger:   log.With().Str("handlerName", "amqpPublisher").Logger(),
		conn:     conn,
		channel:  channel,
		declared: make(map[string]bool),
	}, nil
}

func (p *AMQPPublisher) Publish(msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.declareExchange(msg.Exchange()); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, msg.Exchange(), "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now().UTC(),
		Body:        body,
	})
	if err != nil {
		p.logger.Error().Err(err).Str("exchange", msg.Exchange()).Msg("Failed to publish message")
		return err
	}

	p.logger.Debug().Str("exchange", msg.Exchange()).Msg("Published message")
	return nil
}

// declareExchange lazily declares the fanout exchange for a message type.
// Callers must hold p.mu.
func (p *AMQPPublisher) declareExchange(name string) error {
	if p.declared[name] {
		return nil
	}
	if err := p.channel.ExchangeDeclare(name, "fanout", true, false, false, false, nil); err != nil {
		return err
	}
	p.declared[name] = true
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		p.channel.Close()
	}
	return p.conn.Close()
}
