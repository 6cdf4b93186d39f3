package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"FlashLeaderserver/internal/domain"

	amqp "github.com/rabbitmq/amqp091-go"
)

const DefaultExchange = "activity_events"

// Publisher is the slice of *amqp.Channel the sink needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPSink publishes events to a topic exchange with routing key
// "activity.<type>", e.g. activity.game_finished.
type AMQPSink struct {
	Exchange string

	mu      sync.Mutex
	channel Publisher
	conn    *amqp.Connection
}

func DialAMQP(url, exchange string) (*AMQPSink, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &AMQPSink{Exchange: exchange, channel: ch, conn: conn}, nil
}

func NewAMQPSink(p Publisher, exchange string) *AMQPSink {
	if exchange == "" {
		exchange = DefaultExchange
	}
	return &AMQPSink{Exchange: exchange, channel: p}
}

func RoutingKey(t domain.ActivityType) string {
	return "activity." + strings.ToLower(string(t))
}

func (s *AMQPSink) Log(ctx context.Context, ev domain.ActivityEvent) error {
	if s == nil || s.channel == nil {
		return errors.New("amqp sink not initialized")
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal activity event: %w", err)
	}

	// amqp channels are not safe for concurrent publishes.
	s.mu.Lock()
	defer s.mu.Unlock()
	err = s.channel.PublishWithContext(ctx,
		s.Exchange,
		RoutingKey(ev.Type),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    ev.At,
			Type:         string(ev.Type),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish activity %s: %w", ev.Type, err)
	}
	return nil
}

func (s *AMQPSink) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
