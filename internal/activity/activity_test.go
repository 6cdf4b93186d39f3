package activity

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"FlashLeaderserver/internal/domain"

	amqp "github.com/rabbitmq/amqp091-go"
)

type capturePublisher struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
}

func (p *capturePublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	p.exchange = exchange
	p.key = key
	p.msg = msg
	return p.err
}

func TestAMQPSinkPublishesJSON(t *testing.T) {
	pub := &capturePublisher{}
	sink := NewAMQPSink(pub, "")
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	err := sink.Log(context.Background(), domain.ActivityEvent{
		UserID:   "frn:user:1",
		TargetID: "frn:session:9",
		Type:     domain.ActivityGameFinished,
		At:       at,
	})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if pub.exchange != DefaultExchange {
		t.Fatalf("unexpected exchange: %s", pub.exchange)
	}
	if pub.key != "activity.game_finished" {
		t.Fatalf("unexpected routing key: %s", pub.key)
	}
	if pub.msg.ContentType != "application/json" || pub.msg.DeliveryMode != amqp.Persistent {
		t.Fatalf("unexpected publishing: %+v", pub.msg)
	}

	var got domain.ActivityEvent
	if err := json.Unmarshal(pub.msg.Body, &got); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if got.TargetID != "frn:session:9" || got.Type != domain.ActivityGameFinished || !got.At.Equal(at) {
		t.Fatalf("unexpected event: %+v", got)
	}
}

type failingSink struct{ err error }

func (s failingSink) Log(context.Context, domain.ActivityEvent) error { return s.err }

func TestMultiJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	m := Multi{SlogSink{}, nil, failingSink{err: boom}}
	if err := m.Log(context.Background(), domain.ActivityEvent{Type: domain.ActivityLogin}); !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if err := (Multi{SlogSink{}}).Log(context.Background(), domain.ActivityEvent{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
