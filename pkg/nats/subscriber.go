package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"legal-annotation-be/pkg/events"

	"github.com/nats-io/nats.go/jetstream"
)

const ephemeralInactiveThreshold = 5 * time.Minute

// EventHandler is a function that processes an event.
type EventHandler func(ctx context.Context, event events.BaseEvent) error

// Subscriber handles listening for events from NATS.
type Subscriber struct {
	conn     *Conn
	consumes []jetstream.ConsumeContext
}

func NewSubscriber(conn *Conn) *Subscriber {
	return &Subscriber{conn: conn}
}

// Subscribe registers a handler on a durable consumer. Instances sharing a
// durable name split the messages between them. An empty durable name
// creates an ephemeral consumer that sees every message and is removed by
// the server once this instance goes away.
func (s *Subscriber) Subscribe(ctx context.Context, subject string, durableName string, handler EventHandler) error {
	cfg := jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverNewPolicy,
		MaxDeliver:    5,
	}
	if durableName == "" {
		cfg.InactiveThreshold = ephemeralInactiveThreshold
	}
	consumer, err := s.conn.js.CreateOrUpdateConsumer(ctx, s.conn.stream, cfg)
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		var event events.BaseEvent
		if err := json.Unmarshal(msg.Data(), &event); err != nil {
			log.Printf("Error unmarshalling event data on %s: %v", msg.Subject(), err)
			// Malformed messages will never parse; drop them.
			_ = msg.Term()
			return
		}

		if err := handler(ctx, event); err != nil {
			log.Printf("Handler failed for event %s: %v", msg.Subject(), err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	s.consumes = append(s.consumes, cc)

	log.Printf("Subscribed to %s with durable %s", subject, durableName)
	return nil
}

// Stop ends every consumer started by Subscribe.
func (s *Subscriber) Stop() {
	for _, cc := range s.consumes {
		cc.Stop()
	}
	s.consumes = nil
}
