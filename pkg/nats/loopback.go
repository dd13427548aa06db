package nats

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"

	"legal-annotation-be/pkg/events"
)

// Loopback stands in for the Publisher/Subscriber pair when no NATS server
// is reachable. Events are delivered to handlers of this process only.
type Loopback struct {
	mu       sync.RWMutex
	handlers []loopbackHandler
}

type loopbackHandler struct {
	prefix  string
	handler EventHandler
}

func NewLoopback() *Loopback {
	return &Loopback{}
}

// Subscribe ignores the durable name; every handler sees every event.
func (l *Loopback) Subscribe(_ context.Context, subject string, _ string, handler EventHandler) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers = append(l.handlers, loopbackHandler{prefix: strings.TrimSuffix(subject, ">"), handler: handler})
	return nil
}

// Publish encodes the event the same way the wire does and hands it to
// matching handlers on their own goroutine, detached from the caller's
// cancellation like a broker delivery would be.
func (l *Loopback) Publish(ctx context.Context, event events.Event) error {
	data, err := json.Marshal(events.BaseEvent{
		Type:       event.EventType(),
		Data:       event.Payload(),
		OccurredAt: event.Timestamp(),
	})
	if err != nil {
		return err
	}
	var decoded events.BaseEvent
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	subject := Subject(event.EventType())
	l.mu.RLock()
	handlers := append([]loopbackHandler(nil), l.handlers...)
	l.mu.RUnlock()

	detached := context.WithoutCancel(ctx)
	for _, h := range handlers {
		if !strings.HasPrefix(subject, h.prefix) {
			continue
		}
		go func(handler EventHandler) {
			if err := handler(detached, decoded); err != nil {
				log.Printf("Loopback handler failed for event %s: %v", subject, err)
			}
		}(h.handler)
	}
	return nil
}
