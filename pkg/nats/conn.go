package nats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// SubjectPrefix is prepended to every event type.
const SubjectPrefix = "events"

// Conn is one NATS connection shared by the publisher and subscriber.
type Conn struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	stream string
}

// Connect dials NATS and makes sure the event stream exists. It fails
// when no server answers or the stream cannot be ensured, so callers can
// fall back to in-process delivery.
func Connect(url string, stream string) (*Conn, error) {
	nc, err := nats.Connect(url,
		nats.Timeout(2*time.Second),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      stream,
		Subjects:  []string{SubjectPrefix + ".>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    24 * time.Hour,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to ensure stream %q: %w", stream, err)
	}

	return &Conn{nc: nc, js: js, stream: stream}, nil
}

func Subject(eventType string) string {
	return fmt.Sprintf("%s.%s", SubjectPrefix, strings.ToLower(eventType))
}

func (c *Conn) Close() {
	if c.nc != nil {
		c.nc.Close()
	}
}
