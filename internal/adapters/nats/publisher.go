package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/formhunt/internal/core/domain"
	"github.com/samirrijal/formhunt/internal/core/ports"
)

// DefaultSubjectPrefix is the root subject for lookup events. Events are
// published on <prefix>.<outcome>.
const DefaultSubjectPrefix = "formhunt.lookup"

var _ ports.EventPublisher = (*Publisher)(nil)

// Publisher implements ports.EventPublisher using core NATS.
type Publisher struct {
	conn   *nats.Conn
	prefix string
}

// NewPublisher connects to NATS.
func NewPublisher(url, prefix string) (*Publisher, error) {
	conn, err := Connect(url)
	if err != nil {
		return nil, err
	}
	return NewPublisherWithConn(conn, prefix), nil
}

// NewPublisherWithConn publishes on an existing connection.
func NewPublisherWithConn(conn *nats.Conn, prefix string) *Publisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &Publisher{conn: conn, prefix: prefix}
}

// Subject returns the subject an event with the given outcome is sent on.
func Subject(prefix, outcome string) string {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	if outcome == "" {
		return prefix + ".>"
	}
	return prefix + "." + outcome
}

func (p *Publisher) PublishLookup(ctx context.Context, event *domain.LookupEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.conn.Publish(Subject(p.prefix, event.Outcome), data)
}

// Conn returns the underlying connection.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// Connect opens a NATS connection that keeps reconnecting in the background.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("formhunt"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return conn, nil
}
