package natsadapter

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/formhunt/internal/core/domain"
	"github.com/samirrijal/formhunt/internal/core/ports"
)

var _ ports.EventSubscriber = (*Subscriber)(nil)

// Subscriber implements ports.EventSubscriber using core NATS.
type Subscriber struct {
	conn   *nats.Conn
	prefix string
	subs   []*nats.Subscription
}

// NewSubscriber creates a subscriber on an existing connection.
func NewSubscriber(conn *nats.Conn, prefix string) *Subscriber {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &Subscriber{conn: conn, prefix: prefix}
}

// SubscribeLookups delivers lookup events to handler. An empty outcome
// subscribes to all outcomes. Undecodable messages are logged and dropped.
func (s *Subscriber) SubscribeLookups(ctx context.Context, outcome string, handler func(ctx context.Context, event *domain.LookupEvent) error) error {
	sub, err := s.conn.Subscribe(Subject(s.prefix, outcome), func(msg *nats.Msg) {
		var ev domain.LookupEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			slog.Warn("drop undecodable lookup event", "subject", msg.Subject, "error", err)
			return
		}
		if err := handler(ctx, &ev); err != nil {
			slog.Warn("lookup event handler failed", "subject", msg.Subject, "error", err)
		}
	})
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes everything registered through this subscriber.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	s.subs = nil
}
