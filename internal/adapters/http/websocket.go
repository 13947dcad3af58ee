package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/formhunt/internal/adapters/nats"
	"github.com/samirrijal/formhunt/internal/pkg/metrics"
)

// wsMessage is sent from client to change the outcome filter.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe"
	Outcome string `json:"outcome"` // lookup outcome, "" = all
}

// WebSocketUpgrade rejects non-upgrade requests and requests made while no
// NATS connection is configured.
func WebSocketUpgrade(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.NATS == nil {
			return errUnavailable(c, "event stream not configured")
		}
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// WebSocketHandler relays lookup events from NATS to operators.
// The ?outcome= query selects the initial filter (default: all). Clients can
// send {"action":"subscribe","outcome":"timeout"} to add more.
func WebSocketHandler(nc *nats.Conn, prefix string) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remote := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remote)

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // subject -> subscription

		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		subscribe := func(subject string) error {
			if _, exists := subs[subject]; exists {
				return nil
			}
			s, err := nc.Subscribe(subject, func(msg *nats.Msg) {
				_ = writeJSON(json.RawMessage(msg.Data))
			})
			if err != nil {
				return err
			}
			subs[subject] = s
			return nil
		}

		if err := subscribe(natsadapter.Subject(prefix, c.Query("outcome"))); err != nil {
			slog.Warn("ws initial subscribe", "error", err)
			return
		}

		// keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				break
			}
			var m wsMessage
			if err := json.Unmarshal(raw, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}
			subject := natsadapter.Subject(prefix, m.Outcome)

			switch m.Action {
			case "subscribe":
				if err := subscribe(subject); err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed"})
					continue
				}
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})
			case "unsubscribe":
				if s, ok := subs[subject]; ok {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}
			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		slog.Info("ws client disconnected", "remote", remote)
	}
}
