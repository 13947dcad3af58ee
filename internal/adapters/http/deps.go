package http

import (
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/formhunt/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Metadata *usecases.MetadataService

	// NATS is optional. Without it the /ws relay answers 503.
	NATS        *nats.Conn
	EventPrefix string

	// RequestTimeout bounds POST /api/metadata. It should exceed the engine
	// timeout so a slow engine yields {} rather than a 408.
	RequestTimeout time.Duration

	OpenAPIPath string
	Version     string
}

func (d *Dependencies) requestTimeout() time.Duration {
	if d.RequestTimeout > 0 {
		return d.RequestTimeout
	}
	return usecases.DefaultEngineTimeout + 10*time.Second
}
