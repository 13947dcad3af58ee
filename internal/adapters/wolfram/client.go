package wolfram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/formhunt/internal/core/domain"
	"github.com/samirrijal/formhunt/internal/core/ports"
	"github.com/samirrijal/formhunt/internal/pkg/telemetry"
)

const maxStderr = 512

var _ ports.MetadataEngine = (*Client)(nil)

// Client implements ports.MetadataEngine with wolframscript.
type Client struct {
	path   string
	runner Runner
	tracer trace.Tracer
}

// NewClient creates a client that runs the executable at path. A nil runner
// uses ExecRunner.
func NewClient(path string, runner Runner) *Client {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Client{
		path:   path,
		runner: runner,
		tracer: otel.Tracer(telemetry.TracerName),
	}
}

// NearbyFeatures runs one lookup. The deadline of ctx bounds the subprocess.
func (c *Client) NearbyFeatures(ctx context.Context, p domain.GeoPoint) (domain.Metadata, error) {
	if c.path == "" {
		return nil, domain.ErrEngineUnavailable
	}

	ctx, span := c.tracer.Start(ctx, telemetry.SpanEngineQuery, trace.WithAttributes(
		attribute.Float64("geo.lat", p.Lat),
		attribute.Float64("geo.lon", p.Lon),
	))
	defer span.End()

	md, err := c.run(ctx, p)
	span.SetAttributes(attribute.String("engine.outcome", domain.Outcome(err)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return md, nil
}

func (c *Client) run(ctx context.Context, p domain.GeoPoint) (domain.Metadata, error) {
	stdout, stderr, err := c.runner.Run(ctx, c.path, "-code", BuildScript(p))
	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %v", domain.ErrEngineTimeout, ctxErr)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			slog.DebugContext(ctx, "engine stderr", "stderr", truncate(stderr, maxStderr))
			return nil, fmt.Errorf("%w: code %d: %s", domain.ErrEngineExit, exitErr.ExitCode(), truncate(stderr, maxStderr))
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrEngineExit, err)
	}
	return parseOutput(stdout)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
