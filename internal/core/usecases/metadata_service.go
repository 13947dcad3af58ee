package usecases

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/formhunt/internal/core/domain"
	"github.com/samirrijal/formhunt/internal/core/ports"
	"github.com/samirrijal/formhunt/internal/pkg/logging"
	"github.com/samirrijal/formhunt/internal/pkg/metrics"
	"github.com/samirrijal/formhunt/internal/pkg/telemetry"
)

// DefaultEngineTimeout bounds a single engine invocation. The engine is slow
// on its first run because of its own startup cost.
const DefaultEngineTimeout = 90 * time.Second

// MetadataService looks up nearby features for a coordinate. Lookups are
// best-effort: every failure degrades to empty metadata.
type MetadataService struct {
	engine  ports.MetadataEngine
	status  domain.EngineStatus
	events  ports.EventPublisher
	timeout time.Duration
	tracer  trace.Tracer
	now     func() time.Time
}

// NewMetadataService creates a new MetadataService. status is the startup
// probe result and is never re-evaluated. events may be nil.
func NewMetadataService(engine ports.MetadataEngine, status domain.EngineStatus, events ports.EventPublisher, timeout time.Duration) *MetadataService {
	if timeout <= 0 {
		timeout = DefaultEngineTimeout
	}
	return &MetadataService{
		engine:  engine,
		status:  status,
		events:  events,
		timeout: timeout,
		tracer:  otel.Tracer(telemetry.TracerName),
		now:     time.Now,
	}
}

// Status returns the startup probe result.
func (s *MetadataService) Status() domain.EngineStatus {
	return s.status
}

// Lookup returns the non-empty feature categories around p. p must already
// be validated. The result is never nil and no error is returned: engine
// failures are logged, counted and published instead.
func (s *MetadataService) Lookup(ctx context.Context, p domain.GeoPoint) domain.Metadata {
	if !s.status.Available || s.engine == nil {
		s.record(ctx, p, domain.OutcomeUnavailable, 0, 0, nil)
		return domain.Metadata{}
	}

	ctx, span := s.tracer.Start(ctx, telemetry.SpanMetadataLookup)
	defer span.End()

	// A client going away must not kill an in-flight engine run; only the
	// timeout does.
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	start := s.now()
	raw, err := s.engine.NearbyFeatures(runCtx, p)
	elapsed := s.now().Sub(start)
	metrics.EngineDuration.Observe(elapsed.Seconds())

	if err != nil {
		outcome := domain.Outcome(err)
		span.SetAttributes(attribute.String("engine.outcome", outcome))
		s.record(ctx, p, outcome, 0, elapsed, err)
		return domain.Metadata{}
	}

	md := raw.Compact()
	outcome := domain.OutcomeOK
	if len(md) == 0 {
		outcome = domain.OutcomeEmpty
	}
	span.SetAttributes(
		attribute.String("engine.outcome", outcome),
		attribute.Int("engine.categories", len(md)),
	)
	metrics.CategoriesReturned.Observe(float64(len(md)))
	s.record(ctx, p, outcome, len(md), elapsed, nil)
	return md
}

// record reports one lookup to logs, metrics and the event stream.
func (s *MetadataService) record(ctx context.Context, p domain.GeoPoint, outcome string, categories int, elapsed time.Duration, err error) {
	metrics.EngineInvocations.WithLabelValues(outcome).Inc()

	log := logging.FromContext(ctx)
	attrs := []any{
		"outcome", outcome,
		"lat", p.Lat,
		"lon", p.Lon,
		"duration", elapsed.String(),
	}
	switch {
	case err != nil:
		log.Warn("metadata lookup failed", append(attrs, "error", err)...)
	case outcome == domain.OutcomeUnavailable:
		log.Debug("metadata lookup skipped", attrs...)
	default:
		log.Info("metadata lookup", append(attrs, "categories", categories)...)
	}

	if s.events == nil {
		return
	}
	event := &domain.LookupEvent{
		Lat:        p.Lat,
		Lon:        p.Lon,
		Outcome:    outcome,
		Categories: categories,
		DurationMS: elapsed.Milliseconds(),
		RequestID:  logging.RequestID(ctx),
		At:         s.now().UTC().Format(time.RFC3339),
	}
	if err != nil {
		event.Error = err.Error()
	}
	if perr := s.events.PublishLookup(context.WithoutCancel(ctx), event); perr != nil {
		metrics.EventPublishErrors.Inc()
		log.Warn("publish lookup event", "error", perr)
	}
}
