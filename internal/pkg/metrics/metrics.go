package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "formhunt",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "formhunt",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.005, 0.025, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
	}, []string{"method", "path"})

	// Engine metrics
	EngineInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "formhunt",
		Subsystem: "engine",
		Name:      "lookups_total",
		Help:      "Metadata lookups by outcome (ok, empty, unavailable, exit_error, no_output, timeout, malformed, error)",
	}, []string{"outcome"})

	EngineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "formhunt",
		Subsystem: "engine",
		Name:      "invocation_duration_seconds",
		Help:      "Wall-clock duration of engine subprocess invocations",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 90, 120},
	})

	EngineAvailable = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "formhunt",
		Subsystem: "engine",
		Name:      "available",
		Help:      "1 if the engine entry point was found at startup",
	})

	CategoriesReturned = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "formhunt",
		Subsystem: "engine",
		Name:      "categories_returned",
		Help:      "Non-empty categories per successful lookup",
		Buckets:   prometheus.LinearBuckets(0, 3, 9),
	})

	EventPublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "formhunt",
		Subsystem: "events",
		Name:      "publish_errors_total",
		Help:      "Lookup events that could not be published",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "formhunt",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})
)

// SetEngineAvailable records the startup probe result.
func SetEngineAvailable(ok bool) {
	if ok {
		EngineAvailable.Set(1)
		return
	}
	EngineAvailable.Set(0)
}

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		// route pattern keeps label cardinality bounded
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}
