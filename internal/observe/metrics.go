// Package observe provides application-wide observability primitives for
// scenecraft: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all scenecraft metrics.
const meterName = "github.com/shortform/scenecraft"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// OracleDuration tracks script-generation LLM call latency.
	OracleDuration metric.Float64Histogram

	// TTSDuration tracks text-to-speech synthesis latency.
	TTSDuration metric.Float64Histogram

	// StockFetchDuration tracks stock-footage provider fetch latency.
	StockFetchDuration metric.Float64Histogram

	// RenderDuration tracks per-segment and final ffmpeg render latency.
	RenderDuration metric.Float64Histogram

	// JobDuration tracks end-to-end job processing time from PROCESSING to
	// a terminal status.
	JobDuration metric.Float64Histogram

	// --- Counters ---

	// ProviderRequests counts provider API calls. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...), attribute.String("status", ...)
	ProviderRequests metric.Int64Counter

	// JobsCreated counts jobs accepted via POST /api/generate.
	JobsCreated metric.Int64Counter

	// JobsCompleted counts jobs reaching a terminal status, by outcome.
	// Use with attribute.String("status", ...).
	JobsCompleted metric.Int64Counter

	// ScriptGateRejections counts script drafts rejected by the curiosity
	// gate or final auditor. Use with attribute.String("stage", "gate"|"audit").
	ScriptGateRejections metric.Int64Counter

	// CacheHits counts asset-cache lookups by outcome.
	// Use with attribute.String("outcome", "hit"|"miss").
	CacheHits metric.Int64Counter

	// AssetsSwept counts files removed by the retention sweeper.
	AssetsSwept metric.Int64Counter

	// --- Error counters ---

	// ProviderErrors counts provider errors. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...)
	ProviderErrors metric.Int64Counter

	// --- Gauges ---

	// ActiveJobs tracks the number of jobs currently in PROCESSING.
	ActiveJobs metric.Int64UpDownCounter

	// QueueDepth tracks the number of jobs waiting for a free worker slot.
	QueueDepth metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) optimised
// for the render pipeline, which spans from sub-second TTS calls to
// multi-minute final renders.
var latencyBuckets = []float64{
	0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.OracleDuration, err = m.Float64Histogram("scenecraft.oracle.duration",
		metric.WithDescription("Latency of script-generation oracle calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TTSDuration, err = m.Float64Histogram("scenecraft.tts.duration",
		metric.WithDescription("Latency of text-to-speech synthesis."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.StockFetchDuration, err = m.Float64Histogram("scenecraft.stock.fetch.duration",
		metric.WithDescription("Latency of stock-footage provider fetches."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.RenderDuration, err = m.Float64Histogram("scenecraft.render.duration",
		metric.WithDescription("Latency of ffmpeg segment and final renders."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.JobDuration, err = m.Float64Histogram("scenecraft.job.duration",
		metric.WithDescription("End-to-end job processing time."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.ProviderRequests, err = m.Int64Counter("scenecraft.provider.requests",
		metric.WithDescription("Total provider API requests by provider, kind, and status."),
	); err != nil {
		return nil, err
	}
	if met.JobsCreated, err = m.Int64Counter("scenecraft.jobs.created",
		metric.WithDescription("Total jobs accepted for processing."),
	); err != nil {
		return nil, err
	}
	if met.JobsCompleted, err = m.Int64Counter("scenecraft.jobs.completed",
		metric.WithDescription("Total jobs reaching a terminal status, by outcome."),
	); err != nil {
		return nil, err
	}
	if met.ScriptGateRejections, err = m.Int64Counter("scenecraft.script.gate_rejections",
		metric.WithDescription("Total script drafts rejected by the curiosity gate or final auditor."),
	); err != nil {
		return nil, err
	}
	if met.CacheHits, err = m.Int64Counter("scenecraft.cache.lookups",
		metric.WithDescription("Total asset-cache lookups by outcome."),
	); err != nil {
		return nil, err
	}
	if met.AssetsSwept, err = m.Int64Counter("scenecraft.cleanup.assets_swept",
		metric.WithDescription("Total files removed by the retention sweeper."),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.ProviderErrors, err = m.Int64Counter("scenecraft.provider.errors",
		metric.WithDescription("Total provider errors by provider and kind."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveJobs, err = m.Int64UpDownCounter("scenecraft.jobs.active",
		metric.WithDescription("Number of jobs currently in PROCESSING."),
	); err != nil {
		return nil, err
	}
	if met.QueueDepth, err = m.Int64UpDownCounter("scenecraft.jobs.queue_depth",
		metric.WithDescription("Number of jobs waiting for a free worker slot."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("scenecraft.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordProviderRequest is a convenience method that records a provider
// request counter increment with the standard attribute set.
func (m *Metrics) RecordProviderRequest(ctx context.Context, provider, kind, status string) {
	m.ProviderRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
			attribute.String("status", status),
		),
	)
}

// RecordJobCompleted is a convenience method that records a job-completion
// counter increment with the job's terminal status.
func (m *Metrics) RecordJobCompleted(ctx context.Context, status string) {
	m.JobsCompleted.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
}

// RecordGateRejection is a convenience method that records a script-gate
// rejection, tagged by which stage rejected it.
func (m *Metrics) RecordGateRejection(ctx context.Context, stage string) {
	m.ScriptGateRejections.Add(ctx, 1,
		metric.WithAttributes(attribute.String("stage", stage)),
	)
}

// RecordCacheLookup is a convenience method that records an asset-cache
// lookup, tagged "hit" or "miss".
func (m *Metrics) RecordCacheLookup(ctx context.Context, outcome string) {
	m.CacheHits.Add(ctx, 1,
		metric.WithAttributes(attribute.String("outcome", outcome)),
	)
}

// RecordProviderError is a convenience method that records a provider error
// counter increment.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		),
	)
}
