package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/liftkit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment.
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows plain HTTP to the collector.
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Envelope dispositions recorded by the switch.
const (
	DispositionBroadcast = "broadcast"
	DispositionRouted    = "routed"
	DispositionDropped   = "dropped"
	DispositionForwarded = "forwarded"
)

// Stage outcomes.
const (
	OutcomeOK   = "ok"
	OutcomeErr  = "err"
	OutcomeNone = "none"
)

// Request statuses.
const (
	RequestOK      = "ok"
	RequestTimeout = "timeout"
	RequestFailed  = "failed"
)

// Metrics holds the instruments shared by the bus and the pipeline.
type Metrics struct {
	envelopes       metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
	subscribers     metric.Int64UpDownCounter
	stageTotal      metric.Int64Counter
	stageDuration   metric.Float64Histogram
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	envelopes, err := meter.Int64Counter("bus.envelopes",
		metric.WithDescription("Envelopes handled by a switch, by cot and disposition"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating bus.envelopes counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram("bus.request.duration",
		metric.WithDescription("Round-trip time of link requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating bus.request.duration histogram: %w", err)
	}

	requestTotal, err := meter.Int64Counter("bus.requests",
		metric.WithDescription("Link requests by status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating bus.requests counter: %w", err)
	}

	subscribers, err := meter.Int64UpDownCounter("bus.subscribers",
		metric.WithDescription("Subscribers registered on switches"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating bus.subscribers counter: %w", err)
	}

	stageTotal, err := meter.Int64Counter("eval.stage.outcomes",
		metric.WithDescription("Stage evaluations by stage and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating eval.stage.outcomes counter: %w", err)
	}

	stageDuration, err := meter.Float64Histogram("eval.stage.duration",
		metric.WithDescription("Duration of stage evaluations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating eval.stage.duration histogram: %w", err)
	}

	return &Metrics{
		envelopes:       envelopes,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		subscribers:     subscribers,
		stageTotal:      stageTotal,
		stageDuration:   stageDuration,
	}, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// Default returns instruments bound to the global meter provider. Instruments
// created before InitMeter forward to the real provider once it is set.
func Default() *Metrics {
	defaultMetricsOnce.Do(func() {
		m, err := NewMetrics(Meter(defaultTracerName))
		if err != nil {
			logger.Warn("default metrics unavailable", logger.Fields(logger.FieldError, err.Error()))
			return
		}
		defaultMetrics = m
	})
	return defaultMetrics
}

// RecordEnvelope counts one envelope passing through a switch.
func (m *Metrics) RecordEnvelope(ctx context.Context, cot, disposition string) {
	if m == nil {
		return
	}
	m.envelopes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cot", cot),
		attribute.String("disposition", disposition),
	))
}

// RecordRequest records a finished link request.
func (m *Metrics) RecordRequest(ctx context.Context, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	m.requestDuration.Record(ctx, duration.Seconds())
}

// RecordSubscriber adjusts the registered-subscriber gauge.
func (m *Metrics) RecordSubscriber(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.subscribers.Add(ctx, delta)
}

// RecordStage records one stage evaluation.
func (m *Metrics) RecordStage(ctx context.Context, stage, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.stageTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("outcome", outcome),
	))
	m.stageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
	))
}
