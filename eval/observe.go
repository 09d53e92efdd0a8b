package eval

import (
	"context"
	"time"

	"github.com/kbukum/liftkit/logger"
	"github.com/kbukum/liftkit/observability"
)

func outcomeOf(k Kind) string {
	switch k {
	case KindOk:
		return observability.OutcomeOK
	case KindErr:
		return observability.OutcomeErr
	default:
		return observability.OutcomeNone
	}
}

// WithTracing wraps a stage in a span named after it.
func WithTracing[C any](stage Stage[C], name string) Stage[C] {
	return &tracingStage[C]{inner: stage, name: name}
}

type tracingStage[C any] struct {
	inner Stage[C]
	name  string
}

func (s *tracingStage[C]) Name() string { return s.name }

func (s *tracingStage[C]) Eval(ctx context.Context) Result[C] {
	ctx, span := observability.StartSpan(ctx, observability.SpanStageEval+"."+s.name)
	defer span.End()

	observability.SetSpanAttribute(ctx, observability.AttrStage, s.name)
	res := s.inner.Eval(ctx)
	observability.SetSpanAttribute(ctx, observability.AttrOutcome, outcomeOf(res.Kind()))
	if res.IsErr() {
		observability.SetSpanError(ctx, res.Error())
	}
	return res
}

// WithMetrics records the outcome and duration of each evaluation.
// A nil metrics falls back to observability.Default().
func WithMetrics[C any](stage Stage[C], name string, metrics *observability.Metrics) Stage[C] {
	if metrics == nil {
		metrics = observability.Default()
	}
	return &metricsStage[C]{inner: stage, name: name, metrics: metrics}
}

type metricsStage[C any] struct {
	inner   Stage[C]
	name    string
	metrics *observability.Metrics
}

func (s *metricsStage[C]) Name() string { return s.name }

func (s *metricsStage[C]) Eval(ctx context.Context) Result[C] {
	start := time.Now()
	res := s.inner.Eval(ctx)
	s.metrics.RecordStage(ctx, s.name, outcomeOf(res.Kind()), time.Since(start))
	return res
}

// WithLogging logs every evaluation: failures at error level, the rest at debug.
func WithLogging[C any](stage Stage[C], name string, log *logger.Logger) Stage[C] {
	return &loggingStage[C]{inner: stage, name: name, log: log}
}

type loggingStage[C any] struct {
	inner Stage[C]
	name  string
	log   *logger.Logger
}

func (s *loggingStage[C]) Name() string { return s.name }

func (s *loggingStage[C]) Eval(ctx context.Context) Result[C] {
	start := time.Now()
	res := s.inner.Eval(ctx)

	fields := logger.DurationFields("eval", time.Since(start))
	fields[logger.FieldStage] = s.name
	fields[logger.FieldOutcome] = outcomeOf(res.Kind())
	log := s.log.WithContext(ctx)
	if res.IsErr() {
		fields[logger.FieldError] = res.Error().Error()
		log.Error("stage failed", fields)
	} else {
		log.Debug("stage evaluated", fields)
	}
	return res
}

// Observe applies tracing, metrics and logging in one call.
func Observe[C any](stage Stage[C], name string, log *logger.Logger, metrics *observability.Metrics) Stage[C] {
	return WithLogging(WithMetrics(WithTracing(stage, name), name, metrics), name, log)
}
