package crane

import (
	"github.com/kbukum/liftkit/bus"
	"github.com/kbukum/liftkit/eval"
	"github.com/kbukum/liftkit/logger"
	"github.com/kbukum/liftkit/observability"
	"github.com/kbukum/liftkit/resilience"
)

type buildOptions struct {
	log     *logger.Logger
	metrics *observability.Metrics
	retry   resilience.RetryConfig
	restart *bus.Link
}

// Option configures Build.
type Option func(*buildOptions)

// WithLogger sets the logger used by stage decorators and retries.
func WithLogger(l *logger.Logger) Option {
	return func(o *buildOptions) { o.log = l }
}

// WithMetrics sets the metrics sink of the stage decorators.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *buildOptions) { o.metrics = m }
}

// WithRetry sets the policy for operator requests that time out.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(o *buildOptions) { o.retry = cfg }
}

// WithRestart makes the chain wait for a RestartEval query on link before
// reading initial data.
func WithRestart(link *bus.Link) Option {
	return func(o *buildOptions) { o.restart = link }
}

// Build chains the stages from Initial to LoadHandDeviceMass and returns the
// last one. Every stage is traced, measured and logged.
func Build(source Source, hooks *HookRequest, bearings *BearingRequest, opts ...Option) eval.Stage[Context] {
	o := buildOptions{
		log:     logger.GetGlobalLogger(),
		metrics: observability.Default(),
		retry:   resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.log.WithComponent("crane")

	observe := func(name string, s eval.Stage[Context]) eval.Stage[Context] {
		return eval.Observe(s, name, log, o.metrics)
	}

	s := observe(StageInitial, Initial(source, o.restart))
	s = observe(StageHookFilter, HookFilter(s))
	s = observe(StageUserHook, UserHook(s, hooks, o.retry, log))
	s = observe(StageLiftingSpeed, LiftingSpeed(s))
	s = observe(StageSelectBetPhi, SelectBetPhi(s))
	s = observe(StageDynamicCoefficient, DynamicCoefficient(s))
	s = observe(StageBearingFilter, BearingFilter(s))
	s = observe(StageUserBearing, UserBearing(s, bearings, o.retry, log))
	return observe(StageLoadHandDeviceMass, LoadHandDeviceMass(s))
}
