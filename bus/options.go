package bus

import (
	"time"

	"github.com/kbukum/liftkit/logger"
	"github.com/kbukum/liftkit/observability"
)

const (
	// DefaultPollTimeout bounds a single RecvQuery wait.
	DefaultPollTimeout = 10 * time.Millisecond
	// DefaultRequestTimeout bounds the wait for a reply in Req.
	DefaultRequestTimeout = 10 * time.Second
)

type options struct {
	pollTimeout    time.Duration
	requestTimeout time.Duration
	log            *logger.Logger
	metrics        *observability.Metrics
}

// Option configures a Link or a Switch.
type Option func(*options)

// WithTimeout sets the poll timeout used by RecvQuery. Zero checks once
// without waiting; negative values are treated as zero.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.pollTimeout = max(d, 0) }
}

// WithRequestTimeout sets how long Req waits for its reply.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = max(d, 0) }
}

// WithLogger sets the base logger. Defaults to the global logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics sets the instruments. Defaults to observability.Default().
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func buildOptions(opts []Option) options {
	o := options{
		pollTimeout:    DefaultPollTimeout,
		requestTimeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.GetGlobalLogger()
	}
	if o.metrics == nil {
		o.metrics = observability.Default()
	}
	return o
}

func (o options) asOptions() []Option {
	return []Option{
		WithTimeout(o.pollTimeout),
		WithRequestTimeout(o.requestTimeout),
		WithLogger(o.log),
		WithMetrics(o.metrics),
	}
}
