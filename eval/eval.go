package eval

import (
	"context"
	"time"

	"github.com/kbukum/liftkit/errors"
)

// Evaluator is the one-method contract shared by everything that turns an
// input into an output, possibly after waiting on the bus.
type Evaluator[In, Out any] interface {
	Eval(ctx context.Context, in In) Out
}

// Func adapts a function to Evaluator.
type Func[In, Out any] func(ctx context.Context, in In) Out

func (f Func[In, Out]) Eval(ctx context.Context, in In) Out { return f(ctx, in) }

// Stage is a pipeline step: it takes no input and yields the next context.
type Stage[C any] interface {
	Eval(ctx context.Context) Result[C]
}

// StageFunc adapts a function to Stage.
type StageFunc[C any] func(ctx context.Context) Result[C]

func (f StageFunc[C]) Eval(ctx context.Context) Result[C] { return f(ctx) }

// Named is implemented by stages that report a name to decorators.
type Named interface {
	Name() string
}

// NameOf returns the stage's name, or "stage" when it has none.
func NameOf(s any) string {
	if n, ok := s.(Named); ok {
		return n.Name()
	}
	return "stage"
}

// Then evaluates prev and runs fn on its Ok value. An Err from prev is
// wrapped with name; None is returned unchanged and fn is not called.
func Then[C any](ctx context.Context, name string, prev Stage[C], fn func(C) Result[C]) Result[C] {
	upstream := prev.Eval(ctx)
	switch upstream.Kind() {
	case KindOk:
		return fn(upstream.Value())
	case KindErr:
		return Err[C](errors.StageFailed(name, upstream.Error()))
	default:
		return upstream
	}
}

// Fail wraps a failure raised by the stage itself.
func Fail[C any](name string, err error) Result[C] {
	return Err[C](errors.StageFailed(name, err))
}

// Drive evaluates stage until it yields Ok or Err, waiting interval between
// None results. Cancellation of ctx ends the wait with a CANCELLED error.
func Drive[C any](ctx context.Context, stage Stage[C], interval time.Duration) Result[C] {
	for {
		res := stage.Eval(ctx)
		if !res.IsNone() {
			return res
		}
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Err[C](errors.Cancelled("drive "+NameOf(stage), ctx.Err()))
		case <-timer.C:
		}
	}
}
