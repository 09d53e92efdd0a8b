package eval

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/liftkit/errors"
	"github.com/kbukum/liftkit/logger"
)

func constant(r Result[int]) Stage[int] {
	return StageFunc[int](func(context.Context) Result[int] { return r })
}

type addStage struct {
	name  string
	prev  Stage[int]
	delta int
	calls int
}

func (s *addStage) Name() string { return s.name }

func (s *addStage) Eval(ctx context.Context) Result[int] {
	return Then(ctx, s.name, s.prev, func(v int) Result[int] {
		s.calls++
		return Ok(v + s.delta)
	})
}

func TestThenOkRunsStage(t *testing.T) {
	s := &addStage{name: "Add", prev: constant(Ok(1)), delta: 2}
	res := s.Eval(context.Background())
	require.True(t, res.IsOk())
	assert.Equal(t, 3, res.Value())
	assert.Equal(t, 1, s.calls)
}

func TestThenNonePassesThroughUntouched(t *testing.T) {
	s := &addStage{name: "Add", prev: constant(None[int]()), delta: 2}
	res := s.Eval(context.Background())
	assert.True(t, res.IsNone())
	assert.Zero(t, s.calls)
}

func TestThenErrBuildsBreadcrumbs(t *testing.T) {
	root := fmt.Errorf("empty table")
	first := &addStage{name: "First", prev: constant(Err[int](root))}
	second := &addStage{name: "Second", prev: first}
	third := &addStage{name: "Third", prev: second}

	res := third.Eval(context.Background())
	require.True(t, res.IsErr())
	assert.Equal(t, []string{"Third", "Second", "First"}, errors.Chain(res.Error()))
	assert.ErrorIs(t, res.Error(), root)
	assert.Zero(t, first.calls+second.calls+third.calls)
}

func TestFail(t *testing.T) {
	res := Fail[int]("HookFilter", errors.NoCandidates("HookFilter", "hooks"))
	require.True(t, res.IsErr())
	assert.True(t, errors.HasCode(res.Error(), errors.ErrCodeNoCandidates))
	assert.Equal(t, []string{"HookFilter"}, errors.Chain(res.Error()))
}

func TestFuncAdapter(t *testing.T) {
	var e Evaluator[int, string] = Func[int, string](func(_ context.Context, in int) string {
		return fmt.Sprintf("#%d", in)
	})
	assert.Equal(t, "#4", e.Eval(context.Background(), 4))
}

func TestNameOf(t *testing.T) {
	assert.Equal(t, "Add", NameOf(&addStage{name: "Add"}))
	assert.Equal(t, "stage", NameOf(constant(Ok(1))))
}

func TestDriveWaitsThroughNone(t *testing.T) {
	var calls atomic.Int32
	stage := StageFunc[int](func(context.Context) Result[int] {
		if calls.Add(1) < 3 {
			return None[int]()
		}
		return Ok(42)
	})
	res := Drive[int](context.Background(), stage, time.Millisecond)
	require.True(t, res.IsOk())
	assert.Equal(t, 42, res.Value())
	assert.EqualValues(t, 3, calls.Load())
}

func TestDriveStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	res := Drive(ctx, constant(None[int]()), 5*time.Millisecond)
	require.True(t, res.IsErr())
	assert.True(t, errors.HasCode(res.Error(), errors.ErrCodeCancelled))
}

func TestDriveReturnsErrImmediately(t *testing.T) {
	res := Drive(context.Background(), constant(Err[int](fmt.Errorf("x"))), time.Hour)
	assert.True(t, res.IsErr())
}

func TestObserveKeepsResult(t *testing.T) {
	log := logger.NewNop()
	for _, in := range []Result[int]{Ok(1), None[int](), Err[int](fmt.Errorf("x"))} {
		out := Observe(constant(in), "Const", log, nil).Eval(context.Background())
		assert.Equal(t, in.Kind(), out.Kind())
		assert.Equal(t, in.Value(), out.Value())
	}
	assert.Equal(t, "Const", NameOf(Observe(constant(Ok(1)), "Const", log, nil)))
}
