package bus

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/liftkit/errors"
)

func runSwitch(t *testing.T, opts ...Option) (*Switch, *Link) {
	t.Helper()
	sw, remote := SplitSwitch("main", quiet(opts...)...)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, sw.Run(ctx))
	t.Cleanup(func() {
		sw.Exit()
		remote.Exit()
		cancel()
		sw.Wait()
	})
	return sw, remote
}

func TestSwitchLinkNames(t *testing.T) {
	sw, _ := runSwitch(t)
	ctx := context.Background()

	a, err := sw.Link(ctx)
	require.NoError(t, err)
	b, err := sw.Link(ctx)
	require.NoError(t, err)

	assert.Equal(t, "main:Switch:0:Link", a.Key())
	assert.Equal(t, "main:Switch:1:Link", b.Key())
	assert.Equal(t, uint64(2), sw.Generation())
	assert.Equal(t, 2, sw.Subscribers())
}

func TestSwitchRunTwice(t *testing.T) {
	sw, _ := runSwitch(t)
	assert.Error(t, sw.Run(context.Background()))
}

func TestSwitchLinkAfterExit(t *testing.T) {
	sw, _ := runSwitch(t)
	sw.Exit()
	_, err := sw.Link(context.Background())
	assert.True(t, errors.HasCode(err, errors.ErrCodeCancelled))
}

func TestSwitchLinkWaitsForRun(t *testing.T) {
	sw, _ := SplitSwitch("idle", quiet()...)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := sw.Link(ctx)
	assert.True(t, errors.HasCode(err, errors.ErrCodeCancelled))
	assert.Equal(t, uint64(0), sw.Generation())
}

func TestSwitchScenario(t *testing.T) {
	ctx := context.Background()
	sw, remote := runSwitch(t)
	l1, err := sw.Link(ctx)
	require.NoError(t, err)

	serve(t, ctx, remote, func(q Message) (Message, error) {
		if q == "Query-1" {
			return "Reply-1", nil
		}
		return "", fmt.Errorf("unexpected %q", q)
	})

	reply, err := Ask[Message](ctx, l1, Message("Query-1"))
	require.NoError(t, err)
	assert.Equal(t, Message("Reply-1"), reply)
}

func TestSwitchScenarioWithoutResponder(t *testing.T) {
	ctx := context.Background()
	sw, _ := runSwitch(t, WithRequestTimeout(30*time.Millisecond))
	l1, err := sw.Link(ctx)
	require.NoError(t, err)

	_, err = Ask[Message](ctx, l1, Message("Query-1"))
	assert.True(t, errors.IsTimeout(err), "got %v", err)
}

func TestSwitchRoutesRepliesByKey(t *testing.T) {
	for _, order := range []string{"ab", "ba"} {
		t.Run(order, func(t *testing.T) {
			ctx := context.Background()
			sw, remote := runSwitch(t)

			links := map[byte]*Link{}
			for i := range len(order) {
				l, err := sw.Link(ctx)
				require.NoError(t, err)
				links[order[i]] = l
			}

			serve(t, ctx, remote, func(q Message) (Message, error) {
				return "for " + q, nil
			})

			var wg sync.WaitGroup
			for id, l := range links {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for n := range 5 {
						q := Message(fmt.Sprintf("%s/%c/%d", l.Key(), id, n))
						reply, err := Ask[Message](ctx, l, q)
						if assert.NoError(t, err) {
							assert.Equal(t, "for "+q, reply)
						}
					}
				}()
			}
			wg.Wait()
		})
	}
}

func TestSwitchBroadcast(t *testing.T) {
	ctx := context.Background()
	sw, remote := runSwitch(t, WithTimeout(time.Second))

	var links []*Link
	for range 3 {
		l, err := sw.Link(ctx)
		require.NoError(t, err)
		links = append(links, l)
	}

	require.NoError(t, remote.Notify(CotInf, Message("hello")))
	for _, l := range links {
		res := RecvQueryFrom[Message](ctx, l)
		require.True(t, res.IsOk(), res.String())
		assert.Equal(t, Message("hello"), res.Value().Value)
		assert.Equal(t, remote.Key(), res.Value().From)
	}
}

func TestSwitchDropsUnroutedReplies(t *testing.T) {
	ctx := context.Background()
	sw, remote := runSwitch(t, WithTimeout(30*time.Millisecond))
	l, err := sw.Link(ctx)
	require.NoError(t, err)

	require.NoError(t, remote.Send(NewEnvelope(remote.TxID(), "main:Switch:99:Link", CotReqCon, `"lost"`)))
	require.NoError(t, remote.Send(NewEnvelope(remote.TxID(), l.Key(), CotDiag, `"diag"`)))
	assert.True(t, RecvQuery[Message](ctx, l).IsNone())

	require.NoError(t, remote.Send(NewEnvelope(remote.TxID(), l.Key(), CotReqCon, `"mine"`)))
	res := RecvQuery[Message](ctx, l)
	require.True(t, res.IsOk(), res.String())
	assert.Equal(t, Message("mine"), res.Value())
}

func TestSwitchForwardsUnchanged(t *testing.T) {
	ctx := context.Background()
	sw, remote := runSwitch(t)
	l, err := sw.Link(ctx)
	require.NoError(t, err)

	require.NoError(t, l.Notify(CotDiag, Message("trace")))
	e := waitEnvelope(t, remote)
	assert.Equal(t, CotDiag, e.Cot)
	assert.Equal(t, l.Key(), e.RoutingKey)
	assert.Equal(t, l.TxID(), e.CorrelationID)
}

func TestSwitchExitStopsLoops(t *testing.T) {
	sw, _ := SplitSwitch("main", quiet()...)
	require.NoError(t, sw.Run(context.Background()))
	sw.Exit()
	sw.Exit()

	done := make(chan struct{})
	go func() { sw.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("switch loops did not stop")
	}
}

func TestSwitchLinkAfterRunContextEnds(t *testing.T) {
	sw, _ := SplitSwitch("main", quiet()...)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, sw.Run(ctx))
	cancel()
	sw.Wait()
	assert.True(t, sw.ExitSignal().Fired())

	type result struct {
		link *Link
		err  error
	}
	got := make(chan result, 1)
	go func() {
		l, err := sw.Link(context.Background())
		got <- result{l, err}
	}()
	select {
	case r := <-got:
		assert.Nil(t, r.link)
		assert.True(t, errors.HasCode(r.err, errors.ErrCodeCancelled), "got %v", r.err)
	case <-time.After(time.Second):
		t.Fatal("Link blocked after the switch stopped")
	}
}

func TestSwitchExitWakesSubscribers(t *testing.T) {
	sw, _ := runSwitch(t, WithRequestTimeout(5*time.Second))
	l, err := sw.Link(context.Background())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := Ask[Message](context.Background(), l, Message("ping"))
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)
	sw.Exit()

	select {
	case err := <-done:
		assert.True(t, errors.HasCode(err, errors.ErrCodeCancelled), "got %v", err)
	case <-time.After(time.Second):
		t.Fatal("request outlived the switch")
	}
	assert.True(t, l.ExitSignal().Fired())
}

func TestSwitchComponent(t *testing.T) {
	sw, _ := SplitSwitch("main", quiet()...)
	c := NewSwitchComponent(sw)
	ctx := context.Background()

	assert.Equal(t, "main:Switch", c.Name())
	assert.Equal(t, "not started", c.Health(ctx).Message)

	require.NoError(t, c.Start(ctx))
	assert.Equal(t, "healthy", string(c.Health(ctx).Status))
	_, err := sw.Link(ctx)
	require.NoError(t, err)
	assert.Contains(t, c.Describe().Details, "subscribers=1")

	require.NoError(t, c.Stop(ctx))
	assert.Equal(t, "exited", c.Health(ctx).Message)
}
