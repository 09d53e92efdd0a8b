package operator

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/liftkit/bus"
	"github.com/kbukum/liftkit/component"
	"github.com/kbukum/liftkit/crane"
	"github.com/kbukum/liftkit/errors"
	"github.com/kbukum/liftkit/logger"
)

var hooks = []crane.Hook{
	{Gost: "A", ShankDiameter: 60},
	{Gost: "B", ShankDiameter: 85},
	{Gost: "C", ShankDiameter: 95},
}

var bearings = []crane.Bearing{{Name: "8218"}, {Name: "8220"}}

const script = `
function choose_hook(variants)
  for i, h in ipairs(variants) do
    if h.shank_diameter >= 80 then return i end
  end
  return 1
end

function choose_bearing(variants)
  return #variants
end
`

func TestCannedChooser(t *testing.T) {
	ctx := context.Background()

	i, err := CannedChooser{}.ChooseHook(ctx, hooks)
	require.NoError(t, err)
	assert.Equal(t, 0, i)

	i, err = CannedChooser{Bearing: 1}.ChooseBearing(ctx, bearings)
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	_, err = CannedChooser{Hook: 3}.ChooseHook(ctx, hooks)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
	_, err = CannedChooser{}.ChooseBearing(ctx, nil)
	assert.Error(t, err)
}

func TestLuaChooser(t *testing.T) {
	c := NewLuaChooserFromSource("test.lua", script, time.Second)
	ctx := context.Background()
	assert.Equal(t, component.StatusDegraded, c.Health().Status)

	i, err := c.ChooseHook(ctx, hooks)
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	assert.Equal(t, component.StatusHealthy, c.Health().Status)

	i, err = c.ChooseBearing(ctx, bearings)
	require.NoError(t, err)
	assert.Equal(t, 1, i)
}

func TestLuaChooserFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "choose.lua")
	require.NoError(t, os.WriteFile(path, []byte(`function choose_hook(v) return 3 end`), 0o600))

	c := NewLuaChooser(path, 0)
	i, err := c.ChooseHook(context.Background(), hooks)
	require.NoError(t, err)
	assert.Equal(t, 2, i)

	require.NoError(t, os.WriteFile(path, []byte(`function choose_hook(v) return 1 end`), 0o600))
	i, _ = c.ChooseHook(context.Background(), hooks)
	assert.Equal(t, 2, i, "compiled script is kept until Reload")

	require.NoError(t, c.Reload())
	i, err = c.ChooseHook(context.Background(), hooks)
	require.NoError(t, err)
	assert.Equal(t, 0, i)
}

func TestLuaChooserErrors(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		src  string
		code errors.ErrorCode
	}{
		{"missing function", `x = 1`, errors.ErrCodeInvalidInput},
		{"not a number", `function choose_hook(v) return "first" end`, errors.ErrCodeInvalidInput},
		{"out of range", `function choose_hook(v) return 0 end`, errors.ErrCodeInvalidInput},
		{"fractional", `function choose_hook(v) return 1.9 end`, errors.ErrCodeInvalidInput},
		{"runtime error", `function choose_hook(v) error("no") end`, errors.ErrCodeRemoteFailed},
		{"syntax error", `function choose_hook(`, errors.ErrCodeInternal},
		{"no io", `function choose_hook(v) return io.read() end`, errors.ErrCodeRemoteFailed},
		{"no dofile", `function choose_hook(v) return dofile("/etc/passwd") end`, errors.ErrCodeRemoteFailed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLuaChooserFromSource(tc.name, tc.src, time.Second).ChooseHook(ctx, hooks)
			assert.True(t, errors.HasCode(err, tc.code), "got %v", err)
		})
	}
}

func TestLuaChooserTimeout(t *testing.T) {
	c := NewLuaChooserFromSource("loop.lua", `function choose_hook(v) while true do end end`, 20*time.Millisecond)
	_, err := c.ChooseHook(context.Background(), hooks)
	assert.True(t, errors.IsTimeout(err), "got %v", err)
}

func TestConfig(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	assert.Equal(t, ModeCanned, cfg.Mode)
	assert.Equal(t, DefaultScriptTimeout, cfg.ScriptTimeout)
	require.NoError(t, cfg.Validate())
	assert.IsType(t, CannedChooser{}, cfg.NewChooser())

	cfg.Mode = ModeScript
	assert.Error(t, cfg.Validate())
	cfg.ScriptPath = "choose.lua"
	require.NoError(t, cfg.Validate())
	assert.IsType(t, &LuaChooser{}, cfg.NewChooser())

	cfg.Mode = "human"
	assert.Error(t, cfg.Validate())
}

func runService(t *testing.T, chooser Chooser) (*bus.Switch, *Service) {
	t.Helper()
	sw, remote := bus.SplitSwitch("op", bus.WithLogger(logger.NewNop()), bus.WithRequestTimeout(time.Second))
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, sw.Run(ctx))

	svc := NewService(remote, chooser)
	svc.SetLogger(logger.NewNop())
	require.NoError(t, svc.Start(ctx))
	t.Cleanup(func() {
		_ = svc.Stop(context.Background())
		sw.Exit()
		remote.Exit()
		cancel()
		sw.Wait()
	})
	return sw, svc
}

func TestServiceAnswersThroughSwitch(t *testing.T) {
	sw, svc := runService(t, NewLuaChooserFromSource("test.lua", script, time.Second))
	ctx := context.Background()

	hl, err := sw.Link(ctx)
	require.NoError(t, err)
	bl, err := sw.Link(ctx)
	require.NoError(t, err)

	hook, err := crane.NewHookRequest(hl).Fetch(ctx, crane.ChooseUserHookQuery{Variants: hooks})
	require.NoError(t, err)
	assert.Equal(t, "B", hook.Gost)

	bearing, err := crane.NewBearingRequest(bl).Fetch(ctx, crane.ChooseUserBearingQuery{Variants: bearings})
	require.NoError(t, err)
	assert.Equal(t, "8220", bearing.Name)

	ok, failed := svc.Answers()
	assert.Equal(t, int64(2), ok)
	assert.Zero(t, failed)
	assert.Equal(t, component.StatusHealthy, svc.Health(ctx).Status)
	assert.Contains(t, svc.Describe().Details, "mode=script answered=2")
}

func TestServiceReportsChooserFailure(t *testing.T) {
	sw, svc := runService(t, CannedChooser{Hook: 9})
	ctx := context.Background()

	link, err := sw.Link(ctx)
	require.NoError(t, err)
	_, err = crane.NewHookRequest(link).Fetch(ctx, crane.ChooseUserHookQuery{Variants: hooks})
	assert.True(t, errors.HasCode(err, errors.ErrCodeRemoteFailed))

	_, failed := svc.Answers()
	assert.Equal(t, int64(1), failed)
}

type fixedChooser struct{ hook, bearing int }

func (c fixedChooser) ChooseHook(context.Context, []crane.Hook) (int, error) { return c.hook, nil }

func (c fixedChooser) ChooseBearing(context.Context, []crane.Bearing) (int, error) {
	return c.bearing, nil
}

func TestServiceRejectsIndexOutsideVariants(t *testing.T) {
	sw, svc := runService(t, fixedChooser{hook: 7, bearing: -1})
	ctx := context.Background()

	hl, err := sw.Link(ctx)
	require.NoError(t, err)
	_, err = crane.NewHookRequest(hl).Fetch(ctx, crane.ChooseUserHookQuery{Variants: hooks})
	assert.True(t, errors.HasCode(err, errors.ErrCodeRemoteFailed), "got %v", err)
	assert.ErrorContains(t, err, "index 7 out of range")

	bl, err := sw.Link(ctx)
	require.NoError(t, err)
	_, err = crane.NewBearingRequest(bl).Fetch(ctx, crane.ChooseUserBearingQuery{Variants: bearings})
	assert.True(t, errors.HasCode(err, errors.ErrCodeRemoteFailed), "got %v", err)

	ok, failed := svc.Answers()
	assert.Zero(t, ok)
	assert.Equal(t, int64(2), failed)
}

func TestLuaChooserAcceptsWholeFloat(t *testing.T) {
	c := NewLuaChooserFromSource("whole.lua", `function choose_hook(v) return 4 / 2 end`, time.Second)
	i, err := c.ChooseHook(context.Background(), hooks)
	require.NoError(t, err)
	assert.Equal(t, 1, i)
}

func TestServiceIgnoresRestart(t *testing.T) {
	sw, svc := runService(t, CannedChooser{})
	ctx := context.Background()

	link, err := sw.Link(ctx)
	require.NoError(t, err)
	require.NoError(t, link.Notify(bus.CotReq, crane.Query{RestartEval: &crane.RestartEvalQuery{}}))

	hook, err := crane.NewHookRequest(link).Fetch(ctx, crane.ChooseUserHookQuery{Variants: hooks})
	require.NoError(t, err)
	assert.Equal(t, "A", hook.Gost)
	_, failed := svc.Answers()
	assert.Zero(t, failed)
}

func TestServiceRestartBroadcasts(t *testing.T) {
	sw, svc := runService(t, CannedChooser{})
	ctx := context.Background()

	a, err := sw.Link(ctx)
	require.NoError(t, err)
	b, err := sw.Link(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.Restart())
	for _, l := range []*bus.Link{a, b} {
		res := bus.RecvQuery[crane.Query](ctx, l)
		for deadline := time.Now().Add(2 * time.Second); res.IsNone() && time.Now().Before(deadline); {
			res = bus.RecvQuery[crane.Query](ctx, l)
		}
		require.True(t, res.IsOk(), res.String())
		assert.Equal(t, crane.QueryRestartEval, res.Value().Kind())
	}
}

func TestServiceLifecycle(t *testing.T) {
	_, remote := bus.Split("solo", bus.WithLogger(logger.NewNop()))
	svc := NewService(remote, CannedChooser{})
	svc.SetLogger(logger.NewNop())
	ctx := context.Background()

	assert.Equal(t, component.StatusUnhealthy, svc.Health(ctx).Status)
	require.NoError(t, svc.Start(ctx))
	assert.Error(t, svc.Start(ctx), "a link is listened once")
	require.NoError(t, svc.Stop(ctx))
	require.NoError(t, svc.Stop(ctx))
	assert.Equal(t, "operator", svc.Name())
}
