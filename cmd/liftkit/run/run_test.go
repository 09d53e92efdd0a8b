package run

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/liftkit/bootstrap"
	"github.com/kbukum/liftkit/config"
	"github.com/kbukum/liftkit/crane"
	"github.com/kbukum/liftkit/errors"
	"github.com/kbukum/liftkit/logger"
	"github.com/kbukum/liftkit/operator"
	"github.com/kbukum/liftkit/storage"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewStore(storage.Config{BasePath: dir})
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), crane.DefaultInitialKey, crane.SampleData()))

	return &Config{
		ServiceConfig: config.ServiceConfig{Name: "liftkit-test", Version: "test", Environment: "test"},
		Storage:       storage.Config{BasePath: dir},
	}
}

func runQuiet(t *testing.T, cfg *Config) (crane.Report, error) {
	t.Helper()
	var out bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := Run(ctx, cfg, &out, bootstrap.WithLogger(logger.NewNop()), bootstrap.WithSummaryOutput(io.Discard))
	if err != nil {
		return crane.Report{}, err
	}
	var rep crane.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &rep))
	return rep, nil
}

func TestRunCanned(t *testing.T) {
	rep, err := runQuiet(t, testConfig(t))
	require.NoError(t, err)
	assert.Equal(t, "GOST 34567-85", rep.Hook.Gost)
	assert.Equal(t, "8218", rep.Bearing.Name)
	assert.InDelta(t, 1.168, rep.DynamicCoefficient, 1e-9)
}

func TestRunCannedIndexes(t *testing.T) {
	cfg := testConfig(t)
	cfg.Operator = operator.Config{HookIndex: 1, BearingIndex: 1}
	rep, err := runQuiet(t, cfg)
	require.NoError(t, err)
	assert.Equal(t, "GOST 6627-74 No.20", rep.Hook.Gost)
	assert.Equal(t, "8220", rep.Bearing.Name)
}

func TestRunScript(t *testing.T) {
	cfg := testConfig(t)
	script := filepath.Join(t.TempDir(), "choose.lua")
	require.NoError(t, os.WriteFile(script, []byte(`
function choose_hook(variants) return #variants end
function choose_bearing(variants) return 1 end
`), 0o600))
	cfg.Operator = operator.Config{Mode: operator.ModeScript, ScriptPath: script}

	rep, err := runQuiet(t, cfg)
	require.NoError(t, err)
	assert.Equal(t, "GOST 6627-74 No.20", rep.Hook.Gost)
	assert.Equal(t, "8218", rep.Bearing.Name)
}

func TestRunAwaitRestart(t *testing.T) {
	cfg := testConfig(t)
	cfg.AwaitRestart = true
	rep, err := runQuiet(t, cfg)
	require.NoError(t, err)
	assert.Equal(t, "GOST 34567-85", rep.Hook.Gost)
}

func TestRunMissingData(t *testing.T) {
	cfg := testConfig(t)
	cfg.DataKey = "other"
	_, err := runQuiet(t, cfg)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
	assert.Contains(t, errors.Chain(err), crane.StageInitial)
}

func TestRunInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Operator.Mode = "human"
	_, err := runQuiet(t, cfg)
	assert.ErrorContains(t, err, "operator.mode")
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: liftkit
environment: test
bus:
  request_timeout: 3s
operator:
  mode: script
  script_path: choose.lua
retry:
  max_attempts: 5
await_restart: true
`), 0o600))

	cfg, err := LoadConfig(Flags{ConfigPath: path, DataDir: "/srv/data"})
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.Bus.RequestTimeout)
	assert.Equal(t, operator.ModeScript, cfg.Operator.Mode)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.True(t, cfg.AwaitRestart)
	assert.Equal(t, "/srv/data", cfg.Storage.BasePath)
	assert.NotEmpty(t, cfg.Version)

	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, crane.DefaultInitialKey, cfg.DataKey)
}
