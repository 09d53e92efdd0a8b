package logger

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNew(t *testing.T) {
	cfg := &Config{
		Level:  "debug",
		Format: "json",
		Output: "discard",
	}
	l := New(cfg, "liftkit")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "liftkit" {
		t.Errorf("expected service 'liftkit', got %q", l.service)
	}
	if !l.Enabled("debug") {
		t.Error("expected debug to be enabled")
	}
}

func TestNewInvalidLevel(t *testing.T) {
	cfg := &Config{
		Level:  "invalid-level",
		Format: "json",
		Output: "discard",
	}
	l := New(cfg, "test")
	if l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
	if l.Enabled("debug") {
		t.Error("invalid level should fall back to info")
	}
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Info("dropped", Fields("k", "v"))
	if l.Enabled("error") {
		t.Error("nop logger should not be enabled for any level")
	}
}

func TestWithComponent(t *testing.T) {
	l := NewDefault("test")
	cl := l.WithComponent("bus.switch")
	if cl == nil {
		t.Fatal("expected non-nil logger")
	}
	if cl.service != "test" {
		t.Errorf("service should be preserved, got %q", cl.service)
	}
}

func TestContextWithRunID(t *testing.T) {
	ctx := ContextWithRunID(context.Background(), "run-1")
	got, ok := RunIDFromContext(ctx)
	if !ok || got != "run-1" {
		t.Errorf("expected run-1, got %q (ok=%v)", got, ok)
	}
	if _, ok := RunIDFromContext(context.Background()); ok {
		t.Error("expected no run id on empty context")
	}
	if NewNop().WithContext(ctx) == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestWithContextAddsTraceIDs(t *testing.T) {
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	defer zerolog.SetGlobalLevel(prev)

	var buf bytes.Buffer
	l := &Logger{logger: zerolog.New(&buf), service: "liftkit"}

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01},
		SpanID:     trace.SpanID{0x02},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(ContextWithRunID(context.Background(), "run-7"), sc)
	l.WithContext(ctx).Info("stage evaluated")

	out := buf.String()
	for _, want := range []string{`"run_id":"run-7"`, `"trace_id":"` + sc.TraceID().String(), `"span_id":"` + sc.SpanID().String()} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}

	buf.Reset()
	l.WithContext(context.Background()).Info("plain")
	if strings.Contains(buf.String(), "trace_id") {
		t.Errorf("unexpected trace id in %s", buf.String())
	}
}

func TestWithFieldsAndError(t *testing.T) {
	l := NewNop()
	if l.WithFields(Fields(FieldRoutingKey, "main:Link")) == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.WithError(fmt.Errorf("boom")) == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestInit(t *testing.T) {
	defer SetGlobalLogger(nil)
	cfg := &Config{Level: "warn", Format: "json", Output: "discard", ServiceName: "liftkit"}
	Init(cfg)
	g := GetGlobalLogger()
	if g.service != "liftkit" {
		t.Errorf("expected global service 'liftkit', got %q", g.service)
	}
	if !cfg.Timestamp {
		t.Error("Init should apply defaults to the config")
	}
}

func TestGetGlobalLoggerDefault(t *testing.T) {
	SetGlobalLogger(nil)
	defer SetGlobalLogger(nil)
	if GetGlobalLogger() == nil {
		t.Fatal("expected lazily created global logger")
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	SetGlobalLogger(NewNop())
	defer SetGlobalLogger(nil)
	Debug("debug")
	Info("info", Fields("a", 1))
	Warn("warn")
	Error("error")
	if WithComponent("x") == nil || WithContext(context.Background()) == nil {
		t.Fatal("expected non-nil loggers")
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" {
		t.Errorf("expected level info, got %s", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected format console, got %s", cfg.Format)
	}
	if cfg.Output != "stderr" {
		t.Errorf("expected output stderr, got %s", cfg.Output)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "debug", Format: "json", Output: "stdout"}, false},
		{"pretty", Config{Level: "info", Format: "pretty", Output: "discard"}, false},
		{"bad level", Config{Level: "loud", Format: "json", Output: "stdout"}, true},
		{"bad format", Config{Level: "info", Format: "xml", Output: "stdout"}, true},
		{"bad output", Config{Level: "info", Format: "json", Output: "file"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestRegisterAndGet(t *testing.T) {
	defer Reset()
	l := NewNop()
	Register("bus", l)
	if Get("bus") != l {
		t.Error("expected registered logger")
	}
	Reset()
	if Get("bus") == l {
		t.Error("expected registry to be cleared")
	}
}

func TestFields(t *testing.T) {
	m := Fields(FieldCot, "Req", FieldSubscribers, 2, 42, "ignored", "dangling")
	if m[FieldCot] != "Req" {
		t.Errorf("expected cot Req, got %v", m[FieldCot])
	}
	if m[FieldSubscribers] != 2 {
		t.Errorf("expected subscribers 2, got %v", m[FieldSubscribers])
	}
	if len(m) != 2 {
		t.Errorf("expected 2 entries, got %d", len(m))
	}
}

func TestErrorAndDurationFields(t *testing.T) {
	ef := ErrorFields("req", fmt.Errorf("timeout"))
	if ef[FieldOperation] != "req" || ef[FieldError] != "timeout" {
		t.Errorf("unexpected error fields %v", ef)
	}
	df := DurationFields("eval", 1500*time.Millisecond)
	if df[FieldDuration] != int64(1500) {
		t.Errorf("expected 1500ms, got %v", df[FieldDuration])
	}
	merged := MergeWithError(nil, fmt.Errorf("x"))
	if merged[FieldError] != "x" {
		t.Errorf("expected error x, got %v", merged[FieldError])
	}
}
