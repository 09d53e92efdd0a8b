package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kbukum/liftkit/component"
	"github.com/kbukum/liftkit/logger"
)

// DefaultGracefulTimeout bounds the stop phase unless WithGracefulTimeout
// says otherwise.
const DefaultGracefulTimeout = 15 * time.Second

// App runs registered components through start, configure, ready and stop
// phases. C is the binary's config type.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*AppConfig]) error {
//	    return a.RegisterComponent(...)
//	})
//	err = app.RunTask(ctx, evaluate)
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	gracefulTimeout time.Duration
	configure       []func(ctx context.Context, app *App[C]) error
	hooks           map[Phase][]Hook
}

// NewApp applies defaults to cfg, validates it and sets up logging.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetServiceConfig()
	o := resolveOptions(opts)

	log := o.logger
	if log == nil {
		logger.Init(&base.Logging)
		log = logger.GetGlobalLogger()
	}

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Components:      component.NewRegistry(),
		Logger:          log,
		Summary:         NewSummary(base.Name, base.Version),
		gracefulTimeout: o.gracefulTimeout,
		hooks:           make(map[Phase][]Hook),
	}
	app.Components.SetLogger(log)
	if o.summaryOut != nil {
		app.Summary.SetOutput(o.summaryOut)
	}
	return app, nil
}

// RegisterComponent adds c to the registry. Components registered before
// the run start in the start phase, later ones in the configure phase.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// OnConfigure registers a callback for the configure phase.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.configure = append(a.configure, fn)
}

// OnStart registers hooks that run once the registered components started.
func (a *App[C]) OnStart(hooks ...Hook) { a.hooks[PhaseStart] = append(a.hooks[PhaseStart], hooks...) }

// OnReady registers hooks that run right before the task or signal wait.
func (a *App[C]) OnReady(hooks ...Hook) { a.hooks[PhaseReady] = append(a.hooks[PhaseReady], hooks...) }

// OnStop registers hooks that run before the components stop. Telemetry
// flushes belong here.
func (a *App[C]) OnStop(hooks ...Hook) { a.hooks[PhaseStop] = append(a.hooks[PhaseStop], hooks...) }

// ReadyCheck reports every component that is not healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var errs []error
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status == component.StatusHealthy {
			continue
		}
		if h.Message != "" {
			errs = append(errs, fmt.Errorf("%s is %s: %s", h.Name, h.Status, h.Message))
		} else {
			errs = append(errs, fmt.Errorf("%s is %s", h.Name, h.Status))
		}
	}
	return errors.Join(errs...)
}

// DisplaySummary prints the startup summary with live component health.
func (a *App[C]) DisplaySummary() {
	a.Summary.DisplaySummary(a.Components)
}
