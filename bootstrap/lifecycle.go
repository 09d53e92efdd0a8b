package bootstrap

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/liftkit/logger"
)

// Phase names a step of the application lifecycle.
type Phase string

const (
	PhaseStart     Phase = "start"
	PhaseConfigure Phase = "configure"
	PhaseReady     Phase = "ready"
	PhaseStop      Phase = "stop"
)

// Hook is a lifecycle callback.
type Hook func(ctx context.Context) error

func runHooks(ctx context.Context, phase Phase, hooks []Hook) error {
	for i, h := range hooks {
		if err := h(ctx); err != nil {
			return fmt.Errorf("%s hook %d: %w", phase, i, err)
		}
	}
	return nil
}

// Run starts the application and blocks until SIGINT, SIGTERM or the end of
// ctx, then shuts down.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return err
	}
	sigCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a.Logger.Info("application ready, waiting for shutdown signal")
	<-sigCtx.Done()
	return a.Shutdown(context.WithoutCancel(ctx))
}

// RunTask starts the application, runs task and shuts down when it returns.
// SIGINT and SIGTERM cancel the task's context. A task error takes
// precedence over a shutdown error.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return err
	}
	taskCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	taskErr := task(taskCtx)
	if taskCtx.Err() != nil && ctx.Err() == nil {
		a.Logger.Info("task interrupted by signal")
	}
	stopErr := a.Shutdown(context.WithoutCancel(ctx))
	if taskErr != nil {
		return taskErr
	}
	return stopErr
}

// startup runs the start, configure and ready phases. Components that did
// start are stopped again when a later phase fails.
func (a *App[C]) startup(ctx context.Context) error {
	began := time.Now()
	a.Logger.Info("starting application", logger.Fields("name", a.Name, "version", a.Version))

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	if err := a.phase(ctx); err != nil {
		if stopErr := a.Shutdown(context.WithoutCancel(ctx)); stopErr != nil {
			a.Logger.Warn("cleanup after failed startup", logger.Fields(logger.FieldError, stopErr.Error()))
		}
		return err
	}

	a.Summary.SetStartupDuration(time.Since(began))
	a.DisplaySummary()
	return nil
}

func (a *App[C]) phase(ctx context.Context) error {
	if err := runHooks(ctx, PhaseStart, a.hooks[PhaseStart]); err != nil {
		return fmt.Errorf("start phase failed: %w", err)
	}

	a.Logger.Debug("configuring", logger.Fields("callbacks", len(a.configure)))
	for _, fn := range a.configure {
		if err := fn(ctx, a); err != nil {
			return fmt.Errorf("configuration failed: %w", err)
		}
	}
	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("configuration failed: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("ready check reported issues", logger.Fields(logger.FieldError, err.Error()))
	}
	if err := runHooks(ctx, PhaseReady, a.hooks[PhaseReady]); err != nil {
		return fmt.Errorf("ready phase failed: %w", err)
	}
	return nil
}

// Shutdown runs the stop hooks and stops every component, bounded by the
// graceful timeout. Both steps run even when the first fails.
func (a *App[C]) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.gracefulTimeout)
	defer cancel()
	a.Logger.Info("shutting down", logger.Fields("timeout", a.gracefulTimeout.String()))

	var err error
	if hookErr := runHooks(ctx, PhaseStop, a.hooks[PhaseStop]); hookErr != nil {
		a.Logger.Error("stop hook failed", logger.Fields(logger.FieldError, hookErr.Error()))
		err = hookErr
	}
	if stopErr := a.Components.StopAll(ctx); stopErr != nil {
		a.Logger.Error("components stopped with errors", logger.Fields(logger.FieldError, stopErr.Error()))
		err = stopErr
	}
	a.Logger.Info("shutdown complete")
	return err
}
