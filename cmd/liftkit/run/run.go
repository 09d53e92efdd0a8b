package run

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kbukum/liftkit/bootstrap"
	"github.com/kbukum/liftkit/bus"
	"github.com/kbukum/liftkit/config"
	"github.com/kbukum/liftkit/crane"
	"github.com/kbukum/liftkit/errors"
	"github.com/kbukum/liftkit/eval"
	"github.com/kbukum/liftkit/logger"
	"github.com/kbukum/liftkit/observability"
	"github.com/kbukum/liftkit/operator"
	"github.com/kbukum/liftkit/storage"
	"github.com/kbukum/liftkit/version"
)

// Flags of `liftkit run`.
type Flags struct {
	ConfigPath string
	EnvFile    string
	DataDir    string
	Quiet      bool
}

// NewCmd creates `liftkit run`.
func NewCmd() *cobra.Command {
	var f Flags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate the crane chain and print the report as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(f)
			if err != nil {
				return err
			}
			var opts []bootstrap.Option
			if f.Quiet {
				opts = append(opts, bootstrap.WithSummaryOutput(io.Discard))
			}
			return Run(cmd.Context(), cfg, cmd.OutOrStdout(), opts...)
		},
	}
	cmd.Flags().StringVarP(&f.ConfigPath, "config", "c", "", "Path to config file (default: ./config.yml)")
	cmd.Flags().StringVar(&f.EnvFile, "env-file", "", "Path to .env file")
	cmd.Flags().StringVarP(&f.DataDir, "data", "d", "", "Directory holding data files (overrides storage.base_path)")
	cmd.Flags().BoolVarP(&f.Quiet, "quiet", "q", false, "Do not print the startup summary")
	return cmd
}

// LoadConfig reads the config file, .env file and LIFTKIT_* variables.
func LoadConfig(f Flags) (*Config, error) {
	opts := []config.LoaderOption{config.WithEnvPrefix("LIFTKIT")}
	if f.ConfigPath != "" {
		opts = append(opts, config.WithConfigFile(f.ConfigPath))
	}
	if f.EnvFile != "" {
		opts = append(opts, config.WithEnvFile(f.EnvFile))
	}

	var cfg Config
	if err := config.LoadConfig("liftkit", &cfg, opts...); err != nil {
		return nil, err
	}
	if f.DataDir != "" {
		cfg.Storage.BasePath = f.DataDir
	}
	if cfg.Version == "" {
		cfg.Version = version.Get().Short()
	}
	return &cfg, nil
}

// Run wires the switch, the operator and the chain, evaluates the chain once
// and writes the report to out.
func Run(ctx context.Context, cfg *Config, out io.Writer, opts ...bootstrap.Option) error {
	app, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return err
	}

	shutdown, err := observability.Setup(ctx, cfg.Observability, cfg.Name, cfg.Version, cfg.Environment)
	if err != nil {
		return err
	}
	app.OnStop(shutdown)

	store, err := storage.NewStore(cfg.Storage)
	if err != nil {
		return err
	}

	busOpts := append(cfg.Bus.Options(), bus.WithLogger(app.Logger))
	sw, remote := bus.SplitSwitch(cfg.Name, busOpts...)
	if err := app.RegisterComponent(bus.NewSwitchComponent(sw)); err != nil {
		return err
	}
	svc := operator.NewService(remote, cfg.Operator.NewChooser())
	svc.SetLogger(app.Logger)
	if err := app.RegisterComponent(svc); err != nil {
		return err
	}

	var chain eval.Stage[crane.Context]
	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*Config]) error {
		hooks, err := sw.Link(ctx)
		if err != nil {
			return err
		}
		bearings, err := sw.Link(ctx)
		if err != nil {
			return err
		}
		buildOpts := []crane.Option{crane.WithLogger(a.Logger), crane.WithRetry(cfg.Retry)}
		if cfg.AwaitRestart {
			restart, err := sw.Link(ctx)
			if err != nil {
				return err
			}
			buildOpts = append(buildOpts, crane.WithRestart(restart))
		}
		chain = crane.Build(crane.FromStore(store, cfg.DataKey), crane.NewHookRequest(hooks), crane.NewBearingRequest(bearings), buildOpts...)

		path, _ := store.Path(cfg.DataKey)
		a.Summary.AddNote("data: %s.{json,yaml,yml,cue}", path)
		a.Summary.AddNote("operator: %s", cfg.Operator.Mode)
		return nil
	})
	if cfg.AwaitRestart {
		app.OnReady(func(context.Context) error { return svc.Restart() })
	}

	return app.RunTask(ctx, func(ctx context.Context) error {
		ctx = logger.ContextWithRunID(ctx, uuid.NewString())
		log := app.Logger.WithContext(ctx).WithComponent("run")

		c, err := eval.Drive(ctx, chain, max(cfg.Bus.PollTimeout, time.Millisecond)).Get()
		if err != nil {
			log.Error("evaluation failed", logger.Fields(
				logger.FieldError, err.Error(),
				"stages", errors.Chain(err),
			))
			return err
		}
		report, err := crane.NewReport(c)
		if err != nil {
			return err
		}
		log.Info("evaluation complete", logger.Fields("hook", report.Hook.Gost, "bearing", report.Bearing.Name))

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	})
}
