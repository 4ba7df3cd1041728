package cli

import (
	"context"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"fasttrack/internal/adapter/secondary/clock"
	"fasttrack/internal/adapter/secondary/identity"
	"fasttrack/internal/adapter/secondary/metrics"
	"fasttrack/internal/config"
	"fasttrack/internal/core"
	"fasttrack/internal/domain"
	"fasttrack/internal/logging"
	"fasttrack/internal/usecase"
)

// app is shared by every root command built in one process, so the shell
// can re-create commands while keeping a single tracker alive.
type app struct {
	cfgPath   string
	verbosity int

	clock domain.Clock
	ids   domain.IDGenerator
	out   io.Writer
	err   io.Writer

	rt *runtime
}

// runtime is the wired application: config, metrics registry, manager and
// use case. It is built on first use.
type runtime struct {
	cfg      config.Config
	registry *prometheus.Registry
	manager  *core.Manager
	tracker  usecase.TrackerUseCase
	cancel   context.CancelFunc
}

// Option customizes the CLI, mainly for tests.
type Option func(*app)

// WithClock replaces the system clock.
func WithClock(c domain.Clock) Option {
	return func(a *app) { a.clock = c }
}

// WithIDGenerator replaces the UUID session id generator.
func WithIDGenerator(g domain.IDGenerator) Option {
	return func(a *app) { a.ids = g }
}

// WithOutput redirects command output.
func WithOutput(out, errOut io.Writer) Option {
	return func(a *app) {
		a.out = out
		a.err = errOut
	}
}

// WithConfigPath sets the default --config value.
func WithConfigPath(path string) Option {
	return func(a *app) { a.cfgPath = path }
}

func newApp(opts ...Option) *app {
	a := &app{
		cfgPath: config.DefaultPath(),
		clock:   clock.NewSystem(),
		ids:     identity.NewUUIDGenerator(),
		out:     os.Stdout,
		err:     os.Stderr,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Execute runs the CLI against os.Args.
func Execute(opts ...Option) error {
	a := newApp(opts...)
	defer a.close()
	defer logging.Sync()
	return a.rootCmd().Execute()
}

// NewRootCmd creates the root CLI command.
// This is the primary adapter that translates CLI inputs to use case calls.
func NewRootCmd(opts ...Option) *cobra.Command {
	return newApp(opts...).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	var (
		cfgPath string
		verbose int
	)
	cmd := &cobra.Command{
		Use:   "fasttrack",
		Short: "Intermittent fasting tracker",
		Long:  "Pick a fasting schedule, start and end fasts, watch a live timer and review completed fasts.",
	}
	cmd.SetOut(a.out)
	cmd.SetErr(a.err)

	cmd.PersistentFlags().StringVar(&cfgPath, "config", a.cfgPath, "config file path")
	cmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase logging (-v, -vv, ... up to 4)")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		a.cfgPath = cfgPath
		if verbose > 0 {
			a.verbosity = verbose
			logging.SetVerbosity(verbose)
		}
	}

	cmd.AddCommand(
		a.newMethodsCmd(),
		a.newSelectCmd(),
		a.newStartCmd(),
		a.newEndCmd(),
		a.newStatusCmd(),
		a.newHistoryCmd(),
		a.newExportCmd(),
		a.newWatchCmd(),
		a.newServeCmd(),
		a.newShellCmd(),
	)

	return cmd
}

// runtime loads config and starts the manager the first time it is needed.
// Structural misconfiguration surfaces here as an error.
func (a *app) runtime() (*runtime, error) {
	if a.rt != nil {
		return a.rt, nil
	}

	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return nil, err
	}
	if a.verbosity == 0 {
		if err := logging.SetLevel(cfg.LogLevel); err != nil {
			return nil, err
		}
	}

	reg := prometheus.NewRegistry()
	var rec domain.MetricsRecorder = metrics.NoopRecorder{}
	if cfg.MetricsEnabled {
		rec = metrics.NewPrometheusRecorder(reg)
	}

	mgr, err := core.NewManager(a.clock, a.ids,
		core.WithRecorder(rec),
		core.WithSelectedMethod(cfg.DefaultMethod))
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	mgr.Start(ctx)

	tracker, err := usecase.NewTrackerUseCase(mgr, a.clock)
	if err != nil {
		cancel()
		return nil, err
	}

	logging.L().Debugw("runtime ready",
		"config", a.cfgPath,
		"default_method", cfg.DefaultMethod,
		"tick", cfg.Tick,
		"metrics", cfg.MetricsEnabled)

	a.rt = &runtime{
		cfg:      cfg,
		registry: reg,
		manager:  mgr,
		tracker:  tracker,
		cancel:   cancel,
	}
	return a.rt, nil
}

func (a *app) close() {
	if a.rt == nil {
		return
	}
	a.rt.cancel()
	<-a.rt.manager.Done()
	a.rt = nil
}
