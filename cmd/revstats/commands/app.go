// Package commands implements CLI command handlers for revstats.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/revstats/pkg/config"
	"github.com/Sumatoshi-tech/revstats/pkg/observability"
	"github.com/Sumatoshi-tech/revstats/pkg/store"
	"github.com/Sumatoshi-tech/revstats/pkg/version"
)

// GlobalOptions are the persistent flags shared by every command.
type GlobalOptions struct {
	ConfigPath string
	StorePath  string
	LogLevel   string
	LogJSON    bool
	Verbose    bool
	Quiet      bool

	// Now is the clock used for report windows; nil uses time.Now.
	Now func() time.Time
}

func (g *GlobalOptions) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&g.ConfigPath, "config", "", "config file (default ./revstats.yaml or ~/.revstats/revstats.yaml)")
	flags.StringVar(&g.StorePath, "store", "", "revision database path (default "+config.DefaultStorePath+")")
	flags.StringVar(&g.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&g.LogJSON, "log-json", false, "write logs as JSON")
	flags.BoolVarP(&g.Verbose, "verbose", "v", false, "verbose output")
	flags.BoolVarP(&g.Quiet, "quiet", "q", false, "suppress output")
}

func (g *GlobalOptions) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}

	return time.Now()
}

// overrides maps the changed global flags onto config keys.
func (g *GlobalOptions) overrides(cmd *cobra.Command) map[string]any {
	out := make(map[string]any)

	if cmd.Flags().Changed("store") {
		out["store.path"] = g.StorePath
	}

	if cmd.Flags().Changed("log-level") {
		out["logging.level"] = g.LogLevel
	}

	if cmd.Flags().Changed("log-json") {
		out["logging.json"] = g.LogJSON
	}

	return out
}

// app is the per-invocation runtime: configuration, telemetry and store.
type app struct {
	cfg       *config.Config
	providers observability.Providers
	metrics   *observability.PipelineMetrics
	logger    *slog.Logger
	store     *store.Store
	runID     string
	out       io.Writer
	quiet     bool
}

type setupOptions struct {
	mode      observability.AppMode
	overrides map[string]any
	needRepo  bool
	// exportMetrics collects metrics for report.metrics_textfile.
	exportMetrics bool
}

// setup loads configuration, starts telemetry and opens the store. The
// returned app must be closed.
func (g *GlobalOptions) setup(cmd *cobra.Command, opts setupOptions) (*app, error) {
	overrides := g.overrides(cmd)
	for k, v := range opts.overrides {
		overrides[k] = v
	}

	cfg, err := config.LoadConfig(config.LoadOptions{Path: g.ConfigPath, Overrides: overrides})
	if err != nil {
		return nil, err
	}

	if opts.needRepo {
		if err = cfg.RequireRepository(); err != nil {
			return nil, err
		}
	}

	level, err := observability.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}

	switch {
	case g.Verbose:
		level = slog.LevelDebug
	case g.Quiet:
		level = slog.LevelError
	}

	runID := uuid.NewString()

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Environment = cfg.Telemetry.Environment
	obsCfg.Mode = opts.mode
	obsCfg.RunID = runID
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.SampleRatio = cfg.Telemetry.SampleRatio
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Logging.JSON
	obsCfg.Prometheus = opts.exportMetrics && cfg.Report.MetricsTextfile != ""

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	metrics, err := observability.NewPipelineMetrics(providers.Meter)
	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(context.Background()))
	}

	st, err := store.Open(cmd.Context(), cfg.Store.Path)
	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(context.Background()))
	}

	providers.Logger.Debug("store opened", "path", st.Path())

	return &app{
		cfg:       cfg,
		providers: providers,
		metrics:   metrics,
		logger:    providers.Logger,
		store:     st,
		runID:     runID,
		out:       cmd.OutOrStdout(),
		quiet:     g.Quiet,
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("store close failed", "error", err)
	}

	if err := a.providers.Shutdown(context.Background()); err != nil {
		a.logger.Warn("observability shutdown failed", "error", err)
	}
}

// printf writes a user-facing message unless --quiet is set.
func (a *app) printf(format string, args ...any) {
	if a.quiet {
		return
	}

	fmt.Fprintf(a.out, format, args...)
}
