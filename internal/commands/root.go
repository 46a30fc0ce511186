package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/copilot/internal/buildinfo"
	"github.com/cleared-dev/copilot/internal/config"
	"github.com/cleared-dev/copilot/internal/ledger"
	"github.com/cleared-dev/copilot/internal/logging"
	"github.com/cleared-dev/copilot/internal/metrics"
	"github.com/cleared-dev/copilot/internal/toollog"
	"github.com/cleared-dev/copilot/internal/tools"
)

// globalFlags are the persistent flags shared by every subcommand. Set flags
// override copilot.yaml and COPILOT_* environment values.
type globalFlags struct {
	configPath string
	ledgerPath string
	format     string
	currency   string
	logLevel   string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:     "copilot",
		Short:   "Financial KPIs from monthly ledgers",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "config file (default ./"+config.FileName+" when present)")
	pf.StringVar(&g.ledgerPath, "ledger", "", "ledger directory of CSV files or .xlsx workbook")
	pf.StringVar(&g.format, "format", "", "ledger format: csv or xlsx (default inferred)")
	pf.StringVar(&g.currency, "currency", "", "reporting currency")
	pf.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(newInitCommand(g))
	rootCmd.AddCommand(newCheckCommand(g))
	rootCmd.AddCommand(newVarianceCommand(g))
	rootCmd.AddCommand(newMarginCommand(g))
	rootCmd.AddCommand(newOpexCommand(g))
	rootCmd.AddCommand(newEBITDACommand(g))
	rootCmd.AddCommand(newRunwayCommand(g))
	rootCmd.AddCommand(newChartCommand(g))
	rootCmd.AddCommand(newReportCommand(g))
	rootCmd.AddCommand(newServeCommand(g))

	return rootCmd
}

// app is the resolved configuration of one command invocation.
type app struct {
	cfg *config.Config
	log zerolog.Logger
}

func (g *globalFlags) load() (*app, error) {
	path := g.configPath
	if path == "" {
		if _, err := os.Stat(config.FileName); err == nil {
			path = config.FileName
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if g.ledgerPath != "" {
		cfg.Ledger.Path = g.ledgerPath
		cfg.Dir = ""
	}
	if g.format != "" {
		cfg.Ledger.Format = g.format
	}
	if g.currency != "" {
		cfg.ReportingCurrency = strings.ToUpper(g.currency)
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	lvl, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: logging.New(lvl)}, nil
}

// engine loads the ledger and returns a metrics engine over it.
func (a *app) engine() (*metrics.Engine, error) {
	path := a.cfg.Resolve(a.cfg.Ledger.Path)
	store, err := ledger.Load(path, a.cfg.Ledger.Format)
	if err != nil {
		return nil, err
	}
	sum := store.Summary()
	a.log.Debug().
		Str("path", path).
		Int("actuals", sum.Actuals).
		Int("budget", sum.Budget).
		Int("cash", sum.Cash).
		Int("fx", sum.FX).
		Msg("ledger loaded")

	return metrics.New(store, metrics.Options{
		ReportingCurrency: a.cfg.ReportingCurrency,
		Logger:            &a.log,
	}), nil
}

// runtime wraps e in a tool runtime configured from the app.
func (a *app) runtime(e *metrics.Engine) *tools.Runtime {
	var log *toollog.Log
	if a.cfg.ToolLog.Enabled {
		log = toollog.Open(a.cfg.Resolve(a.cfg.ToolLog.Path))
	}
	return tools.NewRuntime(e, tools.Options{
		ChartDir:     a.cfg.Resolve(a.cfg.Charts.Dir),
		RunwayMonths: a.cfg.Runway.DefaultMonths,
		Log:          log,
	})
}
