package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/copilot/internal/config"
	"github.com/cleared-dev/copilot/internal/gitops"
	"github.com/cleared-dev/copilot/internal/ledger"
)

func newInitCommand(g *globalFlags) *cobra.Command {
	var format string
	var empty bool
	var useGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new copilot project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir, g.currency, format, empty, useGit)
		},
	}

	cmd.Flags().StringVar(&format, "ledger-format", ledger.FormatCSV, "ledger layout to create: csv or xlsx")
	cmd.Flags().BoolVar(&empty, "empty", false, "create header-only ledger tables instead of sample data")
	cmd.Flags().BoolVar(&useGit, "git", false, "initialize a git repository and commit the new project")

	return cmd
}

func runInit(out io.Writer, dir, currency, format string, empty, useGit bool) error {
	cfg := config.Default()
	if currency != "" {
		cfg.ReportingCurrency = strings.ToUpper(currency)
	}
	switch format {
	case ledger.FormatCSV:
		cfg.Ledger.Path = "ledger"
	case ledger.FormatXLSX:
		cfg.Ledger.Path = "ledger.xlsx"
	default:
		return fmt.Errorf("unknown ledger format %q (want csv or xlsx)", format)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Create directory structure.
	for _, d := range []string{cfg.Charts.Dir, filepath.Dir(cfg.ToolLog.Path)} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	// Write copilot.yaml.
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Write the ledger.
	sheets := sampleLedger(cfg.ReportingCurrency)
	if empty {
		sheets = emptyLedger()
	}
	ledgerPath := filepath.Join(dir, cfg.Ledger.Path)
	var err error
	if format == ledger.FormatXLSX {
		err = ledger.WriteXLSX(ledgerPath, sheets)
	} else {
		err = ledger.WriteCSV(ledgerPath, sheets)
	}
	if err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}

	// Write .gitignore.
	gitignore := cfg.Charts.Dir + "/\n" + filepath.Dir(cfg.ToolLog.Path) + "/\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if !useGit {
		fmt.Fprintf(out, "Initialized copilot project at %s (ledger: %s)\n", dir, cfg.Ledger.Path)
		return nil
	}

	// Initialize git and create initial commit.
	ctx := context.Background()
	if err := gitops.Init(ctx, dir); err != nil {
		return fmt.Errorf("git init: %w", err)
	}
	hash, err := gitops.CommitAll(ctx, dir, "init: copilot project", gitops.DefaultAuthor)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(out, "Initialized copilot project at %s (ledger: %s, commit %s)\n", dir, cfg.Ledger.Path, hash)
	return nil
}
