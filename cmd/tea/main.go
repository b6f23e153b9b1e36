// Command tea runs the electrolyser techno-economic model from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"electrolyser_tea/pkg/core/config"
)

// app carries the state shared by every subcommand.
type app struct {
	// Global flags
	debug      bool
	configPath string
	sourceKind string
	sourcePath string

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "tea",
		Short: "Techno-economic assessment of a nitrate-to-ammonia electrolyser",
		Long: `tea computes electrolyser sizing, CAPEX, OPEX, cash flow and a 21-year
discounted cash flow statement from a parameter snapshot, and sweeps the DCF
across discount rate, tax rate or selling price.

Parameters are read from a SQLite database (default data/database.db), a
Postgres table or a YAML/Hjson/JSON file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			godotenv.Load()

			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.sourceKind != "" {
				cfg.Source.Kind = a.sourceKind
			}
			if a.sourcePath != "" {
				cfg.Source.Path = a.sourcePath
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			a.cfg = cfg

			// Initialize logger
			zc := zap.NewProductionConfig()
			if a.debug {
				zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			a.logger, err = zc.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath, "Config file")
	root.PersistentFlags().StringVar(&a.sourceKind, "source", "", "Parameter source: sqlite, postgres or file")
	root.PersistentFlags().StringVar(&a.sourcePath, "path", "", "SQLite database or parameter file")

	root.AddCommand(
		a.newRunCmd(),
		a.newSweepCmd(),
		a.newReportCmd(),
		a.newImportCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
