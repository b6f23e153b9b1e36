package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"electrolyser_tea/pkg/core/config"
	"electrolyser_tea/pkg/core/params"
	"electrolyser_tea/pkg/core/pipeline"
	"electrolyser_tea/pkg/core/report"
	"electrolyser_tea/pkg/core/sensitivity"
	"electrolyser_tea/pkg/core/store"
)

// overrideFlags binds the cash-flow override flags. Only flags that were set apply.
type overrideFlags struct {
	discountRate float64
	taxRate      float64
	sellingPrice float64
}

func (o *overrideFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&o.discountRate, "discount-rate", 0, "Discount rate in percent")
	cmd.Flags().Float64Var(&o.taxRate, "tax-rate", 0, "Tax rate in percent")
	cmd.Flags().Float64Var(&o.sellingPrice, "selling-price", 0, "Product selling price")
}

func (o *overrideFlags) overrides(cmd *cobra.Command) pipeline.Overrides {
	var ov pipeline.Overrides
	if cmd.Flags().Changed("discount-rate") {
		ov.DiscountRate = &o.discountRate
	}
	if cmd.Flags().Changed("tax-rate") {
		ov.TaxRate = &o.taxRate
	}
	if cmd.Flags().Changed("selling-price") {
		ov.SellingPrice = &o.sellingPrice
	}
	return ov
}

func (a *app) newRunCmd() *cobra.Command {
	var (
		ov     overrideFlags
		asJSON bool
		save   bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full model once and print the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := a.loadParams(ctx)
			if err != nil {
				return err
			}
			orch := a.orchestrator()
			if save {
				runs, err := store.NewRunRepo(nil, a.cfg.Cache.Dir)
				if err != nil {
					return err
				}
				orch.SetRepository(runs)
			}

			res := orch.Run(ctx, st, ov.overrides(cmd))
			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), report.Markdown(res, nil))
			}
			if !res.Complete {
				return fmt.Errorf("run incomplete: %w", res.Err)
			}
			return nil
		},
	}
	ov.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&save, "save", false, "Store the run under the cache directory")
	return cmd
}

func (a *app) newSweepCmd() *cobra.Command {
	var (
		ov     overrideFlags
		param  string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Sweep the DCF over a 7-point grid around one input",
		Long: `Re-runs the DCF statement at base·(1 + i·0.1) for i in -3..3 and prints the
cumulative NPV series of every point.

Parameters: discount_rate (default), tax_rate, selling_price.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := sensitivity.ParseParameter(param)
			if err != nil {
				return err
			}
			rep, err := a.sweep(cmd.Context(), p, ov.overrides(cmd))
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), rep)
			}
			fmt.Fprint(cmd.OutOrStdout(), report.Markdown(rep.Base, rep))
			return nil
		},
	}
	ov.register(cmd)
	cmd.Flags().StringVar(&param, "param", string(sensitivity.DiscountRate), "Swept input: discount_rate, tax_rate or selling_price")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the sweep as JSON")
	return cmd
}

func (a *app) newReportCmd() *cobra.Command {
	var (
		param  string
		asHTML bool
		out    string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write a Markdown or HTML report with a sensitivity sweep",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := sensitivity.ParseParameter(param)
			if err != nil {
				return err
			}
			rep, err := a.sweep(cmd.Context(), p, pipeline.Overrides{})
			if err != nil {
				return err
			}

			doc := report.Markdown(rep.Base, rep)
			if asHTML {
				if doc, err = report.RenderHTML(doc); err != nil {
					return err
				}
			}
			if out == "" {
				_, err = io.WriteString(cmd.OutOrStdout(), doc)
				return err
			}
			if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
				return err
			}
			if err := os.WriteFile(out, []byte(doc), 0644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			a.logger.Info("report written", zap.String("path", out))
			return nil
		},
	}
	cmd.Flags().StringVar(&param, "param", string(sensitivity.DiscountRate), "Swept input: discount_rate, tax_rate or selling_price")
	cmd.Flags().BoolVar(&asHTML, "html", false, "Render HTML instead of Markdown")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func (a *app) newImportCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy a parameter snapshot between files and databases",
		Long: `Reads parameters from a YAML/Hjson/JSON file or a SQLite database and writes
them to a SQLite database, a Postgres database (postgres:// URL) or a YAML file.

Example:
  tea import --from params.yaml --to data/database.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := sourceForPath(from).Load(ctx)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", from, err)
			}
			if err := writeParams(ctx, to, st); err != nil {
				return err
			}
			n := 0
			for _, c := range params.Categories {
				n += st.Len(c)
			}
			a.logger.Info("parameters imported",
				zap.String("from", from),
				zap.String("to", to),
				zap.Int("parameters", n),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d parameters into %s\n", n, to)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Source file or SQLite database")
	cmd.Flags().StringVar(&to, "to", "", "Destination SQLite database, postgres:// URL or YAML file")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	return cmd
}

func (a *app) orchestrator() *pipeline.Orchestrator {
	return pipeline.NewOrchestrator(a.logger, pipeline.Options{
		AllowTaxLossCredit: a.cfg.Tax.AllowLossCredit,
		SweepSteps:         a.cfg.Sweep.Steps,
		SweepStepFraction:  a.cfg.Sweep.StepFraction,
		SweepWorkers:       a.cfg.Sweep.Workers,
	})
}

func (a *app) sweep(ctx context.Context, p sensitivity.Parameter, ov pipeline.Overrides) (*pipeline.SweepReport, error) {
	st, err := a.loadParams(ctx)
	if err != nil {
		return nil, err
	}
	rep, err := a.orchestrator().Sweep(ctx, st, ov, p)
	if err != nil {
		if rep != nil && rep.Base != nil {
			for _, s := range rep.Base.Stages {
				a.logger.Debug("stage", zap.String("stage", s.Stage), zap.String("state", string(s.State)))
			}
		}
		return nil, err
	}
	return rep, nil
}

func (a *app) loadParams(ctx context.Context) (*params.Store, error) {
	if a.cfg.Source.Kind == config.SourcePostgres {
		if err := store.InitDB(ctx, a.cfg.Source.DatabaseURL); err != nil {
			return nil, err
		}
		defer store.Close()
	}
	src, err := store.NewSource(a.cfg.Source)
	if err != nil {
		return nil, err
	}
	st, err := src.Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("no parameters at %s (%s); run `tea import` first: %w", a.cfg.Source.Path, a.cfg.Source.Kind, err)
	}
	return st, err
}

func isSQLitePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

func isPostgresURL(s string) bool {
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://")
}

func sourceForPath(path string) store.Source {
	if isSQLitePath(path) {
		return store.NewSQLiteSource(path)
	}
	return store.NewFileSource(path)
}

func writeParams(ctx context.Context, to string, st *params.Store) error {
	switch {
	case isPostgresURL(to):
		if err := store.InitDB(ctx, to); err != nil {
			return err
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx, store.GetPool()); err != nil {
			return err
		}
		return store.ImportPostgres(ctx, store.GetPool(), st)
	case isSQLitePath(to):
		return store.ImportSQLite(ctx, to, st)
	}
	switch strings.ToLower(filepath.Ext(to)) {
	case ".yaml", ".yml":
		return store.WriteParamsYAML(to, st)
	}
	return fmt.Errorf("unsupported destination %q", to)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
