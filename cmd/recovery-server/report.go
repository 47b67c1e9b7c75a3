package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/revcycle/recovery/internal/domain/analytics"
	"github.com/revcycle/recovery/internal/domain/claims"
	"github.com/revcycle/recovery/internal/domain/opportunity"
	"github.com/revcycle/recovery/pkg/pagination"
)

// Report is the offline summary written by the report command.
type Report struct {
	GeneratedAt   time.Time                  `yaml:"generated_at"`
	Source        string                     `yaml:"source"`
	Claims        int                        `yaml:"claims"`
	Filters       map[string]string          `yaml:"filters,omitempty"`
	Summary       analytics.Summary          `yaml:"summary"`
	Recoverable   []analytics.RecoverableRow `yaml:"recoverable"`
	ByPayer       []analytics.PayerRow       `yaml:"by_payer"`
	ByCPT         []analytics.CPTRow         `yaml:"by_cpt"`
	MonthlyTrend  []analytics.TrendRow       `yaml:"monthly_trend"`
	Opportunities []opportunity.Opportunity  `yaml:"opportunities"`
}

type reportOptions struct {
	Filters   map[string]string
	Top       int
	Weights   opportunity.Weights
	MinClaims int
}

func reportCmd() *cobra.Command {
	var (
		path    string
		out     string
		top     int
		filters map[string]string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize a claims CSV without a database",
		Long: "Loads a claims CSV into memory and writes the missing-money summary, " +
			"breakdowns, monthly trend and ranked recovery opportunities as YAML.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg, os.Stderr)

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open %s: %w", path, err)
			}
			rows, err := claims.ReadCSV(f)
			f.Close()
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			logger.Info().Int("claims", len(rows)).Str("file", path).Msg("claims read")

			rep, err := buildReport(cmd.Context(), claims.NewMemoryStore(rows), reportOptions{
				Filters:   filters,
				Top:       top,
				Weights:   weightsFrom(cfg),
				MinClaims: cfg.MinCohortClaims,
			})
			if err != nil {
				return err
			}
			rep.Source = path
			rep.Claims = len(rows)

			w, closeOut, err := openOutput(cmd, out)
			if err != nil {
				return err
			}
			err = writeReport(w, rep)
			if cerr := closeOut(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			logger.Info().Str("out", out).Int("opportunities", len(rep.Opportunities)).Msg("report written")
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "csv", "", "Claims CSV to summarize")
	cmd.Flags().StringVar(&out, "out", "-", `Output file ("-" for stdout)`)
	cmd.Flags().IntVar(&top, "top", 10, "Number of ranked opportunities to include (0 for all)")
	cmd.Flags().StringToStringVar(&filters, "filter", nil, "Filter option, e.g. --filter payer_type=Medicare (repeatable)")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}

// buildReport runs the same services the API serves against store.
func buildReport(ctx context.Context, store claims.Store, opts reportOptions) (*Report, error) {
	svc := analytics.NewService(store)
	base := claims.CompileWithBase(opts.Filters, claims.Underpaid())

	dash, err := svc.Dashboard(ctx, base)
	if err != nil {
		return nil, err
	}
	trend, err := svc.MonthlyTrend(ctx, base)
	if err != nil {
		return nil, err
	}

	ranker := opportunity.NewService(store, opts.Weights, opts.MinClaims)
	ranked, err := ranker.Rank(ctx, opportunity.RankRequest{
		Predicates: claims.Compile(opts.Filters),
		Page:       pagination.Params{Limit: max(opts.Top, 0)},
	})
	if err != nil {
		return nil, err
	}

	return &Report{
		GeneratedAt:   time.Now().UTC(),
		Filters:       opts.Filters,
		Summary:       dash.Summary,
		Recoverable:   dash.Recoverable,
		ByPayer:       dash.ByPayer,
		ByCPT:         dash.ByCPT,
		MonthlyTrend:  trend,
		Opportunities: ranked,
	}, nil
}

func writeReport(w io.Writer, rep *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return enc.Close()
}
