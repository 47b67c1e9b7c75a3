package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/revcycle/recovery/internal/domain/claims"
)

func seedCmd() *cobra.Command {
	var (
		seed  int64
		count int
		out   string
		today string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write a synthetic claims CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 0 {
				return fmt.Errorf("--count must not be negative")
			}
			asOf := time.Now().UTC()
			if today != "" {
				t, err := time.Parse(time.DateOnly, today)
				if err != nil {
					return fmt.Errorf("--today: %w", err)
				}
				asOf = t
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg, os.Stderr)

			w, closeOut, err := openOutput(cmd, out)
			if err != nil {
				return err
			}
			n, err := writeSeed(w, seed, count, asOf)
			if cerr := closeOut(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			logger.Info().Int("rows", n).Int64("seed", seed).Str("out", out).Msg("synthetic claims written")
			return nil
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	cmd.Flags().IntVar(&count, "count", 100000, "Number of claims to generate")
	cmd.Flags().StringVar(&out, "out", "claims.csv", `Output file ("-" for stdout)`)
	cmd.Flags().StringVar(&today, "today", "", "Latest service date, YYYY-MM-DD (default today)")
	return cmd
}

// writeSeed streams count generated claims to w.
func writeSeed(w io.Writer, seed int64, count int, today time.Time) (int, error) {
	enc, err := claims.NewCSVEncoder(w)
	if err != nil {
		return 0, err
	}
	gen := claims.NewGenerator(seed, today)
	for i := 0; i < count; i++ {
		if err := enc.Encode(gen.Next()); err != nil {
			return i, fmt.Errorf("write claim %d: %w", i, err)
		}
	}
	if err := enc.Close(); err != nil {
		return count, fmt.Errorf("flush csv: %w", err)
	}
	return count, nil
}

// openOutput opens path for writing, or the command's stdout for "-".
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, f.Close, nil
}
