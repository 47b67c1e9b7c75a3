package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/revcycle/recovery/internal/domain/claims"
	"github.com/revcycle/recovery/internal/platform/db"
)

func loadCmd() *cobra.Command {
	var (
		path     string
		truncate bool
	)
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Bulk load a claims CSV into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireDatabase(); err != nil {
				return err
			}
			logger := newLogger(cfg, os.Stderr)

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open %s: %w", path, err)
			}
			defer f.Close()
			dec, err := claims.NewCSVDecoder(f)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBSchema, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			// One transaction, so a bad row leaves the table as it was.
			tx, err := pool.Begin(ctx)
			if err != nil {
				return fmt.Errorf("begin transaction: %w", err)
			}
			defer tx.Rollback(ctx)

			if truncate {
				if _, err := tx.Exec(ctx, "TRUNCATE claims"); err != nil {
					return fmt.Errorf("truncate claims: %w", err)
				}
			}

			start := time.Now()
			n, err := claims.CopyCSV(ctx, tx, dec)
			if err != nil {
				return fmt.Errorf("load %s: %w", path, err)
			}
			if err := tx.Commit(ctx); err != nil {
				return fmt.Errorf("commit: %w", err)
			}

			logger.Info().
				Int64("rows", n).
				Str("file", path).
				Bool("truncated", truncate).
				Dur("elapsed", time.Since(start)).
				Msg("claims loaded")
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "csv", "", "Claims CSV to load")
	cmd.Flags().BoolVar(&truncate, "truncate", false, "Empty the claims table first")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}
