package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/turtacn/compliance/internal/application/dto"
	"github.com/turtacn/compliance/internal/bootstrap"
	"github.com/turtacn/compliance/internal/infrastructure/persistence/postgres"
)

func newSweepCmd(opts *options) *cobra.Command {
	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a scheduled job once, across every active tenant",
	}

	run := func(job func(ctx context.Context, c *bootstrap.Container) (*dto.SweepReport, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			return opts.withContainer(cmd, func(ctx context.Context, c *bootstrap.Container) error {
				report, err := job(ctx, c)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return emitJSON(cmd.OutOrStdout(), report)
				}
				w := cmd.OutOrStdout()
				bold.Fprintf(w, "\n%s sweep over %d tenant(s) in %s\n", report.Job, report.Tenants, report.Duration)
				green.Fprintf(w, "  Succeeded: %d\n", report.Succeeded)
				if report.Failed == 0 {
					return nil
				}
				red.Fprintf(w, "  Failed:    %d\n", report.Failed)
				ids := make([]string, 0, len(report.Failures))
				for id := range report.Failures {
					ids = append(ids, id)
				}
				sort.Strings(ids)
				for _, id := range ids {
					fmt.Fprintf(w, "    - %s: %s\n", id, report.Failures[id])
				}
				return nil
			})
		}
	}

	sweepCmd.AddCommand(
		&cobra.Command{
			Use:   "score",
			Short: "Recalculate the score of every active tenant",
			RunE: run(func(ctx context.Context, c *bootstrap.Container) (*dto.SweepReport, error) {
				return c.Sweeps.ScoreAll(ctx)
			}),
		},
		&cobra.Command{
			Use:   "evaluate",
			Short: "Evaluate rules (and enabled built-in checks) for every active tenant",
			RunE: run(func(ctx context.Context, c *bootstrap.Container) (*dto.SweepReport, error) {
				return c.Sweeps.EvaluateAll(ctx)
			}),
		},
	)
	return sweepCmd
}

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.loadConfig()
			if err != nil {
				return err
			}
			db, err := postgres.OpenGorm(cmd.Context(), &cfg.Database, log)
			if err != nil {
				return err
			}
			defer func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			}()
			if err := postgres.AutoMigrate(cmd.Context(), db); err != nil {
				return err
			}
			green.Fprintln(cmd.OutOrStdout(), "✓ Schema is up to date")
			return nil
		},
	}
}
