package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/compliance/internal/bootstrap"
	"github.com/turtacn/compliance/internal/domain/models"
)

func newScoreCmd(opts *options) *cobra.Command {
	scoreCmd := &cobra.Command{
		Use:   "score",
		Short: "Calculate and inspect compliance scores",
	}

	var tenantID, calculatedBy string
	calculateCmd := &cobra.Command{
		Use:   "calculate",
		Short: "Recompute and persist a tenant's compliance score",
		Example: `  compliance-admin score calculate --tenant umoja-sacco --by officer-12`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withContainer(cmd, func(ctx context.Context, c *bootstrap.Container) error {
				score, err := c.Compliance.CalculateScore(ctx, tenantID, calculatedBy)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return emitJSON(cmd.OutOrStdout(), score)
				}
				printScore(cmd.OutOrStdout(), score)
				return nil
			})
		},
	}
	calculateCmd.Flags().StringVar(&tenantID, "tenant", "", "tenant id (required)")
	calculateCmd.Flags().StringVar(&calculatedBy, "by", "", "actor recorded on the score (default: system)")
	_ = calculateCmd.MarkFlagRequired("tenant")

	var historyTenant string
	var limit int
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List a tenant's scores, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withContainer(cmd, func(ctx context.Context, c *bootstrap.Container) error {
				scores, err := c.Compliance.GetScoreHistory(ctx, historyTenant, limit)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return emitJSON(cmd.OutOrStdout(), scores)
				}
				return printScoreTable(cmd.OutOrStdout(), scores)
			})
		},
	}
	historyCmd.Flags().StringVar(&historyTenant, "tenant", "", "tenant id (required)")
	historyCmd.Flags().IntVar(&limit, "limit", 0, "maximum number of scores")
	_ = historyCmd.MarkFlagRequired("tenant")

	var latestTenant string
	latestCmd := &cobra.Command{
		Use:   "latest",
		Short: "Show the latest score of one tenant, or of every tenant worst first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withContainer(cmd, func(ctx context.Context, c *bootstrap.Container) error {
				if latestTenant == "" {
					scores, err := c.Compliance.GetLatestScoresAcrossTenants(ctx)
					if err != nil {
						return err
					}
					if opts.jsonOutput {
						return emitJSON(cmd.OutOrStdout(), scores)
					}
					return printScoreTable(cmd.OutOrStdout(), scores)
				}

				score, err := c.Compliance.GetLatestScore(ctx, latestTenant)
				if err != nil {
					return err
				}
				if score == nil {
					return fmt.Errorf("tenant %s has no compliance score yet", latestTenant)
				}
				if opts.jsonOutput {
					return emitJSON(cmd.OutOrStdout(), score)
				}
				printScore(cmd.OutOrStdout(), score)
				return nil
			})
		},
	}
	latestCmd.Flags().StringVar(&latestTenant, "tenant", "", "tenant id; omit for every tenant")

	var metricsTenant string
	metricsCmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show a tenant's compliance dashboard summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withContainer(cmd, func(ctx context.Context, c *bootstrap.Container) error {
				summary, err := c.Compliance.GetComplianceMetrics(ctx, metricsTenant)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return emitJSON(cmd.OutOrStdout(), summary)
				}
				w := cmd.OutOrStdout()
				bold.Fprintf(w, "\nCompliance summary for %s\n\n", summary.TenantID)
				fmt.Fprintf(w, "  Open issues:     %d (%d critical)\n", summary.OpenIssues, summary.CriticalIssues)
				fmt.Fprintf(w, "  Pending KYC:     %d\n", summary.PendingKYC)
				fmt.Fprintf(w, "  Open alerts:     %d\n", summary.OpenAlerts)
				if summary.LatestScore != nil {
					fmt.Fprintf(w, "  Latest score:    %.2f ", summary.LatestScore.OverallScore)
					ratingColor(summary.LatestScore.Rating).Fprintf(w, "%s\n", summary.LatestScore.Rating)
				} else {
					fmt.Fprintln(w, "  Latest score:    none")
				}
				if r := summary.LatestBylawReview; r != nil && r.Status == models.BylawStatusApproved && r.ApprovalDate != nil {
					fmt.Fprintf(w, "  Bye-law approved %s\n", r.ApprovalDate.Format("2006-01-02"))
				}
				return nil
			})
		},
	}
	metricsCmd.Flags().StringVar(&metricsTenant, "tenant", "", "tenant id (required)")
	_ = metricsCmd.MarkFlagRequired("tenant")

	scoreCmd.AddCommand(calculateCmd, historyCmd, latestCmd, metricsCmd)
	return scoreCmd
}
