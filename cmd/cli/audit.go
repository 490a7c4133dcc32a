package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/compliance/internal/bootstrap"
	"github.com/turtacn/compliance/internal/domain/models"
)

func newAuditCmd(opts *options) *cobra.Command {
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Schedule, complete and list compliance audits",
	}

	var tenantID, auditorID, date string
	scheduleCmd := &cobra.Command{
		Use:     "schedule",
		Short:   "Schedule a PENDING audit",
		Example: `  compliance-admin audit schedule --tenant umoja-sacco --auditor auditor-3 --date 2026-11-02`,
		RunE: func(cmd *cobra.Command, args []string) error {
			scheduled, err := time.Parse("2006-01-02", date)
			if err != nil {
				return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
			}
			return opts.withContainer(cmd, func(ctx context.Context, c *bootstrap.Container) error {
				audit, err := c.Audits.ScheduleAudit(ctx, tenantID, auditorID, scheduled)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return emitJSON(cmd.OutOrStdout(), audit)
				}
				green.Fprintf(cmd.OutOrStdout(), "✓ Audit %s scheduled for %s\n", audit.ID, audit.ScheduledDate.Format("2006-01-02"))
				return nil
			})
		},
	}
	scheduleCmd.Flags().StringVar(&tenantID, "tenant", "", "tenant id (required)")
	scheduleCmd.Flags().StringVar(&auditorID, "auditor", "", "auditor id (required)")
	scheduleCmd.Flags().StringVar(&date, "date", "", "scheduled date, YYYY-MM-DD (required)")
	for _, f := range []string{"tenant", "auditor", "date"} {
		_ = scheduleCmd.MarkFlagRequired(f)
	}

	var findings string
	completeCmd := &cobra.Command{
		Use:   "complete AUDIT_ID",
		Short: "Complete an audit and capture the tenant's latest score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withContainer(cmd, func(ctx context.Context, c *bootstrap.Container) error {
				audit, err := c.Audits.CompleteAudit(ctx, args[0], findings)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return emitJSON(cmd.OutOrStdout(), audit)
				}
				captured := 0.0
				if audit.ComplianceScoreAtTime != nil {
					captured = *audit.ComplianceScoreAtTime
				}
				green.Fprintf(cmd.OutOrStdout(), "✓ Audit %s completed, score at completion %.2f\n", audit.ID, captured)
				return nil
			})
		},
	}
	completeCmd.Flags().StringVar(&findings, "findings", "", "audit findings")

	var listTenant string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List audits, optionally for one tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withContainer(cmd, func(ctx context.Context, c *bootstrap.Container) error {
				audits, err := c.Audits.ListAudits(ctx, listTenant)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return emitJSON(cmd.OutOrStdout(), audits)
				}
				w := cmd.OutOrStdout()
				if len(audits) == 0 {
					fmt.Fprintln(w, "No audits.")
					return nil
				}
				tw := newTable(w)
				fmt.Fprintln(tw, "ID\tTENANT\tAUDITOR\tSTATUS\tSCHEDULED\tSCORE")
				for _, a := range audits {
					score := "-"
					if a.Status == models.AuditStatusCompleted && a.ComplianceScoreAtTime != nil {
						score = fmt.Sprintf("%.2f", *a.ComplianceScoreAtTime)
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
						a.ID, a.TenantID, a.AuditorID, a.Status, a.ScheduledDate.Format("2006-01-02"), score)
				}
				return tw.Flush()
			})
		},
	}
	listCmd.Flags().StringVar(&listTenant, "tenant", "", "tenant id")

	auditCmd.AddCommand(scheduleCmd, completeCmd, listCmd)
	return auditCmd
}
