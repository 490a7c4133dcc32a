package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/compliance/internal/application/dto"
	"github.com/turtacn/compliance/internal/bootstrap"
	"github.com/turtacn/compliance/internal/domain/models"
	"github.com/turtacn/compliance/pkg/utils"
)

func newRulesCmd(opts *options) *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage compliance rules",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List every rule",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withContainer(cmd, func(ctx context.Context, c *bootstrap.Container) error {
				rules, err := c.Rules.ListRules(ctx)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return emitJSON(cmd.OutOrStdout(), rules)
				}
				w := cmd.OutOrStdout()
				if len(rules) == 0 {
					fmt.Fprintln(w, "No rules defined.")
					fmt.Fprintln(w, "\nRun: compliance-admin rules import rules.yaml")
					return nil
				}
				tw := newTable(w)
				fmt.Fprintln(tw, "ID\tNAME\tCONDITION\tSEVERITY\tACTIVE")
				for _, r := range rules {
					active := "yes"
					if !r.IsActive {
						active = "no"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s %s %.2f\t%s\t%s\n",
						r.ID, r.Name, r.Metric, r.Operator, r.Threshold, r.Severity, active)
				}
				return tw.Flush()
			})
		},
	}

	req := dto.SaveRuleRequest{}
	var inactive bool
	saveCmd := &cobra.Command{
		Use:   "save",
		Short: "Create a rule, or update it when --id is given",
		Example: `  compliance-admin rules save --name "KYC below 70%" --metric kyc_rate \
    --operator less_than --threshold 70 --severity high`,
		RunE: func(cmd *cobra.Command, args []string) error {
			active := !inactive
			req.IsActive = &active
			if verr := utils.ValidateStruct(&req); verr != nil {
				return verr
			}
			return opts.withContainer(cmd, func(ctx context.Context, c *bootstrap.Container) error {
				rule, err := c.Rules.SaveRule(ctx, req.ToModel())
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return emitJSON(cmd.OutOrStdout(), rule)
				}
				green.Fprintf(cmd.OutOrStdout(), "✓ Rule %s saved\n", rule.ID)
				return nil
			})
		},
	}
	saveCmd.Flags().StringVar(&req.ID, "id", "", "rule id to update")
	saveCmd.Flags().StringVar(&req.Name, "name", "", "rule name (required)")
	saveCmd.Flags().StringVar(&req.Description, "description", "", "free-text description")
	saveCmd.Flags().StringVar((*string)(&req.Metric), "metric", "", "kyc_rate | financial_timeliness | bylaw_adherence | issue_score | alert_resolution | compliance_score")
	saveCmd.Flags().StringVar((*string)(&req.Operator), "operator", "", "less_than | greater_than | equals | less_than_or_equal | greater_than_or_equal")
	saveCmd.Flags().Float64Var(&req.Threshold, "threshold", 0, "threshold between 0 and 100")
	saveCmd.Flags().StringVar((*string)(&req.Severity), "severity", string(models.SeverityMedium), "low | medium | high | critical")
	saveCmd.Flags().BoolVar(&inactive, "inactive", false, "store the rule disabled")

	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Upsert the rules of a YAML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			return opts.withContainer(cmd, func(ctx context.Context, c *bootstrap.Container) error {
				result, err := c.Rules.ImportRules(ctx, data)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return emitJSON(cmd.OutOrStdout(), result)
				}
				w := cmd.OutOrStdout()
				green.Fprintf(w, "✓ %d rule(s) saved\n", result.Saved)
				if result.Failed > 0 {
					red.Fprintf(w, "✗ %d rule(s) rejected\n", result.Failed)
					for _, e := range result.Errors {
						fmt.Fprintf(w, "    - %s\n", e)
					}
				}
				return nil
			})
		},
	}

	rulesCmd.AddCommand(listCmd, saveCmd, importCmd)
	return rulesCmd
}

func newEvaluateCmd(opts *options) *cobra.Command {
	var tenantID string
	var builtin bool
	evaluateCmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate active rules against a tenant and raise alerts",
		Long: `Recomputes the tenant's metrics and raises one alert per firing rule,
unless an unresolved alert for that rule is already open. With --builtin the
fixed regulator checks run as well.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withContainer(cmd, func(ctx context.Context, c *bootstrap.Container) error {
				results := make([]*dto.EvaluationResult, 0, 2)
				result, err := c.Rules.EvaluateRules(ctx, tenantID)
				if err != nil {
					return err
				}
				results = append(results, result)
				if builtin {
					checks, err := c.Rules.RunBuiltinChecks(ctx, tenantID)
					if err != nil {
						return err
					}
					results = append(results, checks)
				}

				if opts.jsonOutput {
					return emitJSON(cmd.OutOrStdout(), results)
				}
				w := cmd.OutOrStdout()
				for _, r := range results {
					printEvaluation(w, r)
				}
				return nil
			})
		},
	}
	evaluateCmd.Flags().StringVar(&tenantID, "tenant", "", "tenant id (required)")
	evaluateCmd.Flags().BoolVar(&builtin, "builtin", false, "also run the built-in regulator checks")
	_ = evaluateCmd.MarkFlagRequired("tenant")
	return evaluateCmd
}

func printEvaluation(w io.Writer, r *dto.EvaluationResult) {
	bold.Fprintf(w, "\nEvaluation of %s\n", r.TenantID)
	fmt.Fprintf(w, "  Rules evaluated: %d, triggered: %d, created: %d, already open: %d\n",
		r.RulesEvaluated, r.Triggered, r.Created, r.Skipped)
	for _, a := range r.Alerts {
		marker := "new"
		if !a.Created {
			marker = "open"
		}
		severityColor(a.Severity).Fprintf(w, "  • [%s] %s (%s)\n", a.Severity, a.Title, marker)
	}
}

func newAlertsCmd(opts *options) *cobra.Command {
	alertsCmd := &cobra.Command{
		Use:   "alerts",
		Short: "List and resolve regulatory alerts",
	}

	var tenantID string
	var onlyOpen bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List a tenant's alerts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withContainer(cmd, func(ctx context.Context, c *bootstrap.Container) error {
				alerts, err := c.Rules.ListAlerts(ctx, tenantID, onlyOpen)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return emitJSON(cmd.OutOrStdout(), alerts)
				}
				return printAlertTable(cmd.OutOrStdout(), alerts)
			})
		},
	}
	listCmd.Flags().StringVar(&tenantID, "tenant", "", "tenant id (required)")
	listCmd.Flags().BoolVar(&onlyOpen, "open", false, "only unresolved alerts")
	_ = listCmd.MarkFlagRequired("tenant")

	var resolvedBy string
	resolveCmd := &cobra.Command{
		Use:   "resolve ALERT_ID",
		Short: "Mark an alert resolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withContainer(cmd, func(ctx context.Context, c *bootstrap.Container) error {
				alert, err := c.Rules.ResolveAlert(ctx, args[0], resolvedBy)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return emitJSON(cmd.OutOrStdout(), alert)
				}
				green.Fprintf(cmd.OutOrStdout(), "✓ Alert %s resolved by %s\n", alert.ID, alert.ResolvedBy)
				return nil
			})
		},
	}
	resolveCmd.Flags().StringVar(&resolvedBy, "by", "", "resolving user (required)")
	_ = resolveCmd.MarkFlagRequired("by")

	alertsCmd.AddCommand(listCmd, resolveCmd)
	return alertsCmd
}
