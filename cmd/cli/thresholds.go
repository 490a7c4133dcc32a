package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/turtacn/compliance/internal/application/dto"
	"github.com/turtacn/compliance/internal/bootstrap"
)

func newThresholdsCmd(opts *options) *cobra.Command {
	thresholdsCmd := &cobra.Command{
		Use:   "thresholds",
		Short: "Show or change the rating thresholds",
	}

	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Show the thresholds in force",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withContainer(cmd, func(ctx context.Context, c *bootstrap.Container) error {
				resp, err := c.Thresholds.GetThresholds(ctx)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return emitJSON(cmd.OutOrStdout(), resp)
				}
				printThresholds(cmd.OutOrStdout(), resp)
				return nil
			})
		},
	}

	var excellent, good, fair, poor float64
	var updatedBy string
	setCmd := &cobra.Command{
		Use:     "set",
		Short:   "Update some or all of the rating thresholds",
		Example: `  compliance-admin thresholds set --good 80 --by regulator-1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &dto.UpdateThresholdsRequest{UpdatedBy: updatedBy}
			// only flags the user actually passed take part in the update
			if cmd.Flags().Changed("excellent") {
				req.Excellent = &excellent
			}
			if cmd.Flags().Changed("good") {
				req.Good = &good
			}
			if cmd.Flags().Changed("fair") {
				req.Fair = &fair
			}
			if cmd.Flags().Changed("poor") {
				req.Poor = &poor
			}
			return opts.withContainer(cmd, func(ctx context.Context, c *bootstrap.Container) error {
				resp, err := c.Thresholds.UpdateThresholds(ctx, req)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return emitJSON(cmd.OutOrStdout(), resp)
				}
				green.Fprintln(cmd.OutOrStdout(), "✓ Thresholds updated")
				printThresholds(cmd.OutOrStdout(), resp)
				return nil
			})
		},
	}
	setCmd.Flags().Float64Var(&excellent, "excellent", 0, "lower bound of EXCELLENT")
	setCmd.Flags().Float64Var(&good, "good", 0, "lower bound of GOOD")
	setCmd.Flags().Float64Var(&fair, "fair", 0, "lower bound of FAIR")
	setCmd.Flags().Float64Var(&poor, "poor", 0, "lower bound of POOR")
	setCmd.Flags().StringVar(&updatedBy, "by", "", "regulator user making the change (required)")
	_ = setCmd.MarkFlagRequired("by")

	thresholdsCmd.AddCommand(getCmd, setCmd)
	return thresholdsCmd
}

func printThresholds(w io.Writer, t *dto.ThresholdsResponse) {
	fmt.Fprintf(w, "  EXCELLENT >= %.2f\n", t.Excellent)
	fmt.Fprintf(w, "  GOOD      >= %.2f\n", t.Good)
	fmt.Fprintf(w, "  FAIR      >= %.2f\n", t.Fair)
	fmt.Fprintf(w, "  POOR      >= %.2f\n", t.Poor)
	fmt.Fprintln(w, "  CRITICAL  otherwise")
	if t.IsDefault {
		yellow.Fprintln(w, "  (defaults, never changed)")
	} else if t.UpdatedAt != nil {
		fmt.Fprintf(w, "  Last changed %s by %s\n", t.UpdatedAt.Format("2006-01-02 15:04"), t.UpdatedBy)
	}
}
