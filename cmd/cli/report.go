package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/compliance/internal/domain/models"
	"github.com/turtacn/compliance/internal/infrastructure/persistence/postgres"
)

// newReportCmd prints the worst-first triage report straight from postgres through pgxpool.
func newReportCmd(opts *options) *cobra.Command {
	var dbURL string
	var limit int
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Print the worst-first compliance triage report",
		Long: `Lists the latest score of every tenant, lowest first, with the number of
open alerts. Reads postgres directly; --db-url overrides the configured database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Database.Driver != "postgres" && dbURL == "" {
				return fmt.Errorf("report needs postgres; database.driver is %q", cfg.Database.Driver)
			}
			dbCfg := cfg.Database
			if dbURL != "" {
				dbCfg.URL = dbURL
			}

			db, err := postgres.NewDBConnection(cmd.Context(), &dbCfg, log)
			if err != nil {
				return fmt.Errorf("unable to connect to database: %w", err)
			}
			defer db.Close()

			rows, err := db.TriageReport(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return emitJSON(cmd.OutOrStdout(), rows)
			}

			w := cmd.OutOrStdout()
			bold.Fprintf(w, "\n📋 Compliance triage report (%d tenant(s))\n\n", len(rows))
			if len(rows) == 0 {
				fmt.Fprintln(w, "No compliance scores recorded.")
				return nil
			}
			tw := newTable(w)
			fmt.Fprintln(tw, "TENANT\tNAME\tSCORE\tRATING\tOPEN ALERTS\tCALCULATED AT")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%d\t%s\n",
					r.TenantID, r.TenantName, r.OverallScore,
					ratingColor(models.Rating(r.Rating)).Sprint(r.Rating),
					r.OpenAlerts, r.CalculatedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
	reportCmd.Flags().StringVar(&dbURL, "db-url", "", "postgres connection URL")
	reportCmd.Flags().IntVar(&limit, "limit", 50, "maximum number of tenants")
	return reportCmd
}
