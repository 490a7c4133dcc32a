package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/compliance/internal/domain/models"
	"github.com/turtacn/compliance/internal/infrastructure/events"
	"github.com/turtacn/compliance/pkg/constants"
)

func newEventsCmd(opts *options) *cobra.Command {
	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect the domain event stream",
	}

	var groupID string
	tailCmd := &cobra.Command{
		Use:   "tail",
		Short: "Follow score, alert and audit events until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if !cfg.Kafka.Enabled {
				return fmt.Errorf("kafka is disabled in the configuration")
			}

			consumer := events.NewConsumer(cfg.Kafka, groupID, log)
			defer consumer.Close()

			w := cmd.OutOrStdout()
			return consumer.Run(cmd.Context(), func(_ context.Context, e *models.DomainEvent) error {
				if opts.jsonOutput {
					return emitJSON(w, e)
				}
				c := bold
				switch e.Type {
				case constants.EventAlertRaised:
					c = red
				case constants.EventAlertResolved, constants.EventAuditCompleted:
					c = green
				}
				c.Fprintf(w, "%s %-20s", e.OccurredAt.Format(time.RFC3339), e.Type)
				fmt.Fprintf(w, " tenant=%s id=%s\n", e.TenantID, e.ID)
				return nil
			})
		},
	}
	tailCmd.Flags().StringVar(&groupID, "group", "compliance-admin-tail", "kafka consumer group")

	eventsCmd.AddCommand(tailCmd)
	return eventsCmd
}
