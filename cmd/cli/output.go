package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/turtacn/compliance/internal/domain/models"
)

var (
	bold   = color.New(color.Bold)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
)

// ratingColor maps a rating to the colour used in tables.
func ratingColor(r models.Rating) *color.Color {
	switch r {
	case models.RatingExcellent, models.RatingGood:
		return green
	case models.RatingFair:
		return yellow
	default:
		return red
	}
}

func severityColor(s models.Severity) *color.Color {
	switch s {
	case models.SeverityCritical, models.SeverityHigh:
		return red
	case models.SeverityMedium:
		return yellow
	default:
		return color.New(color.Reset)
	}
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func printScore(w io.Writer, s *models.ComplianceScore) {
	bold.Fprintf(w, "\nCompliance score for %s\n\n", s.TenantID)
	fmt.Fprintf(w, "  KYC:                 %6.2f\n", s.KYCScore)
	fmt.Fprintf(w, "  Financial reporting: %6.2f\n", s.FinancialReportingScore)
	fmt.Fprintf(w, "  Bye-law adherence:   %6.2f\n", s.BylawAdherenceScore)
	fmt.Fprintf(w, "  Issues:              %6.2f\n", s.IssueScore)
	fmt.Fprintf(w, "  Alert resolution:    %6.2f\n", s.AlertResolutionScore)
	fmt.Fprintf(w, "  Overall:             %6.2f ", s.OverallScore)
	ratingColor(s.Rating).Fprintf(w, "%s\n", s.Rating)
	fmt.Fprintf(w, "\n  Calculated %s by %s\n", s.CalculatedAt.Format(time.RFC3339), s.CalculatedBy)
}

func printScoreTable(w io.Writer, scores []*models.ComplianceScore) error {
	if len(scores) == 0 {
		fmt.Fprintln(w, "No compliance scores recorded.")
		return nil
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "TENANT\tOVERALL\tRATING\tCALCULATED AT\tBY")
	for _, s := range scores {
		fmt.Fprintf(tw, "%s\t%.2f\t%s\t%s\t%s\n",
			s.TenantID, s.OverallScore, s.Rating, s.CalculatedAt.Format(time.RFC3339), s.CalculatedBy)
	}
	return tw.Flush()
}

func printAlertTable(w io.Writer, alerts []*models.RegulatoryAlert) error {
	if len(alerts) == 0 {
		green.Fprintln(w, "No alerts.")
		return nil
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tSEVERITY\tSOURCE\tTITLE\tRESOLVED\tCREATED AT")
	for _, a := range alerts {
		resolved := "no"
		if a.IsResolved {
			resolved = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.Severity, a.Source, a.Title, resolved, a.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}
