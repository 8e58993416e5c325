package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/catalogsync/catalogsync/pkg/products"
)

// formatTable renders the report as console tables: a group table, a
// discrepancy table, and a one-line summary footer.
func formatTable(w io.Writer, report *Report) error {
	if err := groupTable(w, report.Groups); err != nil {
		return err
	}

	if len(report.Discrepancies) > 0 {
		fmt.Fprintln(w)
		if err := discrepancyTable(w, report.Discrepancies); err != nil {
			return err
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, report.Summary)
	if counts := report.CountBySeverity(); len(counts) > 0 {
		fmt.Fprintf(w, "discrepancies: %d critical, %d warning, %d info\n",
			counts[products.SeverityCritical],
			counts[products.SeverityWarning],
			counts[products.SeverityInfo])
	}
	return nil
}

func groupTable(w io.Writer, groups []Group) error {
	table := tablewriter.NewTable(w)
	table.Header("GROUP", "SOURCES", "NAME", "CONFIDENCE", "MATCHED BY")

	for _, g := range groups {
		matchedBy := "name"
		if g.SKUOverride {
			matchedBy = "sku"
		}
		if len(g.Members) == 1 {
			matchedBy = "-"
		}
		if err := table.Append(
			g.ID,
			memberSources(g.Members),
			displayName(g.Members),
			fmt.Sprintf("%.2f", g.Confidence),
			matchedBy,
		); err != nil {
			return err
		}
	}
	return table.Render()
}

func discrepancyTable(w io.Writer, discrepancies []products.Discrepancy) error {
	table := tablewriter.NewTable(w)
	table.Header("SEVERITY", "KIND", "GROUP", "FIELD", "EXPECTED", "ACTUAL")

	for _, d := range discrepancies {
		if err := table.Append(
			strings.ToUpper(d.Severity.String()),
			d.Kind.String(),
			d.GroupID,
			d.Field,
			sideValue(d.Expected),
			sideValue(d.Actual),
		); err != nil {
			return err
		}
	}
	return table.Render()
}

func memberSources(members []products.Record) string {
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Source.String())
	}
	return strings.Join(names, ",")
}

// displayName picks the first member's raw name as the group label.
func displayName(members []products.Record) string {
	for _, m := range members {
		if m.RawName != "" {
			return m.RawName
		}
	}
	return ""
}

func sideValue(fv products.FieldValue) string {
	if fv.Source == "" {
		return fv.Value
	}
	return fmt.Sprintf("%s (%s)", fv.Value, fv.Source)
}
