package report

import (
	"fmt"
	"io"
	"strings"

	md "github.com/nao1215/markdown"

	"github.com/catalogsync/catalogsync/pkg/products"
)

// formatMarkdown renders the report as a markdown document suitable for
// checking into a repo or pasting into an issue.
func formatMarkdown(w io.Writer, report *Report) error {
	doc := md.NewMarkdown(w)

	doc.H1("Catalog Reconciliation Report").
		PlainText(fmt.Sprintf("Run `%s` at %s.",
			report.Metadata.RunID,
			report.Metadata.StartTime.Format("2006-01-02 15:04:05 MST"))).
		PlainText(report.Summary)

	doc.H2("Match Groups")
	doc.Table(md.TableSet{
		Header: []string{"Group", "Sources", "Name", "Confidence", "Matched By"},
		Rows:   groupRows(report.Groups),
	})

	doc.H2("Discrepancies")
	if len(report.Discrepancies) == 0 {
		doc.PlainText("No discrepancies detected.")
	} else {
		doc.Table(md.TableSet{
			Header: []string{"Severity", "Kind", "Group", "Field", "Expected", "Actual"},
			Rows:   discrepancyRows(report.Discrepancies),
		})
	}

	if len(report.Skipped) > 0 {
		doc.H2("Skipped Records")
		doc.Table(md.TableSet{
			Header: []string{"Record", "Reason"},
			Rows:   skippedRows(report.Skipped),
		})
	}

	return doc.Build()
}

func groupRows(groups []Group) [][]string {
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		matchedBy := "name"
		if g.SKUOverride {
			matchedBy = "sku"
		}
		if len(g.Members) == 1 {
			matchedBy = "-"
		}
		rows = append(rows, []string{
			g.ID,
			memberSources(g.Members),
			escapePipes(displayName(g.Members)),
			fmt.Sprintf("%.2f", g.Confidence),
			matchedBy,
		})
	}
	return rows
}

func discrepancyRows(discrepancies []products.Discrepancy) [][]string {
	rows := make([][]string, 0, len(discrepancies))
	for _, d := range discrepancies {
		rows = append(rows, []string{
			strings.ToUpper(d.Severity.String()),
			d.Kind.String(),
			d.GroupID,
			d.Field,
			escapePipes(sideValue(d.Expected)),
			escapePipes(sideValue(d.Actual)),
		})
	}
	return rows
}

func skippedRows(skipped []products.SkippedRecord) [][]string {
	rows := make([][]string, 0, len(skipped))
	for _, s := range skipped {
		rows = append(rows, []string{s.Record.Key(), escapePipes(s.Reason)})
	}
	return rows
}

// escapePipes keeps cell text from breaking markdown table syntax.
func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
