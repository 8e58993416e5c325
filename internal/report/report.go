// Package report renders reconciliation results for people and pipelines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/catalogsync/catalogsync/pkg/products"
	"github.com/catalogsync/catalogsync/pkg/reconcile"
)

// Format types for report output.
type Format string

const (
	// FormatTable renders console tables.
	FormatTable Format = "table"
	// FormatJSON renders the full report as JSON.
	FormatJSON Format = "json"
	// FormatYAML renders the full report as YAML.
	FormatYAML Format = "yaml"
	// FormatMarkdown renders a markdown document.
	FormatMarkdown Format = "markdown"
)

// ParseFormat converts a string to a Format with validation.
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(s))
	switch format {
	case FormatTable, FormatJSON, FormatYAML, FormatMarkdown, "":
		if format == "" {
			format = FormatTable
		}
		return format, nil
	default:
		return "", fmt.Errorf("invalid report format: %s (valid: table, json, yaml, markdown)", s)
	}
}

// Formatter renders a report payload to a writer.
type Formatter interface {
	Format(w io.Writer, report *Report) error
}

// FormatterFunc allows functions to implement Formatter.
type FormatterFunc func(io.Writer, *Report) error

// Format implements the Formatter interface.
func (f FormatterFunc) Format(w io.Writer, report *Report) error {
	return f(w, report)
}

// NewFormatter creates the formatter for a format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return FormatterFunc(formatJSON)
	case FormatYAML:
		return FormatterFunc(formatYAML)
	case FormatMarkdown:
		return FormatterFunc(formatMarkdown)
	default:
		return FormatterFunc(formatTable)
	}
}

// Report is the serializable shape of one reconciliation run: metadata,
// the resolved groups, skipped records, and detected discrepancies.
type Report struct {
	Metadata      reconcile.Metadata      `json:"metadata" yaml:"metadata"`
	Summary       string                  `json:"summary" yaml:"summary"`
	Groups        []Group                 `json:"groups" yaml:"groups"`
	Skipped       []products.SkippedRecord `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Discrepancies []products.Discrepancy  `json:"discrepancies,omitempty" yaml:"discrepancies,omitempty"`
}

// Group is one match group flattened for output, members in canonical
// source order.
type Group struct {
	ID          string            `json:"id" yaml:"id"`
	Confidence  float64           `json:"confidence" yaml:"confidence"`
	SKUOverride bool              `json:"sku_override,omitempty" yaml:"sku_override,omitempty"`
	Members     []products.Record `json:"members" yaml:"members"`
}

// New assembles a report from a reconciliation result and the
// discrepancies detected over it.
func New(result *reconcile.Result, discrepancies []products.Discrepancy) *Report {
	groups := make([]Group, 0, len(result.Groups))
	for _, g := range result.Groups {
		groups = append(groups, Group{
			ID:          g.ID(),
			Confidence:  g.Confidence,
			SKUOverride: g.SKUOverride,
			Members:     g.Records(),
		})
	}
	return &Report{
		Metadata:      result.Metadata,
		Summary:       result.Summary(),
		Groups:        groups,
		Skipped:       result.Skipped,
		Discrepancies: discrepancies,
	}
}

// CountBySeverity tallies discrepancies per severity level.
func (r *Report) CountBySeverity() map[products.Severity]int {
	counts := make(map[products.Severity]int)
	for _, d := range r.Discrepancies {
		counts[d.Severity]++
	}
	return counts
}

func formatJSON(w io.Writer, report *Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func formatYAML(w io.Writer, report *Report) error {
	data, err := yaml.MarshalWithOptions(report,
		yaml.Indent(2),
		yaml.IndentSequence(false),
	)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
