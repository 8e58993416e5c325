package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalogsync/catalogsync/pkg/products"
	"github.com/catalogsync/catalogsync/pkg/reconcile"
)

func sampleResult() *reconcile.Result {
	inv := products.Record{
		Source:         products.SourceInventory,
		ExternalID:     "item-1",
		RawName:        "Blue Widget",
		NormalizedName: "blue widget",
		SKU:            "WID-100",
		Price:          10.00,
	}
	sf := products.Record{
		Source:         products.SourceStorefront,
		ExternalID:     "prod-1",
		RawName:        "Widget Blue",
		NormalizedName: "widget blue",
		SKU:            "WID-100",
		Price:          10.50,
	}
	single := products.Record{
		Source:         products.SourceSheet,
		ExternalID:     "row-2",
		RawName:        "Garden Hose",
		NormalizedName: "garden hose",
		Price:          7.25,
	}

	return &reconcile.Result{
		Groups: []products.MatchGroup{
			products.NewMatchGroup(inv, sf),
			products.NewMatchGroup(single),
		},
		Metadata: reconcile.Metadata{
			RunID:     "run-1234",
			StartTime: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
			Duration:  42 * time.Millisecond,
			Sources:   products.AllSources,
			Config:    reconcile.DefaultConfig(),
			Stats: reconcile.Statistics{
				RecordsProcessed:  3,
				CrossSourceGroups: 1,
				Singletons:        1,
			},
		},
	}
}

func sampleDiscrepancies() []products.Discrepancy {
	return []products.Discrepancy{{
		Kind:     products.PriceMismatch,
		GroupID:  "inventory/item-1",
		Field:    "price",
		Expected: products.FieldValue{Source: products.SourceInventory, Value: "10.00"},
		Actual:   products.FieldValue{Source: products.SourceStorefront, Value: "10.50"},
		Severity: products.SeverityWarning,
		Detail:   "prices differ by 0.50",
	}}
}

func TestNew(t *testing.T) {
	rep := New(sampleResult(), sampleDiscrepancies())

	require.Len(t, rep.Groups, 2)
	assert.Equal(t, "inventory/item-1", rep.Groups[0].ID)
	assert.Len(t, rep.Groups[0].Members, 2)
	assert.Equal(t, "sheet/row-2", rep.Groups[1].ID)
	assert.Len(t, rep.Discrepancies, 1)

	counts := rep.CountBySeverity()
	assert.Equal(t, 1, counts[products.SeverityWarning])
	assert.Equal(t, 0, counts[products.SeverityCritical])
}

func TestParseFormat(t *testing.T) {
	for _, valid := range []string{"table", "json", "yaml", "markdown", "JSON", ""} {
		_, err := ParseFormat(valid)
		assert.NoError(t, err, valid)
	}

	format, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatTable, format)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestFormatJSON(t *testing.T) {
	rep := New(sampleResult(), sampleDiscrepancies())

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON).Format(&buf, rep))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	groups, ok := decoded["groups"].([]any)
	require.True(t, ok)
	assert.Len(t, groups, 2)

	metadata, ok := decoded["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "run-1234", metadata["run_id"])
}

func TestFormatYAML(t *testing.T) {
	rep := New(sampleResult(), sampleDiscrepancies())

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatYAML).Format(&buf, rep))

	out := buf.String()
	assert.Contains(t, out, "run_id: run-1234")
	assert.Contains(t, out, "price_mismatch")
}

func TestFormatTable(t *testing.T) {
	rep := New(sampleResult(), sampleDiscrepancies())

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, rep))

	out := buf.String()
	assert.Contains(t, out, "inventory/item-1")
	assert.Contains(t, out, "inventory,storefront")
	assert.Contains(t, out, "WARNING")
	assert.Contains(t, out, "price_mismatch")
	assert.Contains(t, out, "0 critical, 1 warning, 0 info")
}

func TestFormatMarkdown(t *testing.T) {
	rep := New(sampleResult(), sampleDiscrepancies())

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatMarkdown).Format(&buf, rep))

	out := buf.String()
	assert.Contains(t, out, "# Catalog Reconciliation Report")
	assert.Contains(t, out, "## Match Groups")
	assert.Contains(t, out, "## Discrepancies")
	assert.Contains(t, out, "run-1234")
	assert.Contains(t, out, "inventory/item-1")
}

func TestFormatMarkdownNoDiscrepancies(t *testing.T) {
	rep := New(sampleResult(), nil)

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatMarkdown).Format(&buf, rep))
	assert.Contains(t, buf.String(), "No discrepancies detected.")
}

func TestEscapePipes(t *testing.T) {
	assert.Equal(t, `Widget \| Deluxe`, escapePipes("Widget | Deluxe"))
	assert.Equal(t, "plain", escapePipes("plain"))
}

func TestSideValue(t *testing.T) {
	fv := products.FieldValue{Source: products.SourceInventory, Value: "10.00"}
	assert.Equal(t, "10.00 (inventory)", sideValue(fv))
	assert.Equal(t, "bare", sideValue(products.FieldValue{Value: "bare"}))
}

func TestDisplayName(t *testing.T) {
	rep := New(sampleResult(), nil)
	assert.True(t, strings.HasPrefix(displayName(rep.Groups[0].Members), "Blue Widget"))
}
