// Package products defines the domain types shared across the catalogsync
// system: product records as seen by each source, match groups produced by
// reconciliation, and the discrepancies detected within them.
package products

import (
	"fmt"
	"strings"
)

// Source identifies one of the independent systems of record.
type Source string

// The three systems of record.
const (
	SourceInventory  Source = "inventory"  // inventory API export
	SourceStorefront Source = "storefront" // storefront (e-commerce) export
	SourceSheet      Source = "sheet"      // spreadsheet feed
)

// AllSources lists every known source in canonical order.
var AllSources = []Source{SourceInventory, SourceStorefront, SourceSheet}

// String returns the string representation of a source.
func (s Source) String() string {
	return string(s)
}

// IsValid reports whether the source is one of the known systems of record.
func (s Source) IsValid() bool {
	switch s {
	case SourceInventory, SourceStorefront, SourceSheet:
		return true
	}
	return false
}

// Record is one product as seen from one source. Field values are already
// mapped from the source's native format by a loader; the reconciliation
// core never touches files or APIs.
type Record struct {
	// Source is the system of record this record came from
	Source Source `json:"source" yaml:"source"`

	// ExternalID is the source-scoped identifier (item id, row id, ...)
	ExternalID string `json:"external_id" yaml:"external_id"`

	// SKU is the stock keeping unit; empty when the source has none
	SKU string `json:"sku,omitempty" yaml:"sku,omitempty"`

	// RawName is the product name exactly as the source exported it
	RawName string `json:"raw_name" yaml:"raw_name"`

	// NormalizedName is derived deterministically from RawName by the
	// normalizer; it is never hand-edited
	NormalizedName string `json:"normalized_name" yaml:"normalized_name"`

	// Price is the currency-agnostic selling price
	Price float64 `json:"price" yaml:"price"`

	// Category is the source's category label; empty when absent
	Category string `json:"category,omitempty" yaml:"category,omitempty"`

	// Attributes holds the structured attribute fields
	Attributes Attributes `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Key returns a globally unique identifier for the record, combining the
// source with its source-scoped external ID.
func (r Record) Key() string {
	return fmt.Sprintf("%s/%s", r.Source, r.ExternalID)
}

// HasSKU reports whether the record carries a non-empty SKU.
func (r Record) HasSKU() bool {
	return strings.TrimSpace(r.SKU) != ""
}

// HasName reports whether the record carries a usable product name.
func (r Record) HasName() bool {
	return strings.TrimSpace(r.RawName) != ""
}

// SkippedRecord is an input record excluded from matching for a
// data-quality reason. Skips never abort a run.
type SkippedRecord struct {
	Record Record `json:"record" yaml:"record"`
	Reason string `json:"reason" yaml:"reason"`
}
