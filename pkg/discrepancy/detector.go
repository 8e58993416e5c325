// Package discrepancy derives typed disagreements from match groups:
// price, SKU, category, and name mismatches between sources, and
// inconsistencies between a product's free-text name and its structured
// attributes. Discrepancies are recomputed fresh every run and never
// persisted by the core.
package discrepancy

import (
	"fmt"
	"math"

	"github.com/catalogsync/catalogsync/pkg/fuzzy"
	"github.com/catalogsync/catalogsync/pkg/normalize"
	"github.com/catalogsync/catalogsync/pkg/products"
	"github.com/catalogsync/catalogsync/pkg/reconcile"
)

// Detector compares the members of match groups field by field under an
// explicit policy. It holds no state between calls.
type Detector struct {
	config  reconcile.Config
	checker *Checker
}

// NewDetector creates a Detector with the given policy.
func NewDetector(cfg reconcile.Config) *Detector {
	return &Detector{config: cfg, checker: NewChecker()}
}

// Detect returns the field-level disagreements within one match group.
// A group with fewer than two present members has nothing to disagree
// about and yields none; reporting it as "missing from N sources" is the
// caller-facing summary's job.
func (d *Detector) Detect(group products.MatchGroup) []products.Discrepancy {
	if group.Size() < 2 {
		return nil
	}

	var found []products.Discrepancy
	found = append(found, d.detectPrice(group)...)
	found = append(found, d.detectSKU(group)...)
	found = append(found, d.detectCategory(group)...)
	found = append(found, d.detectName(group)...)
	return found
}

// DetectAll runs detection over every group, attribute consistency
// included, preserving group order.
func (d *Detector) DetectAll(groups []products.MatchGroup) []products.Discrepancy {
	var all []products.Discrepancy
	for _, g := range groups {
		all = append(all, d.Detect(g)...)
		all = append(all, d.CheckAttributes(g)...)
	}
	return all
}

// CheckAttributes cross-checks each member's name-derived attribute
// tokens against its structured attributes.
func (d *Detector) CheckAttributes(group products.MatchGroup) []products.Discrepancy {
	var found []products.Discrepancy
	for _, rec := range group.Records() {
		for _, disc := range d.checker.Check(rec) {
			disc.GroupID = group.ID()
			found = append(found, disc)
		}
	}
	return found
}

// detectPrice flags one PRICE_MISMATCH per group when the spread between
// the lowest and highest present price exceeds the relative tolerance.
// A spread of exactly the tolerance does not trigger. Severity escalates
// from WARNING to CRITICAL above the critical threshold.
func (d *Detector) detectPrice(group products.MatchGroup) []products.Discrepancy {
	records := group.Records()

	var low, high *products.Record
	for i := range records {
		r := &records[i]
		if low == nil || r.Price < low.Price {
			low = r
		}
		if high == nil || r.Price > high.Price {
			high = r
		}
	}
	if low == nil || low == high {
		return nil
	}

	spread := high.Price - low.Price
	if spread <= 0 {
		return nil
	}

	var relative float64
	if low.Price > 0 {
		relative = spread / low.Price
		if relative <= d.config.PriceTolerancePct {
			return nil
		}
	}
	// Non-positive low price: any spread is reportable; the relative
	// figure is meaningless, treat it as beyond critical.
	if low.Price <= 0 {
		relative = math.Inf(1)
	}

	severity := products.SeverityWarning
	if relative > d.config.PriceCriticalPct {
		severity = products.SeverityCritical
	}

	return []products.Discrepancy{{
		Kind:     products.PriceMismatch,
		GroupID:  group.ID(),
		Field:    "price",
		Expected: products.FieldValue{Source: low.Source, Value: formatPrice(low.Price)},
		Actual:   products.FieldValue{Source: high.Source, Value: formatPrice(high.Price)},
		Severity: severity,
		Detail:   fmt.Sprintf("prices differ by %s", formatPrice(spread)),
	}}
}

// detectSKU flags every pair of present, non-empty SKUs that differ.
// SKU divergence inside a matched group breaks identity, never cosmetic.
func (d *Detector) detectSKU(group products.MatchGroup) []products.Discrepancy {
	records := group.Records()
	var found []products.Discrepancy
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			a, b := records[i], records[j]
			if !a.HasSKU() || !b.HasSKU() {
				continue
			}
			if normalize.Value(a.SKU) == normalize.Value(b.SKU) {
				continue
			}
			found = append(found, products.Discrepancy{
				Kind:     products.SKUMismatch,
				GroupID:  group.ID(),
				Field:    "sku",
				Expected: products.FieldValue{Source: a.Source, Value: a.SKU},
				Actual:   products.FieldValue{Source: b.Source, Value: b.SKU},
				Severity: products.SeverityCritical,
			})
		}
	}
	return found
}

// detectCategory flags present categories that differ after
// case/whitespace-insensitive normalization. Cosmetic, so INFO.
func (d *Detector) detectCategory(group products.MatchGroup) []products.Discrepancy {
	records := group.Records()
	var found []products.Discrepancy
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			a, b := records[i], records[j]
			if a.Category == "" || b.Category == "" {
				continue
			}
			if normalize.Category(a.Category) == normalize.Category(b.Category) {
				continue
			}
			found = append(found, products.Discrepancy{
				Kind:     products.CategoryMismatch,
				GroupID:  group.ID(),
				Field:    "category",
				Expected: products.FieldValue{Source: a.Source, Value: a.Category},
				Actual:   products.FieldValue{Source: b.Source, Value: b.Category},
				Severity: products.SeverityInfo,
			})
		}
	}
	return found
}

// detectName flags member pairs whose names score below the match
// threshold inside a group that was only joined by the SKU override.
// Agreeing SKUs under very different names is the signal that a SKU may
// have been reused for a different product.
func (d *Detector) detectName(group products.MatchGroup) []products.Discrepancy {
	if !group.SKUOverride {
		return nil
	}
	records := group.Records()
	var found []products.Discrepancy
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			a, b := records[i], records[j]
			score := fuzzy.Similarity(a.NormalizedName, b.NormalizedName)
			if score >= d.config.MatchThreshold {
				continue
			}
			found = append(found, products.Discrepancy{
				Kind:     products.NameMismatch,
				GroupID:  group.ID(),
				Field:    "name",
				Expected: products.FieldValue{Source: a.Source, Value: a.RawName},
				Actual:   products.FieldValue{Source: b.Source, Value: b.RawName},
				Severity: products.SeverityWarning,
				Detail:   fmt.Sprintf("names score %.2f despite matching skus; the sku may have been reused", score),
			})
		}
	}
	return found
}

func formatPrice(p float64) string {
	return fmt.Sprintf("%.2f", p)
}
