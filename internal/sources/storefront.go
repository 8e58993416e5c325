package sources

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/catalogsync/catalogsync/pkg/errors"
	"github.com/catalogsync/catalogsync/pkg/normalize"
	"github.com/catalogsync/catalogsync/pkg/products"
)

// StorefrontSource loads the storefront's CSV product export
// (WooCommerce-style columns). Unpublished products and non-product row
// types are filtered out, matching what the storefront actually sells.
type StorefrontSource struct {
	path string

	// keepTypes are the product row types to load
	keepTypes map[string]bool
}

// NewStorefrontSource creates a storefront loader for the given CSV file.
func NewStorefrontSource(path string) *StorefrontSource {
	return &StorefrontSource{
		path:      path,
		keepTypes: map[string]bool{"simple": true, "variable": true, "": true},
	}
}

// Source implements Loader.
func (s *StorefrontSource) Source() products.Source {
	return products.SourceStorefront
}

// Load implements Loader.
func (s *StorefrontSource) Load(_ context.Context) ([]products.Record, []products.SkippedRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, nil, errors.WrapIO("open", s.path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, errors.WrapParse("csv", s.path, err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	cols := indexColumns(rows[0])

	var records []products.Record
	var skipped []products.SkippedRecord
	for i, row := range rows[1:] {
		get := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		if published := get("published"); published != "" && published != "1" && !strings.EqualFold(published, "true") {
			continue
		}
		if rowType := get("type"); !s.keepTypes[strings.ToLower(rowType)] {
			continue
		}

		rec := products.Record{
			Source:         products.SourceStorefront,
			ExternalID:     get("id"),
			SKU:            get("sku"),
			RawName:        get("name"),
			NormalizedName: normalize.Name(get("name")),
			Category:       firstCategory(get("categories")),
		}
		if rec.ExternalID == "" {
			rec.ExternalID = fmt.Sprintf("row-%d", i+2)
		}

		// Attribute column pairs: "Attribute N name" / "Attribute N value(s)".
		for n := 1; ; n++ {
			label := get(fmt.Sprintf("attribute %d name", n))
			if label == "" {
				break
			}
			setAttribute(&rec.Attributes, label, get(fmt.Sprintf("attribute %d value(s)", n)))
		}

		if raw := get("regular price"); raw != "" {
			price, err := parsePrice(raw)
			if err != nil {
				skipped = append(skipped, products.SkippedRecord{
					Record: rec,
					Reason: fmt.Sprintf("unparseable price %q", raw),
				})
				continue
			}
			rec.Price = price
		}

		records = append(records, rec)
	}

	return records, skipped, nil
}

// indexColumns maps lower-cased header names to their positions.
func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

// firstCategory keeps only the first entry of a "Cat A > Sub, Cat B"
// category cell.
func firstCategory(raw string) string {
	first := raw
	if idx := strings.IndexAny(raw, ",>"); idx >= 0 {
		first = raw[:idx]
	}
	return strings.TrimSpace(first)
}
