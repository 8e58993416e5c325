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

// sheetKnownColumns are the spreadsheet columns with dedicated record
// fields; every other column is treated as a product attribute.
var sheetKnownColumns = map[string]bool{
	"sku":      true,
	"name":     true,
	"price":    true,
	"category": true,
}

// SheetSource loads the spreadsheet feed's CSV export. The sheet is
// maintained by hand, so column headers are trimmed and matched
// case-insensitively, and any column beyond the known set is carried as
// an attribute.
type SheetSource struct {
	path string
}

// NewSheetSource creates a sheet loader for the given CSV file.
func NewSheetSource(path string) *SheetSource {
	return &SheetSource{path: path}
}

// Source implements Loader.
func (s *SheetSource) Source() products.Source {
	return products.SourceSheet
}

// Load implements Loader.
func (s *SheetSource) Load(_ context.Context) ([]products.Record, []products.SkippedRecord, error) {
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

	header := rows[0]
	cols := indexColumns(header)

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

		rec := products.Record{
			Source:         products.SourceSheet,
			ExternalID:     fmt.Sprintf("row-%d", i+2),
			SKU:            get("sku"),
			RawName:        get("name"),
			NormalizedName: normalize.Name(get("name")),
			Category:       get("category"),
		}

		// Everything outside the known columns is an attribute.
		for col, idx := range cols {
			if sheetKnownColumns[col] || idx >= len(row) {
				continue
			}
			setAttribute(&rec.Attributes, header[idx], row[idx])
		}

		if raw := get("price"); raw != "" {
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
