// Package sources loads product records from the native export formats
// of each system of record and maps them into the unified record shape
// the reconciliation core consumes. All file and format knowledge lives
// here; the core never sees a path or a column name.
package sources

import (
	"context"
	"strconv"
	"strings"

	"github.com/catalogsync/catalogsync/pkg/errors"
	"github.com/catalogsync/catalogsync/pkg/logging"
	"github.com/catalogsync/catalogsync/pkg/products"
)

// Loader maps one source's native export into unified product records.
type Loader interface {
	// Source identifies the system of record this loader serves.
	Source() products.Source

	// Load reads and maps the export. Records with data-quality problems
	// (unparseable price) are returned in the skip list rather than
	// failing the load; I/O and format failures return an error.
	Load(ctx context.Context) ([]products.Record, []products.SkippedRecord, error)
}

// LoadAll runs every loader and assembles the per-source record map the
// reconciler takes as input, plus the combined loader-level skip list.
func LoadAll(ctx context.Context, loaders ...Loader) (map[products.Source][]products.Record, []products.SkippedRecord, error) {
	recordsBySource := make(map[products.Source][]products.Record, len(loaders))
	var skipped []products.SkippedRecord

	for _, loader := range loaders {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		records, skips, err := loader.Load(ctx)
		if err != nil {
			return nil, nil, err
		}
		if records == nil {
			// The reconciler treats nil sequences as an integration bug;
			// an empty source is an empty slice.
			records = []products.Record{}
		}
		logging.Info().
			Str("source", loader.Source().String()).
			Int("records", len(records)).
			Int("skipped", len(skips)).
			Msg("Loaded source")
		recordsBySource[loader.Source()] = records
		skipped = append(skipped, skips...)
	}

	return recordsBySource, skipped, nil
}

// parsePrice parses a price value out of a source export, tolerating
// currency symbols, thousands separators, and surrounding whitespace.
func parsePrice(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimLeft(s, "$€£ ")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, errors.New("empty price")
	}
	price, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return price, nil
}

// attributeKeyAliases maps source attribute labels onto the recognized
// vocabulary. Labels outside the map land in the Extra bucket unchanged.
var attributeKeyAliases = map[string]products.AttributeKey{
	"color":      products.AttrColor,
	"colour":     products.AttrColor,
	"size":       products.AttrSize,
	"material":   products.AttrMaterial,
	"pack count": products.AttrPackCount,
	"pack qty":   products.AttrPackCount,
	"quantity":   products.AttrPackCount,
	"volume":     products.AttrVolume,
	"weight":     products.AttrWeight,
}

// setAttribute files a source attribute under its vocabulary key, or
// under Extra for unrecognized labels.
func setAttribute(attrs *products.Attributes, label, value string) {
	label = strings.TrimSpace(label)
	value = strings.TrimSpace(value)
	if label == "" || value == "" {
		return
	}
	if key, ok := attributeKeyAliases[strings.ToLower(label)]; ok {
		attrs.Set(key, value)
		return
	}
	attrs.Set(products.AttributeKey(label), value)
}
