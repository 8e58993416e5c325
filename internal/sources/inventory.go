package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/catalogsync/catalogsync/pkg/errors"
	"github.com/catalogsync/catalogsync/pkg/normalize"
	"github.com/catalogsync/catalogsync/pkg/products"
)

// InventorySource loads the inventory API's JSON item export. The export
// is a cached dump of the item endpoint, one object per item.
type InventorySource struct {
	path string
}

// NewInventorySource creates an inventory loader for the given export file.
func NewInventorySource(path string) *InventorySource {
	return &InventorySource{path: path}
}

// Source implements Loader.
func (s *InventorySource) Source() products.Source {
	return products.SourceInventory
}

// inventoryItem is the wire shape of one exported inventory item.
type inventoryItem struct {
	ItemID     string            `json:"item_id"`
	Name       string            `json:"name"`
	SKU        string            `json:"sku"`
	Rate       rate              `json:"rate"` // selling price
	Category   string            `json:"category_name"`
	Attributes map[string]string `json:"attributes"`
}

// rate accepts both JSON numbers and quoted strings; the inventory
// export has been seen to emit either.
type rate string

// UnmarshalJSON implements json.Unmarshaler.
func (r *rate) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	*r = rate(strings.Trim(s, `"`))
	return nil
}

// Load implements Loader.
func (s *InventorySource) Load(_ context.Context) ([]products.Record, []products.SkippedRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, nil, errors.WrapIO("read", s.path, err)
	}

	var items []inventoryItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, nil, errors.WrapParse("json", s.path, err)
	}

	var records []products.Record
	var skipped []products.SkippedRecord
	for i, item := range items {
		rec := products.Record{
			Source:         products.SourceInventory,
			ExternalID:     item.ItemID,
			SKU:            item.SKU,
			RawName:        item.Name,
			NormalizedName: normalize.Name(item.Name),
			Category:       item.Category,
		}
		if rec.ExternalID == "" {
			rec.ExternalID = fmt.Sprintf("item-%d", i)
		}
		for label, value := range item.Attributes {
			setAttribute(&rec.Attributes, label, value)
		}

		if item.Rate != "" {
			price, err := parsePrice(string(item.Rate))
			if err != nil {
				skipped = append(skipped, products.SkippedRecord{
					Record: rec,
					Reason: fmt.Sprintf("unparseable price %q", item.Rate),
				})
				continue
			}
			rec.Price = price
		}

		records = append(records, rec)
	}

	return records, skipped, nil
}
