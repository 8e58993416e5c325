package sources

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalogsync/catalogsync/pkg/errors"
	"github.com/catalogsync/catalogsync/pkg/products"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestInventorySource(t *testing.T) {
	path := writeFile(t, "items.json", `[
		{
			"item_id": "it-100",
			"name": "Blue Widget",
			"sku": "WID-100",
			"rate": 9.99,
			"category_name": "Tools",
			"attributes": {"Color": "Blue", "Finish": "Matte"}
		},
		{
			"name": "No ID Widget",
			"rate": "12.50"
		},
		{
			"item_id": "it-102",
			"name": "Bad Price Widget",
			"rate": "n/a"
		}
	]`)

	loader := NewInventorySource(path)
	assert.Equal(t, products.SourceInventory, loader.Source())

	records, skipped, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Len(t, skipped, 1)

	first := records[0]
	assert.Equal(t, "it-100", first.ExternalID)
	assert.Equal(t, "WID-100", first.SKU)
	assert.Equal(t, "Blue Widget", first.RawName)
	assert.Equal(t, "blue widget", first.NormalizedName)
	assert.Equal(t, 9.99, first.Price)
	assert.Equal(t, "Tools", first.Category)
	assert.Equal(t, "Blue", first.Attributes.Color)
	assert.Equal(t, "Matte", first.Attributes.Extra["Finish"])

	assert.Equal(t, "item-1", records[1].ExternalID, "missing ids fall back to position")
	assert.Equal(t, 12.50, records[1].Price)

	assert.Equal(t, "it-102", skipped[0].Record.ExternalID)
	assert.Contains(t, skipped[0].Reason, "unparseable price")
}

func TestInventorySourceErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, _, err := NewInventorySource("/nope/items.json").Load(context.Background())
		var ioErr *errors.IOError
		assert.ErrorAs(t, err, &ioErr)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := writeFile(t, "items.json", "{not json")
		_, _, err := NewInventorySource(path).Load(context.Background())
		var parseErr *errors.ParseError
		assert.ErrorAs(t, err, &parseErr)
	})
}

func TestStorefrontSource(t *testing.T) {
	path := writeFile(t, "products.csv",
		"ID,Type,Published,Name,SKU,Categories,Regular price,Attribute 1 name,Attribute 1 value(s)\n"+
			"p-1,simple,1,Blue Widget,WID-100,\"Tools > Hand Tools, Hardware\",$10.50,Colour,Blue\n"+
			"p-2,variable,1,Garden Hose,,Garden,\"1,099.00\",,\n"+
			"p-3,simple,0,Hidden Widget,,,5.00,,\n"+
			"p-4,grouped,1,Widget Bundle,,,25.00,,\n"+
			"p-5,simple,1,Bad Price,,,free,,\n")

	loader := NewStorefrontSource(path)
	assert.Equal(t, products.SourceStorefront, loader.Source())

	records, skipped, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2, "unpublished and non-product rows are filtered")
	require.Len(t, skipped, 1)

	first := records[0]
	assert.Equal(t, "p-1", first.ExternalID)
	assert.Equal(t, "WID-100", first.SKU)
	assert.Equal(t, 10.50, first.Price, "currency symbol is tolerated")
	assert.Equal(t, "Tools", first.Category, "only the first category entry is kept")
	assert.Equal(t, "Blue", first.Attributes.Color, "Colour maps onto the color key")

	assert.Equal(t, "p-2", records[1].ExternalID)
	assert.Equal(t, 1099.00, records[1].Price, "thousands separator is tolerated")

	assert.Equal(t, "p-5", skipped[0].Record.ExternalID)
}

func TestSheetSource(t *testing.T) {
	path := writeFile(t, "feed.csv",
		"SKU,Name,Price,Category,Color,Volume,Supplier\n"+
			"WID-100,Blue Widget,10.00,Tools,Blue,,Acme\n"+
			",Garden Hose,€7.25,Garden,,,\n"+
			"BAD-1,Bad Price,abc,,,,\n")

	loader := NewSheetSource(path)
	assert.Equal(t, products.SourceSheet, loader.Source())

	records, skipped, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Len(t, skipped, 1)

	first := records[0]
	assert.Equal(t, "row-2", first.ExternalID, "sheet rows are identified by line number")
	assert.Equal(t, "WID-100", first.SKU)
	assert.Equal(t, 10.00, first.Price)
	assert.Equal(t, "Blue", first.Attributes.Color)
	assert.Equal(t, "Acme", first.Attributes.Extra["Supplier"], "unknown columns become extra attributes")

	assert.Equal(t, 7.25, records[1].Price)
	assert.Contains(t, skipped[0].Reason, "unparseable price")
}

func TestLoadAll(t *testing.T) {
	inventory := writeFile(t, "items.json",
		`[{"item_id": "it-1", "name": "Blue Widget", "rate": 10}]`)
	sheet := writeFile(t, "feed.csv", "SKU,Name,Price\nWID-1,Blue Widget,10\n")

	bySource, skipped, err := LoadAll(context.Background(),
		NewInventorySource(inventory), NewSheetSource(sheet))
	require.NoError(t, err)
	assert.Empty(t, skipped)
	assert.Len(t, bySource[products.SourceInventory], 1)
	assert.Len(t, bySource[products.SourceSheet], 1)
}

func TestLoadAllEmptySourceIsNotNil(t *testing.T) {
	empty := writeFile(t, "feed.csv", "SKU,Name,Price\n")

	bySource, _, err := LoadAll(context.Background(), NewSheetSource(empty))
	require.NoError(t, err)
	records, ok := bySource[products.SourceSheet]
	require.True(t, ok)
	assert.NotNil(t, records, "the reconciler rejects nil sequences")
	assert.Empty(t, records)
}

func TestLoadAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := LoadAll(ctx, NewSheetSource("unused.csv"))
	assert.Error(t, err)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{"10.50", 10.50, false},
		{" $10.50 ", 10.50, false},
		{"€7.25", 7.25, false},
		{"1,099.00", 1099.00, false},
		{"", 0, true},
		{"free", 0, true},
	}

	for _, tt := range tests {
		got, err := parsePrice(tt.raw)
		if tt.wantErr {
			assert.Error(t, err, tt.raw)
		} else {
			require.NoError(t, err, tt.raw)
			assert.Equal(t, tt.want, got, tt.raw)
		}
	}
}
