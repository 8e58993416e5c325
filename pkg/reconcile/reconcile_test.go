package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalogsync/catalogsync/pkg/errors"
	"github.com/catalogsync/catalogsync/pkg/products"
)

func rec(source products.Source, id, name, sku string, price float64) products.Record {
	return products.Record{
		Source:     source,
		ExternalID: id,
		RawName:    name,
		SKU:        sku,
		Price:      price,
	}
}

// groupOf finds the group containing the record with the given key.
func groupOf(t *testing.T, result *Result, key string) products.MatchGroup {
	t.Helper()
	for _, g := range result.Groups {
		for _, r := range g.Records() {
			if r.Key() == key {
				return g
			}
		}
	}
	t.Fatalf("no group contains record %s", key)
	return products.MatchGroup{}
}

func TestReconcileExactMatchAcrossSources(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	result, err := r.Reconcile(context.Background(), map[products.Source][]products.Record{
		products.SourceInventory:  {rec(products.SourceInventory, "item-1", "Blue Widget", "", 9.99)},
		products.SourceStorefront: {rec(products.SourceStorefront, "prod-1", "Blue Widget", "", 9.99)},
		products.SourceSheet:      {rec(products.SourceSheet, "row-2", "blue widget", "", 9.99)},
	})
	require.NoError(t, err)

	require.Len(t, result.Groups, 1)
	g := result.Groups[0]
	assert.Equal(t, 3, g.Size())
	assert.InDelta(t, 1.0, g.Confidence, 1e-9)
	assert.False(t, g.SKUOverride)
	assert.Equal(t, "inventory/item-1", g.ID())

	assert.Equal(t, 3, result.Metadata.Stats.RecordsProcessed)
	assert.Equal(t, 1, result.Metadata.Stats.CrossSourceGroups)
	assert.Equal(t, 0, result.Metadata.Stats.Singletons)
	assert.NotEmpty(t, result.Metadata.RunID)
	assert.Equal(t, products.AllSources, result.Metadata.Sources)
}

func TestReconcileWordOrderInvariant(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	result, err := r.Reconcile(context.Background(), map[products.Source][]products.Record{
		products.SourceInventory:  {rec(products.SourceInventory, "item-1", "Blue Widget Large", "", 10)},
		products.SourceStorefront: {rec(products.SourceStorefront, "prod-1", "Large Blue Widget", "", 10)},
	})
	require.NoError(t, err)

	require.Len(t, result.Groups, 1)
	assert.InDelta(t, 1.0, result.Groups[0].Confidence, 1e-9)
}

func TestReconcileBelowThreshold(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	result, err := r.Reconcile(context.Background(), map[products.Source][]products.Record{
		products.SourceInventory:  {rec(products.SourceInventory, "item-1", "Cordless Drill", "", 79)},
		products.SourceStorefront: {rec(products.SourceStorefront, "prod-1", "Ceramic Mug", "", 12)},
	})
	require.NoError(t, err)

	assert.Len(t, result.Groups, 2)
	for _, g := range result.Groups {
		assert.True(t, g.IsSingleton())
		assert.InDelta(t, 1.0, g.Confidence, 1e-9)
	}
	assert.Equal(t, 0, result.Metadata.Stats.CrossSourceGroups)
	assert.Equal(t, 2, result.Metadata.Stats.Singletons)
}

func TestReconcileSKUOverride(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	// Names that would never clear the threshold, joined by the same
	// SKU modulo case and whitespace.
	result, err := r.Reconcile(context.Background(), map[products.Source][]products.Record{
		products.SourceInventory:  {rec(products.SourceInventory, "item-1", "Blue Widget", "XJ-500", 10)},
		products.SourceStorefront: {rec(products.SourceStorefront, "prod-1", "Cordless Drill", " xj-500 ", 10)},
	})
	require.NoError(t, err)

	require.Len(t, result.Groups, 1)
	g := result.Groups[0]
	assert.Equal(t, 2, g.Size())
	assert.True(t, g.SKUOverride)
	assert.Less(t, g.Confidence, DefaultMatchThreshold,
		"confidence reflects the name score even when the sku forced the match")
}

func TestReconcileGreedyPrefersBestScore(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	// The exact-name pair must win the inventory record; the weaker
	// variant becomes a singleton.
	result, err := r.Reconcile(context.Background(), map[products.Source][]products.Record{
		products.SourceInventory: {rec(products.SourceInventory, "item-1", "Blue Widget", "", 10)},
		products.SourceStorefront: {
			rec(products.SourceStorefront, "prod-1", "Blue Widget L", "", 10),
			rec(products.SourceStorefront, "prod-2", "Blue Widget", "", 10),
		},
	})
	require.NoError(t, err)

	g := groupOf(t, result, "inventory/item-1")
	require.Equal(t, 2, g.Size())
	assert.Equal(t, "prod-2", g.Members[products.SourceStorefront].ExternalID)

	assert.True(t, groupOf(t, result, "storefront/prod-1").IsSingleton())
}

func TestReconcileOneRecordPerSourcePerGroup(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	// Two identically named storefront records cannot both join the
	// inventory record's group.
	result, err := r.Reconcile(context.Background(), map[products.Source][]products.Record{
		products.SourceInventory: {rec(products.SourceInventory, "item-1", "Blue Widget", "", 10)},
		products.SourceStorefront: {
			rec(products.SourceStorefront, "prod-1", "Blue Widget", "", 10),
			rec(products.SourceStorefront, "prod-2", "Blue Widget", "", 10),
		},
	})
	require.NoError(t, err)

	assert.Len(t, result.Groups, 2)
	g := groupOf(t, result, "inventory/item-1")
	assert.Equal(t, 2, g.Size())
}

func TestReconcilePartition(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	sources := map[products.Source][]products.Record{
		products.SourceInventory: {
			rec(products.SourceInventory, "item-1", "Blue Widget", "WID-1", 10),
			rec(products.SourceInventory, "item-2", "Garden Hose 25ft", "", 25),
			rec(products.SourceInventory, "item-3", "Desk Lamp", "LMP-3", 30),
		},
		products.SourceStorefront: {
			rec(products.SourceStorefront, "prod-1", "Widget Blue", "WID-1", 10.5),
			rec(products.SourceStorefront, "prod-2", "Ceramic Mug", "", 12),
		},
		products.SourceSheet: {
			rec(products.SourceSheet, "row-2", "Desk Lamp", "LMP-3", 29),
		},
	}

	result, err := r.Reconcile(context.Background(), sources)
	require.NoError(t, err)

	// Every input record lands in exactly one group.
	seen := make(map[string]int)
	for _, g := range result.Groups {
		for _, member := range g.Records() {
			seen[member.Key()]++
		}
	}
	assert.Len(t, seen, 6)
	for key, n := range seen {
		assert.Equal(t, 1, n, "record %s must belong to exactly one group", key)
	}

	total := result.Metadata.Stats.CrossSourceGroups + result.Metadata.Stats.Singletons
	assert.Equal(t, len(result.Groups), total)
}

func TestReconcileDeterministic(t *testing.T) {
	sources := map[products.Source][]products.Record{
		products.SourceInventory: {
			rec(products.SourceInventory, "item-1", "Blue Widget Large", "WID-1", 10),
			rec(products.SourceInventory, "item-2", "Blue Widget", "WID-2", 9),
			rec(products.SourceInventory, "item-3", "Stainless Steel Bottle 500ml", "", 19),
		},
		products.SourceStorefront: {
			rec(products.SourceStorefront, "prod-1", "Widget Blue", "", 9),
			rec(products.SourceStorefront, "prod-2", "Large Blue Widget", "", 10),
			rec(products.SourceStorefront, "prod-3", "Steel Bottle Stainless 500 ml", "", 19),
		},
		products.SourceSheet: {
			rec(products.SourceSheet, "row-2", "blue widget", "WID-2", 9),
			rec(products.SourceSheet, "row-3", "Picture Frame", "", 7),
		},
	}

	r, err := New(WithWorkers(4))
	require.NoError(t, err)

	first, err := r.Reconcile(context.Background(), sources)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := r.Reconcile(context.Background(), sources)
		require.NoError(t, err)
		assert.Equal(t, first.Groups, again.Groups, "identical input must produce identical groups in identical order")
	}

	// Sequential execution matches parallel execution.
	seq, err := New(WithWorkers(1))
	require.NoError(t, err)
	sequential, err := seq.Reconcile(context.Background(), sources)
	require.NoError(t, err)
	assert.Equal(t, first.Groups, sequential.Groups)
}

func TestReconcileOrdering(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	result, err := r.Reconcile(context.Background(), map[products.Source][]products.Record{
		products.SourceInventory: {
			rec(products.SourceInventory, "item-1", "Blue Widget", "", 10),
			rec(products.SourceInventory, "item-2", "Garden Hose Reel", "", 40),
		},
		products.SourceStorefront: {
			rec(products.SourceStorefront, "prod-1", "Blue Widget", "", 10),
			rec(products.SourceStorefront, "prod-2", "Garden Hose Reels", "", 40),
		},
	})
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(result.Groups), 2)
	for i := 1; i < len(result.Groups); i++ {
		prev, cur := result.Groups[i-1], result.Groups[i]
		if prev.Confidence == cur.Confidence {
			assert.Less(t, prev.MinExternalID(), cur.MinExternalID())
		} else {
			assert.Greater(t, prev.Confidence, cur.Confidence)
		}
	}
}

func TestReconcileSkipsRecordsWithoutIdentity(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	result, err := r.Reconcile(context.Background(), map[products.Source][]products.Record{
		products.SourceInventory: {
			rec(products.SourceInventory, "item-1", "Blue Widget", "", 10),
			rec(products.SourceInventory, "item-2", "", "", 5),
			rec(products.SourceInventory, "item-3", "   ", "", 5),
		},
	})
	require.NoError(t, err)

	require.Len(t, result.Skipped, 2)
	assert.Equal(t, "inventory/item-2", result.Skipped[0].Record.Key())
	assert.Equal(t, "missing both product name and sku", result.Skipped[0].Reason)
	assert.Equal(t, 1, result.Metadata.Stats.RecordsProcessed)
	assert.Equal(t, 2, result.Metadata.Stats.RecordsSkipped)

	// A record with a SKU but no name still participates.
	result, err = r.Reconcile(context.Background(), map[products.Source][]products.Record{
		products.SourceInventory: {rec(products.SourceInventory, "item-9", "", "SKU-9", 5)},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Skipped)
	assert.Len(t, result.Groups, 1)
}

func TestReconcileValidation(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("no sources", func(t *testing.T) {
		_, err := r.Reconcile(ctx, map[products.Source][]products.Record{})
		assert.ErrorIs(t, err, errors.ErrNoSources)
	})

	t.Run("unknown source", func(t *testing.T) {
		_, err := r.Reconcile(ctx, map[products.Source][]products.Record{
			products.Source("warehouse"): {},
		})
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("nil record sequence", func(t *testing.T) {
		_, err := r.Reconcile(ctx, map[products.Source][]products.Record{
			products.SourceInventory: nil,
		})
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("empty slice is a valid empty source", func(t *testing.T) {
		result, err := r.Reconcile(ctx, map[products.Source][]products.Record{
			products.SourceInventory: {},
		})
		require.NoError(t, err)
		assert.Empty(t, result.Groups)
	})
}

func TestReconcileCanceledContext(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := r.Reconcile(ctx, map[products.Source][]products.Record{
		products.SourceInventory:  {rec(products.SourceInventory, "item-1", "Blue Widget", "", 10)},
		products.SourceStorefront: {rec(products.SourceStorefront, "prod-1", "Blue Widget", "", 10)},
	})
	assert.Error(t, err)
	assert.Nil(t, result, "an aborted run must not return partial results")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(*Config) {}, false},
		{"zero threshold", func(c *Config) { c.MatchThreshold = 0 }, true},
		{"threshold above one", func(c *Config) { c.MatchThreshold = 1.5 }, true},
		{"threshold of one", func(c *Config) { c.MatchThreshold = 1 }, false},
		{"negative tolerance", func(c *Config) { c.PriceTolerancePct = -0.1 }, true},
		{"negative workers", func(c *Config) { c.Workers = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.True(t, errors.IsValidationError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResultSummary(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	result, err := r.Reconcile(context.Background(), map[products.Source][]products.Record{
		products.SourceInventory:  {rec(products.SourceInventory, "item-1", "Blue Widget", "", 10)},
		products.SourceStorefront: {rec(products.SourceStorefront, "prod-1", "Blue Widget", "", 10)},
	})
	require.NoError(t, err)

	assert.Contains(t, result.Summary(), "2 records")
	assert.Contains(t, result.Summary(), "1 groups")

	g, ok := result.Group("inventory/item-1")
	require.True(t, ok)
	assert.Equal(t, 2, g.Size())

	_, ok = result.Group("inventory/nope")
	assert.False(t, ok)
}
