package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/catalogsync/catalogsync/pkg/reconcile"
)

func TestConfigPolicy(t *testing.T) {
	c := Config{
		MatchThreshold:    0.9,
		PriceTolerancePct: 0.02,
		PriceCriticalPct:  0.2,
		Workers:           4,
	}

	policy := c.Policy()
	assert.Equal(t, reconcile.Config{
		MatchThreshold:    0.9,
		PriceTolerancePct: 0.02,
		PriceCriticalPct:  0.2,
		Workers:           4,
	}, policy)
}

func TestUpdateFromFlags(t *testing.T) {
	c := Config{Format: "json", LogLevel: "debug"}

	c.UpdateFromFlags(true, false, true, "", "")
	assert.True(t, c.Verbose)
	assert.True(t, c.NoColor)
	assert.Equal(t, "json", c.Format, "empty flag must not clobber config")
	assert.Equal(t, "debug", c.LogLevel, "empty flag must not clobber config")

	c.UpdateFromFlags(false, true, false, "table", "warn")
	assert.True(t, c.Quiet)
	assert.Equal(t, "table", c.Format)
	assert.Equal(t, "warn", c.LogLevel)
}
