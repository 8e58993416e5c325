package catalogsync

import (
	"github.com/catalogsync/catalogsync/pkg/errors"
	"github.com/catalogsync/catalogsync/pkg/reconcile"
)

// Option is a function that configures a Catalogsync pipeline.
type Option func(*config) error

// config holds pipeline configuration.
type config struct {
	policy reconcile.Config
}

// defaultPipelineConfig returns the default configuration.
func defaultPipelineConfig() *config {
	return &config{policy: reconcile.DefaultConfig()}
}

// WithPolicy sets the full reconciliation and detection policy.
func WithPolicy(policy reconcile.Config) Option {
	return func(c *config) error {
		if err := policy.Validate(); err != nil {
			return err
		}
		c.policy = policy
		return nil
	}
}

// WithMatchThreshold sets the minimum name similarity for two records to
// be considered the same product. Exact SKU equality overrides it.
func WithMatchThreshold(threshold float64) Option {
	return func(c *config) error {
		if threshold <= 0 || threshold > 1 {
			return errors.NewValidationError("match_threshold", threshold,
				"must be in (0, 1]")
		}
		c.policy.MatchThreshold = threshold
		return nil
	}
}

// WithPriceTolerance sets the relative price difference, as a fraction,
// below which prices are considered to agree.
func WithPriceTolerance(pct float64) Option {
	return func(c *config) error {
		if pct < 0 {
			return errors.NewValidationError("price_tolerance_pct", pct,
				"must not be negative")
		}
		c.policy.PriceTolerancePct = pct
		return nil
	}
}

// WithPriceCritical sets the relative price difference above which a
// price mismatch escalates to CRITICAL severity.
func WithPriceCritical(pct float64) Option {
	return func(c *config) error {
		if pct < 0 {
			return errors.NewValidationError("price_critical_pct", pct,
				"must not be negative")
		}
		c.policy.PriceCriticalPct = pct
		return nil
	}
}

// WithWorkers bounds scoring parallelism. Zero means one worker per CPU.
func WithWorkers(n int) Option {
	return func(c *config) error {
		if n < 0 {
			return errors.NewValidationError("workers", n, "must not be negative")
		}
		c.policy.Workers = n
		return nil
	}
}
