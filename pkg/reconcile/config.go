package reconcile

import (
	"github.com/catalogsync/catalogsync/pkg/errors"
)

// Default policy values. Thresholds are implementation policy, not
// algorithm constants; callers tune them per catalog through Config.
const (
	// DefaultMatchThreshold is the minimum name similarity for a
	// cross-source candidate pair to be considered a match.
	DefaultMatchThreshold = 0.80

	// DefaultPriceTolerancePct is the relative price difference below
	// which prices are considered to agree (1%).
	DefaultPriceTolerancePct = 0.01

	// DefaultPriceCriticalPct is the relative price difference above
	// which a price mismatch escalates from WARNING to CRITICAL (10%).
	DefaultPriceCriticalPct = 0.10
)

// Config carries the tunable reconciliation and detection policy. It is
// an immutable value passed into the reconciler and detector explicitly;
// the core keeps no ambient configuration state.
type Config struct {
	// MatchThreshold is the minimum similarity score in (0, 1] for two
	// names to be considered the same product. Exact SKU equality
	// overrides it.
	MatchThreshold float64 `json:"match_threshold" yaml:"match_threshold"`

	// PriceTolerancePct is the maximum relative price difference,
	// expressed as a fraction, that is not reported as a mismatch.
	// Differences of exactly the tolerance do not trigger a report.
	PriceTolerancePct float64 `json:"price_tolerance_pct" yaml:"price_tolerance_pct"`

	// PriceCriticalPct is the relative price difference above which a
	// price mismatch is CRITICAL rather than WARNING.
	PriceCriticalPct float64 `json:"price_critical_pct" yaml:"price_critical_pct"`

	// Workers bounds scoring parallelism. Zero means one worker per CPU.
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty"`
}

// DefaultConfig returns the documented default policy.
func DefaultConfig() Config {
	return Config{
		MatchThreshold:    DefaultMatchThreshold,
		PriceTolerancePct: DefaultPriceTolerancePct,
		PriceCriticalPct:  DefaultPriceCriticalPct,
	}
}

// Validate checks that the policy values are usable.
func (c Config) Validate() error {
	if c.MatchThreshold <= 0 || c.MatchThreshold > 1 {
		return errors.NewValidationError("match_threshold", c.MatchThreshold,
			"must be in (0, 1]")
	}
	if c.PriceTolerancePct < 0 {
		return errors.NewValidationError("price_tolerance_pct", c.PriceTolerancePct,
			"must not be negative")
	}
	if c.PriceCriticalPct < c.PriceTolerancePct {
		return errors.NewValidationError("price_critical_pct", c.PriceCriticalPct,
			"must not be below price_tolerance_pct")
	}
	if c.Workers < 0 {
		return errors.NewValidationError("workers", c.Workers, "must not be negative")
	}
	return nil
}
