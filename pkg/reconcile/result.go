package reconcile

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/catalogsync/catalogsync/pkg/products"
)

// Result is the outcome of one reconciliation run: the ordered match
// groups, the records skipped for data-quality reasons, and run metadata.
type Result struct {
	// Groups holds every match group, sorted by descending confidence
	// and then by the lexically smallest member external ID
	Groups []products.MatchGroup `json:"groups" yaml:"groups"`

	// Skipped lists the input records excluded from matching, each with
	// the reason it was excluded
	Skipped []products.SkippedRecord `json:"skipped,omitempty" yaml:"skipped,omitempty"`

	// Metadata about the run
	Metadata Metadata `json:"metadata" yaml:"metadata"`
}

// Metadata describes one reconciliation run.
type Metadata struct {
	// RunID uniquely identifies this run
	RunID string `json:"run_id" yaml:"run_id"`

	// StartTime when reconciliation started
	StartTime time.Time `json:"start_time" yaml:"start_time"`

	// EndTime when reconciliation completed
	EndTime time.Time `json:"end_time" yaml:"end_time"`

	// Duration of the run
	Duration time.Duration `json:"duration" yaml:"duration"`

	// Sources that contributed records
	Sources []products.Source `json:"sources" yaml:"sources"`

	// Config is the policy the run executed under
	Config Config `json:"config" yaml:"config"`

	// Stats about the run
	Stats Statistics `json:"stats" yaml:"stats"`
}

// Statistics summarizes the work a run performed.
type Statistics struct {
	// RecordsProcessed counts valid input records across all sources
	RecordsProcessed int `json:"records_processed" yaml:"records_processed"`

	// RecordsSkipped counts records excluded for data-quality reasons
	RecordsSkipped int `json:"records_skipped" yaml:"records_skipped"`

	// PairsScored counts candidate pairs run through the fuzzy matcher
	PairsScored int `json:"pairs_scored" yaml:"pairs_scored"`

	// CrossSourceGroups counts groups with members from 2+ sources
	CrossSourceGroups int `json:"cross_source_groups" yaml:"cross_source_groups"`

	// Singletons counts records present in exactly one source
	Singletons int `json:"singletons" yaml:"singletons"`
}

// Discrepancies across all groups are computed by the detector, not the
// reconciler; Result carries only the grouping.

// Summary returns a one-line human-readable summary of the run.
func (r *Result) Summary() string {
	return fmt.Sprintf("%d records -> %d groups (%d cross-source, %d singletons), %d skipped in %s",
		r.Metadata.Stats.RecordsProcessed,
		len(r.Groups),
		r.Metadata.Stats.CrossSourceGroups,
		r.Metadata.Stats.Singletons,
		r.Metadata.Stats.RecordsSkipped,
		r.Metadata.Duration.Round(time.Millisecond))
}

// Group returns the group with the given ID, if present.
func (r *Result) Group(id string) (products.MatchGroup, bool) {
	for _, g := range r.Groups {
		if g.ID() == id {
			return g, true
		}
	}
	return products.MatchGroup{}, false
}

// newMetadata starts metadata for a run.
func newMetadata(cfg Config, sources []products.Source) Metadata {
	return Metadata{
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
		Sources:   sources,
		Config:    cfg,
	}
}

// finish stamps the end of the run.
func (m *Metadata) finish() {
	m.EndTime = time.Now()
	m.Duration = m.EndTime.Sub(m.StartTime)
}
