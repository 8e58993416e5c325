// Package reconcile decides which product records across sources denote
// the same real product. It consumes per-source record sequences, scores
// blocked candidate pairs with the fuzzy matcher, and emits match groups
// under a deterministic greedy policy: exact SKU equality overrides the
// name-score threshold, ties break by score, then edit distance, then
// lexical external ID. The same input always produces the same groups in
// the same order.
package reconcile

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/catalogsync/catalogsync/pkg/errors"
	"github.com/catalogsync/catalogsync/pkg/fuzzy"
	"github.com/catalogsync/catalogsync/pkg/normalize"
	"github.com/catalogsync/catalogsync/pkg/products"
)

// Reconciler partitions multi-source product records into match groups.
type Reconciler interface {
	// Reconcile runs one matching pass over fully materialized input.
	// The result is all-or-nothing: a context error aborts the run
	// without emitting partial groups.
	Reconcile(ctx context.Context, sources map[products.Source][]products.Record) (*Result, error)
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	config Config
}

// Option configures a Reconciler.
type Option func(*reconciler) error

// New creates a new Reconciler with options.
func New(opts ...Option) (Reconciler, error) {
	r := &reconciler{config: DefaultConfig()}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if err := r.config.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// WithConfig sets the full reconciliation policy.
func WithConfig(cfg Config) Option {
	return func(r *reconciler) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		r.config = cfg
		return nil
	}
}

// WithMatchThreshold overrides the minimum similarity score.
func WithMatchThreshold(threshold float64) Option {
	return func(r *reconciler) error {
		r.config.MatchThreshold = threshold
		return nil
	}
}

// WithWorkers bounds scoring parallelism.
func WithWorkers(n int) Option {
	return func(r *reconciler) error {
		r.config.Workers = n
		return nil
	}
}

// Reconcile implements Reconciler.
func (r *reconciler) Reconcile(ctx context.Context, sources map[products.Source][]products.Record) (*Result, error) {
	if err := validateSources(sources); err != nil {
		return nil, err
	}

	meta := newMetadata(r.config, sourceNames(sources))

	valid, skipped := partitionRecords(sources)

	pairs, err := r.scoreCandidates(ctx, valid)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("reconcile aborted: %w", err)
	}

	groups := r.resolve(pairs, valid)

	sortGroups(groups)

	meta.finish()
	meta.Stats = Statistics{
		RecordsProcessed: countRecords(valid),
		RecordsSkipped:   len(skipped),
		PairsScored:      len(pairs),
	}
	for _, g := range groups {
		if g.IsSingleton() {
			meta.Stats.Singletons++
		} else {
			meta.Stats.CrossSourceGroups++
		}
	}

	return &Result{Groups: groups, Skipped: skipped, Metadata: meta}, nil
}

// validateSources rejects caller contract violations before any matching
// begins. A nil record sequence under a present key means the collaborator
// failed to load the source, which is an integration bug rather than
// dirty data; an empty sequence is a legitimate "source had no records".
func validateSources(sources map[products.Source][]products.Record) error {
	if len(sources) == 0 {
		return errors.ErrNoSources
	}
	for source, records := range sources {
		if !source.IsValid() {
			return errors.NewValidationError("source", source,
				fmt.Sprintf("unknown source %q", source))
		}
		if records == nil {
			return errors.NewValidationError("sources", source,
				fmt.Sprintf("source %s has a nil record sequence; pass an empty slice for an empty source", source))
		}
	}
	return nil
}

// partitionRecords splits input into matchable records and data-quality
// skips. Records missing both a name and a SKU carry no identity signal
// and are excluded without failing the run. Normalized names are derived
// here when a loader did not populate them.
func partitionRecords(sources map[products.Source][]products.Record) (map[products.Source][]products.Record, []products.SkippedRecord) {
	valid := make(map[products.Source][]products.Record, len(sources))
	var skipped []products.SkippedRecord

	for _, source := range products.AllSources {
		records, ok := sources[source]
		if !ok {
			continue
		}
		kept := make([]products.Record, 0, len(records))
		for _, rec := range records {
			if !rec.HasName() && !rec.HasSKU() {
				skipped = append(skipped, products.SkippedRecord{
					Record: rec,
					Reason: "missing both product name and sku",
				})
				continue
			}
			if rec.Source == "" {
				rec.Source = source
			}
			if rec.NormalizedName == "" {
				rec.NormalizedName = normalize.Name(rec.RawName)
			}
			kept = append(kept, rec)
		}
		valid[source] = kept
	}

	// Deterministic skip ordering regardless of map iteration.
	sort.Slice(skipped, func(i, j int) bool {
		return skipped[i].Record.Key() < skipped[j].Record.Key()
	})

	return valid, skipped
}

// resolve turns scored candidates into a partition of the input records.
// Candidates are consumed greedily in descending rank order; a record
// joins at most one group, and a group holds at most one record per
// source. Everything left unassigned becomes a singleton.
func (r *reconciler) resolve(pairs []candidate, valid map[products.Source][]products.Record) []products.MatchGroup {
	sortCandidates(pairs)

	type groupState struct {
		members     map[products.Source]products.Record
		skuOverride bool
	}

	assigned := make(map[string]*groupState)
	var states []*groupState

	for _, c := range pairs {
		if !c.match(r.config.MatchThreshold) {
			continue
		}
		leftState, leftOK := assigned[c.left.Key()]
		rightState, rightOK := assigned[c.right.Key()]

		switch {
		case !leftOK && !rightOK:
			st := &groupState{members: map[products.Source]products.Record{
				c.left.Source:  c.left,
				c.right.Source: c.right,
			}}
			states = append(states, st)
			assigned[c.left.Key()] = st
			assigned[c.right.Key()] = st
			if c.skuExact {
				st.skuOverride = true
			}
		case leftOK && !rightOK:
			if _, taken := leftState.members[c.right.Source]; taken {
				continue
			}
			leftState.members[c.right.Source] = c.right
			assigned[c.right.Key()] = leftState
			if c.skuExact {
				leftState.skuOverride = true
			}
		case !leftOK && rightOK:
			if _, taken := rightState.members[c.left.Source]; taken {
				continue
			}
			rightState.members[c.left.Source] = c.left
			assigned[c.left.Key()] = rightState
			if c.skuExact {
				rightState.skuOverride = true
			}
		default:
			// Both records already belong to groups; no record may join
			// two groups.
		}
	}

	groups := make([]products.MatchGroup, 0, len(states))
	for _, st := range states {
		groups = append(groups, products.MatchGroup{
			Members:     st.members,
			Confidence:  groupConfidence(st.members),
			SKUOverride: st.skuOverride,
		})
	}

	// Unassigned records are present in exactly one source.
	for _, source := range products.AllSources {
		for _, rec := range valid[source] {
			if _, ok := assigned[rec.Key()]; !ok {
				groups = append(groups, products.NewMatchGroup(rec))
			}
		}
	}

	return groups
}

// groupConfidence returns the minimum pairwise name similarity among the
// group's members. A single member is trivially matched to itself.
func groupConfidence(members map[products.Source]products.Record) float64 {
	if len(members) < 2 {
		return 1.0
	}
	var names []string
	for _, source := range products.AllSources {
		if rec, ok := members[source]; ok {
			names = append(names, rec.NormalizedName)
		}
	}
	confidence := 1.0
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			if s := fuzzy.Similarity(names[i], names[j]); s < confidence {
				confidence = s
			}
		}
	}
	return confidence
}

// sortGroups orders output by descending confidence, then by the
// lexically smallest external ID across members, for reproducibility.
func sortGroups(groups []products.MatchGroup) {
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Confidence != groups[j].Confidence {
			return groups[i].Confidence > groups[j].Confidence
		}
		return groups[i].MinExternalID() < groups[j].MinExternalID()
	})
}

// sourceNames returns the present sources in canonical order.
func sourceNames(sources map[products.Source][]products.Record) []products.Source {
	var names []products.Source
	for _, s := range products.AllSources {
		if _, ok := sources[s]; ok {
			names = append(names, s)
		}
	}
	return names
}

func countRecords(valid map[products.Source][]products.Record) int {
	n := 0
	for _, records := range valid {
		n += len(records)
	}
	return n
}

// skuEqual reports whether two records carry the same non-empty SKU.
// Comparison is case-insensitive and whitespace-trimmed, matching how
// sources export the same SKU with different casing.
func skuEqual(a, b products.Record) bool {
	if !a.HasSKU() || !b.HasSKU() {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(a.SKU), strings.TrimSpace(b.SKU))
}
