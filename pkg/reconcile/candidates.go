package reconcile

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/catalogsync/catalogsync/pkg/blocking"
	"github.com/catalogsync/catalogsync/pkg/fuzzy"
	"github.com/catalogsync/catalogsync/pkg/products"
)

// candidate is one scored cross-source record pair. left always comes
// from the earlier source in canonical order, which keeps pair identity
// and tie-breaking deterministic.
type candidate struct {
	left, right products.Record

	// score is the fuzzy name similarity of the normalized names
	score float64

	// distance is the Levenshtein distance of the normalized names,
	// the second link in the tie-break chain
	distance int

	// skuExact marks pairs with equal non-empty SKUs; the strongest
	// identity signal, overriding the fuzzy threshold
	skuExact bool
}

// match reports whether the candidate qualifies for grouping under the
// given threshold.
func (c candidate) match(threshold float64) bool {
	return c.skuExact || c.score >= threshold
}

// rank is the primary sort key: SKU-exact pairs rank as certain matches
// regardless of how the names scored.
func (c candidate) rank() float64 {
	if c.skuExact {
		return 1.0
	}
	return c.score
}

// pairID is the final deterministic tie-breaker.
func (c candidate) pairID() string {
	return c.left.ExternalID + "\x00" + c.right.ExternalID
}

// scoreCandidates generates blocked candidate pairs for every source
// pair and scores them. Scoring is read-only over the candidate pools,
// so it fans out across workers; results are written by index, which
// makes parallel and sequential execution observably equivalent.
func (r *reconciler) scoreCandidates(ctx context.Context, valid map[products.Source][]products.Record) ([]candidate, error) {
	indexes := make(map[products.Source]*blocking.Index, len(valid))
	for source, records := range valid {
		indexes[source] = blocking.New(records)
	}

	var pairs [][2]products.Record
	for i := 0; i < len(products.AllSources); i++ {
		for j := i + 1; j < len(products.AllSources); j++ {
			a, okA := indexes[products.AllSources[i]]
			b, okB := indexes[products.AllSources[j]]
			if !okA || !okB {
				continue
			}
			pairs = append(pairs, blocking.CandidatePairs(a, b)...)
		}
	}

	scored := make([]candidate, len(pairs))

	workers := r.config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(pairs) {
		workers = len(pairs)
	}
	if workers == 0 {
		return scored, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	chunk := (len(pairs) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > len(pairs) {
			end = len(pairs)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return fmt.Errorf("scoring aborted: %w", err)
				}
				scored[i] = scorePair(pairs[i][0], pairs[i][1])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return scored, nil
}

// scorePair builds a scored candidate from a record pair.
func scorePair(left, right products.Record) candidate {
	return candidate{
		left:     left,
		right:    right,
		score:    fuzzy.Similarity(left.NormalizedName, right.NormalizedName),
		distance: fuzzy.Distance(left.NormalizedName, right.NormalizedName),
		skuExact: skuEqual(left, right),
	}
}

// sortCandidates orders candidates for greedy resolution: descending
// rank, then shorter Levenshtein distance, then lexical external-ID
// order. The chain never leaves a tie unresolved.
func sortCandidates(pairs []candidate) {
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].rank() != pairs[j].rank() {
			return pairs[i].rank() > pairs[j].rank()
		}
		if pairs[i].distance != pairs[j].distance {
			return pairs[i].distance < pairs[j].distance
		}
		return pairs[i].pairID() < pairs[j].pairID()
	})
}
