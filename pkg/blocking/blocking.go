// Package blocking groups records into small comparison buckets so the
// reconciler avoids a full cross-source pairwise scan. Buckets trade
// precision for volume, never recall: any two records that share a
// normalized name token, or a SKU prefix, land in at least one common
// bucket. Records with no usable tokens and no SKU fall into a bounded
// catch-all bucket that is compared against everything.
package blocking

import (
	"sort"
	"strings"

	"github.com/catalogsync/catalogsync/pkg/products"
)

// skuPrefixLen is the number of leading SKU characters used as a bucket
// signature. Short enough to absorb suffix variations between sources.
const skuPrefixLen = 4

// Index holds one source's records bucketed by cheap signatures. A record
// appears once per distinct signature it produces.
type Index struct {
	buckets  map[string][]products.Record
	catchAll []products.Record
	size     int
}

// New builds an index over a source's records. Each record is keyed by
// every one of its normalized name tokens plus its SKU prefix, so bucket
// intersection across sources is recall-safe for token-sharing pairs.
func New(records []products.Record) *Index {
	ix := &Index{buckets: make(map[string][]products.Record)}
	for _, r := range records {
		ix.add(r)
	}
	return ix
}

func (ix *Index) add(r products.Record) {
	ix.size++
	keys := Keys(r)
	if len(keys) == 0 {
		ix.catchAll = append(ix.catchAll, r)
		return
	}
	for _, k := range keys {
		ix.buckets[k] = append(ix.buckets[k], r)
	}
}

// Keys returns the bucket signatures for a record: one per normalized
// name token and one for the SKU prefix when a SKU is present. An empty
// result marks the record for the catch-all bucket.
func Keys(r products.Record) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, tok := range strings.Fields(r.NormalizedName) {
		k := "tok:" + tok
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	if r.HasSKU() {
		prefix := strings.ToUpper(strings.TrimSpace(r.SKU))
		if len(prefix) > skuPrefixLen {
			prefix = prefix[:skuPrefixLen]
		}
		k := "sku:" + prefix
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	return keys
}

// Signatures returns every bucket key in the index, sorted.
func (ix *Index) Signatures() []string {
	keys := make([]string, 0, len(ix.buckets))
	for k := range ix.buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Bucket returns the records filed under a signature.
func (ix *Index) Bucket(key string) []products.Record {
	return ix.buckets[key]
}

// CatchAll returns the records that produced no signature. These are
// compared against every candidate; the fallback is bounded because such
// records are rare.
func (ix *Index) CatchAll() []products.Record {
	return ix.catchAll
}

// Len returns the number of records indexed, catch-all included.
func (ix *Index) Len() int {
	return ix.size
}

// CandidatePairs returns the cross-source record pairs worth scoring
// between two indexes: pairs sharing at least one bucket signature, plus
// every pairing that involves a catch-all record. Pairs are deduplicated
// and returned in a deterministic order.
func CandidatePairs(a, b *Index) [][2]products.Record {
	type pairKey struct{ left, right string }
	seen := make(map[pairKey]bool)
	var pairs [][2]products.Record

	appendPair := func(left, right products.Record) {
		k := pairKey{left.Key(), right.Key()}
		if seen[k] {
			return
		}
		seen[k] = true
		pairs = append(pairs, [2]products.Record{left, right})
	}

	for _, sig := range a.Signatures() {
		rights := b.Bucket(sig)
		if len(rights) == 0 {
			continue
		}
		for _, left := range a.Bucket(sig) {
			for _, right := range rights {
				appendPair(left, right)
			}
		}
	}

	// Catch-all records have no signature to intersect on; compare them
	// against the full other side.
	for _, left := range a.CatchAll() {
		for _, right := range b.all() {
			appendPair(left, right)
		}
	}
	for _, right := range b.CatchAll() {
		for _, left := range a.all() {
			appendPair(left, right)
		}
	}

	return pairs
}

// all returns every record in the index in deterministic order.
func (ix *Index) all() []products.Record {
	seen := make(map[string]bool)
	var records []products.Record
	for _, sig := range ix.Signatures() {
		for _, r := range ix.buckets[sig] {
			if !seen[r.Key()] {
				seen[r.Key()] = true
				records = append(records, r)
			}
		}
	}
	records = append(records, ix.catchAll...)
	return records
}
