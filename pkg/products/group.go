package products

import "sort"

// MatchGroup is a cluster of records across sources judged to denote the
// same real product. Matching is a partition: every valid input record
// belongs to exactly one group per run, and a group holds at most one
// record per source.
type MatchGroup struct {
	// Members maps each contributing source to its record
	Members map[Source]Record `json:"members" yaml:"members"`

	// Confidence is the minimum pairwise name similarity among present
	// members. Singleton groups are trivially matched to themselves and
	// carry confidence 1.0.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// SKUOverride marks groups whose members were joined by exact SKU
	// equality regardless of name score
	SKUOverride bool `json:"sku_override,omitempty" yaml:"sku_override,omitempty"`
}

// NewMatchGroup builds a group from records. At most one record per
// source is kept; callers are responsible for not passing duplicates.
func NewMatchGroup(records ...Record) MatchGroup {
	members := make(map[Source]Record, len(records))
	for _, r := range records {
		members[r.Source] = r
	}
	return MatchGroup{Members: members, Confidence: 1.0}
}

// Size returns the number of present members.
func (g MatchGroup) Size() int {
	return len(g.Members)
}

// IsSingleton reports whether the group holds a single record, meaning
// the product is missing from every other source.
func (g MatchGroup) IsSingleton() bool {
	return len(g.Members) == 1
}

// Sources returns the present sources in canonical order.
func (g MatchGroup) Sources() []Source {
	var present []Source
	for _, s := range AllSources {
		if _, ok := g.Members[s]; ok {
			present = append(present, s)
		}
	}
	return present
}

// MissingFrom returns the known sources that have no record in the group.
func (g MatchGroup) MissingFrom() []Source {
	var missing []Source
	for _, s := range AllSources {
		if _, ok := g.Members[s]; !ok {
			missing = append(missing, s)
		}
	}
	return missing
}

// Records returns the member records ordered by source.
func (g MatchGroup) Records() []Record {
	records := make([]Record, 0, len(g.Members))
	for _, s := range g.Sources() {
		records = append(records, g.Members[s])
	}
	return records
}

// ID returns a stable identifier for the group: the key of the member
// with the lexically smallest external ID. Deterministic across runs for
// identical input.
func (g MatchGroup) ID() string {
	keys := make([]string, 0, len(g.Members))
	for _, r := range g.Members {
		keys = append(keys, r.Key())
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}

// MinExternalID returns the lexically smallest external ID across
// members. Used as the secondary ordering key for group output.
func (g MatchGroup) MinExternalID() string {
	ids := make([]string, 0, len(g.Members))
	for _, r := range g.Members {
		ids = append(ids, r.ExternalID)
	}
	sort.Strings(ids)
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

// Name returns a display name for the group: the raw name of the first
// present member in canonical source order.
func (g MatchGroup) Name() string {
	for _, s := range AllSources {
		if r, ok := g.Members[s]; ok && r.RawName != "" {
			return r.RawName
		}
	}
	return ""
}
