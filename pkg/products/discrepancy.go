package products

// DiscrepancyKind classifies a detected disagreement.
type DiscrepancyKind string

// Discrepancy kinds.
const (
	PriceMismatch          DiscrepancyKind = "price_mismatch"
	SKUMismatch            DiscrepancyKind = "sku_mismatch"
	CategoryMismatch       DiscrepancyKind = "category_mismatch"
	NameMismatch           DiscrepancyKind = "name_mismatch"
	AttributeInconsistency DiscrepancyKind = "attribute_inconsistency"
)

// String returns the string representation of a discrepancy kind.
func (k DiscrepancyKind) String() string {
	return string(k)
}

// Severity ranks how serious a discrepancy is.
type Severity string

// Severity levels, least to most serious.
const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// String returns the string representation of a severity.
func (s Severity) String() string {
	return string(s)
}

// rank orders severities for comparison.
func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether the severity is as serious as other.
func (s Severity) AtLeast(other Severity) bool {
	return s.rank() >= other.rank()
}

// FieldValue is one side of a disagreement: a value as reported by one
// source.
type FieldValue struct {
	Source Source `json:"source" yaml:"source"`
	Value  string `json:"value" yaml:"value"`
}

// Discrepancy is one detected field-level disagreement inside a match
// group, or between a record's name and its structured attributes.
// Discrepancies are derived values: recomputed fresh every run, never
// mutated, never persisted by the core.
type Discrepancy struct {
	// Kind classifies the disagreement
	Kind DiscrepancyKind `json:"kind" yaml:"kind"`

	// GroupID references the match group the discrepancy concerns
	GroupID string `json:"group_id" yaml:"group_id"`

	// Field names the disagreeing field ("price", "sku", "category",
	// "name", or an attribute key)
	Field string `json:"field" yaml:"field"`

	// Expected and Actual carry the two disagreeing per-source values
	Expected FieldValue `json:"expected" yaml:"expected"`
	Actual   FieldValue `json:"actual" yaml:"actual"`

	// Severity ranks the disagreement
	Severity Severity `json:"severity" yaml:"severity"`

	// Detail is an optional human-readable elaboration
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}
