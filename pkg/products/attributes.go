package products

import "sort"

// AttributeKey is a recognized structured attribute category. Keys are a
// closed enumeration so the consistency checker's vocabulary lookup is
// exhaustive; anything a source exports outside this set lands in the
// Extra bucket and is carried through untouched.
type AttributeKey string

// Recognized attribute categories.
const (
	AttrColor     AttributeKey = "color"
	AttrSize      AttributeKey = "size"
	AttrMaterial  AttributeKey = "material"
	AttrPackCount AttributeKey = "pack_count"
	AttrVolume    AttributeKey = "volume"
	AttrWeight    AttributeKey = "weight"
)

// KnownAttributeKeys lists every recognized attribute category in
// canonical order.
var KnownAttributeKeys = []AttributeKey{
	AttrColor,
	AttrSize,
	AttrMaterial,
	AttrPackCount,
	AttrVolume,
	AttrWeight,
}

// String returns the string representation of an attribute key.
func (k AttributeKey) String() string {
	return string(k)
}

// IsKnown reports whether the key is part of the recognized vocabulary.
func (k AttributeKey) IsKnown() bool {
	switch k {
	case AttrColor, AttrSize, AttrMaterial, AttrPackCount, AttrVolume, AttrWeight:
		return true
	}
	return false
}

// Attributes holds a record's structured attribute fields. An empty string
// means the source did not set the attribute ("unknown"), never "empty
// value" — sources that export an attribute always export a value for it.
type Attributes struct {
	Color     string `json:"color,omitempty" yaml:"color,omitempty"`
	Size      string `json:"size,omitempty" yaml:"size,omitempty"`
	Material  string `json:"material,omitempty" yaml:"material,omitempty"`
	PackCount string `json:"pack_count,omitempty" yaml:"pack_count,omitempty"`
	Volume    string `json:"volume,omitempty" yaml:"volume,omitempty"`
	Weight    string `json:"weight,omitempty" yaml:"weight,omitempty"`

	// Extra carries source attributes outside the recognized vocabulary
	Extra map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Get returns the value for a recognized attribute key, or "" when unset.
func (a Attributes) Get(key AttributeKey) string {
	switch key {
	case AttrColor:
		return a.Color
	case AttrSize:
		return a.Size
	case AttrMaterial:
		return a.Material
	case AttrPackCount:
		return a.PackCount
	case AttrVolume:
		return a.Volume
	case AttrWeight:
		return a.Weight
	}
	return ""
}

// Set assigns a value to a recognized attribute key. Unknown keys go to
// the Extra bucket.
func (a *Attributes) Set(key AttributeKey, value string) {
	switch key {
	case AttrColor:
		a.Color = value
	case AttrSize:
		a.Size = value
	case AttrMaterial:
		a.Material = value
	case AttrPackCount:
		a.PackCount = value
	case AttrVolume:
		a.Volume = value
	case AttrWeight:
		a.Weight = value
	default:
		if a.Extra == nil {
			a.Extra = make(map[string]string)
		}
		a.Extra[string(key)] = value
	}
}

// Present returns the recognized keys that carry a value, in canonical
// order.
func (a Attributes) Present() []AttributeKey {
	var keys []AttributeKey
	for _, key := range KnownAttributeKeys {
		if a.Get(key) != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// ExtraKeys returns the unrecognized attribute names in sorted order.
func (a Attributes) ExtraKeys() []string {
	if len(a.Extra) == 0 {
		return nil
	}
	keys := make([]string, 0, len(a.Extra))
	for k := range a.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsZero reports whether no attribute, recognized or extra, is set.
func (a Attributes) IsZero() bool {
	return len(a.Present()) == 0 && len(a.Extra) == 0
}
