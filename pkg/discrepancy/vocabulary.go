package discrepancy

// The attribute vocabulary is a controlled keyword/pattern table, not
// free-form NLP: each recognized attribute category lists the normalized
// tokens that signal it inside a product name. Tokens here must already
// be in normalized form (lower case, canonical units), since extraction
// runs over normalized names.

// colorTokens are the recognized color words.
var colorTokens = map[string]bool{
	"black":  true,
	"white":  true,
	"red":    true,
	"blue":   true,
	"green":  true,
	"yellow": true,
	"orange": true,
	"purple": true,
	"pink":   true,
	"brown":  true,
	"gray":   true,
	"grey":   true,
	"silver": true,
	"gold":   true,
	"beige":  true,
	"navy":   true,
	"teal":   true,
	"ivory":  true,
}

// sizeTokens are the recognized size words.
var sizeTokens = map[string]bool{
	"mini":   true,
	"small":  true,
	"medium": true,
	"large":  true,
	"xl":     true,
	"xxl":    true,
	"jumbo":  true,
	"compact": true,
}

// materialTokens are the recognized material words.
var materialTokens = map[string]bool{
	"steel":     true,
	"stainless": true,
	"aluminum":  true,
	"aluminium": true,
	"metal":     true,
	"plastic":   true,
	"wood":      true,
	"wooden":    true,
	"glass":     true,
	"ceramic":   true,
	"cotton":    true,
	"leather":   true,
	"rubber":    true,
	"silicone":  true,
	"bamboo":    true,
	"nylon":     true,
	"canvas":    true,
}

// volumeUnits are canonical unit tokens that signal a volume quantity.
var volumeUnits = map[string]bool{
	"milliliter": true,
	"liter":      true,
	"ounce":      true,
}

// weightUnits are canonical unit tokens that signal a weight quantity.
var weightUnits = map[string]bool{
	"kilogram": true,
	"gram":     true,
	"pound":    true,
}

// packUnits are canonical unit tokens that signal a pack count.
var packUnits = map[string]bool{
	"pack":  true,
	"count": true,
	"piece": true,
}

// sizeSynonyms folds equivalent size spellings before comparison, so an
// attribute of "extra large" agrees with a name token of "xl".
var sizeSynonyms = map[string]string{
	"s":           "small",
	"m":           "medium",
	"l":           "large",
	"extra large": "xl",
	"x-large":     "xl",
	"xlarge":      "xl",
	"extra small": "mini",
	"x-small":     "mini",
	"xs":          "mini",
}

// canonicalSize maps a normalized size value onto its folded form.
func canonicalSize(v string) string {
	if folded, ok := sizeSynonyms[v]; ok {
		return folded
	}
	return v
}
