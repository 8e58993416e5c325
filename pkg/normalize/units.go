package normalize

import (
	"strings"
	"unicode"
)

// unitAliases maps unit abbreviations to one canonical token per unit, so
// "ml" and "milliliter" collapse to the same form. Canonical forms map to
// themselves, which keeps normalization idempotent. Ambiguous
// abbreviations that double as English words ("in", "can") stay out of
// the table.
var unitAliases = map[string]string{
	"ml":          "milliliter",
	"milliliter":  "milliliter",
	"milliliters": "milliliter",
	"l":           "liter",
	"liter":       "liter",
	"liters":      "liter",
	"litre":       "liter",
	"litres":      "liter",
	"oz":          "ounce",
	"ounce":       "ounce",
	"ounces":      "ounce",
	"lb":          "pound",
	"lbs":         "pound",
	"pound":       "pound",
	"pounds":      "pound",
	"kg":          "kilogram",
	"kilogram":    "kilogram",
	"kilograms":   "kilogram",
	"g":           "gram",
	"gram":        "gram",
	"grams":       "gram",
	"mm":          "millimeter",
	"millimeter":  "millimeter",
	"millimeters": "millimeter",
	"cm":          "centimeter",
	"centimeter":  "centimeter",
	"centimeters": "centimeter",
	"inch":        "inch",
	"inches":      "inch",
	"ft":          "foot",
	"foot":        "foot",
	"feet":        "foot",
	"pk":          "pack",
	"pack":        "pack",
	"ct":          "count",
	"count":       "count",
	"pc":          "piece",
	"pcs":         "piece",
	"piece":       "piece",
	"pieces":      "piece",
}

// expandUnits canonicalizes a single token. A bare unit alias becomes its
// canonical form; a glued quantity like "500ml" splits into the number
// and the canonical unit. Tokens that are neither pass through unchanged.
func expandUnits(token string) []string {
	if canonical, ok := unitAliases[token]; ok {
		return []string{canonical}
	}

	if num, unit, ok := splitQuantity(token); ok {
		if canonical, found := unitAliases[unit]; found {
			return []string{num, canonical}
		}
	}

	return []string{token}
}

// splitQuantity splits a token like "500ml" or "1.5l" into its numeric
// prefix and alphabetic suffix.
func splitQuantity(token string) (num, unit string, ok bool) {
	i := 0
	for i < len(token) && (unicode.IsDigit(rune(token[i])) || token[i] == '.') {
		i++
	}
	if i == 0 || i == len(token) {
		return "", "", false
	}
	num, unit = token[:i], token[i:]
	if strings.Trim(num, ".") == "" {
		return "", "", false
	}
	for _, r := range unit {
		if !unicode.IsLetter(r) {
			return "", "", false
		}
	}
	return num, unit, true
}
