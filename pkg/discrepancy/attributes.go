package discrepancy

import (
	"strconv"
	"strings"

	"github.com/catalogsync/catalogsync/pkg/normalize"
	"github.com/catalogsync/catalogsync/pkg/products"
)

// Checker cross-checks the attribute tokens parsed out of a product's
// free-text name against its structured attribute fields. It only speaks
// the controlled vocabulary: categories absent from both the name and
// the attribute map carry no information and are silently skipped.
type Checker struct{}

// NewChecker creates an attribute consistency checker.
func NewChecker() *Checker {
	return &Checker{}
}

// nameToken is one attribute value recognized inside a product name.
type nameToken struct {
	// value is the normalized form used for comparison
	value string

	// display is the token as it appears in the raw name
	display string
}

// Check returns one ATTRIBUTE_INCONSISTENCY per attribute category where
// the name and the structured attributes both speak and disagree.
// Expected carries the structured value, Actual the name-derived token.
func (c *Checker) Check(rec products.Record) []products.Discrepancy {
	name := rec.NormalizedName
	if name == "" {
		name = normalize.Name(rec.RawName)
	}
	extracted := extractNameTokens(name, rec.RawName)
	if len(extracted) == 0 {
		return nil
	}

	var found []products.Discrepancy
	for _, key := range products.KnownAttributeKeys {
		attrValue := rec.Attributes.Get(key)
		if attrValue == "" {
			continue
		}
		token, ok := extracted[key]
		if !ok {
			continue
		}
		if valuesAgree(key, attrValue, token.value) {
			continue
		}
		found = append(found, products.Discrepancy{
			Kind:     products.AttributeInconsistency,
			GroupID:  rec.Key(),
			Field:    key.String(),
			Expected: products.FieldValue{Source: rec.Source, Value: attrValue},
			Actual:   products.FieldValue{Source: rec.Source, Value: token.display},
			Severity: products.SeverityWarning,
		})
	}
	return found
}

// extractNameTokens parses candidate attribute values out of a
// normalized name via vocabulary lookup. The first recognizable token
// per category wins. rawName is used to recover the original casing for
// display.
func extractNameTokens(normalized, rawName string) map[products.AttributeKey]nameToken {
	tokens := strings.Fields(normalized)
	extracted := make(map[products.AttributeKey]nameToken)

	record := func(key products.AttributeKey, value, display string) {
		if _, ok := extracted[key]; !ok {
			extracted[key] = nameToken{value: value, display: display}
		}
	}

	for i, tok := range tokens {
		switch {
		case colorTokens[tok]:
			record(products.AttrColor, tok, displayForm(rawName, tok))
		case sizeTokens[tok]:
			record(products.AttrSize, tok, displayForm(rawName, tok))
		case materialTokens[tok]:
			record(products.AttrMaterial, tok, displayForm(rawName, tok))
		case isNumber(tok) && i+1 < len(tokens):
			// Quantity patterns: "<number> <unit>".
			next := tokens[i+1]
			quantity := tok + " " + next
			switch {
			case volumeUnits[next]:
				record(products.AttrVolume, quantity, quantity)
			case weightUnits[next]:
				record(products.AttrWeight, quantity, quantity)
			case packUnits[next]:
				record(products.AttrPackCount, tok, quantity)
			}
		case packUnits[tok] && i+2 < len(tokens) && tokens[i+1] == "of" && isNumber(tokens[i+2]):
			// "pack of <number>"
			record(products.AttrPackCount, tokens[i+2], strings.Join(tokens[i:i+3], " "))
		}
	}

	return extracted
}

// valuesAgree reports whether a structured attribute value and a
// name-derived token denote the same thing for the given category.
func valuesAgree(key products.AttributeKey, attrValue, tokenValue string) bool {
	// Sizes skip the generic normalizer: "L" is a size, not a liter.
	if key == products.AttrSize {
		a := canonicalSize(strings.ToLower(strings.TrimSpace(attrValue)))
		t := canonicalSize(strings.ToLower(strings.TrimSpace(tokenValue)))
		return a == "" || t == "" || a == t
	}

	a := normalize.Value(attrValue)
	t := normalize.Value(tokenValue)
	if a == "" || t == "" {
		// Nothing comparable.
		return true
	}

	if a == t {
		return true
	}

	// Quantities agree when their numbers do and their units, if both
	// carry one, canonicalize to the same token.
	aNum, aUnit, aOK := splitQuantityValue(a)
	tNum, tUnit, tOK := splitQuantityValue(t)
	if aOK && tOK {
		if aUnit != "" && tUnit != "" && aUnit != tUnit {
			return false
		}
		return numbersClose(aNum, tNum)
	}

	// Multi-valued attributes ("Red, Blue") agree when any part does.
	for _, part := range strings.Split(a, " ") {
		if part == t {
			return true
		}
	}

	return strings.Contains(a, t) || strings.Contains(t, a)
}

// splitQuantityValue splits a normalized value like "500 milliliter"
// into its number and optional unit token.
func splitQuantityValue(v string) (num float64, unit string, ok bool) {
	fields := strings.Fields(v)
	if len(fields) == 0 || len(fields) > 2 {
		return 0, "", false
	}
	n, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, "", false
	}
	if len(fields) == 2 {
		unit = fields[1]
	}
	return n, unit, true
}

func numbersClose(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 0.01
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// displayForm recovers the original casing of a normalized token from
// the raw name, falling back to the normalized form.
func displayForm(rawName, token string) string {
	for _, raw := range strings.Fields(rawName) {
		if normalize.Value(raw) == token {
			return strings.Trim(raw, ",.;:")
		}
	}
	return token
}
