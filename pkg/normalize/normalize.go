// Package normalize canonicalizes raw product text for comparison.
// Normalization is deterministic, idempotent, and side-effect free: the
// normalized form of a name is always derivable from its raw form.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes combining marks left behind after canonical
// decomposition, folding accented characters to their base form.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Name canonicalizes a raw product name: unicode folding, lower casing,
// punctuation stripping (hyphens inside model numbers are kept),
// whitespace collapsing, and unit-token canonicalization.
// Name(Name(x)) == Name(x) for every x; empty or whitespace-only input
// yields "".
func Name(raw string) string {
	return strings.Join(Tokens(raw), " ")
}

// Tokens returns the canonical tokens of a raw product name, in order.
func Tokens(raw string) []string {
	s := fold(raw)
	s = strings.ToLower(s)
	s = stripPunctuation(s)

	fields := strings.Fields(s)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, expandUnits(f)...)
	}
	return tokens
}

// Category canonicalizes a category label for case- and
// whitespace-insensitive comparison. Punctuation is preserved; category
// labels like "Parts & Accessories" keep their shape.
func Category(raw string) string {
	s := strings.ToLower(fold(raw))
	return strings.Join(strings.Fields(s), " ")
}

// Value canonicalizes an attribute value for comparison: folding, lower
// casing, whitespace collapsing, and trailing unit-noise removal so
// "40 mm" and "40mm" compare equal.
func Value(raw string) string {
	tokens := Tokens(raw)
	return strings.Join(tokens, " ")
}

// fold rewrites typographic unicode variants (smart quotes, primes,
// dashes) to their ASCII equivalents and strips diacritics.
func fold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '“', '”', '″': // “ ” ″
			b.WriteRune('"')
		case '‘', '’', '′': // ‘ ’ ′
			b.WriteRune('\'')
		case '–', '—': // – —
			b.WriteRune('-')
		case ' ': // non-breaking space
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	folded, _, err := transform.String(stripMarks, b.String())
	if err != nil {
		return b.String()
	}
	return folded
}

// stripPunctuation replaces punctuation with spaces. A hyphen stays only
// when it joins two alphanumeric runes (model numbers like "w-1" or
// "x-change"); everything else, including quotes and slashes, becomes a
// token boundary.
func stripPunctuation(s string) string {
	rs := []rune(s)
	out := make([]rune, 0, len(rs))
	for i, r := range rs {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r):
			out = append(out, r)
		case r == '-' && i > 0 && i < len(rs)-1 &&
			isAlnum(rs[i-1]) && isAlnum(rs[i+1]):
			out = append(out, r)
		case r == '.' && i > 0 && i < len(rs)-1 &&
			unicode.IsDigit(rs[i-1]) && unicode.IsDigit(rs[i+1]):
			// decimal point inside a number ("4.5")
			out = append(out, r)
		default:
			out = append(out, ' ')
		}
	}
	return string(out)
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
