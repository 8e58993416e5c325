// Package fuzzy scores the similarity of normalized product names.
// Scores are deterministic, symmetric, and word-order invariant: "blue
// widget large" and "large blue widget" score 1.0.
package fuzzy

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Distance returns the Levenshtein edit distance between two strings.
func Distance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// Ratio returns the normalized edit-distance ratio between two strings:
// 1 - distance/max(len(a), len(b)), measured in runes. Two empty strings
// are identical (1.0); one empty string shares nothing with a non-empty
// one (0.0).
func Ratio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(Distance(a, b))/float64(longest)
}

// TokenSortRatio tokenizes both strings, sorts the tokens, and returns
// the Ratio of the rejoined forms. Word order stops mattering; repeated
// tokens still count.
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortTokens(a), sortTokens(b))
}

// TokenSetRatio compares the shared token set against each side's
// remainder, rewarding names that agree on their word sets even when one
// side carries extra tokens.
func TokenSetRatio(a, b string) float64 {
	setA, setB := tokenSet(a), tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	var shared, onlyA, onlyB []string
	for t := range setA {
		if setB[t] {
			shared = append(shared, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range setB {
		if !setA[t] {
			onlyB = append(onlyB, t)
		}
	}
	sort.Strings(shared)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	// Rebuild both names with the shared tokens first. Names that agree
	// on their word sets collapse to identical strings; extra tokens on
	// either side dilute the ratio in proportion to their length.
	base := strings.Join(shared, " ")
	full1 := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	full2 := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))
	return Ratio(full1, full2)
}

// Similarity returns the match score between two normalized names in
// [0, 1]: the best of the character ratio and the order-invariant token
// ratios. Symmetric and reflexive. An empty string scores 0 against
// anything except another empty string.
func Similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	best := Ratio(a, b)
	if r := TokenSortRatio(a, b); r > best {
		best = r
	}
	if r := TokenSetRatio(a, b); r > best {
		best = r
	}
	return best
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range strings.Fields(s) {
		set[t] = true
	}
	return set
}
