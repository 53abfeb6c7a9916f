// Package fuzzy scores approximate string similarity on a 0-100 scale.
package fuzzy

import (
	"sort"
	"strings"
	"unicode"
)

// Normalize lower-cases s and collapses every run of characters that are not
// letters or digits into a single space.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}
	return b.String()
}

// Ratio returns the indel similarity of a and b: 100 * 2*LCS / (|a|+|b|).
func Ratio(a, b string) float64 {
	return ratioRunes([]rune(a), []rune(b))
}

func ratioRunes(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	return 100 * float64(2*lcs(a, b)) / float64(total)
}

// lcs returns the length of the longest common subsequence.
func lcs(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// PartialRatio returns the best Ratio of the shorter string against every
// window of the same length in the longer one.
func PartialRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == 0 {
		if len(rb) == 0 {
			return 100
		}
		return 0
	}

	best := 0.0
	for i := 0; i+len(ra) <= len(rb); i++ {
		if s := ratioRunes(ra, rb[i:i+len(ra)]); s > best {
			best = s
			if best == 100 {
				break
			}
		}
	}
	return best
}

// TokenSortRatio compares a and b after sorting their words.
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortedTokens(a), sortedTokens(b))
}

// TokenSetRatio compares the shared words of a and b against each side's
// remainder. Sharing every word of one side scores 100.
func TokenSetRatio(a, b string) float64 {
	sect, diffA, diffB := tokenSets(a, b)
	if sect != "" && (diffA == "" || diffB == "") {
		return 100
	}

	combinedA := joinNonEmpty(sect, diffA)
	combinedB := joinNonEmpty(sect, diffB)

	best := Ratio(combinedA, combinedB)
	if sect != "" {
		best = max(best, Ratio(sect, combinedA), Ratio(sect, combinedB))
	}
	return best
}

// PartialTokenRatio is PartialRatio over sorted words and over the words the
// two sides do not share. Any shared word scores 100.
func PartialTokenRatio(a, b string) float64 {
	sect, diffA, diffB := tokenSets(a, b)
	if sect != "" {
		return 100
	}
	best := PartialRatio(sortedTokens(a), sortedTokens(b))
	if diffA != "" && diffB != "" {
		best = max(best, PartialRatio(diffA, diffB))
	}
	return best
}

// WRatio blends the other ratios, weighting partial matches down as the
// length difference between a and b grows. Inputs are normalized first;
// an empty side scores 0.
func WRatio(a, b string) float64 {
	a, b = Normalize(a), Normalize(b)
	if a == "" || b == "" {
		return 0
	}

	la, lb := float64(len([]rune(a))), float64(len([]rune(b)))
	lenRatio := max(la, lb) / min(la, lb)

	const unbaseScale = 0.95
	score := Ratio(a, b)
	if lenRatio < 1.5 {
		return max(score, max(TokenSortRatio(a, b), TokenSetRatio(a, b))*unbaseScale)
	}

	partialScale := 0.9
	if lenRatio >= 8 {
		partialScale = 0.6
	}
	score = max(score, PartialRatio(a, b)*partialScale)
	return max(score, PartialTokenRatio(a, b)*unbaseScale*partialScale)
}

func sortedTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// tokenSets returns the sorted shared words and each side's sorted remainder.
func tokenSets(a, b string) (sect, diffA, diffB string) {
	setA := toSet(strings.Fields(a))
	setB := toSet(strings.Fields(b))

	var both, onlyA, onlyB []string
	for t := range setA {
		if setB[t] {
			both = append(both, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range setB {
		if !setA[t] {
			onlyB = append(onlyB, t)
		}
	}
	sort.Strings(both)
	sort.Strings(onlyA)
	sort.Strings(onlyB)
	return strings.Join(both, " "), strings.Join(onlyA, " "), strings.Join(onlyB, " ")
}

func toSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " " + b
}
