package source

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	priceRe    = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
	currencyRe = regexp.MustCompile(`(?i)₵|ghs`)
)

// ParsePrice extracts the first number in text, dropping thousands
// separators: "₵1,250.50" is 1250.5. ok is false when text has no number.
func ParsePrice(text string) (price float64, ok bool) {
	m := priceRe.FindString(text)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func pricePtr(text string) *float64 {
	if v, ok := ParsePrice(text); ok {
		return &v
	}
	return nil
}

// hasCurrency reports whether text carries a cedi price marker.
func hasCurrency(text string) bool {
	return currencyRe.MatchString(text)
}

// currencyIndex returns the byte offset of the first currency marker, or -1.
func currencyIndex(text string) int {
	if loc := currencyRe.FindStringIndex(text); loc != nil {
		return loc[0]
	}
	return -1
}
