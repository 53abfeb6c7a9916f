package source

import (
	"slices"
	"strings"
	"unicode"

	"github.com/elonfeng/tasteprice/pkg/catalog"
)

// DefaultExcludeKeywords names menu lines that are not dishes.
var DefaultExcludeKeywords = []string{
	"delivery fee", "service charge", "packaging", "takeaway pack",
	"take away pack", "bag", "container", "cutlery",
}

// Filter drops collected rows that are not dishes.
type Filter struct {
	exclude []string
}

// NewFilter creates a filter with the default excludes plus extras.
func NewFilter(excludeKeywords []string) *Filter {
	exclude := make([]string, 0, len(DefaultExcludeKeywords)+len(excludeKeywords))
	for _, kw := range slices.Concat(DefaultExcludeKeywords, excludeKeywords) {
		if kw = words(kw); kw != "" {
			exclude = append(exclude, kw)
		}
	}
	return &Filter{exclude: exclude}
}

// Keep reports whether a dish name should be kept. Keywords match whole
// words so that "bag" does not drop "cabbage".
func (f *Filter) Keep(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	padded := " " + words(name) + " "
	for _, ex := range f.exclude {
		if strings.Contains(padded, " "+ex+" ") {
			return false
		}
	}
	return true
}

// Apply returns the records whose food passes Keep. A nil filter keeps
// every named row.
func (f *Filter) Apply(records []catalog.Record) []catalog.Record {
	out := records[:0:0]
	for _, r := range records {
		if f == nil {
			if strings.TrimSpace(r.Food) != "" {
				out = append(out, r)
			}
			continue
		}
		if f.Keep(r.Food) {
			out = append(out, r)
		}
	}
	return out
}

// words lowercases s and joins its letter and digit runs with single spaces.
func words(s string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(s), isSeparator), " ")
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
