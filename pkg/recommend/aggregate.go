package recommend

import (
	"strings"

	"github.com/elonfeng/tasteprice/pkg/catalog"
	"github.com/elonfeng/tasteprice/pkg/fuzzy"
)

// Resolve matches a free-text dish query against the catalog's distinct
// dish names.
func Resolve(c *catalog.Catalog, query string, cutoff, limit int) []fuzzy.Match {
	return fuzzy.Extract(query, c.Foods(), cutoff, limit)
}

// Aggregate returns, in table order, every entry whose food contains any of
// names as a literal case-insensitive substring. Names are never treated as
// patterns.
func Aggregate(c *catalog.Catalog, names []string) []catalog.Entry {
	needles := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			needles = append(needles, n)
		}
	}
	if len(needles) == 0 {
		return nil
	}

	var out []catalog.Entry
	for _, e := range c.Entries {
		food := strings.ToLower(e.Food)
		for _, n := range needles {
			if strings.Contains(food, n) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}
