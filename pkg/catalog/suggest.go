package catalog

import "strings"

// DefaultSuggestLimit caps autocomplete results.
const DefaultSuggestLimit = 5

// Pair is a (restaurant, food) autocomplete suggestion.
type Pair struct {
	Restaurant string `json:"restaurant"`
	Food       string `json:"food"`
}

// Suggest returns distinct (restaurant, food) pairs whose fields contain the
// given partial strings, ignoring case. Blank inputs match everything.
func Suggest(c *Catalog, partialRestaurant, partialFood string, limit int) []Pair {
	if c == nil {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	rest := strings.ToLower(strings.TrimSpace(partialRestaurant))
	food := strings.ToLower(strings.TrimSpace(partialFood))

	seen := make(map[Pair]bool)
	var pairs []Pair
	for _, e := range c.Entries {
		if rest != "" && !strings.Contains(strings.ToLower(e.Restaurant), rest) {
			continue
		}
		if food != "" && !strings.Contains(strings.ToLower(e.Food), food) {
			continue
		}
		p := Pair{Restaurant: e.Restaurant, Food: e.Food}
		if seen[p] {
			continue
		}
		seen[p] = true
		pairs = append(pairs, p)
		if len(pairs) == limit {
			break
		}
	}
	return pairs
}
