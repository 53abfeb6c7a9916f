package fuzzy

import "sort"

const (
	// DefaultCutoff is the minimum WRatio a choice needs to match.
	DefaultCutoff = 70
	// DefaultLimit caps the number of matches returned.
	DefaultLimit = 10
)

// Match is a choice that cleared the cutoff.
type Match struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Extract scores every distinct choice against query with WRatio and keeps
// those scoring at least cutoff. Results are ordered by score descending,
// then by name, and truncated to limit. A query with no letters or digits
// matches nothing.
func Extract(query string, choices []string, cutoff, limit int) []Match {
	cutoff = min(max(cutoff, 0), 100)
	if limit <= 0 {
		limit = DefaultLimit
	}
	if Normalize(query) == "" {
		return nil
	}

	seen := make(map[string]bool, len(choices))
	var matches []Match
	for _, c := range choices {
		if seen[c] {
			continue
		}
		seen[c] = true
		if s := WRatio(query, c); s >= float64(cutoff) {
			matches = append(matches, Match{Name: c, Score: s})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Name < matches[j].Name
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// Names returns the names of matches in order.
func Names(matches []Match) []string {
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.Name
	}
	return names
}
