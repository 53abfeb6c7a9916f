package catalog

import "strings"

// ImportStats summarizes a merge of collected rows into the table.
type ImportStats struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Rows    int `json:"rows"`
}

// Changed reports whether the merge modified the table.
func (s ImportStats) Changed() bool {
	return s.Added > 0 || s.Updated > 0
}

// Merge folds collected rows into existing. A row whose restaurant and food
// match an existing row, ignoring case, refreshes that row's price and menu
// details and leaves its ratings alone. Other rows are appended. Rows with a
// blank restaurant or food are skipped.
func Merge(existing, incoming []Record) ([]Record, ImportStats) {
	index := make(map[string]int, len(existing))
	for i, r := range existing {
		k := mergeKey(r)
		if _, ok := index[k]; !ok {
			index[k] = i
		}
	}

	var stats ImportStats
	for _, r := range incoming {
		if strings.TrimSpace(r.Food) == "" || strings.TrimSpace(r.Restaurant) == "" {
			continue
		}
		k := mergeKey(r)
		if i, ok := index[k]; ok {
			if refresh(&existing[i], r) {
				stats.Updated++
			}
			continue
		}
		index[k] = len(existing)
		existing = append(existing, r)
		stats.Added++
	}
	stats.Rows = len(existing)
	return existing, stats
}

func mergeKey(r Record) string {
	return strings.ToLower(strings.TrimSpace(r.Restaurant)) + "\x00" + strings.ToLower(strings.TrimSpace(r.Food))
}

// refresh copies collected menu details onto row and reports whether
// anything changed. Taste and votes are never touched.
func refresh(row *Record, in Record) bool {
	changed := false
	if in.Price != nil && (row.Price == nil || *row.Price != *in.Price) {
		row.Price = in.Price
		changed = true
	}
	if in.Description != nil && (row.Description == nil || *row.Description != *in.Description) {
		row.Description = in.Description
		changed = true
	}
	if in.SourceURL != "" && row.SourceURL != in.SourceURL {
		row.SourceURL = in.SourceURL
		changed = true
	}
	return changed
}
