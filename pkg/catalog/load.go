package catalog

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// popularityExponent dampens the influence of high vote counts.
const popularityExponent = 0.2

// Load reads the table and builds a normalized catalog from it.
func Load(ctx context.Context, table Table) (*Catalog, error) {
	records, err := table.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrDataUnavailable) {
			return nil, err
		}
		return nil, eris.Wrap(err, "catalog: load table")
	}
	return Build(records)
}

// Build validates records and computes the derived score fields over the
// surviving rows. Rows without a price are dropped; missing vote counts
// default to 1.
func Build(records []Record) (*Catalog, error) {
	entries := make([]Entry, 0, len(records))
	for i, r := range records {
		if r.Price == nil || math.IsNaN(*r.Price) {
			continue
		}
		votes := 1
		if r.VotesCount != nil && *r.VotesCount > 1 {
			votes = *r.VotesCount
		}
		category := strings.TrimSpace(r.Category)
		if category == "" {
			category = DefaultCategory
		}
		entries = append(entries, Entry{
			Index:       i,
			Restaurant:  strings.TrimSpace(r.Restaurant),
			Food:        strings.TrimSpace(r.Food),
			Price:       *r.Price,
			Taste:       r.Taste,
			Location:    r.Location,
			PortionSize: r.PortionSize,
			Category:    category,
			Description: r.Description,
			SourceURL:   r.SourceURL,
			Votes:       votes,
		})
	}
	if len(entries) == 0 {
		return nil, eris.Wrap(ErrDataUnavailable, "no rows with a valid price")
	}

	normalize(entries)

	return &Catalog{
		Entries:  entries,
		LoadedAt: time.Now().UTC(),
		foods:    distinctFoods(entries),
	}, nil
}

func normalize(entries []Entry) {
	minPrice, maxPrice := math.Inf(1), math.Inf(-1)
	minTaste, maxTaste := math.Inf(1), math.Inf(-1)
	for i := range entries {
		p := entries[i].Price
		t := tasteOrZero(entries[i].Taste)
		minPrice, maxPrice = math.Min(minPrice, p), math.Max(maxPrice, p)
		minTaste, maxTaste = math.Min(minTaste, t), math.Max(maxTaste, t)
	}

	for i := range entries {
		e := &entries[i]
		e.PriceNorm = 1 - minMax(e.Price, minPrice, maxPrice)
		e.TasteNorm = minMax(tasteOrZero(e.Taste), minTaste, maxTaste)
		e.PopularityWeight = math.Pow(float64(max(1, e.Votes)), popularityExponent)
		e.WeightedScore = 0.5*e.PriceNorm + 0.5*e.TasteNorm
		e.Score = e.WeightedScore * e.PopularityWeight
	}
}

// minMax scales v into [0,1]. A zero-width range maps everything to 0.
func minMax(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	return (v - lo) / (hi - lo)
}

func tasteOrZero(t *float64) float64 {
	if t == nil || math.IsNaN(*t) {
		return 0
	}
	return *t
}

func distinctFoods(entries []Entry) []string {
	seen := make(map[string]bool, len(entries))
	var foods []string
	for _, e := range entries {
		if e.Food == "" || seen[e.Food] {
			continue
		}
		seen[e.Food] = true
		foods = append(foods, e.Food)
	}
	return foods
}
