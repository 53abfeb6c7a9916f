package catalog

import (
	"context"
	"strings"
	"time"
)

const (
	// DefaultCategory is used when a dish has no category.
	DefaultCategory = "Uncategorized"
	// UserSource marks rows submitted by users rather than collected.
	UserSource = "user_submission"

	// MinRating and MaxRating bound the taste scale.
	MinRating = 1.0
	MaxRating = 10.0
)

// Columns is the table header, in persisted order.
var Columns = []string{
	"restaurant", "food", "price", "taste", "location",
	"portion_size", "dish_category", "description", "source_url", "votes_count",
}

// Record is one persisted row of the dish table. Optional cells are nil
// when absent or unparseable.
type Record struct {
	Restaurant  string   `json:"restaurant" db:"restaurant"`
	Food        string   `json:"food" db:"food"`
	Price       *float64 `json:"price" db:"price"`
	Taste       *float64 `json:"taste" db:"taste"`
	Location    string   `json:"location" db:"location"`
	PortionSize string   `json:"portion_size" db:"portion_size"`
	Category    string   `json:"dish_category" db:"dish_category"`
	Description *string  `json:"description,omitempty" db:"description"`
	SourceURL   string   `json:"source_url" db:"source_url"`
	VotesCount  *int     `json:"votes_count" db:"votes_count"`
}

// Entry is a normalized catalog row with its derived scores.
type Entry struct {
	Index       int      `json:"-"`
	Restaurant  string   `json:"restaurant"`
	Food        string   `json:"food"`
	Price       float64  `json:"price"`
	Taste       *float64 `json:"taste"`
	Location    string   `json:"location"`
	PortionSize string   `json:"portion_size"`
	Category    string   `json:"dish_category"`
	Description *string  `json:"description,omitempty"`
	SourceURL   string   `json:"source_url"`
	Votes       int      `json:"votes_count"`

	PriceNorm        float64 `json:"price_norm"`
	TasteNorm        float64 `json:"taste_norm"`
	PopularityWeight float64 `json:"popularity_weight"`
	WeightedScore    float64 `json:"weighted_score"`
	Score            float64 `json:"score"`
}

// Catalog is an immutable normalized snapshot of the dish table.
type Catalog struct {
	Entries  []Entry
	LoadedAt time.Time

	foods []string
}

// Foods returns the distinct non-empty dish names in first-seen order.
func (c *Catalog) Foods() []string {
	return c.foods
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.Entries)
}

// Table is the backing store the catalog is loaded from and written to.
type Table interface {
	Load(ctx context.Context) ([]Record, error)
	Save(ctx context.Context, records []Record) error
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// String returns a pointer to v, or nil when v is blank.
func String(v string) *string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}
