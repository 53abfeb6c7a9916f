package catalog

import (
	"math"
	"strings"

	"github.com/rotisserie/eris"
)

// Rate folds rating into the running taste average of the first row whose
// restaurant and food equal the given names, ignoring case. The row is
// updated in place; its index and new value are returned.
//
// A row with a missing taste or vote count restarts from zero votes.
func Rate(records []Record, restaurant, food string, rating float64) (int, Record, error) {
	restaurant = strings.TrimSpace(restaurant)
	food = strings.TrimSpace(food)

	var invalid []string
	if restaurant == "" {
		invalid = append(invalid, "restaurant")
	}
	if food == "" {
		invalid = append(invalid, "food")
	}
	if math.IsNaN(rating) || rating < MinRating || rating > MaxRating {
		invalid = append(invalid, "rating")
	}
	if len(invalid) > 0 {
		return -1, Record{}, &ValidationError{Fields: invalid}
	}

	idx := indexOf(records, restaurant, food)
	if idx < 0 {
		return -1, Record{}, eris.Wrapf(ErrNotFound, "no entry for %q at %q", food, restaurant)
	}

	r := &records[idx]
	oldAvg, oldVotes := 0.0, 0
	if r.Taste != nil && r.VotesCount != nil && !math.IsNaN(*r.Taste) && *r.VotesCount >= 0 {
		oldAvg, oldVotes = *r.Taste, *r.VotesCount
	}

	avg, votes := Fold(oldAvg, oldVotes, rating)
	r.Taste = Float(avg)
	r.VotesCount = Int(votes)
	return idx, *r, nil
}

// Fold merges one rating into a running average over votes ratings.
func Fold(avg float64, votes int, rating float64) (float64, int) {
	return (avg*float64(votes) + rating) / float64(votes+1), votes + 1
}

func indexOf(records []Record, restaurant, food string) int {
	for i := range records {
		if strings.EqualFold(strings.TrimSpace(records[i].Restaurant), restaurant) &&
			strings.EqualFold(strings.TrimSpace(records[i].Food), food) {
			return i
		}
	}
	return -1
}
