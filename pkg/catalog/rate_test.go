package catalog

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRate_NthVote(t *testing.T) {
	records := []Record{rec("ChopBar", "Waakye", 20, 6.0, 3)}

	idx, updated, err := Rate(records, "ChopBar", "Waakye", 9)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 6.75, *updated.Taste)
	assert.Equal(t, 4, *updated.VotesCount)

	// the slice itself is mutated
	assert.Equal(t, 6.75, *records[0].Taste)
	assert.Equal(t, 4, *records[0].VotesCount)
}

func TestRate_FirstVoteOnUnratedRow(t *testing.T) {
	t.Run("zero votes", func(t *testing.T) {
		records := []Record{rec("ChopBar", "Waakye", 20, 0, 0)}
		_, updated, err := Rate(records, "ChopBar", "Waakye", 8)
		require.NoError(t, err)
		assert.Equal(t, 8.0, *updated.Taste)
		assert.Equal(t, 1, *updated.VotesCount)
	})

	t.Run("missing taste and votes", func(t *testing.T) {
		r := rec("ChopBar", "Waakye", 20, 0, 0)
		r.Taste, r.VotesCount = nil, nil
		_, updated, err := Rate([]Record{r}, "ChopBar", "Waakye", 8)
		require.NoError(t, err)
		assert.Equal(t, 8.0, *updated.Taste)
		assert.Equal(t, 1, *updated.VotesCount)
	})

	t.Run("missing votes resets taste", func(t *testing.T) {
		r := rec("ChopBar", "Waakye", 20, 4, 0)
		r.VotesCount = nil
		_, updated, err := Rate([]Record{r}, "ChopBar", "Waakye", 8)
		require.NoError(t, err)
		assert.Equal(t, 8.0, *updated.Taste)
		assert.Equal(t, 1, *updated.VotesCount)
	})
}

func TestRate_ScaleBoundaries(t *testing.T) {
	records := []Record{rec("ChopBar", "Waakye", 20, 5, 1)}

	_, updated, err := Rate(records, "ChopBar", "Waakye", 10)
	require.NoError(t, err)
	assert.Equal(t, 7.5, *updated.Taste)
	assert.Equal(t, 2, *updated.VotesCount)

	_, updated, err = Rate(records, "ChopBar", "Waakye", 1)
	require.NoError(t, err)
	assert.InDelta(t, 16.0/3.0, *updated.Taste, 1e-12)
	assert.Equal(t, 3, *updated.VotesCount)
}

func TestRate_RepeatedFoldMatchesMean(t *testing.T) {
	ratings := []float64{7, 3, 10, 1, 8, 6, 9, 2, 5, 4}
	records := []Record{rec("ChopBar", "Waakye", 20, 0, 0)}

	sum := 0.0
	for _, r := range ratings {
		_, _, err := Rate(records, "ChopBar", "Waakye", r)
		require.NoError(t, err)
		sum += r
	}
	assert.InDelta(t, sum/float64(len(ratings)), *records[0].Taste, 1e-12)
	assert.Equal(t, len(ratings), *records[0].VotesCount)
}

func TestRate_CaseInsensitiveFirstMatch(t *testing.T) {
	records := []Record{
		rec("SpotX", "Waakye", 30, 7, 2),
		rec("ChopBar", "Waakye", 20, 6, 3),
		rec("chopbar", "WAAKYE", 25, 4, 1),
	}

	idx, _, err := Rate(records, "  CHOPBAR ", "waakye", 9)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 6.75, *records[1].Taste)
	assert.Equal(t, 4.0, *records[2].Taste, "duplicate rows after the first are untouched")
	assert.Equal(t, 7.0, *records[0].Taste)
}

func TestRate_NotFound(t *testing.T) {
	records := []Record{rec("ChopBar", "Waakye", 20, 6, 3)}

	_, _, err := Rate(records, "ChopBar", "Waakye Special", 9)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, 6.0, *records[0].Taste)
}

func TestRate_InvalidInput(t *testing.T) {
	records := []Record{rec("ChopBar", "Waakye", 20, 6, 3)}

	for _, rating := range []float64{0, 0.99, 10.01, -3, math.NaN()} {
		_, _, err := Rate(records, "ChopBar", "Waakye", rating)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "rating %v", rating)
		assert.Equal(t, []string{"rating"}, verr.Fields)
	}

	_, _, err := Rate(records, " ", "", 0)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"restaurant", "food", "rating"}, verr.Fields)
}

func TestFold(t *testing.T) {
	avg, votes := Fold(6.0, 3, 9)
	assert.Equal(t, 6.75, avg)
	assert.Equal(t, 4, votes)

	avg, votes = Fold(0, 0, 8)
	assert.Equal(t, 8.0, avg)
	assert.Equal(t, 1, votes)
}
