package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "waakye special", Normalize("  Waakye   Special! "))
	assert.Equal(t, "fried yam kontomire", Normalize("Fried Yam & Kontomire"))
	assert.Equal(t, "9 piece bucket", Normalize("(9-Piece) Bucket"))
	assert.Equal(t, "", Normalize(" -- "))
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 100.0, Ratio("waakye", "waakye"))
	assert.Equal(t, 75.0, Ratio("abcd", "abce"))
	assert.Equal(t, 0.0, Ratio("abc", "xyz"))
	assert.InDelta(t, 90.909, Ratio("wakye", "waakye"), 0.001)
}

func TestPartialRatio(t *testing.T) {
	assert.Equal(t, 100.0, PartialRatio("jollof", "jollof rice"))
	assert.Equal(t, 80.0, PartialRatio("wakye", "waakye special"))
	assert.Equal(t, 0.0, PartialRatio("", "rice"))
}

func TestTokenRatios(t *testing.T) {
	assert.Equal(t, 100.0, TokenSortRatio("rice jollof", "jollof rice"))
	assert.Equal(t, 100.0, TokenSetRatio("jollof", "jollof rice"))
	assert.Equal(t, 100.0, PartialTokenRatio("spicy waakye", "waakye special"))
	assert.Less(t, TokenSetRatio("kenkey fish", "banku tilapia"), 50.0)
}

func TestWRatio(t *testing.T) {
	assert.InDelta(t, 90.909, WRatio("wakye", "Waakye"), 0.001)
	assert.InDelta(t, 72.0, WRatio("wakye", "Waakye Special"), 0.001)
	assert.Equal(t, 100.0, WRatio("JOLLOF", "jollof"))
	assert.Equal(t, 75.0, WRatio("abcd", "abce"))
	assert.Equal(t, 0.0, WRatio("", "jollof"))
	assert.Equal(t, 0.0, WRatio("jollof", "!!"))
}

func TestExtract_OrderAndCutoff(t *testing.T) {
	choices := []string{"Waakye Special", "Jollof Rice", "Waakye", "Kenkey", "Waakye"}

	matches := Extract("wakye", choices, DefaultCutoff, DefaultLimit)
	require.Len(t, matches, 2)
	assert.Equal(t, []string{"Waakye", "Waakye Special"}, Names(matches))
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestExtract_CutoffBoundaryIsInclusive(t *testing.T) {
	choices := []string{"abce"}

	assert.Len(t, Extract("abcd", choices, 75, 10), 1, "score equal to cutoff is kept")
	assert.Empty(t, Extract("abcd", choices, 76, 10), "score below cutoff is dropped")
}

func TestExtract_NoMatch(t *testing.T) {
	assert.Empty(t, Extract("pizza", []string{"Waakye", "Kenkey"}, DefaultCutoff, DefaultLimit))
	assert.Empty(t, Extract("", []string{"Waakye"}, 0, DefaultLimit))
}

func TestExtract_TieBreakByName(t *testing.T) {
	forward := Extract("abc", []string{"abe", "abd"}, 50, 10)
	reverse := Extract("abc", []string{"abd", "abe"}, 50, 10)

	require.Len(t, forward, 2)
	assert.Equal(t, forward[0].Score, forward[1].Score)
	assert.Equal(t, []string{"abd", "abe"}, Names(forward))
	assert.Equal(t, forward, reverse)
}

func TestExtract_LimitAndClamp(t *testing.T) {
	choices := []string{"rice 1", "rice 2", "rice 3", "rice 4"}

	assert.Len(t, Extract("rice", choices, -10, 2), 2)
	assert.Len(t, Extract("rice", choices, 0, 0), 4)
	assert.Empty(t, Extract("rice", choices, 500, 10))
}
