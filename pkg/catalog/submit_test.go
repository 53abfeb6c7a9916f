package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit_Canonicalizes(t *testing.T) {
	records := []Record{rec("ChopBar", "Waakye", 20, 6, 3)}

	out, added, err := Submit(records, Submission{
		Restaurant:  "  auntie ama's spot ",
		Food:        "fried yam & kontomire",
		Price:       Float(25),
		Taste:       Float(8),
		Location:    " osu ",
		PortionSize: "Large",
		Category:    "  ",
		Description: "   ",
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, added, out[1])

	assert.Equal(t, "Auntie Ama's Spot", added.Restaurant)
	assert.Equal(t, "Fried Yam & Kontomire", added.Food)
	assert.Equal(t, "Osu", added.Location)
	assert.Equal(t, DefaultCategory, added.Category)
	assert.Nil(t, added.Description)
	assert.Equal(t, UserSource, added.SourceURL)
	assert.Equal(t, 1, *added.VotesCount)
	assert.Equal(t, 25.0, *added.Price)
	assert.Equal(t, 8.0, *added.Taste)
}

func TestSubmit_KeepsDescriptionAndCategory(t *testing.T) {
	_, added, err := Submit(nil, Submission{
		Restaurant:  "KFC",
		Food:        "zinger box",
		Price:       Float(0),
		Location:    "Osu",
		Category:    "street food",
		Description: " crispy, spicy ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Street Food", added.Category)
	require.NotNil(t, added.Description)
	assert.Equal(t, "crispy, spicy", *added.Description)
	assert.Nil(t, added.Taste)
	assert.Equal(t, 0.0, *added.Price)
}

func TestSubmit_ListsEveryMissingField(t *testing.T) {
	records := []Record{rec("ChopBar", "Waakye", 20, 6, 3)}

	out, _, err := Submit(records, Submission{
		Restaurant: "   ",
		Food:       "Waakye",
		Location:   "Osu",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"restaurant", "price"}, verr.Fields)
	assert.Len(t, out, 1, "nothing appended on failure")

	_, _, err = Submit(nil, Submission{})
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"restaurant", "food", "price", "location"}, verr.Fields)
}

func TestSubmit_RejectsOutOfRangeValues(t *testing.T) {
	_, _, err := Submit(nil, Submission{
		Restaurant: "ChopBar",
		Food:       "Waakye",
		Price:      Float(-1),
		Taste:      Float(11),
		Location:   "Osu",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"price", "taste"}, verr.Fields)
	assert.True(t, verr.Has("taste"))
	assert.False(t, verr.Has("food"))
}

func TestSubmit_AllowsDuplicates(t *testing.T) {
	records := []Record{rec("Chopbar", "Waakye", 20, 6, 3)}
	out, _, err := Submit(records, Submission{
		Restaurant: "chopbar",
		Food:       "waakye",
		Price:      Float(22),
		Location:   "Osu",
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, out[0].Restaurant, out[1].Restaurant)
	assert.Equal(t, out[0].Food, out[1].Food)
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Jollof Rice", TitleCase("  JOLLOF rice "))
	assert.Equal(t, "", TitleCase("   "))
}
