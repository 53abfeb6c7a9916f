package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggest(t *testing.T) {
	cat, err := Build([]Record{
		rec("ChopBar", "Waakye", 20, 8, 1),
		rec("ChopBar", "Waakye", 22, 7, 1),
		rec("SpotX", "Waakye Special", 35, 9, 1),
		rec("KFC", "Zinger Burger", 60, 7, 1),
		rec("Chop Chop", "Jollof", 30, 6, 1),
	})
	require.NoError(t, err)

	tests := []struct {
		name  string
		rest  string
		food  string
		limit int
		want  []Pair
	}{
		{
			name: "food only, duplicates collapsed",
			food: "waak",
			want: []Pair{{"ChopBar", "Waakye"}, {"SpotX", "Waakye Special"}},
		},
		{
			name: "both fields must match",
			rest: "chop",
			food: "waakye",
			want: []Pair{{"ChopBar", "Waakye"}},
		},
		{
			name:  "blank matches everything up to limit",
			limit: 2,
			want:  []Pair{{"ChopBar", "Waakye"}, {"SpotX", "Waakye Special"}},
		},
		{
			name: "restaurant only",
			rest: "CHOP",
			want: []Pair{{"ChopBar", "Waakye"}, {"Chop Chop", "Jollof"}},
		},
		{
			name: "no match",
			food: "pizza",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Suggest(cat, tt.rest, tt.food, tt.limit))
		})
	}
}

func TestSuggest_DefaultLimit(t *testing.T) {
	var records []Record
	for _, food := range []string{"Rice 1", "Rice 2", "Rice 3", "Rice 4", "Rice 5", "Rice 6", "Rice 7"} {
		records = append(records, rec("ChopBar", food, 10, 5, 1))
	}
	cat, err := Build(records)
	require.NoError(t, err)

	assert.Len(t, Suggest(cat, "", "rice", 0), DefaultSuggestLimit)
	assert.Nil(t, Suggest(nil, "", "", 0))
}
