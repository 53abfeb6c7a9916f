package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elonfeng/tasteprice/internal/store"
	"github.com/elonfeng/tasteprice/pkg/catalog"
	"github.com/elonfeng/tasteprice/pkg/fuzzy"
	"github.com/elonfeng/tasteprice/pkg/recommend"
	"github.com/elonfeng/tasteprice/pkg/source"
)

type namedSource source.SourceType

func (n namedSource) Name() source.SourceType { return source.SourceType(n) }

func (n namedSource) Collect(context.Context) ([]catalog.Record, error) { return nil, nil }

func TestSelectSources(t *testing.T) {
	all := []source.Source{namedSource(source.SourceChowdeck), namedSource(source.SourceFeed)}

	got, err := selectSources(all, nil)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = selectSources(all, []string{" FEED "})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, source.SourceFeed, got[0].Name())

	_, err = selectSources(all, []string{"menu"})
	assert.Error(t, err)
}

func TestPrintRecommendation(t *testing.T) {
	var buf bytes.Buffer
	res := &recommend.Result{
		Primary: "Waakye",
		Matches: []fuzzy.Match{{Name: "Waakye", Score: 100}, {Name: "Waakye Special", Score: 90}},
		Items: []recommend.Scored{
			{Entry: catalog.Entry{Restaurant: "Chop Bar", Food: "Waakye", Price: 20, Taste: catalog.Float(8), Votes: 5, Location: "Osu"}, UserScore: 0.9},
			{Entry: catalog.Entry{Restaurant: "Spot X", Food: "Waakye Special", Price: 35, Location: "Labadi"}, UserScore: 0.2},
		},
	}

	require.NoError(t, printRecommendation(&buf, res))
	out := buf.String()
	assert.Contains(t, out, "best match: Waakye (also: Waakye Special)")
	assert.Contains(t, out, "Chop Bar")
	assert.Contains(t, out, "8.00")
	assert.Contains(t, out, "n/a")
}

func TestPrintSuggestions_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printSuggestions(&buf, nil))
	assert.Equal(t, "no suggestions\n", buf.String())
}

func TestWriteError(t *testing.T) {
	err := writeError(&catalog.ValidationError{Fields: []string{"price", "location"}}, "x.csv")
	assert.Contains(t, err.Error(), "price, location")

	err = writeError(eris.Wrap(catalog.ErrNotFound, "no entry"), "x.csv")
	assert.Contains(t, err.Error(), "tasteprice submit")

	err = writeError(eris.Wrap(catalog.ErrDataUnavailable, "empty"), "x.csv")
	assert.Contains(t, err.Error(), "x.csv")

	other := errors.New("disk full")
	assert.Equal(t, other, writeError(other, "x.csv"))
}

func TestSubmitThenRate(t *testing.T) {
	dir := t.TempDir()
	tablePath := filepath.Join(dir, "dishes.csv")
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("table:\n  path: "+tablePath+"\nlog:\n  level: error\n"), 0o644))

	run := func(args ...string) error {
		cmd := rootCmd()
		cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
		return cmd.ExecuteContext(context.Background())
	}

	require.NoError(t, run("submit", "--restaurant", "chop bar", "--food", "waakye", "--price", "20", "--location", "osu", "--taste", "8"))
	require.NoError(t, run("rate", "Chop Bar", "Waakye", "6"))

	assert.Error(t, run("rate", "Chop Bar", "Fufu", "6"))
	assert.Error(t, run("rate", "Chop Bar", "Waakye", "eleven"))
	assert.Error(t, run("submit", "--restaurant", "Spot X", "--food", "Kenkey"))

	rows, err := store.NewCSV(tablePath).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Chop Bar", rows[0].Restaurant)
	assert.Equal(t, 7.0, *rows[0].Taste)
	assert.Equal(t, 2, *rows[0].VotesCount)
}
