package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elonfeng/tasteprice/pkg/catalog"
)

func sampleRecords() []catalog.Record {
	return []catalog.Record{
		{
			Restaurant:  "Chop Bar",
			Food:        "Waakye",
			Price:       catalog.Float(20),
			Taste:       catalog.Float(7.5),
			Location:    "Osu",
			PortionSize: "Medium",
			Category:    "Rice",
			Description: catalog.String("with gari, \"shito\" and egg"),
			SourceURL:   "https://example.com/menu",
			VotesCount:  catalog.Int(4),
		},
		{
			Restaurant: "Spot X",
			Food:       "Kenkey",
			Price:      catalog.Float(12.25),
			Location:   "Labadi",
			Category:   catalog.DefaultCategory,
			SourceURL:  catalog.UserSource,
		},
	}
}

func TestCSVTable_RoundTrip(t *testing.T) {
	ctx := context.Background()
	table := NewCSV(filepath.Join(t.TempDir(), "dishes.csv"))

	require.NoError(t, table.Save(ctx, sampleRecords()))

	got, err := table.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), got)
}

func TestCSVTable_MissingAndEmpty(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	_, err := NewCSV(filepath.Join(dir, "nope.csv")).Load(ctx)
	assert.True(t, errors.Is(err, catalog.ErrDataUnavailable))

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = NewCSV(empty).Load(ctx)
	assert.True(t, errors.Is(err, catalog.ErrDataUnavailable))

	headerOnly := filepath.Join(dir, "header.csv")
	require.NoError(t, os.WriteFile(headerOnly, []byte("restaurant,food,price\n"), 0o644))
	_, err = NewCSV(headerOnly).Load(ctx)
	assert.True(t, errors.Is(err, catalog.ErrDataUnavailable))
}

func TestCSVTable_LenientCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dishes.csv")
	content := "Food,Restaurant,Price,Taste,votes_count,extra\n" +
		"Waakye,Chop Bar,GHS 20,8,5.0,x\n" +
		"Banku, Auntie's ,35.5,,,y\n" +
		"Kelewele,Corner\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := NewCSV(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "Chop Bar", got[0].Restaurant)
	assert.Nil(t, got[0].Price, "non-numeric price loads as nil")
	assert.Equal(t, 8.0, *got[0].Taste)
	assert.Equal(t, 5, *got[0].VotesCount)

	assert.Equal(t, "Auntie's", got[1].Restaurant)
	assert.Equal(t, 35.5, *got[1].Price)
	assert.Nil(t, got[1].Taste)
	assert.Nil(t, got[1].VotesCount)

	assert.Equal(t, "Kelewele", got[2].Food)
	assert.Nil(t, got[2].Price)
	assert.Nil(t, got[2].Description)
}

func TestCSVTable_SaveReplacesFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	table := NewCSV(filepath.Join(dir, "dishes.csv"))

	require.NoError(t, table.Save(ctx, sampleRecords()))
	require.NoError(t, table.Save(ctx, sampleRecords()[:1]))

	got, err := table.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := New(filepath.Join(t.TempDir(), "dishes.db"))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Load(ctx)
	assert.True(t, errors.Is(err, catalog.ErrDataUnavailable))

	require.NoError(t, s.Save(ctx, sampleRecords()))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), got)

	require.NoError(t, s.Save(ctx, sampleRecords()[1:]))
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOpen_ByExtension(t *testing.T) {
	dir := t.TempDir()

	csvStore, err := Open(filepath.Join(dir, "dishes.CSV"))
	require.NoError(t, err)
	assert.IsType(t, &CSVTable{}, csvStore)

	dbStore, err := Open(filepath.Join(dir, "dishes.db"))
	require.NoError(t, err)
	defer dbStore.Close()
	assert.IsType(t, &SQLiteStore{}, dbStore)
}

func TestCSVTable_ServiceImportMergesAndCreates(t *testing.T) {
	ctx := context.Background()
	table := NewCSV(filepath.Join(t.TempDir(), "dishes.csv"))
	svc := catalog.NewService(table, nil, nil)

	stats, err := svc.Import(ctx, sampleRecords()[:1])
	require.NoError(t, err)
	assert.Equal(t, catalog.ImportStats{Added: 1, Rows: 1}, stats)

	stats, err = svc.Import(ctx, sampleRecords())
	require.NoError(t, err)
	assert.Equal(t, catalog.ImportStats{Added: 1, Rows: 2}, stats)

	got, err := table.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), got)
}

func TestCSVTable_ServiceImportRefreshesPriceKeepsRatings(t *testing.T) {
	ctx := context.Background()
	table := NewCSV(filepath.Join(t.TempDir(), "dishes.csv"))
	require.NoError(t, table.Save(ctx, sampleRecords()))
	svc := catalog.NewService(table, nil, nil)

	stats, err := svc.Import(ctx, []catalog.Record{
		{Restaurant: "chop bar", Food: "WAAKYE", Price: catalog.Float(22), SourceURL: "https://example.com/menu"},
		{Restaurant: "Spot X", Food: "Kenkey", Price: catalog.Float(12.25)},
		{Restaurant: "", Food: "Orphan", Price: catalog.Float(1)},
		{Restaurant: "New Place", Food: "Fufu", Price: catalog.Float(40)},
		{Restaurant: "new place", Food: "fufu", Price: catalog.Float(41)},
	})
	require.NoError(t, err)
	assert.Equal(t, catalog.ImportStats{Added: 1, Updated: 2, Rows: 3}, stats)

	got, err := table.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 22.0, *got[0].Price)
	assert.Equal(t, 7.5, *got[0].Taste)
	assert.Equal(t, 4, *got[0].VotesCount)
	assert.Equal(t, 41.0, *got[2].Price, "later duplicates in one batch refresh the earlier one")

	stats, err = svc.Import(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, catalog.ImportStats{Rows: 3}, stats)
}

func TestCSVTable_WorksWithCatalog(t *testing.T) {
	ctx := context.Background()
	table := NewCSV(filepath.Join(t.TempDir(), "dishes.csv"))
	require.NoError(t, table.Save(ctx, sampleRecords()))

	cat, err := catalog.Load(ctx, table)
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())
	assert.Equal(t, []string{"Waakye", "Kenkey"}, cat.Foods())
}
