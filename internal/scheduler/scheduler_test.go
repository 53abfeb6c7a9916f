package scheduler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elonfeng/tasteprice/internal/store"
	"github.com/elonfeng/tasteprice/pkg/catalog"
	"github.com/elonfeng/tasteprice/pkg/source"
)

type stubSource struct {
	name    source.SourceType
	records []catalog.Record
	err     error
}

func (s stubSource) Name() source.SourceType { return s.name }

func (s stubSource) Collect(context.Context) ([]catalog.Record, error) {
	return s.records, s.err
}

func dish(restaurant, food string, price float64) catalog.Record {
	return catalog.Record{Restaurant: restaurant, Food: food, Price: catalog.Float(price), Location: "Accra"}
}

func TestRunCollect_ImportsAndInvalidates(t *testing.T) {
	ctx := context.Background()
	table := store.NewCSV(filepath.Join(t.TempDir(), "dishes.csv"))
	require.NoError(t, table.Save(ctx, []catalog.Record{dish("Chop Bar", "Waakye", 20)}))

	cache := catalog.NewCache(table, nil)
	before, err := cache.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, before.Len())

	s := New(catalog.NewService(table, cache, nil), cache, []source.Source{
		stubSource{name: source.SourceChowdeck, records: []catalog.Record{dish("KFC", "Streetwise 2", 45)}},
		stubSource{name: source.SourceFeed, err: errors.New("feed down")},
	}, time.Hour, time.Hour, nil)

	res, err := s.RunCollect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Counts[source.SourceChowdeck])
	assert.Equal(t, "feed down", res.Errors[source.SourceFeed])

	assert.Nil(t, cache.Snapshot(), "import invalidates the cache")
	after, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Waakye", "Streetwise 2"}, after.Foods())

	_, err = s.RunCollect(ctx)
	require.NoError(t, err)
	assert.NotNil(t, cache.Snapshot(), "an import with no changes keeps the cache")
	rows, err := table.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 2, "repeated collection does not duplicate rows")
}

func TestRun_RefreshesUntilCancelled(t *testing.T) {
	ctx := context.Background()
	table := store.NewCSV(filepath.Join(t.TempDir(), "dishes.csv"))
	require.NoError(t, table.Save(ctx, []catalog.Record{dish("Chop Bar", "Waakye", 20)}))
	cache := catalog.NewCache(table, nil)
	_, err := cache.Get(ctx)
	require.NoError(t, err)

	s := New(catalog.NewService(table, cache, nil), cache, nil, time.Hour, 10*time.Millisecond, nil)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- s.Run(runCtx) }()

	assert.Eventually(t, func() bool { return cache.Snapshot() == nil }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestRunCollect_KeepsConcurrentRatings(t *testing.T) {
	ctx := context.Background()
	table := store.NewCSV(filepath.Join(t.TempDir(), "dishes.csv"))
	seed := dish("Chop Bar", "Waakye", 20)
	seed.Taste, seed.VotesCount = catalog.Float(6), catalog.Int(3)
	require.NoError(t, table.Save(ctx, []catalog.Record{seed}))

	cache := catalog.NewCache(table, nil)
	svc := catalog.NewService(table, cache, nil)

	const rounds = 5
	var wg sync.WaitGroup
	for i := range rounds {
		s := New(svc, cache, []source.Source{
			stubSource{name: source.SourceMenu, records: []catalog.Record{dish("Spot X", fmt.Sprintf("Dish %d", i), 30)}},
		}, time.Hour, time.Hour, nil)

		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.RunCollect(ctx)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := svc.RateDish(ctx, "Chop Bar", "Waakye", 9)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rows, err := table.Load(ctx)
	require.NoError(t, err)
	require.Len(t, rows, rounds+1)
	assert.Equal(t, 3+rounds, *rows[0].VotesCount)
}
