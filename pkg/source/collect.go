package source

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/elonfeng/tasteprice/pkg/catalog"
)

// Result is the outcome of one collection round.
type Result struct {
	Records []catalog.Record      `json:"-"`
	Counts  map[SourceType]int    `json:"collected"`
	Errors  map[SourceType]string `json:"errors,omitempty"`
}

// CollectAll runs every source concurrently. A failing source is logged and
// recorded in Result.Errors; rows from the others are still returned, grouped
// in the order the sources were given. A nil logger disables logging.
func CollectAll(ctx context.Context, sources []Source, logger *zap.Logger) *Result {
	if logger == nil {
		logger = zap.NewNop()
	}
	perSource := make([][]catalog.Record, len(sources))
	res := &Result{
		Counts: make(map[SourceType]int, len(sources)),
		Errors: make(map[SourceType]string),
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			start := time.Now()
			records, err := src.Collect(gctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Errors[src.Name()] = err.Error()
				logger.Warn("source failed", zap.String("source", string(src.Name())), zap.Error(err))
			}
			perSource[i] = records
			res.Counts[src.Name()] += len(records)
			logger.Info("source collected",
				zap.String("source", string(src.Name())),
				zap.Int("rows", len(records)),
				zap.Duration("took", time.Since(start)),
			)
			return nil
		})
	}
	_ = g.Wait()

	for _, records := range perSource {
		res.Records = append(res.Records, records...)
	}
	return res
}
