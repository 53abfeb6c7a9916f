package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/elonfeng/tasteprice/pkg/catalog"
	"github.com/elonfeng/tasteprice/pkg/source"
)

// Scheduler runs periodic collection into the dish table and periodic cache
// refreshes so that edits made outside the process are picked up.
type Scheduler struct {
	service    *catalog.Service
	cache      *catalog.Cache
	sources    []source.Source
	collectInt time.Duration
	refreshInt time.Duration
	logger     *zap.Logger

	// collectMu keeps scheduled and on-demand rounds from overlapping.
	collectMu sync.Mutex
}

// New creates a new scheduler. Collected rows are written through service so
// imports never race with ratings or submissions.
func New(
	service *catalog.Service,
	cache *catalog.Cache,
	sources []source.Source,
	collectInt, refreshInt time.Duration,
	logger *zap.Logger,
) *Scheduler {
	if collectInt == 0 {
		collectInt = 6 * time.Hour
	}
	if refreshInt == 0 {
		refreshInt = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		service:    service,
		cache:      cache,
		sources:    sources,
		collectInt: collectInt,
		refreshInt: refreshInt,
		logger:     logger,
	}
}

// Run starts the scheduler loop. Blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	collectTicker := time.NewTicker(s.collectInt)
	refreshTicker := time.NewTicker(s.refreshInt)
	defer collectTicker.Stop()
	defer refreshTicker.Stop()

	if len(s.sources) > 0 {
		s.logger.Info("scheduler: initial collection")
		s.collect(ctx)
	}

	s.logger.Info("scheduler: running",
		zap.Int("sources", len(s.sources)),
		zap.Duration("collect_interval", s.collectInt),
		zap.Duration("refresh_interval", s.refreshInt),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler: stopped")
			return ctx.Err()
		case <-collectTicker.C:
			if len(s.sources) > 0 {
				s.collect(ctx)
			}
		case <-refreshTicker.C:
			s.cache.Invalidate()
		}
	}
}

func (s *Scheduler) collect(ctx context.Context) {
	if _, err := s.RunCollect(ctx); err != nil {
		s.logger.Error("scheduler: collection failed", zap.Error(err))
	}
}

// RunCollect runs every source once and merges the rows into the table.
// Per-source failures are reported in the result.
func (s *Scheduler) RunCollect(ctx context.Context) (*source.Result, error) {
	s.collectMu.Lock()
	defer s.collectMu.Unlock()

	res := source.CollectAll(ctx, s.sources, s.logger)
	stats, err := s.service.Import(ctx, res.Records)
	if err != nil {
		return res, err
	}

	s.logger.Info("scheduler: collection imported",
		zap.Int("collected", len(res.Records)),
		zap.Int("added", stats.Added),
		zap.Int("updated", stats.Updated),
		zap.Int("rows", stats.Rows),
		zap.Int("failed_sources", len(res.Errors)),
	)
	return res, nil
}
