package catalog

import (
	"context"
	"errors"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ChangeKind identifies the write that produced a Change.
type ChangeKind string

const (
	ChangeRating     ChangeKind = "rating"
	ChangeSubmission ChangeKind = "submission"
)

// Change describes a successful write to the table.
type Change struct {
	Kind   ChangeKind `json:"kind"`
	Record Record     `json:"record"`
	Rating float64    `json:"rating,omitempty"`
}

// Service applies writes to the backing table. Every write reloads the table
// from storage, applies a single mutation, saves the whole table back and
// invalidates the cache.
type Service struct {
	table    Table
	cache    *Cache
	logger   *zap.Logger
	onChange func(ctx context.Context, c Change)

	mu sync.Mutex
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithOnChange registers a hook called after each successful write.
func WithOnChange(fn func(ctx context.Context, c Change)) ServiceOption {
	return func(s *Service) { s.onChange = fn }
}

// NewService creates a write service. cache may be nil.
func NewService(table Table, cache *Cache, logger *zap.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{table: table, cache: cache, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RateDish folds a new taste rating into the first matching row.
func (s *Service) RateDish(ctx context.Context, restaurant, food string, rating float64) (Record, error) {
	rec, err := s.rate(ctx, restaurant, food, rating)
	if err != nil {
		return Record{}, err
	}
	s.notify(ctx, Change{Kind: ChangeRating, Record: rec, Rating: rating})
	return rec, nil
}

func (s *Service) rate(ctx context.Context, restaurant, food string, rating float64) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.table.Load(ctx)
	if err != nil {
		return Record{}, eris.Wrap(err, "catalog: reload table for rating")
	}

	idx, rec, err := Rate(records, restaurant, food, rating)
	if err != nil {
		return Record{}, err
	}

	if err := s.table.Save(ctx, records); err != nil {
		return Record{}, eris.Wrap(err, "catalog: save rating")
	}
	s.invalidate()

	s.logger.Info("rating recorded",
		zap.String("restaurant", rec.Restaurant),
		zap.String("food", rec.Food),
		zap.Int("row", idx),
		zap.Float64("taste", *rec.Taste),
		zap.Int("votes", *rec.VotesCount),
	)
	return rec, nil
}

// SubmitEntry appends a new dish. A missing table is started empty.
func (s *Service) SubmitEntry(ctx context.Context, sub Submission) (Record, error) {
	rec, err := s.submit(ctx, sub)
	if err != nil {
		return Record{}, err
	}
	s.notify(ctx, Change{Kind: ChangeSubmission, Record: rec})
	return rec, nil
}

func (s *Service) submit(ctx context.Context, sub Submission) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.table.Load(ctx)
	if err != nil && !errors.Is(err, ErrDataUnavailable) {
		return Record{}, eris.Wrap(err, "catalog: reload table for submission")
	}

	records, rec, err := Submit(records, sub)
	if err != nil {
		return Record{}, err
	}

	if err := s.table.Save(ctx, records); err != nil {
		return Record{}, eris.Wrap(err, "catalog: save submission")
	}
	s.invalidate()

	s.logger.Info("dish submitted",
		zap.String("restaurant", rec.Restaurant),
		zap.String("food", rec.Food),
		zap.Int("rows", len(records)),
	)
	return rec, nil
}

// Import merges collected rows into the table under the same lock as the
// other writes. The table is saved, and the cache dropped, only when the merge
// changed something. A missing table is created. Imports do not fire the
// change hook.
func (s *Service) Import(ctx context.Context, records []Record) (ImportStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.table.Load(ctx)
	if err != nil && !errors.Is(err, ErrDataUnavailable) {
		return ImportStats{}, eris.Wrap(err, "catalog: reload table for import")
	}

	merged, stats := Merge(existing, records)
	if !stats.Changed() {
		return stats, nil
	}

	if err := s.table.Save(ctx, merged); err != nil {
		return ImportStats{}, eris.Wrap(err, "catalog: save imported rows")
	}
	s.invalidate()

	s.logger.Info("rows imported",
		zap.Int("added", stats.Added),
		zap.Int("updated", stats.Updated),
		zap.Int("rows", stats.Rows),
	)
	return stats, nil
}

func (s *Service) invalidate() {
	if s.cache != nil {
		s.cache.Invalidate()
	}
}

// notify runs the change hook. It is called after the write lock is
// released so a slow hook never holds up other writes.
func (s *Service) notify(ctx context.Context, c Change) {
	if s.onChange != nil {
		s.onChange(ctx, c)
	}
}
