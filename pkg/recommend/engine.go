// Package recommend resolves dish queries against the catalog and ranks the
// matching rows by price and taste.
package recommend

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/elonfeng/tasteprice/pkg/catalog"
	"github.com/elonfeng/tasteprice/pkg/fuzzy"
)

const (
	DefaultTopK      = 5
	DefaultCheapBias = 0.5
)

// ErrNoMatch means a query found nothing to recommend, either because no dish
// name was close enough or because no row contained a matched name.
var ErrNoMatch = eris.New("recommend: no match")

// Options holds the engine defaults applied to queries that leave a field unset.
type Options struct {
	TopK      int
	Cutoff    int
	Limit     int
	CheapBias float64
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		TopK:      DefaultTopK,
		Cutoff:    fuzzy.DefaultCutoff,
		Limit:     fuzzy.DefaultLimit,
		CheapBias: DefaultCheapBias,
	}
}

// Query is a recommendation request. Zero values fall back to the engine
// options; CheapBias is a pointer so that 0 (pure taste) can be requested.
type Query struct {
	Text      string
	CheapBias *float64
	TopK      int
	Cutoff    *int
}

// Result is a ranked recommendation.
type Result struct {
	Primary string        `json:"match"`
	Matches []fuzzy.Match `json:"matches"`
	Items   []Scored      `json:"data"`
}

// Engine serves recommendations from a cached catalog snapshot.
type Engine struct {
	cache  *catalog.Cache
	opts   Options
	logger *zap.Logger
}

// NewEngine creates an engine. Invalid option values are replaced by defaults.
func NewEngine(cache *catalog.Cache, opts Options, logger *zap.Logger) *Engine {
	def := DefaultOptions()
	if opts.TopK <= 0 {
		opts.TopK = def.TopK
	}
	if opts.Cutoff < 0 || opts.Cutoff > 100 {
		opts.Cutoff = def.Cutoff
	}
	if opts.Limit <= 0 {
		opts.Limit = def.Limit
	}
	if opts.CheapBias < 0 || opts.CheapBias > 1 {
		opts.CheapBias = def.CheapBias
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cache: cache, opts: opts, logger: logger}
}

// Options returns the engine defaults.
func (e *Engine) Options() Options {
	return e.opts
}

// Recommend resolves q.Text to catalog dish names, gathers every row that
// contains one of them and returns the top rows by user score.
func (e *Engine) Recommend(ctx context.Context, q Query) (*Result, error) {
	cat, err := e.cache.Get(ctx)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, eris.Wrap(ErrNoMatch, "empty query")
	}

	bias := e.opts.CheapBias
	if q.CheapBias != nil {
		bias = *q.CheapBias
	}
	topK := e.opts.TopK
	if q.TopK > 0 {
		topK = q.TopK
	}
	cutoff := e.opts.Cutoff
	if q.Cutoff != nil {
		cutoff = *q.Cutoff
	}

	matches := Resolve(cat, text, cutoff, e.opts.Limit)
	if len(matches) == 0 {
		e.logger.Debug("no fuzzy match", zap.String("query", text), zap.Int("cutoff", cutoff))
		return nil, eris.Wrapf(ErrNoMatch, "no close matches for %q", text)
	}

	names := fuzzy.Names(matches)
	candidates := Aggregate(cat, names)
	if len(candidates) == 0 {
		e.logger.Debug("no candidates", zap.String("query", text), zap.Strings("matches", names))
		return nil, eris.Wrapf(ErrNoMatch, "no dishes containing any of %v", names)
	}

	items := Score(candidates, bias, topK)
	e.logger.Debug("recommendation served",
		zap.String("query", text),
		zap.String("primary", names[0]),
		zap.Int("matches", len(matches)),
		zap.Int("candidates", len(candidates)),
		zap.Int("returned", len(items)),
	)

	return &Result{
		Primary: names[0],
		Matches: matches,
		Items:   items,
	}, nil
}

// Suggest returns autocomplete pairs from the cached catalog.
func (e *Engine) Suggest(ctx context.Context, partialRestaurant, partialFood string, limit int) ([]catalog.Pair, error) {
	cat, err := e.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Suggest(cat, partialRestaurant, partialFood, limit), nil
}
