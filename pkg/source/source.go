package source

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/elonfeng/tasteprice/pkg/catalog"
)

// SourceType identifies which collector a row came from.
type SourceType string

const (
	SourceChowdeck SourceType = "chowdeck"
	SourceMenu     SourceType = "menu"
	SourceFeed     SourceType = "feed"
)

// DefaultLocation is used for scraped rows when no location is configured.
const DefaultLocation = "Accra"

// Source is the interface every collector must implement.
type Source interface {
	Name() SourceType
	Collect(ctx context.Context) ([]catalog.Record, error)
}

// AllSourceTypes returns all known source types.
func AllSourceTypes() []SourceType {
	return []SourceType{
		SourceChowdeck,
		SourceMenu,
		SourceFeed,
	}
}

// Fetcher issues GET requests with a per-host rate limit. It is shared by
// all collectors so that two sources hitting one host are throttled together.
type Fetcher struct {
	client    *http.Client
	userAgent string
	rps       rate.Limit
	burst     int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewFetcher creates a fetcher allowing requestsPerSecond to each host.
// A non-positive rate disables limiting.
func NewFetcher(requestsPerSecond float64) *Fetcher {
	rps := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		rps = rate.Inf
	}
	return &Fetcher{
		client:    &http.Client{Timeout: 30 * time.Second},
		userAgent: "tasteprice/1.0",
		rps:       rps,
		burst:     1,
		limiters:  make(map[string]*rate.Limiter),
	}
}

func (f *Fetcher) limiterFor(rawURL string) *rate.Limiter {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.limiters[host]
	if !ok {
		lim = rate.NewLimiter(f.rps, f.burst)
		f.limiters[host] = lim
	}
	return lim
}

// Get fetches rawURL and returns the response when the status is 200.
// The caller closes the body.
func (f *Fetcher) Get(ctx context.Context, rawURL, accept string) (*http.Response, error) {
	if err := f.limiterFor(rawURL).Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "create request %s", rawURL)
	}
	req.Header.Set("User-Agent", f.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch %s", rawURL)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, eris.Errorf("%s returned status %d", rawURL, resp.StatusCode)
	}
	return resp, nil
}
