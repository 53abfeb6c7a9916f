package source

import (
	"context"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/elonfeng/tasteprice/pkg/catalog"
)

// MenuFeed is a named RSS/Atom feed that publishes dishes.
type MenuFeed struct {
	Name string
	URL  string
}

// Feed collects dishes from RSS/Atom menu feeds. Each entry is one dish; the
// feed name is the restaurant.
type Feed struct {
	fetcher  *Fetcher
	parser   *gofeed.Parser
	feeds    []MenuFeed
	location string
	filter   *Filter
	logger   *zap.Logger
}

// NewFeed creates a new feed collector.
func NewFeed(fetcher *Fetcher, feeds []MenuFeed, location string, filter *Filter, logger *zap.Logger) *Feed {
	if location == "" {
		location = DefaultLocation
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{
		fetcher:  fetcher,
		parser:   gofeed.NewParser(),
		feeds:    feeds,
		location: location,
		filter:   filter,
		logger:   logger,
	}
}

func (f *Feed) Name() SourceType { return SourceFeed }

func (f *Feed) Collect(ctx context.Context) ([]catalog.Record, error) {
	var all []catalog.Record
	for _, feed := range f.feeds {
		records, err := f.collectFeed(ctx, feed)
		if err != nil {
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
			f.logger.Warn("menu feed failed", zap.String("feed", feed.Name), zap.Error(err))
			continue
		}
		all = append(all, records...)
	}
	return f.filter.Apply(all), nil
}

func (f *Feed) collectFeed(ctx context.Context, feed MenuFeed) ([]catalog.Record, error) {
	resp, err := f.fetcher.Get(ctx, feed.URL, "application/rss+xml, application/atom+xml, application/xml")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	parsed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "parse feed %s", feed.Name)
	}

	restaurant := feed.Name
	if restaurant == "" {
		restaurant = strings.TrimSpace(parsed.Title)
	}

	records := make([]catalog.Record, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		price, category := entryPrice(entry)
		if category == "" {
			category = catalog.DefaultCategory
		}
		link := entry.Link
		if link == "" {
			link = feed.URL
		}
		records = append(records, catalog.Record{
			Restaurant:  restaurant,
			Food:        strings.TrimSpace(entry.Title),
			Price:       price,
			Location:    f.location,
			Category:    category,
			Description: catalog.String(truncate(stripPrice(entry.Description), 500)),
			SourceURL:   link,
		})
	}
	return records, nil
}

// entryPrice reads the price from the description, falling back to the first
// category that holds one. The first category without a price is returned
// as the dish category.
func entryPrice(entry *gofeed.Item) (*float64, string) {
	price := pricePtr(entry.Description)
	category := ""
	for _, c := range entry.Categories {
		c = strings.TrimSpace(c)
		if hasCurrency(c) || pricePtr(c) != nil {
			if price == nil {
				price = pricePtr(c)
			}
			continue
		}
		if category == "" {
			category = c
		}
	}
	return price, category
}

// stripPrice drops a leading "GHS 20 -" style price from feed descriptions.
func stripPrice(s string) string {
	s = strings.TrimSpace(s)
	if !hasCurrency(s) {
		return s
	}
	if loc := priceRe.FindStringIndex(s); loc != nil && loc[0] <= 5 {
		s = strings.TrimLeft(s[loc[1]:], " -:–|")
	}
	return strings.TrimSpace(s)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
