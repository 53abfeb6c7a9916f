package source

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/elonfeng/tasteprice/pkg/catalog"
)

// Menu page layouts understood by MenuPages.
const (
	ParserPizarea   = "pizarea"
	ParserGhanaMenu = "ghanamenu"
	ParserQRMenu    = "qrmenu"
	ParserGeneric   = "generic"
)

// selectors locate the item blocks on a menu page and the fields inside each.
type selectors struct {
	item, name, price, description string
}

var layouts = map[string]selectors{
	ParserPizarea:   {item: "div.menu-item", name: "h4", price: "span.menu_price", description: "p"},
	ParserGhanaMenu: {item: "div.menu-listing", name: "span.name", price: "span.price", description: "span.description"},
	ParserQRMenu:    {item: "div.qm-menu-item", name: "h3", price: "div.qm-item-price", description: "div.qm-item-description"},
}

// MenuPage is a restaurant web page holding its menu.
type MenuPage struct {
	Name   string
	URL    string
	Parser string
}

// MenuPages scrapes dishes from restaurant menu web pages.
type MenuPages struct {
	fetcher  *Fetcher
	pages    []MenuPage
	location string
	filter   *Filter
	logger   *zap.Logger
}

// NewMenuPages creates a new menu page collector.
func NewMenuPages(fetcher *Fetcher, pages []MenuPage, location string, filter *Filter, logger *zap.Logger) *MenuPages {
	if location == "" {
		location = DefaultLocation
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MenuPages{fetcher: fetcher, pages: pages, location: location, filter: filter, logger: logger}
}

func (m *MenuPages) Name() SourceType { return SourceMenu }

func (m *MenuPages) Collect(ctx context.Context) ([]catalog.Record, error) {
	var all []catalog.Record
	for _, p := range m.pages {
		records, err := m.collectPage(ctx, p)
		if err != nil {
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
			m.logger.Warn("menu page failed", zap.String("page", p.Name), zap.String("url", p.URL), zap.Error(err))
			continue
		}
		all = append(all, records...)
	}
	return m.filter.Apply(all), nil
}

func (m *MenuPages) collectPage(ctx context.Context, p MenuPage) ([]catalog.Record, error) {
	resp, err := m.fetcher.Get(ctx, p.URL, "text/html")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "parse menu page %s", p.Name)
	}
	return m.parse(doc, p), nil
}

// parse extracts rows from doc using the page's layout. Unknown layouts
// use the generic scan.
func (m *MenuPages) parse(doc *goquery.Document, p MenuPage) []catalog.Record {
	sel, ok := layouts[strings.ToLower(p.Parser)]
	if !ok {
		return m.parseGeneric(doc, p)
	}

	var records []catalog.Record
	doc.Find(sel.item).Each(func(_ int, item *goquery.Selection) {
		name := text(item.Find(sel.name))
		if name == "" {
			return
		}
		records = append(records, m.record(p, name, text(item.Find(sel.price)), text(item.Find(sel.description))))
	})
	return records
}

// parseGeneric treats any heading or list item showing a cedi price as a
// dish line. The name is the text before the currency marker.
func (m *MenuPages) parseGeneric(doc *goquery.Document, p MenuPage) []catalog.Record {
	var records []catalog.Record
	doc.Find("h4, li").Each(func(_ int, s *goquery.Selection) {
		line := strings.Join(strings.Fields(s.Text()), " ")
		if !hasCurrency(line) {
			return
		}
		i := currencyIndex(line)
		name := strings.Trim(line[:i], " -:–|")
		if name == "" {
			name = line
		}
		records = append(records, m.record(p, name, line[i:], ""))
	})
	return records
}

func (m *MenuPages) record(p MenuPage, name, price, desc string) catalog.Record {
	return catalog.Record{
		Restaurant:  p.Name,
		Food:        name,
		Price:       pricePtr(price),
		Location:    m.location,
		Category:    catalog.DefaultCategory,
		Description: catalog.String(desc),
		SourceURL:   p.URL,
	}
}

func text(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.First().Text()), " ")
}
