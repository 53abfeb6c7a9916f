package source

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/elonfeng/tasteprice/pkg/catalog"
)

// Vendor is a named vendor menu endpoint.
type Vendor struct {
	Name string
	URL  string
}

// Chowdeck collects dishes from delivery-platform vendor menu APIs.
type Chowdeck struct {
	fetcher  *Fetcher
	vendors  []Vendor
	location string
	filter   *Filter
	logger   *zap.Logger
}

// NewChowdeck creates a new vendor menu collector. A nil logger disables logging.
func NewChowdeck(fetcher *Fetcher, vendors []Vendor, location string, filter *Filter, logger *zap.Logger) *Chowdeck {
	if location == "" {
		location = DefaultLocation
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chowdeck{fetcher: fetcher, vendors: vendors, location: location, filter: filter, logger: logger}
}

func (c *Chowdeck) Name() SourceType { return SourceChowdeck }

// Collect fetches every vendor. A failing vendor is logged and skipped.
func (c *Chowdeck) Collect(ctx context.Context) ([]catalog.Record, error) {
	var all []catalog.Record
	for _, v := range c.vendors {
		records, err := c.collectVendor(ctx, v)
		if err != nil {
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
			c.logger.Warn("chowdeck vendor failed", zap.String("vendor", v.Name), zap.Error(err))
			continue
		}
		all = append(all, records...)
	}
	return c.filter.Apply(all), nil
}

type menuResponse struct {
	Data []menuItem `json:"data"`
}

type menuItem struct {
	Name        flexText `json:"name"`
	Price       flexText `json:"price"`
	Description flexText `json:"description"`
	Category    flexText `json:"category"`
}

func (c *Chowdeck) collectVendor(ctx context.Context, v Vendor) ([]catalog.Record, error) {
	resp, err := c.fetcher.Get(ctx, v.URL, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var menu menuResponse
	if err := json.NewDecoder(resp.Body).Decode(&menu); err != nil {
		return nil, eris.Wrapf(err, "decode menu %s", v.Name)
	}

	records := make([]catalog.Record, 0, len(menu.Data))
	for _, item := range menu.Data {
		category := string(item.Category)
		if category == "" {
			category = catalog.DefaultCategory
		}
		records = append(records, catalog.Record{
			Restaurant:  v.Name,
			Food:        string(item.Name),
			Price:       pricePtr(string(item.Price)),
			Location:    c.location,
			Category:    category,
			Description: catalog.String(string(item.Description)),
			SourceURL:   v.URL,
		})
	}
	return records, nil
}

// flexText decodes a JSON string, number or {"name": ...} object to text.
// null and other shapes decode to "".
type flexText string

func (t *flexText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = flexText(strings.TrimSpace(s))
	case '{':
		var obj struct {
			Name flexText `json:"name"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*t = obj.Name
	case 'n', 't', 'f', '[':
		*t = ""
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*t = flexText(n.String())
	}
	return nil
}
