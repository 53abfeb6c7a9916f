// Package alert announces catalog writes to chat and webhook destinations.
package alert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/elonfeng/tasteprice/pkg/catalog"
)

// Notification is the data sent to alert destinations.
type Notification struct {
	Kind       catalog.ChangeKind `json:"kind"`
	Title      string             `json:"title"`
	Body       string             `json:"body"`
	Restaurant string             `json:"restaurant"`
	Food       string             `json:"food"`
	Price      *float64           `json:"price"`
	Taste      *float64           `json:"taste"`
	Votes      int                `json:"votes_count"`
	Rating     float64            `json:"rating,omitempty"`
	URL        string             `json:"url,omitempty"`
	At         time.Time          `json:"at"`
}

// FromChange describes a committed write.
func FromChange(c catalog.Change) *Notification {
	r := c.Record
	n := &Notification{
		Kind:       c.Kind,
		Restaurant: r.Restaurant,
		Food:       r.Food,
		Price:      r.Price,
		Taste:      r.Taste,
		Rating:     c.Rating,
		At:         time.Now().UTC(),
	}
	if r.VotesCount != nil {
		n.Votes = *r.VotesCount
	}
	if r.SourceURL != "" && r.SourceURL != catalog.UserSource {
		n.URL = r.SourceURL
	}

	switch c.Kind {
	case catalog.ChangeRating:
		n.Title = fmt.Sprintf("New rating for %s at %s", r.Food, r.Restaurant)
		n.Body = fmt.Sprintf("Rated %s. Average taste is now %s over %d votes.",
			formatNum(&c.Rating), formatNum(r.Taste), n.Votes)
	default:
		n.Title = fmt.Sprintf("New dish: %s at %s", r.Food, r.Restaurant)
		n.Body = fmt.Sprintf("GHS %s in %s, taste %s.", formatNum(r.Price), r.Location, formatNum(r.Taste))
	}
	return n
}

func formatNum(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

// Notifier delivers alerts to a specific destination.
type Notifier interface {
	Name() string
	Send(ctx context.Context, n *Notification) error
}

// Manager broadcasts notifications to all registered notifiers.
type Manager struct {
	notifiers []Notifier
	logger    *zap.Logger
	timeout   time.Duration
}

// NewManager creates a new alert manager.
func NewManager(notifiers []Notifier, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{notifiers: notifiers, logger: logger, timeout: 10 * time.Second}
}

// HasNotifiers returns true if at least one notifier is configured.
func (m *Manager) HasNotifiers() bool {
	return len(m.notifiers) > 0
}

// Broadcast sends a notification to all registered notifiers.
func (m *Manager) Broadcast(ctx context.Context, n *Notification) error {
	var errs []error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(ctx, n); err != nil {
			errs = append(errs, eris.Wrap(err, notifier.Name()))
		}
	}
	return errors.Join(errs...)
}

// OnChange broadcasts a committed write. Failures are logged and never
// returned, so it can be installed with catalog.WithOnChange.
func (m *Manager) OnChange(ctx context.Context, c catalog.Change) {
	if !m.HasNotifiers() {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
	defer cancel()

	if err := m.Broadcast(ctx, FromChange(c)); err != nil {
		m.logger.Warn("alert delivery failed",
			zap.String("kind", string(c.Kind)),
			zap.String("restaurant", c.Record.Restaurant),
			zap.String("food", c.Record.Food),
			zap.Error(err),
		)
	}
}

// postJSON posts body and treats any 2xx status as delivered.
func postJSON(ctx context.Context, client *http.Client, url string, body []byte, header http.Header) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "tasteprice/1.0")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return eris.Wrap(err, "send")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return eris.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
