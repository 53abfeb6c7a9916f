package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// Discord sends notifications via Discord webhook.
type Discord struct {
	client     *http.Client
	webhookURL string
}

// NewDiscord creates a new Discord notifier.
func NewDiscord(webhookURL string) *Discord {
	return &Discord{
		client:     &http.Client{Timeout: 10 * time.Second},
		webhookURL: webhookURL,
	}
}

func (d *Discord) Name() string { return "discord" }

func (d *Discord) Send(ctx context.Context, n *Notification) error {
	embed := map[string]any{
		"title":       n.Title,
		"description": fmt.Sprintf("**%s** | %s\n\n%s", n.Restaurant, n.Food, n.Body),
		"color":       0x2E8B57,
		"timestamp":   n.At.Format(time.RFC3339),
	}
	if n.URL != "" {
		embed["url"] = n.URL
	}

	body, err := json.Marshal(map[string]any{"embeds": []map[string]any{embed}})
	if err != nil {
		return eris.Wrap(err, "marshal discord payload")
	}
	if err := postJSON(ctx, d.client, d.webhookURL, body, nil); err != nil {
		return eris.Wrap(err, "discord webhook")
	}
	return nil
}
