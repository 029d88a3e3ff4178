package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/marketplace-verify/internal/config"
)

// Notifier delivers moderator-facing alerts to a webhook. Best-effort:
// callers suppress any error so an inoperative channel never affects
// verification outcomes.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

type notifier struct {
	httpClient *http.Client
	url        string
}

func NewNotifier(cfg *config.Config) Notifier {
	return &notifier{
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		url:        cfg.WebhookURL,
	}
}

func (n *notifier) Notify(ctx context.Context, message string) error {
	if n.url == "" {
		return fmt.Errorf("webhook url not configured")
	}
	payload, err := json.Marshal(map[string]string{"content": message})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: unexpected status %d", resp.StatusCode)
	}
	return nil
}
