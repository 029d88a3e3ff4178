package trello

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/marketplace-verify/internal/config"
)

const searchURL = "https://api.trello.com/1/search"

// Card is a blacklist board card. Closed means archived.
type Card struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Desc     string  `json:"desc"`
	Closed   bool    `json:"closed"`
	ShortURL string  `json:"shortUrl"`
	Labels   []Label `json:"labels"`
}

// Label is a card label.
type Label struct {
	Name string `json:"name"`
}

// Client searches cards on the Trello blacklist boards.
type Client struct {
	httpClient *http.Client
	apiKey     string
	token      string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		apiKey:     cfg.TrelloAPIKey,
		token:      cfg.TrelloToken,
	}
}

// SearchCards runs a card search scoped to the given boards. The search is
// fuzzy upstream, so callers must post-filter the results.
func (c *Client) SearchCards(ctx context.Context, query string, boardIDs []string, limit int) ([]Card, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("idBoards", strings.Join(boardIDs, ","))
	q.Set("modelTypes", "cards")
	q.Set("cards_limit", strconv.Itoa(limit))
	q.Set("card_fields", "name,desc,closed,shortUrl,labels")
	q.Set("key", c.apiKey)
	q.Set("token", c.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trello search: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Cards []Card `json:"cards"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return body.Cards, nil
}
