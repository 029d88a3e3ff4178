package xbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/marketplace-verify/internal/config"
)

const (
	friendSearchURL = "https://xbl.io/api/v2/friends/search"
	conversationURL = "https://xbl.io/api/v2/conversations"
	accountURLFmt   = "https://xbl.io/api/v2/account/%s"
)

// Sentinel errors for the known upstream failure modes.
var (
	// ErrNotFound means the API explicitly reported the gamertag as unknown.
	ErrNotFound = errors.New("gamertag not found")
	// ErrMalformed means the API returned an empty or malformed payload for
	// the query. The API is known to do this intermittently for valid tags,
	// so callers retry the same query once before giving up.
	ErrMalformed = errors.New("malformed profile response")
	// ErrMessageRejected means the DM was refused, commonly a private profile.
	ErrMessageRejected = errors.New("message rejected")
)

// Profile is a resolved Xbox Live identity.
type Profile struct {
	Gamertag string
	XUID     string
}

// Client talks to the xbl.io Xbox Live API.
type Client struct {
	httpClient *http.Client
	apiKey     string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		apiKey:     cfg.XboxAPIKey,
	}
}

// SearchGamertag resolves a gamertag to its canonical form and XUID via
// friend search. A single attempt; the resolver owns the retry policy.
func (c *Client) SearchGamertag(ctx context.Context, gamertag string) (*Profile, error) {
	u := friendSearchURL + "?gt=" + url.QueryEscape(gamertag)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if body.Code != 0 {
		// Explicit upstream error code: the tag genuinely doesn't exist.
		return nil, fmt.Errorf("upstream code %d: %w", body.Code, ErrNotFound)
	}
	return body.profile()
}

// GamertagFromXUID looks up the current display gamertag for a XUID.
func (c *Client) GamertagFromXUID(ctx context.Context, xuid string) (string, error) {
	u := fmt.Sprintf(accountURLFmt, url.PathEscape(xuid))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	p, err := body.profile()
	if err != nil {
		return "", err
	}
	return p.Gamertag, nil
}

// SendMessage sends a direct message to a XUID. Any non-200 response is
// treated as undeliverable (commonly: private profile).
func (c *Client) SendMessage(ctx context.Context, xuid, message string) error {
	payload, err := json.Marshal(map[string]string{"xuid": xuid, "message": message})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, conversationURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("X-Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %w", resp.StatusCode, ErrMessageRejected)
	}
	return nil
}

type searchResponse struct {
	Code         int `json:"code"`
	ProfileUsers []struct {
		ID       string `json:"id"`
		Settings []struct {
			ID    string `json:"id"`
			Value string `json:"value"`
		} `json:"settings"`
	} `json:"profileUsers"`
}

func (r *searchResponse) profile() (*Profile, error) {
	if len(r.ProfileUsers) == 0 {
		return nil, ErrMalformed
	}
	user := r.ProfileUsers[0]
	for _, s := range user.Settings {
		if s.ID == "Gamertag" {
			return &Profile{Gamertag: s.Value, XUID: user.ID}, nil
		}
	}
	return nil, ErrMalformed
}
