package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/marketplace-verify/internal/config"
	"github.com/marketplace-verify/internal/domain"
)

const (
	tokenURL     = "https://www.reddit.com/api/v1/access_token"
	authorizeURL = "https://www.reddit.com/api/v1/authorize"
	meURL        = "https://oauth.reddit.com/api/v1/me"
	aboutURLFmt  = "https://www.reddit.com/user/%s/about.json"
)

// Token is the credential pair returned by a token exchange. RefreshToken
// echoes the input token on refresh grants so callers can always persist it.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// About holds the public profile fields consumed from about.json.
type About struct {
	Name       string
	IconImg    string
	TotalKarma int
	Over18     bool
}

// Client talks to Reddit's OAuth and public profile endpoints.
type Client struct {
	httpClient   *http.Client
	clientID     string
	clientSecret string
	redirectURI  string
	userAgent    string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: cfg.HTTPTimeout},
		clientID:     cfg.RedditClientID,
		clientSecret: cfg.RedditClientSecret,
		redirectURI:  cfg.RedditRedirectURI,
		userAgent:    cfg.RedditUserAgent,
	}
}

// AuthorizeURL builds the authorization redirect target with the fixed
// identity scope and permanent duration.
func (c *Client) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("response_type", "code")
	q.Set("state", state)
	q.Set("redirect_uri", c.redirectURI)
	q.Set("duration", "permanent")
	q.Set("scope", "identity")
	return authorizeURL + "?" + q.Encode()
}

// AccessTokenFromCode exchanges an authorization code for a token pair.
func (c *Client) AccessTokenFromCode(ctx context.Context, code string) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.redirectURI)
	return c.exchange(ctx, form, "")
}

// AccessTokenFromRefreshToken exchanges a refresh token for an access token.
func (c *Client) AccessTokenFromRefreshToken(ctx context.Context, refreshToken string) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	return c.exchange(ctx, form, refreshToken)
}

func (c *Client) exchange(ctx context.Context, form url.Values, fallbackRefresh string) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &domain.AuthExchangeError{Status: resp.StatusCode}
	}

	var t Token
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	// Refresh grants don't echo the refresh token back; keep the one we have.
	if t.RefreshToken == "" {
		t.RefreshToken = fallbackRefresh
	}
	return &t, nil
}

// Me fetches the canonical username of the token owner.
func (c *Client) Me(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, meURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "bearer "+accessToken)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", &domain.AuthExchangeError{Status: resp.StatusCode}
	}

	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode me response: %w", err)
	}
	if body.Name == "" {
		return "", fmt.Errorf("me response missing name")
	}
	return body.Name, nil
}

// AboutUser fetches the public profile info used on the profile view.
func (c *Client) AboutUser(ctx context.Context, username string) (*About, error) {
	u := fmt.Sprintf(aboutURLFmt, url.PathEscape(username))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("reddit user %q: %w", username, domain.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("about.json: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Error int `json:"error"`
		Data  struct {
			Name       string `json:"name"`
			IconImg    string `json:"icon_img"`
			TotalKarma int    `json:"total_karma"`
			Subreddit  struct {
				Over18 bool `json:"over_18"`
			} `json:"subreddit"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode about response: %w", err)
	}
	if body.Error != 0 {
		return nil, fmt.Errorf("reddit user %q: %w", username, domain.ErrNotFound)
	}
	return &About{
		Name:       body.Data.Name,
		IconImg:    body.Data.IconImg,
		TotalKarma: body.Data.TotalKarma,
		Over18:     body.Data.Subreddit.Over18,
	}, nil
}
