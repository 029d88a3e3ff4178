package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/marketplace-verify/internal/domain"
	"github.com/marketplace-verify/internal/infrastructure/psn"
	"github.com/marketplace-verify/internal/infrastructure/reddit"
)

const fallbackAvatarURL = "/static/images/default_avatar.png"

// xboxRefreshAttempts mirrors the lookup resolver: the Xbox API
// intermittently fails on valid XUIDs, so refresh retries once too.
const xboxRefreshAttempts = 2

// Info is everything the public profile view renders.
type Info struct {
	DisplayName   string         `json:"display_name"`
	AvatarURL     string         `json:"avatar_url"`
	RedditKarma   string         `json:"reddit_karma"`
	GamerTags     []GamerTagView `json:"gamer_tags"`
	IsBlacklisted bool           `json:"is_blacklisted"`
	IsLoggedIn    bool           `json:"is_logged_in"`
	IsOwnProfile  bool           `json:"is_own_profile"`
}

// GamerTagView is one linked platform shown on the profile.
type GamerTagView struct {
	Platform string `json:"platform"`
	Tag      string `json:"tag"`
}

// RecordStore is the slice of the record repository this service needs.
type RecordStore interface {
	Get(ctx context.Context, username string) (*domain.VerificationRecord, error)
	Update(ctx context.Context, username string, mutate func(*domain.VerificationRecord)) (*domain.VerificationRecord, error)
}

// RedditProfileAPI fetches public Reddit profile info.
type RedditProfileAPI interface {
	AboutUser(ctx context.Context, username string) (*reddit.About, error)
}

// XboxTagAPI refreshes a display gamertag from its stable XUID.
type XboxTagAPI interface {
	GamertagFromXUID(ctx context.Context, xuid string) (string, error)
}

// PSNTagAPI refreshes a display online id from its stable account id.
type PSNTagAPI interface {
	OnlineIDFromAccountID(ctx context.Context, accountID string) (string, error)
}

// Service assembles the public profile view and refreshes display tags
// from their stable platform ids.
type Service struct {
	records RecordStore
	reddit  RedditProfileAPI
	xbox    XboxTagAPI
	psn     PSNTagAPI
}

func NewService(records RecordStore, redditAPI RedditProfileAPI, xboxAPI XboxTagAPI, psnAPI PSNTagAPI) *Service {
	return &Service{records: records, reddit: redditAPI, xbox: xboxAPI, psn: psnAPI}
}

// Profile builds the profile view for username as seen by viewer (the
// logged-in username, or empty). Absent or incomplete records are not
// public and return ErrNotFound.
func (s *Service) Profile(ctx context.Context, username, viewer string) (*Info, error) {
	username = domain.CanonicalUsername(username)
	rec, err := s.records.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	if !rec.VerificationComplete {
		return nil, fmt.Errorf("profile %q not public: %w", username, domain.ErrNotFound)
	}

	info := &Info{
		DisplayName:   username,
		AvatarURL:     fallbackAvatarURL,
		IsBlacklisted: rec.IsBlacklisted,
		IsLoggedIn:    viewer != "",
		IsOwnProfile:  viewer == username,
	}
	for _, p := range []domain.Platform{domain.PlatformXbox, domain.PlatformPlayStation, domain.PlatformPC} {
		if tag := rec.PlatformTag(p); tag != nil && *tag != "" {
			info.GamerTags = append(info.GamerTags, GamerTagView{Platform: p.DisplayName(), Tag: *tag})
		}
	}

	about, err := s.reddit.AboutUser(ctx, username)
	if err != nil {
		// The profile is still rendered from the record if Reddit's
		// public API is unavailable.
		slog.Warn("failed to fetch reddit profile info", "username", username, "err", err)
		return info, nil
	}
	info.DisplayName = about.Name
	info.RedditKarma = FormatCount(about.TotalKarma)
	if !about.Over18 && about.IconImg != "" {
		info.AvatarURL = stripQuery(about.IconImg)
	}
	return info, nil
}

// RefreshTags re-fetches the Xbox and PlayStation display tags from the
// stable platform ids stored at verification time. Tags may be renamed
// without re-running verification.
func (s *Service) RefreshTags(ctx context.Context, username string) error {
	username = domain.CanonicalUsername(username)
	rec, err := s.records.Get(ctx, username)
	if err != nil {
		return err
	}

	if xuid := rec.XboxID; xuid != nil && *xuid != "" {
		newTag := "Failed to fetch the Xbox Gamertag"
		for attempt := 0; attempt < xboxRefreshAttempts; attempt++ {
			if tag, err := s.xbox.GamertagFromXUID(ctx, *xuid); err == nil {
				newTag = tag
				break
			}
		}
		if _, err := s.records.Update(ctx, username, func(r *domain.VerificationRecord) {
			r.SetPlatformTag(domain.PlatformXbox, newTag)
		}); err != nil {
			return err
		}
	}

	if accountID := rec.PlayStationID; accountID != nil && *accountID != "" {
		newTag, ok := s.refreshPSNTag(ctx, *accountID, rec.PlayStationTag)
		if ok {
			if _, err := s.records.Update(ctx, username, func(r *domain.VerificationRecord) {
				r.SetPlatformTag(domain.PlatformPlayStation, newTag)
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

// refreshPSNTag resolves the current online id. A not-found stores an
// explanatory placeholder; an expired bot credential keeps the stored tag.
func (s *Service) refreshPSNTag(ctx context.Context, accountID string, current *string) (string, bool) {
	onlineID, err := s.psn.OnlineIDFromAccountID(ctx, accountID)
	if err == nil {
		return onlineID, true
	}
	switch {
	case errors.Is(err, psn.ErrNotFound):
		return "Failed to fetch the PSN Online ID. The account does not exist.", true
	case errors.Is(err, psn.ErrAuthExpired):
		slog.Warn("psn credential expired during tag refresh")
		if current != nil {
			return *current, true
		}
	}
	return "", false
}

// SearchToUsername normalizes a profile search query to a username:
// strips an optional "u/" prefix and surrounding whitespace.
func SearchToUsername(query string) string {
	query = strings.TrimSpace(query)
	query = strings.TrimPrefix(query, "u/")
	return domain.CanonicalUsername(query)
}

// FormatCount renders a number in human-readable form: 999 stays as-is,
// 12345 becomes "12.35K".
func FormatCount(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	value := float64(n)
	magnitude := 0
	for value >= 1000 {
		value /= 1000
		magnitude++
	}
	suffixes := []string{"", "K", "M", "G", "T", "P"}
	return fmt.Sprintf("%.2f%s", value, suffixes[magnitude])
}

// stripQuery drops the query string Reddit appends to avatar URLs.
func stripQuery(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
