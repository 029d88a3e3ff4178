package domain

import "fmt"

// Platform is a game platform a user can link a gamer tag on.
type Platform string

const (
	PlatformPC          Platform = "pc"
	PlatformXbox        Platform = "xbox"
	PlatformPlayStation Platform = "playstation"
)

// ParsePlatform maps a user-submitted platform name to a Platform.
// Accepts the canonical names and the labels the frontend checkboxes post.
func ParsePlatform(s string) (Platform, error) {
	switch s {
	case "pc", "PC", "Fallout 76":
		return PlatformPC, nil
	case "xbox", "XBOX", "Xbox":
		return PlatformXbox, nil
	case "playstation", "PlayStation", "PSN":
		return PlatformPlayStation, nil
	}
	return "", fmt.Errorf("unknown platform %q: %w", s, ErrBadRequest)
}

// DisplayName is the name shown to users in challenge views.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformPC:
		return "PC"
	case PlatformXbox:
		return "Xbox"
	case PlatformPlayStation:
		return "PlayStation"
	}
	return string(p)
}

// BlacklistLabel is the platform label blacklist cards carry in their titles.
func (p Platform) BlacklistLabel() string {
	switch p {
	case PlatformPC:
		return "PC"
	case PlatformXbox:
		return "XB1"
	case PlatformPlayStation:
		return "PS"
	}
	return string(p)
}

// RequiresChallenge reports whether confirming this platform requires an
// out-of-band verification code. PC tags are trusted at face value.
func (p Platform) RequiresChallenge() bool {
	return p != PlatformPC
}

// BlacklistLabelReddit marks identities sourced from the Reddit account
// itself; those skip the card-title platform filter.
const BlacklistLabelReddit = "Reddit"

// Identity is one platform-scoped value checked against the blacklist.
type Identity struct {
	Label string // "Reddit" or a Platform.BlacklistLabel()
	Value string // username or gamer tag
}
