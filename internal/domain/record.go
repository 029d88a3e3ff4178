package domain

import (
	"strings"
	"time"
)

// VerificationRecord is the persisted verification state for one Reddit
// account. Keyed by the lowercase username; one record per user, never
// deleted by this service.
type VerificationRecord struct {
	Username             string    `json:"username" dynamodbav:"username"`
	CreatedAt            time.Time `json:"created" dynamodbav:"created_at"` // set once at first insert
	OAuthCode            string    `json:"-" dynamodbav:"oauth_code"`
	RefreshToken         string    `json:"-" dynamodbav:"refresh_token"`
	VerificationComplete bool      `json:"verification_complete" dynamodbav:"verification_complete"`
	IsBlacklisted        bool      `json:"is_blacklisted" dynamodbav:"is_blacklisted"`

	// Tags are display names and may be refreshed; IDs are the stable
	// platform account identifiers set once at verification time.
	PCTag          *string `json:"pc_tag,omitempty" dynamodbav:"pc_tag"`
	PCID           *string `json:"pc_id,omitempty" dynamodbav:"pc_id"`
	XboxTag        *string `json:"xbox_tag,omitempty" dynamodbav:"xbox_tag"`
	XboxID         *string `json:"xbox_id,omitempty" dynamodbav:"xbox_id"`
	PlayStationTag *string `json:"playstation_tag,omitempty" dynamodbav:"playstation_tag"`
	PlayStationID  *string `json:"playstation_id,omitempty" dynamodbav:"playstation_id"`
}

// CanonicalUsername normalizes a Reddit username to its store-key form.
func CanonicalUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// SetPlatformIdentity stores the confirmed tag and account id for a platform.
func (r *VerificationRecord) SetPlatformIdentity(p Platform, tag, id string) {
	switch p {
	case PlatformPC:
		r.PCTag, r.PCID = &tag, &id
	case PlatformXbox:
		r.XboxTag, r.XboxID = &tag, &id
	case PlatformPlayStation:
		r.PlayStationTag, r.PlayStationID = &tag, &id
	}
}

// SetPlatformTag refreshes only the display tag, leaving the stable id intact.
func (r *VerificationRecord) SetPlatformTag(p Platform, tag string) {
	switch p {
	case PlatformPC:
		r.PCTag = &tag
	case PlatformXbox:
		r.XboxTag = &tag
	case PlatformPlayStation:
		r.PlayStationTag = &tag
	}
}

// PlatformTag returns the display tag for a platform, nil if not linked.
func (r *VerificationRecord) PlatformTag(p Platform) *string {
	switch p {
	case PlatformPC:
		return r.PCTag
	case PlatformXbox:
		return r.XboxTag
	case PlatformPlayStation:
		return r.PlayStationTag
	}
	return nil
}

// PlatformID returns the stable account id for a platform, nil if not linked.
func (r *VerificationRecord) PlatformID(p Platform) *string {
	switch p {
	case PlatformPC:
		return r.PCID
	case PlatformXbox:
		return r.XboxID
	case PlatformPlayStation:
		return r.PlayStationID
	}
	return nil
}

// Identities lists every blacklist search value this record carries: the
// Reddit username plus each linked display tag. Blacklist cards name
// usernames and gamer tags, so tags (not numeric ids) are what gets searched.
func (r *VerificationRecord) Identities() []Identity {
	identities := []Identity{{Label: BlacklistLabelReddit, Value: r.Username}}
	for _, p := range []Platform{PlatformPC, PlatformXbox, PlatformPlayStation} {
		if tag := r.PlatformTag(p); tag != nil && *tag != "" {
			identities = append(identities, Identity{Label: p.BlacklistLabel(), Value: *tag})
		}
	}
	return identities
}
