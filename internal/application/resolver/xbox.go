package resolver

import (
	"context"
	"errors"

	"github.com/marketplace-verify/internal/domain"
	"github.com/marketplace-verify/internal/infrastructure/xbox"
)

// xboxLookupAttempts is the total attempt count for the friend-search
// query. The upstream API intermittently returns an empty or malformed
// payload for a valid tag; one extra query absorbs that.
const xboxLookupAttempts = 2

// XboxAPI is the slice of the Xbox client this resolver needs.
type XboxAPI interface {
	SearchGamertag(ctx context.Context, gamertag string) (*xbox.Profile, error)
	SendMessage(ctx context.Context, xuid, message string) error
}

// XboxResolver resolves a gamertag via friend search and delivers the
// challenge code by direct message.
type XboxResolver struct {
	api XboxAPI
}

func NewXboxResolver(api XboxAPI) *XboxResolver {
	return &XboxResolver{api: api}
}

func (r *XboxResolver) Resolve(ctx context.Context, input string) (*Resolution, error) {
	profile, err := r.lookup(ctx, input)
	if err != nil {
		return nil, err
	}

	code, err := sixDigitCode()
	if err != nil {
		return nil, err
	}
	if err := r.api.SendMessage(ctx, profile.XUID, code); err != nil {
		// An undeliverable message fails the whole resolution; the most
		// common cause is a private profile that rejects DMs.
		recordFailure(domain.PlatformXbox, domain.ReasonMessageUndeliverable)
		return nil, &domain.ResolveError{
			Reason:  domain.ReasonMessageUndeliverable,
			Message: "Could not send the message. Make sure your profile is not private.",
			Err:     err,
		}
	}

	return &Resolution{Tag: profile.Gamertag, ID: profile.XUID, Code: code, RequiresCode: true}, nil
}

func (r *XboxResolver) lookup(ctx context.Context, gamertag string) (*xbox.Profile, error) {
	var lastErr error
	for attempt := 0; attempt < xboxLookupAttempts; attempt++ {
		profile, err := r.api.SearchGamertag(ctx, gamertag)
		if err == nil {
			return profile, nil
		}
		if errors.Is(err, xbox.ErrNotFound) {
			// The upstream explicitly reported the tag as unknown; retrying
			// the same query cannot change that.
			recordFailure(domain.PlatformXbox, domain.ReasonTagNotFound)
			return nil, &domain.ResolveError{
				Reason:  domain.ReasonTagNotFound,
				Message: "Could not find the Gamertag. Please check the spelling.",
				Err:     err,
			}
		}
		lastErr = err
	}
	recordFailure(domain.PlatformXbox, domain.ReasonTagResolution)
	return nil, &domain.ResolveError{
		Reason:  domain.ReasonTagResolution,
		Message: "Could not find the Gamertag. Please check the spelling.",
		Err:     lastErr,
	}
}
