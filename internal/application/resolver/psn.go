package resolver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/marketplace-verify/internal/domain"
	"github.com/marketplace-verify/internal/infrastructure/psn"
)

// OperatorAlerter delivers operator-facing alerts for systemic failures.
// Best-effort: delivery failures are logged and suppressed.
type OperatorAlerter interface {
	Notify(ctx context.Context, message string) error
}

// PSNAPI is the slice of the PSN client this resolver needs.
type PSNAPI interface {
	ResolveOnlineID(ctx context.Context, onlineID string) (*psn.Account, error)
	CreateGroup(ctx context.Context, accountID string) (*psn.Group, error)
	SendGroupMessage(ctx context.Context, g *psn.Group, message string) error
}

// PSNResolver resolves a PSN online id and delivers the challenge code
// through a private group message. An expired NPSSO credential blocks
// every PlayStation verification, so it additionally alerts the operator.
type PSNResolver struct {
	api    PSNAPI
	alerts OperatorAlerter
}

func NewPSNResolver(api PSNAPI, alerts OperatorAlerter) *PSNResolver {
	return &PSNResolver{api: api, alerts: alerts}
}

func (r *PSNResolver) Resolve(ctx context.Context, input string) (*Resolution, error) {
	account, err := r.api.ResolveOnlineID(ctx, input)
	if err != nil {
		return nil, r.classify(ctx, err)
	}

	group, err := r.api.CreateGroup(ctx, account.AccountID)
	if err != nil {
		return nil, r.classify(ctx, err)
	}

	code, err := sixDigitCode()
	if err != nil {
		return nil, err
	}
	if err := r.api.SendGroupMessage(ctx, group, code); err != nil {
		return nil, r.classify(ctx, err)
	}

	return &Resolution{Tag: account.OnlineID, ID: account.AccountID, Code: code, RequiresCode: true}, nil
}

func (r *PSNResolver) classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, psn.ErrNotFound):
		recordFailure(domain.PlatformPlayStation, domain.ReasonTagNotFound)
		return &domain.ResolveError{
			Reason:  domain.ReasonTagNotFound,
			Message: "Online ID not found. Please check the spelling.",
			Err:     err,
		}
	case errors.Is(err, psn.ErrForbidden):
		recordFailure(domain.PlatformPlayStation, domain.ReasonMessageUndeliverable)
		return &domain.ResolveError{
			Reason:  domain.ReasonMessageUndeliverable,
			Message: "Could not send the message. Make sure you are not blocking messages.",
			Err:     err,
		}
	case errors.Is(err, psn.ErrAuthExpired):
		r.alertOperator(ctx)
		recordFailure(domain.PlatformPlayStation, domain.ReasonPlatformAuthExpired)
		return &domain.ResolveError{
			Reason:  domain.ReasonPlatformAuthExpired,
			Message: "NPSSO Code Expired. Please contact the moderators.",
			Err:     err,
		}
	}
	recordFailure(domain.PlatformPlayStation, domain.ReasonTagResolution)
	return &domain.ResolveError{
		Reason:  domain.ReasonTagResolution,
		Message: "Could not verify the Online ID. Please try again.",
		Err:     err,
	}
}

func (r *PSNResolver) alertOperator(ctx context.Context) {
	if r.alerts == nil {
		return
	}
	if err := r.alerts.Notify(ctx, "PSN NPSSO credential has expired; all PlayStation verifications are blocked until it is refreshed."); err != nil {
		slog.Warn("failed to deliver operator alert", "err", err)
	}
}
