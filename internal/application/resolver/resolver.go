package resolver

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/marketplace-verify/internal/domain"
	"github.com/marketplace-verify/internal/observability/metrics"
)

// Resolution is the outcome of a successful platform lookup. When
// RequiresCode is set, Code was delivered out-of-band and must be echoed
// back by the user before the identity is committed.
type Resolution struct {
	Tag          string
	ID           string
	Code         string
	RequiresCode bool
}

// Resolver resolves a user-supplied tag into a canonical platform
// identity, issuing an out-of-band challenge where the platform supports
// messaging. Failures are *domain.ResolveError values: recoverable, with
// a message safe to show to the end user.
type Resolver interface {
	Resolve(ctx context.Context, input string) (*Resolution, error)
}

// Set holds one resolver per supported platform.
type Set struct {
	resolvers map[domain.Platform]Resolver
}

func NewSet(xbox *XboxResolver, psn *PSNResolver) *Set {
	return &Set{resolvers: map[domain.Platform]Resolver{
		domain.PlatformPC:          &PCResolver{},
		domain.PlatformXbox:        xbox,
		domain.PlatformPlayStation: psn,
	}}
}

// For returns the resolver for a platform.
func (s *Set) For(p domain.Platform) (Resolver, error) {
	r, ok := s.resolvers[p]
	if !ok {
		return nil, fmt.Errorf("no resolver for platform %q: %w", p, domain.ErrBadRequest)
	}
	return r, nil
}

// PCResolver trusts the submitted tag at face value; PC has no messaging
// channel to confirm through.
type PCResolver struct{}

func (r *PCResolver) Resolve(_ context.Context, input string) (*Resolution, error) {
	return &Resolution{Tag: input, ID: "0"}, nil
}

// sixDigitCode generates the out-of-band challenge code.
func sixDigitCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func recordFailure(p domain.Platform, reason domain.ResolveReason) {
	metrics.ResolverFailuresTotal.WithLabelValues(string(p), string(reason)).Inc()
}
