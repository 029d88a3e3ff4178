package identity

import (
	"context"
	"fmt"

	"github.com/marketplace-verify/internal/domain"
	"github.com/marketplace-verify/internal/infrastructure/reddit"
)

// RedditAPI is the slice of the Reddit client this adapter needs.
type RedditAPI interface {
	AccessTokenFromCode(ctx context.Context, code string) (*reddit.Token, error)
	AccessTokenFromRefreshToken(ctx context.Context, refreshToken string) (*reddit.Token, error)
	Me(ctx context.Context, accessToken string) (string, error)
}

// Service resolves the caller's canonical Reddit identity from OAuth
// credential material. Single attempt; upstream failures surface as-is.
type Service struct {
	api RedditAPI
}

func NewService(api RedditAPI) *Service {
	return &Service{api: api}
}

// ResolveUsername exchanges exactly one of code or refreshToken for an
// access token and resolves the canonical username. Returns the username
// and the (possibly rotated) refresh token the caller must persist.
func (s *Service) ResolveUsername(ctx context.Context, code, refreshToken string) (string, string, error) {
	var (
		token *reddit.Token
		err   error
	)
	switch {
	case refreshToken != "":
		token, err = s.api.AccessTokenFromRefreshToken(ctx, refreshToken)
	case code != "":
		token, err = s.api.AccessTokenFromCode(ctx, code)
	default:
		return "", "", fmt.Errorf("no oauth code or refresh token: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return "", "", err
	}

	username, err := s.api.Me(ctx, token.AccessToken)
	if err != nil {
		return "", "", fmt.Errorf("resolve username: %w", err)
	}
	return username, token.RefreshToken, nil
}
