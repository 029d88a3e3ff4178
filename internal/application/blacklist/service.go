package blacklist

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/marketplace-verify/internal/domain"
	"github.com/marketplace-verify/internal/infrastructure/trello"
	"github.com/marketplace-verify/internal/infrastructure/webhook"
	"github.com/marketplace-verify/internal/observability/metrics"
)

// cardsLimit caps how many cards one search may return.
const cardsLimit = 1000

// CardSearcher is the slice of the Trello client this engine needs.
type CardSearcher interface {
	SearchCards(ctx context.Context, query string, boardIDs []string, limit int) ([]trello.Card, error)
}

// RecordStore is the slice of the record repository this engine needs.
type RecordStore interface {
	Get(ctx context.Context, username string) (*domain.VerificationRecord, error)
	Update(ctx context.Context, username string, mutate func(*domain.VerificationRecord)) (*domain.VerificationRecord, error)
}

// Service cross-references a user's identities against the blacklist
// boards. It runs detached from the request that completed verification:
// failures are logged, never surfaced, and never affect the flow.
type Service struct {
	records  RecordStore
	search   CardSearcher
	notifier webhook.Notifier
	boardIDs []string
	baseURL  string
}

func NewService(records RecordStore, search CardSearcher, notifier webhook.Notifier, boardIDs []string, baseURL string) *Service {
	return &Service{records: records, search: search, notifier: notifier, boardIDs: boardIDs, baseURL: baseURL}
}

// Run executes the cross-reference for a user. It re-fetches the record
// rather than trusting any copy the caller held: the triggering request
// has already committed by the time this runs, and tags may have been
// refreshed concurrently.
func (s *Service) Run(ctx context.Context, username string) {
	metrics.BlacklistChecksTotal.Inc()

	matched, err := s.check(ctx, username)
	if err != nil {
		slog.Error("blacklist check failed", "username", username, "err", err)
		return
	}
	if len(matched) == 0 {
		return
	}
	metrics.BlacklistHitsTotal.Inc()

	if _, err := s.records.Update(ctx, username, func(r *domain.VerificationRecord) {
		r.IsBlacklisted = true
	}); err != nil {
		slog.Error("failed to persist blacklist flag", "username", username, "err", err)
	}

	if err := s.notifier.Notify(ctx, s.alertMessage(username, matched)); err != nil {
		slog.Warn("failed to deliver blacklist alert", "username", username, "err", err)
	}
}

func (s *Service) check(ctx context.Context, username string) ([]trello.Card, error) {
	rec, err := s.records.Get(ctx, username)
	if err != nil {
		return nil, err
	}

	var matched []trello.Card
	for _, identity := range rec.Identities() {
		if identity.Value == "" {
			continue
		}
		cards, err := s.search.SearchCards(ctx, identity.Value, s.boardIDs, cardsLimit)
		if err != nil {
			// Keep checking the remaining identities; one failed query
			// should not mask a hit on another.
			slog.Warn("blacklist search failed", "label", identity.Label, "err", err)
			continue
		}
		matched = append(matched, filterCards(cards, identity)...)
	}
	return matched, nil
}

func (s *Service) alertMessage(username string, matched []trello.Card) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Blacklist hit for u/%s (%s/user/%s)\nMatching cards:\n", username, s.baseURL, username)
	seen := make(map[string]bool)
	for _, card := range matched {
		if seen[card.ID] {
			continue
		}
		seen[card.ID] = true
		fmt.Fprintf(&b, "- %s\n", card.ShortURL)
	}
	return b.String()
}
