package blacklist

import (
	"regexp"
	"strings"

	"github.com/marketplace-verify/internal/domain"
	"github.com/marketplace-verify/internal/infrastructure/trello"
)

// scamLabel is the card label that marks a confirmed scam report.
const scamLabel = "scamming"

var parentheticalRE = regexp.MustCompile(`\(.+\)`)

// filterCards applies the full match pipeline to raw search results. The
// upstream search is fuzzy, so every condition must hold for a card to
// count: the card is not archived, its title names the identity's
// platform (skipped for Reddit identities, which match cross-platform
// cards), it carries the scamming label, and the identity value appears
// as a distinct field value in the description.
func filterCards(cards []trello.Card, identity domain.Identity) []trello.Card {
	var matched []trello.Card
	for _, card := range cards {
		if card.Closed {
			continue
		}
		if identity.Label != domain.BlacklistLabelReddit &&
			!strings.Contains(strings.ToUpper(card.Name), strings.ToUpper(identity.Label)) {
			continue
		}
		if !hasScamLabel(card) {
			continue
		}
		if !inDescription(card.Desc, identity.Value) {
			continue
		}
		matched = append(matched, card)
	}
	return matched
}

func hasScamLabel(card trello.Card) bool {
	for _, label := range card.Labels {
		if strings.EqualFold(label.Name, scamLabel) {
			return true
		}
	}
	return false
}

// inDescription reports whether value appears as a distinct field value
// in the card description. Parenthesized asides are stripped, each
// non-empty line is normalized (leading "u/" and backslashes removed,
// lowercased), and lines of the form "XBL: SomeTag" compare only the
// part after the colon. Exact equality is required; substring
// containment is not enough, since the upstream search already fuzzed.
func inDescription(desc, value string) bool {
	value = strings.ToLower(value)
	cleaned := parentheticalRE.ReplaceAllString(desc, "")
	for _, line := range strings.Split(cleaned, "\n") {
		line = normalizeLine(line)
		if line == "" {
			continue
		}
		if idx := strings.Index(line, ":"); idx >= 0 {
			line = strings.TrimSpace(line[idx+1:])
		}
		if line == value {
			return true
		}
	}
	return false
}

func normalizeLine(line string) string {
	line = strings.TrimSpace(line)
	line = strings.ReplaceAll(line, `\`, "")
	line = strings.ReplaceAll(line, "u/", "")
	return strings.ToLower(line)
}
