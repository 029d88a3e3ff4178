package blacklist

import (
	"testing"

	"github.com/marketplace-verify/internal/domain"
	"github.com/marketplace-verify/internal/infrastructure/trello"
	"github.com/stretchr/testify/assert"
)

func scamCard(name, desc string) trello.Card {
	return trello.Card{
		ID:     "c1",
		Name:   name,
		Desc:   desc,
		Labels: []trello.Label{{Name: "Scamming"}},
	}
}

func TestInDescription_ColonScopedField(t *testing.T) {
	assert.True(t, inDescription("XBL: TestTag", "testtag"))
}

func TestInDescription_ParentheticalStripped(t *testing.T) {
	assert.True(t, inDescription("XBL: TestTag (alt account)", "testtag"))
}

func TestInDescription_RedditPrefixAndBackslashes(t *testing.T) {
	assert.True(t, inDescription(`Reddit: u/Some\_User`, "some_user"))
}

func TestInDescription_BareLine(t *testing.T) {
	assert.True(t, inDescription("some header\nTestTag\nmore text", "testtag"))
}

func TestInDescription_SubstringIsNotEnough(t *testing.T) {
	assert.False(t, inDescription("I am not TestTag", "testtag"))
}

func TestInDescription_EmptyLinesSkipped(t *testing.T) {
	assert.False(t, inDescription("\n\n  \n", ""))
}

func TestFilterCards_Match(t *testing.T) {
	cards := []trello.Card{scamCard("XB1 scammer report", "XBL: TestTag")}
	matched := filterCards(cards, domain.Identity{Label: "XB1", Value: "testtag"})
	assert.Len(t, matched, 1)
}

func TestFilterCards_ArchivedExcluded(t *testing.T) {
	card := scamCard("XB1 scammer report", "XBL: TestTag")
	card.Closed = true
	matched := filterCards([]trello.Card{card}, domain.Identity{Label: "XB1", Value: "testtag"})
	assert.Empty(t, matched)
}

func TestFilterCards_TitleMustNamePlatform(t *testing.T) {
	cards := []trello.Card{scamCard("PS scammer report", "XBL: TestTag")}
	matched := filterCards(cards, domain.Identity{Label: "XB1", Value: "testtag"})
	assert.Empty(t, matched)
}

func TestFilterCards_TitleCheckCaseInsensitive(t *testing.T) {
	cards := []trello.Card{scamCard("xb1 scammer report", "XBL: TestTag")}
	matched := filterCards(cards, domain.Identity{Label: "XB1", Value: "testtag"})
	assert.Len(t, matched, 1)
}

func TestFilterCards_RedditIdentitySkipsTitleCheck(t *testing.T) {
	cards := []trello.Card{scamCard("PS scammer report", "Reddit: u/SomeUser")}
	matched := filterCards(cards, domain.Identity{Label: domain.BlacklistLabelReddit, Value: "someuser"})
	assert.Len(t, matched, 1)
}

func TestFilterCards_ScamLabelRequired(t *testing.T) {
	card := scamCard("XB1 scammer report", "XBL: TestTag")
	card.Labels = []trello.Label{{Name: "Resolved"}}
	matched := filterCards([]trello.Card{card}, domain.Identity{Label: "XB1", Value: "testtag"})
	assert.Empty(t, matched)
}

func TestHasScamLabel_CaseInsensitive(t *testing.T) {
	card := trello.Card{Labels: []trello.Label{{Name: "SCAMMING"}}}
	assert.True(t, hasScamLabel(card))
}
