package xbox

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchResponse_PicksGamertagSetting(t *testing.T) {
	payload := `{
		"profileUsers": [{
			"id": "1234567890",
			"settings": [
				{"id": "GameDisplayName", "value": "TestTag"},
				{"id": "Gamertag", "value": "TestTag"},
				{"id": "AccountTier", "value": "Gold"}
			]
		}]
	}`
	var body searchResponse
	require.NoError(t, json.Unmarshal([]byte(payload), &body))

	p, err := body.profile()
	require.NoError(t, err)
	assert.Equal(t, "TestTag", p.Gamertag)
	assert.Equal(t, "1234567890", p.XUID)
}

func TestSearchResponse_EmptyPayloadIsMalformed(t *testing.T) {
	var body searchResponse
	require.NoError(t, json.Unmarshal([]byte(`{}`), &body))

	_, err := body.profile()
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestSearchResponse_MissingGamertagSettingIsMalformed(t *testing.T) {
	payload := `{"profileUsers": [{"id": "1234567890", "settings": [{"id": "AccountTier", "value": "Gold"}]}]}`
	var body searchResponse
	require.NoError(t, json.Unmarshal([]byte(payload), &body))

	_, err := body.profile()
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestSearchResponse_UpstreamErrorCode(t *testing.T) {
	var body searchResponse
	require.NoError(t, json.Unmarshal([]byte(`{"code": 28, "description": "Player not found"}`), &body))
	assert.NotZero(t, body.Code)
}
