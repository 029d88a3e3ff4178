package resolver

import (
	"context"
	"testing"

	"github.com/marketplace-verify/internal/domain"
	"github.com/marketplace-verify/internal/infrastructure/xbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockXboxAPI struct{ mock.Mock }

func (m *mockXboxAPI) SearchGamertag(ctx context.Context, gamertag string) (*xbox.Profile, error) {
	args := m.Called(ctx, gamertag)
	if p, _ := args.Get(0).(*xbox.Profile); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockXboxAPI) SendMessage(ctx context.Context, xuid, message string) error {
	return m.Called(ctx, xuid, message).Error(0)
}

// --- tests ---

func TestXboxResolve_Success(t *testing.T) {
	api := &mockXboxAPI{}
	api.On("SearchGamertag", mock.Anything, "testtag").
		Return(&xbox.Profile{Gamertag: "TestTag", XUID: "1234567890"}, nil)
	api.On("SendMessage", mock.Anything, "1234567890", mock.Anything).Return(nil)

	res, err := NewXboxResolver(api).Resolve(context.Background(), "testtag")

	require.NoError(t, err)
	assert.Equal(t, "TestTag", res.Tag)
	assert.Equal(t, "1234567890", res.ID)
	assert.True(t, res.RequiresCode)
	assert.Len(t, res.Code, 6)
}

func TestXboxResolve_RetryAbsorbsMalformedResponse(t *testing.T) {
	api := &mockXboxAPI{}
	api.On("SearchGamertag", mock.Anything, "testtag").
		Return(nil, xbox.ErrMalformed).Once()
	api.On("SearchGamertag", mock.Anything, "testtag").
		Return(&xbox.Profile{Gamertag: "TestTag", XUID: "1234567890"}, nil).Once()
	api.On("SendMessage", mock.Anything, "1234567890", mock.Anything).Return(nil)

	res, err := NewXboxResolver(api).Resolve(context.Background(), "testtag")

	require.NoError(t, err)
	assert.Equal(t, "TestTag", res.Tag)
	api.AssertNumberOfCalls(t, "SearchGamertag", 2)
}

func TestXboxResolve_NotFoundShortCircuits(t *testing.T) {
	api := &mockXboxAPI{}
	api.On("SearchGamertag", mock.Anything, "missing").Return(nil, xbox.ErrNotFound)

	_, err := NewXboxResolver(api).Resolve(context.Background(), "missing")

	re, ok := domain.AsResolveError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ReasonTagNotFound, re.Reason)
	assert.Equal(t, "Could not find the Gamertag. Please check the spelling.", re.Message)
	api.AssertNumberOfCalls(t, "SearchGamertag", 1)
	api.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestXboxResolve_AllAttemptsExhausted(t *testing.T) {
	api := &mockXboxAPI{}
	api.On("SearchGamertag", mock.Anything, "testtag").Return(nil, xbox.ErrMalformed)

	_, err := NewXboxResolver(api).Resolve(context.Background(), "testtag")

	re, ok := domain.AsResolveError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ReasonTagResolution, re.Reason)
	api.AssertNumberOfCalls(t, "SearchGamertag", xboxLookupAttempts)
}

func TestXboxResolve_UndeliverableMessageFailsResolution(t *testing.T) {
	api := &mockXboxAPI{}
	api.On("SearchGamertag", mock.Anything, "testtag").
		Return(&xbox.Profile{Gamertag: "TestTag", XUID: "1234567890"}, nil)
	api.On("SendMessage", mock.Anything, "1234567890", mock.Anything).Return(xbox.ErrMessageRejected)

	_, err := NewXboxResolver(api).Resolve(context.Background(), "testtag")

	re, ok := domain.AsResolveError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ReasonMessageUndeliverable, re.Reason)
	assert.Equal(t, "Could not send the message. Make sure your profile is not private.", re.Message)
}
