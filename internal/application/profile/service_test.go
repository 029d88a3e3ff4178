package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/marketplace-verify/internal/domain"
	"github.com/marketplace-verify/internal/infrastructure/psn"
	"github.com/marketplace-verify/internal/infrastructure/reddit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockRecordStore struct {
	mock.Mock
	rec *domain.VerificationRecord
}

func (m *mockRecordStore) Get(ctx context.Context, username string) (*domain.VerificationRecord, error) {
	args := m.Called(ctx, username)
	if r, _ := args.Get(0).(*domain.VerificationRecord); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRecordStore) Update(ctx context.Context, username string, mutate func(*domain.VerificationRecord)) (*domain.VerificationRecord, error) {
	args := m.Called(ctx, username)
	if m.rec != nil {
		mutate(m.rec)
	}
	return m.rec, args.Error(1)
}

type mockRedditAPI struct{ mock.Mock }

func (m *mockRedditAPI) AboutUser(ctx context.Context, username string) (*reddit.About, error) {
	args := m.Called(ctx, username)
	if a, _ := args.Get(0).(*reddit.About); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockXboxAPI struct{ mock.Mock }

func (m *mockXboxAPI) GamertagFromXUID(ctx context.Context, xuid string) (string, error) {
	args := m.Called(ctx, xuid)
	return args.String(0), args.Error(1)
}

type mockPSNAPI struct{ mock.Mock }

func (m *mockPSNAPI) OnlineIDFromAccountID(ctx context.Context, accountID string) (string, error) {
	args := m.Called(ctx, accountID)
	return args.String(0), args.Error(1)
}

// --- helpers ---

func strPtr(s string) *string { return &s }

func verifiedRecord() *domain.VerificationRecord {
	return &domain.VerificationRecord{
		Username:             "someuser",
		VerificationComplete: true,
		PCTag:                strPtr("Wanderer"),
		PCID:                 strPtr("0"),
		XboxTag:              strPtr("TestTag"),
		XboxID:               strPtr("1234567890"),
	}
}

// --- tests ---

func TestProfile_RendersTagsAndRedditInfo(t *testing.T) {
	rec := verifiedRecord()
	records := &mockRecordStore{rec: rec}
	redditAPI := &mockRedditAPI{}
	records.On("Get", mock.Anything, "someuser").Return(rec, nil)
	redditAPI.On("AboutUser", mock.Anything, "someuser").Return(&reddit.About{
		Name:       "SomeUser",
		IconImg:    "https://styles.redditmedia.com/avatar.png?width=256&amp;s=abc",
		TotalKarma: 12345,
	}, nil)
	svc := NewService(records, redditAPI, &mockXboxAPI{}, &mockPSNAPI{})

	info, err := svc.Profile(context.Background(), "SomeUser", "someuser")

	require.NoError(t, err)
	assert.Equal(t, "SomeUser", info.DisplayName)
	assert.Equal(t, "12.35K", info.RedditKarma)
	assert.Equal(t, "https://styles.redditmedia.com/avatar.png", info.AvatarURL)
	assert.True(t, info.IsOwnProfile)
	// Linked platforms render in a fixed order: Xbox first, then PC.
	require.Len(t, info.GamerTags, 2)
	assert.Equal(t, "TestTag", info.GamerTags[0].Tag)
	assert.Equal(t, "Wanderer", info.GamerTags[1].Tag)
}

func TestProfile_IncompleteRecordIsNotPublic(t *testing.T) {
	rec := &domain.VerificationRecord{Username: "someuser"}
	records := &mockRecordStore{rec: rec}
	records.On("Get", mock.Anything, "someuser").Return(rec, nil)
	svc := NewService(records, &mockRedditAPI{}, &mockXboxAPI{}, &mockPSNAPI{})

	_, err := svc.Profile(context.Background(), "someuser", "")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProfile_RedditOutageTolerated(t *testing.T) {
	rec := verifiedRecord()
	records := &mockRecordStore{rec: rec}
	redditAPI := &mockRedditAPI{}
	records.On("Get", mock.Anything, "someuser").Return(rec, nil)
	redditAPI.On("AboutUser", mock.Anything, "someuser").Return(nil, errors.New("reddit down"))
	svc := NewService(records, redditAPI, &mockXboxAPI{}, &mockPSNAPI{})

	info, err := svc.Profile(context.Background(), "someuser", "")

	require.NoError(t, err)
	assert.Equal(t, "someuser", info.DisplayName)
	assert.Equal(t, fallbackAvatarURL, info.AvatarURL)
	require.Len(t, info.GamerTags, 2)
}

func TestProfile_NSFWAvatarSuppressed(t *testing.T) {
	rec := verifiedRecord()
	records := &mockRecordStore{rec: rec}
	redditAPI := &mockRedditAPI{}
	records.On("Get", mock.Anything, "someuser").Return(rec, nil)
	redditAPI.On("AboutUser", mock.Anything, "someuser").Return(&reddit.About{
		Name:    "SomeUser",
		IconImg: "https://styles.redditmedia.com/avatar.png",
		Over18:  true,
	}, nil)
	svc := NewService(records, redditAPI, &mockXboxAPI{}, &mockPSNAPI{})

	info, err := svc.Profile(context.Background(), "someuser", "")

	require.NoError(t, err)
	assert.Equal(t, fallbackAvatarURL, info.AvatarURL)
}

func TestRefreshTags_XboxRetriesOnce(t *testing.T) {
	rec := verifiedRecord()
	records := &mockRecordStore{rec: rec}
	xboxAPI := &mockXboxAPI{}
	records.On("Get", mock.Anything, "someuser").Return(rec, nil)
	records.On("Update", mock.Anything, "someuser").Return(rec, nil)
	xboxAPI.On("GamertagFromXUID", mock.Anything, "1234567890").
		Return("", errors.New("upstream hiccup")).Once()
	xboxAPI.On("GamertagFromXUID", mock.Anything, "1234567890").
		Return("RenamedTag", nil).Once()
	svc := NewService(records, &mockRedditAPI{}, xboxAPI, &mockPSNAPI{})

	err := svc.RefreshTags(context.Background(), "someuser")

	require.NoError(t, err)
	assert.Equal(t, "RenamedTag", *rec.XboxTag)
	xboxAPI.AssertNumberOfCalls(t, "GamertagFromXUID", 2)
}

func TestRefreshTags_XboxPlaceholderWhenAllAttemptsFail(t *testing.T) {
	rec := verifiedRecord()
	records := &mockRecordStore{rec: rec}
	xboxAPI := &mockXboxAPI{}
	records.On("Get", mock.Anything, "someuser").Return(rec, nil)
	records.On("Update", mock.Anything, "someuser").Return(rec, nil)
	xboxAPI.On("GamertagFromXUID", mock.Anything, "1234567890").
		Return("", errors.New("upstream hiccup"))
	svc := NewService(records, &mockRedditAPI{}, xboxAPI, &mockPSNAPI{})

	err := svc.RefreshTags(context.Background(), "someuser")

	require.NoError(t, err)
	assert.Equal(t, "Failed to fetch the Xbox Gamertag", *rec.XboxTag)
}

func TestRefreshTags_PSNNotFoundStoresPlaceholder(t *testing.T) {
	rec := verifiedRecord()
	rec.PlayStationTag = strPtr("Some_ID")
	rec.PlayStationID = strPtr("9876543210")
	records := &mockRecordStore{rec: rec}
	xboxAPI := &mockXboxAPI{}
	psnAPI := &mockPSNAPI{}
	records.On("Get", mock.Anything, "someuser").Return(rec, nil)
	records.On("Update", mock.Anything, "someuser").Return(rec, nil)
	xboxAPI.On("GamertagFromXUID", mock.Anything, "1234567890").Return("TestTag", nil)
	psnAPI.On("OnlineIDFromAccountID", mock.Anything, "9876543210").Return("", psn.ErrNotFound)
	svc := NewService(records, &mockRedditAPI{}, xboxAPI, psnAPI)

	err := svc.RefreshTags(context.Background(), "someuser")

	require.NoError(t, err)
	assert.Equal(t, "Failed to fetch the PSN Online ID. The account does not exist.", *rec.PlayStationTag)
}

func TestRefreshTags_PSNAuthExpiredKeepsStoredTag(t *testing.T) {
	rec := verifiedRecord()
	rec.PlayStationTag = strPtr("Some_ID")
	rec.PlayStationID = strPtr("9876543210")
	records := &mockRecordStore{rec: rec}
	xboxAPI := &mockXboxAPI{}
	psnAPI := &mockPSNAPI{}
	records.On("Get", mock.Anything, "someuser").Return(rec, nil)
	records.On("Update", mock.Anything, "someuser").Return(rec, nil)
	xboxAPI.On("GamertagFromXUID", mock.Anything, "1234567890").Return("TestTag", nil)
	psnAPI.On("OnlineIDFromAccountID", mock.Anything, "9876543210").Return("", psn.ErrAuthExpired)
	svc := NewService(records, &mockRedditAPI{}, xboxAPI, psnAPI)

	err := svc.RefreshTags(context.Background(), "someuser")

	require.NoError(t, err)
	assert.Equal(t, "Some_ID", *rec.PlayStationTag)
}

func TestSearchToUsername(t *testing.T) {
	assert.Equal(t, "someuser", SearchToUsername("  u/SomeUser  "))
	assert.Equal(t, "someuser", SearchToUsername("SomeUser"))
	assert.Equal(t, "", SearchToUsername("   "))
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "0", FormatCount(0))
	assert.Equal(t, "999", FormatCount(999))
	assert.Equal(t, "1.00K", FormatCount(1000))
	assert.Equal(t, "12.35K", FormatCount(12345))
	assert.Equal(t, "2.50M", FormatCount(2500000))
}
