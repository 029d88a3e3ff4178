package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/marketplace-verify/internal/domain"
	"github.com/marketplace-verify/internal/pkg/sessiontoken"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) Put(ctx context.Context, s *domain.VerificationSession) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockSessionStore) Get(ctx context.Context, sessionID string) (*domain.VerificationSession, error) {
	args := m.Called(ctx, sessionID)
	if s, _ := args.Get(0).(*domain.VerificationSession); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessionStore) Delete(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

// --- helpers ---

func newManager(store *mockSessionStore) *SessionManager {
	signer := sessiontoken.NewSigner("test-secret", time.Hour)
	return NewSessionManager(store, signer, time.Hour, false)
}

func captureSession(t *testing.T, m *SessionManager, req *http.Request) *domain.VerificationSession {
	t.Helper()
	var captured *domain.VerificationSession
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromContext(r.Context())
		require.True(t, ok)
		captured = sess
	}))
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, captured)
	return captured
}

// --- tests ---

func TestMiddleware_NoCookieGetsFreshSession(t *testing.T) {
	store := &mockSessionStore{}
	m := newManager(store)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess := captureSession(t, m, req)

	assert.NotEmpty(t, sess.SessionID)
	assert.False(t, sess.LoggedIn())
	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestMiddleware_ValidCookieLoadsStoredSession(t *testing.T) {
	store := &mockSessionStore{}
	m := newManager(store)
	stored := &domain.VerificationSession{SessionID: "sess1", Username: "someuser"}
	store.On("Get", mock.Anything, "sess1").Return(stored, nil)

	token, err := sessiontoken.NewSigner("test-secret", time.Hour).Sign("sess1")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})

	sess := captureSession(t, m, req)
	assert.Equal(t, "sess1", sess.SessionID)
	assert.Equal(t, "someuser", sess.Username)
}

func TestMiddleware_BadSignatureGetsFreshSession(t *testing.T) {
	store := &mockSessionStore{}
	m := newManager(store)

	token, err := sessiontoken.NewSigner("other-secret", time.Hour).Sign("sess1")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})

	sess := captureSession(t, m, req)
	assert.NotEqual(t, "sess1", sess.SessionID)
	store.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestMiddleware_ExpiredServerSessionGetsFreshSession(t *testing.T) {
	store := &mockSessionStore{}
	m := newManager(store)
	store.On("Get", mock.Anything, "sess1").Return(nil, domain.ErrNotFound)

	token, err := sessiontoken.NewSigner("test-secret", time.Hour).Sign("sess1")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})

	sess := captureSession(t, m, req)
	assert.NotEqual(t, "sess1", sess.SessionID)
}

func TestSave_PersistsAndSetsCookie(t *testing.T) {
	store := &mockSessionStore{}
	m := newManager(store)
	sess := &domain.VerificationSession{SessionID: "sess1", Username: "someuser"}
	store.On("Put", mock.Anything, sess).Return(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, m.Save(w, req, sess))

	assert.Greater(t, sess.ExpiresAt, time.Now().UTC().Unix())

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	sid, err := sessiontoken.NewSigner("test-secret", time.Hour).Verify(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, "sess1", sid)
}

func TestClear_DeletesAndExpiresCookie(t *testing.T) {
	store := &mockSessionStore{}
	m := newManager(store)
	sess := &domain.VerificationSession{SessionID: "sess1"}
	store.On("Delete", mock.Anything, "sess1").Return(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	m.Clear(w, req, sess)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
	store.AssertNumberOfCalls(t, "Delete", 1)
}
