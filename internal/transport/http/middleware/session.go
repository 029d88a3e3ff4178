package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/marketplace-verify/internal/domain"
	"github.com/marketplace-verify/internal/pkg/id"
	"github.com/marketplace-verify/internal/pkg/sessiontoken"
)

// CookieName is the session cookie. It carries a signed token embedding
// only the session id; session state lives server-side.
const CookieName = "session"

type sessionKeyType struct{}

var sessionKey sessionKeyType

// SessionStore is the slice of the session repository the manager needs.
type SessionStore interface {
	Put(ctx context.Context, s *domain.VerificationSession) error
	Get(ctx context.Context, sessionID string) (*domain.VerificationSession, error)
	Delete(ctx context.Context, sessionID string) error
}

// SessionManager loads the caller's server-side session from the signed
// cookie, creating a fresh one when the cookie is absent or invalid.
type SessionManager struct {
	store    SessionStore
	signer   *sessiontoken.Signer
	lifetime time.Duration
	secure   bool
}

func NewSessionManager(store SessionStore, signer *sessiontoken.Signer, lifetime time.Duration, secure bool) *SessionManager {
	return &SessionManager{store: store, signer: signer, lifetime: lifetime, secure: secure}
}

// Middleware injects the session into the request context. A fresh
// session is not persisted until a handler calls Save.
func (m *SessionManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := m.load(r)
		ctx := context.WithValue(r.Context(), sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *SessionManager) load(r *http.Request) *domain.VerificationSession {
	cookie, err := r.Cookie(CookieName)
	if err == nil {
		if sid, err := m.signer.Verify(cookie.Value); err == nil {
			if sess, err := m.store.Get(r.Context(), sid); err == nil {
				return sess
			}
		}
	}
	return m.fresh()
}

func (m *SessionManager) fresh() *domain.VerificationSession {
	now := time.Now().UTC()
	return &domain.VerificationSession{
		SessionID: id.New(),
		CreatedAt: now,
		ExpiresAt: now.Add(m.lifetime).Unix(),
	}
}

// Save persists the session and (re)sets the signed cookie.
func (m *SessionManager) Save(w http.ResponseWriter, r *http.Request, sess *domain.VerificationSession) error {
	sess.ExpiresAt = time.Now().UTC().Add(m.lifetime).Unix()
	if err := m.store.Put(r.Context(), sess); err != nil {
		return err
	}
	token, err := m.signer.Sign(sess.SessionID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.lifetime.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear deletes the server-side session and expires the cookie.
func (m *SessionManager) Clear(w http.ResponseWriter, r *http.Request, sess *domain.VerificationSession) {
	if err := m.store.Delete(r.Context(), sess.SessionID); err != nil {
		slog.Warn("failed to delete session", "session_id", sess.SessionID, "err", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionFromContext extracts the session injected by Middleware.
func SessionFromContext(ctx context.Context) (*domain.VerificationSession, bool) {
	s, ok := ctx.Value(sessionKey).(*domain.VerificationSession)
	return s, ok
}
