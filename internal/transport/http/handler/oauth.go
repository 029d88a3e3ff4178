package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/marketplace-verify/internal/application/verification"
	"github.com/marketplace-verify/internal/domain"
	"github.com/marketplace-verify/internal/transport/http/middleware"
)

// AuthorizeURLBuilder builds the identity provider's authorization URL.
type AuthorizeURLBuilder interface {
	AuthorizeURL(state string) string
}

// RecordReader is the read-only record access the entry points need.
type RecordReader interface {
	Get(ctx context.Context, username string) (*domain.VerificationRecord, error)
}

// OAuthHandler handles the login entry points and the OAuth callback.
type OAuthHandler struct {
	svc      *verification.Service
	sessions *middleware.SessionManager
	reddit   AuthorizeURLBuilder
	records  RecordReader
}

func NewOAuthHandler(svc *verification.Service, sessions *middleware.SessionManager, reddit AuthorizeURLBuilder, records RecordReader) *OAuthHandler {
	return &OAuthHandler{svc: svc, sessions: sessions, reddit: reddit, records: records}
}

// RedditOAuth redirects the browser to Reddit's authorization page.
func (h *OAuthHandler) RedditOAuth(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.reddit.AuthorizeURL("verification"), http.StatusFound)
}

// Callback is the OAuth redirect target. A denial renders a friendly
// error view; success enters the verification state machine.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		if errParam == "access_denied" {
			writeJSON(w, http.StatusForbidden, ErrorViewEnvelope{
				View:         "error",
				ErrorTitle:   "Access Denied",
				ErrorMessage: "We cannot verify your identity from Reddit. Please allow access in order to proceed.",
			})
			return
		}
		writeJSON(w, http.StatusBadGateway, ErrorViewEnvelope{
			View:         "error",
			ErrorTitle:   errParam,
			ErrorMessage: errParam,
		})
		return
	}

	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "no session")
		return
	}

	out, err := h.svc.HandleCallback(r.Context(), sess, r.URL.Query().Get("code"))
	if err != nil {
		var exchErr *domain.AuthExchangeError
		if errors.As(err, &exchErr) {
			writeJSON(w, http.StatusBadGateway, ErrorViewEnvelope{
				View:         "error",
				ErrorTitle:   "Login Failed",
				ErrorMessage: "Reddit rejected the login. Please try again.",
			})
			return
		}
		slog.Error("oauth callback failed", "err", err)
		writeDomainError(w, err)
		return
	}
	if err := h.sessions.Save(w, r, sess); err != nil {
		slog.Error("failed to save session", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if out.View == verification.ViewProfileRedirect {
		http.Redirect(w, r, "/user/"+sess.Username, http.StatusFound)
		return
	}
	writeOutcome(w, out)
}

// Index routes logged-in, fully verified users straight to their profile
// and everyone else to the login view.
func (h *OAuthHandler) Index(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if ok && sess.LoggedIn() {
		rec, err := h.records.Get(r.Context(), sess.Username)
		if err == nil && rec.VerificationComplete {
			http.Redirect(w, r, "/user/"+sess.Username, http.StatusFound)
			return
		}
	}
	writeJSON(w, http.StatusOK, ViewEnvelope{View: "login"})
}
