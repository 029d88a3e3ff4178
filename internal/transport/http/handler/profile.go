package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/marketplace-verify/internal/application/profile"
	"github.com/marketplace-verify/internal/transport/http/middleware"
)

// ProfileHandler handles the public profile routes.
type ProfileHandler struct {
	svc      *profile.Service
	sessions *middleware.SessionManager
}

func NewProfileHandler(svc *profile.Service, sessions *middleware.SessionManager) *ProfileHandler {
	return &ProfileHandler{svc: svc, sessions: sessions}
}

// Get renders a public profile. Unknown or incomplete users 404.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	viewer := ""
	if sess, ok := middleware.SessionFromContext(r.Context()); ok {
		viewer = sess.Username
	}

	info, err := h.svc.Profile(r.Context(), chi.URLParam(r, "username"), viewer)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ProfileEnvelope{View: "profile", Profile: info})
}

// Search normalizes the search box input and redirects to the profile route.
func (h *ProfileHandler) Search(w http.ResponseWriter, r *http.Request) {
	username := profile.SearchToUsername(r.URL.Query().Get("search_box"))
	if username == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/user/"+username, http.StatusFound)
}

// UpdateInfo refreshes the caller's display tags from their stable
// platform ids and redirects back to their profile.
func (h *ProfileHandler) UpdateInfo(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok || !sess.LoggedIn() {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.RefreshTags(r.Context(), sess.Username); err != nil {
		slog.Error("failed to refresh tags", "username", sess.Username, "err", err)
		writeDomainError(w, err)
		return
	}
	http.Redirect(w, r, "/user/"+sess.Username, http.StatusFound)
}

// Logout clears the session.
func (h *ProfileHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.SessionFromContext(r.Context()); ok {
		h.sessions.Clear(w, r, sess)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
