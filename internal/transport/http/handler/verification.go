package handler

import (
	"log/slog"
	"net/http"

	"github.com/marketplace-verify/internal/application/verification"
	"github.com/marketplace-verify/internal/domain"
	"github.com/marketplace-verify/internal/pkg/validate"
	"github.com/marketplace-verify/internal/transport/http/middleware"
)

type gamerTagRequest struct {
	GamerTag string `validate:"required,max=100"`
}

// VerificationHandler handles the platform confirmation flow endpoints.
type VerificationHandler struct {
	svc      *verification.Service
	sessions *middleware.SessionManager
}

func NewVerificationHandler(svc *verification.Service, sessions *middleware.SessionManager) *VerificationHandler {
	return &VerificationHandler{svc: svc, sessions: sessions}
}

// SelectPlatforms takes the initial platform checklist.
func (h *VerificationHandler) SelectPlatforms(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	out, err := h.svc.SelectPlatforms(sess, r.Form["platform_checkbox"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.saveAndRender(w, r, sess, out)
}

// NextStep renders the next pending platform challenge, or the agreement
// view once every selected platform is confirmed.
func (h *VerificationHandler) NextStep(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	out := h.svc.NextStep(sess)
	out.Warning = r.URL.Query().Get("warning_message")
	h.saveAndRender(w, r, sess, out)
}

// SubmitGamerTag begins or continues the current platform's challenge.
func (h *VerificationHandler) SubmitGamerTag(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	req := gamerTagRequest{GamerTag: r.FormValue("gamertag")}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.svc.SubmitGamerTag(r.Context(), sess, req.GamerTag)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.saveAndRender(w, r, sess, out)
}

// SubmitCode checks the 6-digit out-of-band code.
func (h *VerificationHandler) SubmitCode(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	out, err := h.svc.SubmitCode(r.Context(), sess, r.FormValue("verification_code"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.saveAndRender(w, r, sess, out)
}

// AcceptAgreement commits the completed verification and redirects to
// the profile. The blacklist check runs detached; the redirect never
// waits for it.
func (h *VerificationHandler) AcceptAgreement(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	if err := h.svc.AcceptAgreement(r.Context(), sess); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.sessions.Save(w, r, sess); err != nil {
		slog.Error("failed to save session", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	http.Redirect(w, r, "/user/"+sess.Username, http.StatusFound)
}

func (h *VerificationHandler) requireSession(w http.ResponseWriter, r *http.Request) (*domain.VerificationSession, bool) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok || !sess.LoggedIn() {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return sess, true
}

func (h *VerificationHandler) saveAndRender(w http.ResponseWriter, r *http.Request, sess *domain.VerificationSession, out verification.Outcome) {
	if err := h.sessions.Save(w, r, sess); err != nil {
		slog.Error("failed to save session", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeOutcome(w, out)
}
