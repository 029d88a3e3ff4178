package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/marketplace-verify/internal/application/profile"
	"github.com/marketplace-verify/internal/application/verification"
	"github.com/marketplace-verify/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ViewEnvelope names the view the frontend should render next, plus any
// inline warning and the platform currently being confirmed.
type ViewEnvelope struct {
	View     string `json:"view"`
	Platform string `json:"platform,omitempty"`
	Warning  string `json:"warning,omitempty"`
}

// ErrorViewEnvelope is rendered for hard failures of the OAuth flow.
type ErrorViewEnvelope struct {
	View         string `json:"view"`
	ErrorTitle   string `json:"error_title"`
	ErrorMessage string `json:"error_message"`
}

// ProfileEnvelope wraps the public profile view.
type ProfileEnvelope struct {
	View    string        `json:"view"`
	Profile *profile.Info `json:"profile"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// writeOutcome renders a state-machine outcome as a view envelope.
func writeOutcome(w http.ResponseWriter, out verification.Outcome) {
	env := ViewEnvelope{View: string(out.View), Warning: out.Warning}
	if out.Platform != "" {
		env.Platform = out.Platform.DisplayName()
	}
	writeJSON(w, http.StatusOK, env)
}

// writeDomainError maps sentinel domain errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "conflict")
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
