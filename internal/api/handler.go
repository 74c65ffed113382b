// Package api provides HTTP handlers for the QuickDataPro core API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quickdatapro/core/internal/auth"
	"github.com/quickdatapro/core/internal/domain"
	"github.com/quickdatapro/core/internal/relay"
	"github.com/quickdatapro/core/internal/sessionctx"
)

// FeedbackGateway is the slice of the feedback collaborator the handlers
// need.
type FeedbackGateway interface {
	Submit(ctx context.Context, feedback, feature string) error
	List(ctx context.Context, feature string) ([]domain.Feedback, error)
}

// Handler wires the orchestrator, the relay service and the feedback
// gateway to the HTTP surface.
type Handler struct {
	orch     *auth.Orchestrator
	relay    *relay.Service
	feedback FeedbackGateway
	sessions *sessionctx.Context
}

// NewHandler creates a new Handler with common dependencies. feedback may
// be nil when no feedback backend is configured.
func NewHandler(orch *auth.Orchestrator, relaySvc *relay.Service, feedback FeedbackGateway, sessions *sessionctx.Context) *Handler {
	return &Handler{
		orch:     orch,
		relay:    relaySvc,
		feedback: feedback,
		sessions: sessions,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response in the collaborator envelope shape.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"status": "Failure", "message": message})
}

// fail maps a flow error to its HTTP status via the error taxonomy.
func fail(w http.ResponseWriter, err error) {
	Error(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrTransient):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
