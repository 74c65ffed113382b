package api

import (
	"net/http"
	"strings"

	"github.com/quickdatapro/core/internal/domain"
)

type feedbackRequest struct {
	Feedback string `json:"feedback"`
	Feature  string `json:"feature"`
}

// SubmitFeedbackHandler stores one free-text feedback record tagged by
// feature. Sentiment scoring happens asynchronously on the collaborator.
func (h *Handler) SubmitFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	if h.feedback == nil {
		Error(w, http.StatusServiceUnavailable, "feedback backend not configured")
		return
	}

	var req feedbackRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Feedback) == "" {
		Error(w, http.StatusBadRequest, "no feedback provided")
		return
	}
	if strings.TrimSpace(req.Feature) == "" {
		Error(w, http.StatusBadRequest, "no feature provided")
		return
	}

	if err := h.feedback.Submit(r.Context(), req.Feedback, req.Feature); err != nil {
		fail(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]string{"status": "Success"})
}

// ListFeedbackHandler returns previously scored feedback, optionally
// filtered by the feature query parameter.
func (h *Handler) ListFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	if h.feedback == nil {
		Error(w, http.StatusServiceUnavailable, "feedback backend not configured")
		return
	}

	records, err := h.feedback.List(r.Context(), r.URL.Query().Get("feature"))
	if err != nil {
		fail(w, err)
		return
	}
	if records == nil {
		records = []domain.Feedback{}
	}

	JSON(w, http.StatusOK, records)
}
