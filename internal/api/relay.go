package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/quickdatapro/core/internal/domain"
)

// callerSession resolves the active session or writes a 401.
func (h *Handler) callerSession(w http.ResponseWriter) *domain.Session {
	sess := h.sessions.Current()
	if sess == nil {
		Error(w, http.StatusUnauthorized, "no active session")
		return nil
	}
	return sess
}

// ListConversationsHandler returns the process codes visible to the
// caller. An empty list is a valid result.
func (h *Handler) ListConversationsHandler(w http.ResponseWriter, r *http.Request) {
	sess := h.callerSession(w)
	if sess == nil {
		return
	}

	codes, err := h.relay.List(r.Context(), sess.Email, sess.Role)
	if err != nil {
		fail(w, err)
		return
	}
	if codes == nil {
		codes = []string{}
	}

	JSON(w, http.StatusOK, map[string][]string{"codes": codes})
}

// PollMessagesHandler returns the full ordered message sequence for a
// process code. Pure read, safe to call on an interval.
func (h *Handler) PollMessagesHandler(w http.ResponseWriter, r *http.Request) {
	sess := h.callerSession(w)
	if sess == nil {
		return
	}

	code := chi.URLParam(r, "code")
	messages, err := h.relay.Poll(r.Context(), code)
	if err != nil {
		fail(w, err)
		return
	}
	if messages == nil {
		messages = []domain.Message{}
	}

	JSON(w, http.StatusOK, map[string][]domain.Message{"messages": messages})
}

type sendMessageRequest struct {
	Message string `json:"message"`
}

// SendMessageHandler appends a message to the conversation.
func (h *Handler) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	sess := h.callerSession(w)
	if sess == nil {
		return
	}

	var req sendMessageRequest
	if !decode(w, r, &req) {
		return
	}

	code := chi.URLParam(r, "code")
	if err := h.relay.Send(r.Context(), code, req.Message, sess.Role); err != nil {
		fail(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]string{
		"status":  "Success",
		"message": "Message published successfully",
	})
}

type endConversationRequest struct {
	Confirmed bool `json:"confirmed"`
}

// EndConversationHandler is the two-phase end: confirmed=false cancels
// and leaves the conversation open, confirmed=true terminates it.
func (h *Handler) EndConversationHandler(w http.ResponseWriter, r *http.Request) {
	sess := h.callerSession(w)
	if sess == nil {
		return
	}

	var req endConversationRequest
	if !decode(w, r, &req) {
		return
	}

	code := chi.URLParam(r, "code")
	if err := h.relay.End(r.Context(), code, sess.Role, req.Confirmed); err != nil {
		fail(w, err)
		return
	}

	msg := "Conversation remains open."
	if req.Confirmed {
		msg = "Conversation ended."
	}
	JSON(w, http.StatusOK, map[string]string{"status": "Success", "message": msg})
}
