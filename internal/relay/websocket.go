package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/coder/websocket"
	"github.com/quickdatapro/core/internal/domain"
	"github.com/quickdatapro/core/internal/sessionctx"
)

// ChatSocketHandler hosts the live conversation view over WebSocket. The
// per-client poll task runs server-side: selecting a process code starts
// it, selecting another switches it, and at most one task is active per
// connection at any time.
type ChatSocketHandler struct {
	svc           *Service
	poller        *Poller
	sessions      *sessionctx.Context
	allowedOrigin string
	isDev         bool
}

// NewChatSocketHandler creates a WebSocket handler for the relay.
func NewChatSocketHandler(svc *Service, poller *Poller, sessions *sessionctx.Context, allowedOrigin string, isDev bool) *ChatSocketHandler {
	return &ChatSocketHandler{
		svc:           svc,
		poller:        poller,
		sessions:      sessions,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// chatRequest is a client command on the chat socket.
type chatRequest struct {
	Type        string `json:"type"` // "select", "send", "end", "leave"
	ProcessCode string `json:"process_code,omitempty"`
	Message     string `json:"message,omitempty"`
	Confirmed   bool   `json:"confirmed,omitempty"`
}

// chatEvent is a server push on the chat socket.
type chatEvent struct {
	Type        string           `json:"type"` // "messages", "ended", "error"
	ProcessCode string           `json:"process_code,omitempty"`
	Messages    []domain.Message `json:"messages,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *ChatSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	sess := h.sessions.Current()
	if sess == nil {
		http.Error(w, "no active session", http.StatusUnauthorized)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "chat closed"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr)
		}
	}()

	slog.Info("Chat socket connected", "email", sess.Email, "role", sess.Role)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var writeMu sync.Mutex
	push := func(ev chatEvent) {
		writeMu.Lock()
		defer writeMu.Unlock()
		data, err := json.Marshal(ev)
		if err != nil {
			slog.Error("Failed to encode chat event", "error", err)
			return
		}
		if err := ws.Write(ctx, websocket.MessageText, data); err != nil {
			slog.Debug("Chat socket write failed", "error", err)
		}
	}

	selector := NewSelector(h.poller)
	defer selector.Stop()

	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			slog.Debug("Chat socket read ended", "error", err)
			return
		}

		var req chatRequest
		if err := json.Unmarshal(data, &req); err != nil {
			push(chatEvent{Type: "error", Error: "malformed request"})
			continue
		}

		h.handle(ctx, selector, push, sess.Role, req)
	}
}

func (h *ChatSocketHandler) handle(ctx context.Context, selector *Selector, push func(chatEvent), role domain.Role, req chatRequest) {
	switch req.Type {
	case "select":
		code := req.ProcessCode
		if strings.TrimSpace(code) == "" {
			push(chatEvent{Type: "error", Error: "process_code is required"})
			return
		}
		selector.Select(ctx, code,
			func(messages []domain.Message) {
				push(chatEvent{Type: "messages", ProcessCode: code, Messages: messages})
			},
			func(err error) {
				push(chatEvent{Type: "ended", ProcessCode: code, Error: err.Error()})
			},
		)

	case "send":
		if err := h.svc.Send(ctx, req.ProcessCode, req.Message, role); err != nil {
			push(chatEvent{Type: "error", ProcessCode: req.ProcessCode, Error: err.Error()})
			return
		}
		// Push the updated sequence right away instead of waiting a tick.
		if messages, err := h.svc.Poll(ctx, req.ProcessCode); err == nil {
			push(chatEvent{Type: "messages", ProcessCode: req.ProcessCode, Messages: messages})
		}

	case "end":
		if err := h.svc.End(ctx, req.ProcessCode, role, req.Confirmed); err != nil {
			push(chatEvent{Type: "error", ProcessCode: req.ProcessCode, Error: err.Error()})
			return
		}
		if req.Confirmed {
			selector.Stop()
			push(chatEvent{Type: "ended", ProcessCode: req.ProcessCode})
		}

	case "leave":
		selector.Stop()

	default:
		push(chatEvent{Type: "error", Error: "unknown request type"})
	}
}

func (h *ChatSocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || origin == h.allowedOrigin
}
