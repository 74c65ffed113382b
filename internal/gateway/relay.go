package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/quickdatapro/core/internal/domain"
)

// RelayClient talks to the conversation relay backend. Send and end
// payloads are assembled by the relay service (which runs the identity
// decoration hook) and passed through here untouched.
type RelayClient struct {
	baseURL string
	hc      *http.Client
}

// NewRelayClient creates a client for the relay backend.
func NewRelayClient(baseURL string, timeout time.Duration) *RelayClient {
	return &RelayClient{baseURL: baseURL, hc: newHTTPClient(timeout)}
}

// ListForUser returns all process codes associated with a user's account.
// A backend miss means the user has no conversations yet, not an error.
func (c *RelayClient) ListForUser(ctx context.Context, email string) ([]string, error) {
	payload := map[string]string{"user_email": email}

	var resp struct {
		Codes []string `json:"codes"`
		Error string   `json:"error"`
	}
	code, err := postJSON(ctx, c.hc, c.baseURL+"/GetUserProcessCodes", payload, &resp)
	if err != nil {
		return nil, err
	}
	if code == http.StatusNotFound {
		return nil, nil
	}
	if code >= 400 {
		return nil, classify(code, resp.Error)
	}
	return resp.Codes, nil
}

// ListForAgent returns only the process codes explicitly assigned to the
// agent. As with ListForUser, a backend miss is an empty result.
func (c *RelayClient) ListForAgent(ctx context.Context, email string) ([]string, error) {
	payload := map[string]string{"agent_email": email}

	var resp struct {
		Conversations []string `json:"conversations"`
		Error         string   `json:"error"`
	}
	code, err := postJSON(ctx, c.hc, c.baseURL+"/GetAgentConversations", payload, &resp)
	if err != nil {
		return nil, err
	}
	if code == http.StatusNotFound {
		return nil, nil
	}
	if code >= 400 {
		return nil, classify(code, resp.Error)
	}
	return resp.Conversations, nil
}

// Publish appends a user message to the conversation. The payload must
// already carry process_code, message and the decorated identity fields.
func (c *RelayClient) Publish(ctx context.Context, payload map[string]string) error {
	return c.dispatch(ctx, "/PublisherFunction", payload)
}

// Reply appends an agent message; the backend checks assignment.
func (c *RelayClient) Reply(ctx context.Context, payload map[string]string) error {
	return c.dispatch(ctx, "/AgentReplyFunction", payload)
}

// End requests conversation termination. The payload carries the role and
// the "yes"/"no" confirmation status.
func (c *RelayClient) End(ctx context.Context, payload map[string]string) error {
	return c.dispatch(ctx, "/EndConversationApi", payload)
}

func (c *RelayClient) dispatch(ctx context.Context, path string, payload map[string]string) error {
	var resp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	code, err := postJSON(ctx, c.hc, c.baseURL+path, payload, &resp)
	if err != nil {
		return err
	}
	if code >= 400 {
		return classify(code, resp.Error)
	}
	return nil
}

// Poll returns the full ordered message sequence for a process code.
// It is a pure read; an unknown code is a terminal not-found.
func (c *RelayClient) Poll(ctx context.Context, processCode string) ([]domain.Message, error) {
	payload := map[string]string{"process_code": processCode}

	var resp struct {
		Messages []domain.Message `json:"messages"`
		Error    string           `json:"error"`
	}
	code, err := postJSON(ctx, c.hc, c.baseURL+"/RefreshChatFunction", payload, &resp)
	if err != nil {
		return nil, err
	}
	if code == http.StatusNotFound {
		return nil, fmt.Errorf("%w: conversation %s", domain.ErrNotFound, processCode)
	}
	if code >= 400 {
		return nil, classify(code, resp.Error)
	}
	return resp.Messages, nil
}
