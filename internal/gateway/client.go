// Package gateway contains HTTP clients for the external collaborators:
// the identity provider, the security-challenge store, the notification
// dispatcher, the conversation relay backend and the feedback backend.
// All calls are stateless JSON-over-HTTP requests with a shared timeout.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/quickdatapro/core/internal/domain"
)

const maxResponseBytes = 1 << 20

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// statusEnvelope is the common response shape shared by the identity
// provider, the security-challenge store and the notification dispatcher.
type statusEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (e *statusEnvelope) success() bool {
	return e.Status == "Success"
}

// postJSON sends payload to url and decodes the response body into out
// (pass nil to discard). It returns the HTTP status code; transport
// failures map to the transient error class.
func postJSON(ctx context.Context, hc *http.Client, url string, payload, out any) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("post %s: %w: %w", url, domain.ErrTransient, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response from %s: %w: %w", url, domain.ErrTransient, err)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response from %s: %w: %w", url, domain.ErrTransient, err)
		}
	}

	return resp.StatusCode, nil
}

// getJSON issues a GET request and decodes the JSON response into out.
func getJSON(ctx context.Context, hc *http.Client, url string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("get %s: %w: %w", url, domain.ErrTransient, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response from %s: %w: %w", url, domain.ErrTransient, err)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response from %s: %w: %w", url, domain.ErrTransient, err)
		}
	}

	return resp.StatusCode, nil
}

// classify maps a collaborator failure into the core error taxonomy.
// msg is the collaborator-supplied message, surfaced to the caller.
func classify(code int, msg string) error {
	if msg == "" {
		msg = http.StatusText(code)
	}
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrAuthentication, msg)
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, msg)
	case code >= 400 && code < 500:
		return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
	default:
		return fmt.Errorf("%w: %s", domain.ErrTransient, msg)
	}
}
