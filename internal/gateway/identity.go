package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/quickdatapro/core/internal/domain"
)

// IdentityClient wraps the external identity provider and the
// security-challenge store behind it. Credential material passes through
// transiently and is never retained.
type IdentityClient struct {
	baseURL string
	hc      *http.Client
}

// NewIdentityClient creates a client for the identity provider API.
func NewIdentityClient(baseURL string, timeout time.Duration) *IdentityClient {
	return &IdentityClient{baseURL: baseURL, hc: newHTTPClient(timeout)}
}

// LoginResult carries the verdict of a successful credential check.
// The provider returns the randomly selected security question together
// with its expected answer; the answer is only ever compared inside the
// orchestrator and is not exposed through the public API.
type LoginResult struct {
	IDToken          string
	AccessToken      string
	Role             domain.Role
	SecurityQuestion string
	SecurityAnswer   string
}

type loginResponse struct {
	statusEnvelope
	IDToken          string `json:"IdToken"`
	AccessToken      string `json:"AccessToken"`
	Role             string `json:"role"`
	SecurityQuestion string `json:"securityQuestion"`
	SecurityAnswer   string `json:"securityAnswer"`
}

// Login authenticates email/password against the identity provider.
// A missing security profile surfaces as not-found; any other rejection
// is an authentication failure.
func (c *IdentityClient) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	payload := map[string]string{"email": email, "password": password}

	var resp loginResponse
	code, err := postJSON(ctx, c.hc, c.baseURL+"/api/login", payload, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.success() {
		if code == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, resp.Message)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrAuthentication, resp.Message)
	}

	return &LoginResult{
		IDToken:          resp.IDToken,
		AccessToken:      resp.AccessToken,
		Role:             domain.Role(resp.Role),
		SecurityQuestion: resp.SecurityQuestion,
		SecurityAnswer:   resp.SecurityAnswer,
	}, nil
}

// Signup creates an unconfirmed account and returns the provider-assigned
// user ID.
func (c *IdentityClient) Signup(ctx context.Context, email, password string, role domain.Role) (string, error) {
	payload := map[string]string{
		"email":    email,
		"password": password,
		"role":     string(role),
	}

	var resp statusEnvelope
	code, err := postJSON(ctx, c.hc, c.baseURL+"/api/signup", payload, &resp)
	if err != nil {
		return "", err
	}
	if !resp.success() {
		return "", classify(code, resp.Message)
	}
	// On success the provider returns the new user ID in the message field.
	return resp.Message, nil
}

// PutSecurityProfile stores the two question/answer pairs for an account.
// The store rejects re-creation for already confirmed accounts.
func (c *IdentityClient) PutSecurityProfile(ctx context.Context, p *domain.SecurityProfile) error {
	var resp statusEnvelope
	code, err := postJSON(ctx, c.hc, c.baseURL+"/api/signup/securityquestions", p, &resp)
	if err != nil {
		return err
	}
	if !resp.success() {
		return classify(code, resp.Message)
	}
	return nil
}

// Confirm marks the account confirmed with the identity provider.
func (c *IdentityClient) Confirm(ctx context.Context, email string) error {
	payload := map[string]string{"email": email, "status": "Confirmed"}

	var resp statusEnvelope
	code, err := postJSON(ctx, c.hc, c.baseURL+"/api/signup/confirmation", payload, &resp)
	if err != nil {
		return err
	}
	if !resp.success() {
		return classify(code, resp.Message)
	}
	return nil
}

// Logout globally invalidates the access token.
func (c *IdentityClient) Logout(ctx context.Context, token string) error {
	payload := map[string]string{"token": token}

	var resp statusEnvelope
	code, err := postJSON(ctx, c.hc, c.baseURL+"/api/logout", payload, &resp)
	if err != nil {
		return err
	}
	if !resp.success() {
		return classify(code, resp.Message)
	}
	return nil
}
