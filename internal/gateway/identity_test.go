package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quickdatapro/core/internal/domain"
)

func TestIdentityClient_LoginSuccess(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/login" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":           "Success",
			"IdToken":          "id-token",
			"AccessToken":      "access-token",
			"role":             "Registered",
			"securityQuestion": "What city were you born in?",
			"securityAnswer":   "Paris",
		})
	}))
	defer srv.Close()

	c := NewIdentityClient(srv.URL, time.Second)
	result, err := c.Login(context.Background(), "u@x.com", "secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if gotBody["email"] != "u@x.com" || gotBody["password"] != "secret" {
		t.Errorf("unexpected request body %v", gotBody)
	}
	if result.IDToken != "id-token" || result.AccessToken != "access-token" {
		t.Errorf("tokens not captured: %+v", result)
	}
	if result.Role != domain.RoleRegistered {
		t.Errorf("unexpected role %q", result.Role)
	}
	if result.SecurityQuestion == "" || result.SecurityAnswer != "Paris" {
		t.Errorf("security pair not captured: %+v", result)
	}
}

func TestIdentityClient_LoginRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "Failure",
			"message": "Incorrect username or password",
		})
	}))
	defer srv.Close()

	c := NewIdentityClient(srv.URL, time.Second)
	_, err := c.Login(context.Background(), "u@x.com", "wrong")
	if !errors.Is(err, domain.ErrAuthentication) {
		t.Errorf("expected authentication error, got %v", err)
	}
}

func TestIdentityClient_LoginUnknownAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "Failure",
			"message": "User not found",
		})
	}))
	defer srv.Close()

	c := NewIdentityClient(srv.URL, time.Second)
	_, err := c.Login(context.Background(), "ghost@x.com", "pw")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestIdentityClient_ProviderUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewIdentityClient(srv.URL, time.Second)
	_, err := c.Login(context.Background(), "u@x.com", "pw")
	if !errors.Is(err, domain.ErrTransient) {
		t.Errorf("expected transient error for unreachable provider, got %v", err)
	}
}

func TestIdentityClient_SignupReturnsUserID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/signup" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "Success",
			"message": "user-42",
		})
	}))
	defer srv.Close()

	c := NewIdentityClient(srv.URL, time.Second)
	id, err := c.Signup(context.Background(), "new@x.com", "pw", domain.RoleRegistered)
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	if id != "user-42" {
		t.Errorf("expected provider-assigned user ID, got %q", id)
	}
}

func TestIdentityClient_PutSecurityProfileRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/signup/securityquestions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "Failure",
			"message": "Security questions already exist",
		})
	}))
	defer srv.Close()

	c := NewIdentityClient(srv.URL, time.Second)
	err := c.PutSecurityProfile(context.Background(), &domain.SecurityProfile{
		Email: "u@x.com", Question1: "Q1", Answer1: "A1", Question2: "Q2", Answer2: "A2",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestIdentityClient_ConfirmSendsStatus(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "Success"})
	}))
	defer srv.Close()

	c := NewIdentityClient(srv.URL, time.Second)
	if err := c.Confirm(context.Background(), "new@x.com"); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if gotBody["email"] != "new@x.com" || gotBody["status"] != "Confirmed" {
		t.Errorf("unexpected confirmation body %v", gotBody)
	}
}
