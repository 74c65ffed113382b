package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_API_URL", "http://auth.local")
	t.Setenv("RELAY_API_URL", "http://relay.local")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Errorf("expected default HTTP timeout 15s, got %v", cfg.HTTPTimeout)
	}
	if cfg.PollInterval != 20*time.Second {
		t.Errorf("expected default poll interval 20s, got %v", cfg.PollInterval)
	}
	if cfg.AttemptTTL != 10*time.Minute {
		t.Errorf("expected default attempt TTL 10m, got %v", cfg.AttemptTTL)
	}
}

func TestLoad_MissingCollaboratorURL(t *testing.T) {
	t.Setenv("AUTH_API_URL", "http://auth.local")
	t.Setenv("RELAY_API_URL", "")

	if _, err := Load(); err == nil {
		t.Error("expected error when RELAY_API_URL is unset")
	}
}

func TestGetEnvDuration_Formats(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "45s")
	if d := getEnvDuration("POLL_INTERVAL", time.Second); d != 45*time.Second {
		t.Errorf("duration string: got %v", d)
	}

	t.Setenv("POLL_INTERVAL", "30")
	if d := getEnvDuration("POLL_INTERVAL", time.Second); d != 30*time.Second {
		t.Errorf("bare seconds: got %v", d)
	}

	t.Setenv("POLL_INTERVAL", "nonsense")
	if d := getEnvDuration("POLL_INTERVAL", 7*time.Second); d != 7*time.Second {
		t.Errorf("fallback: got %v", d)
	}
}

func TestIsDevelopment(t *testing.T) {
	cases := []struct {
		frontend string
		want     bool
	}{
		{"", true},
		{"http://localhost:3000", true},
		{"http://127.0.0.1:3000", true},
		{"https://app.quickdatapro.com", false},
	}
	for _, tc := range cases {
		c := &Config{FrontendURL: tc.frontend}
		if got := c.IsDevelopment(); got != tc.want {
			t.Errorf("IsDevelopment(%q) = %v, want %v", tc.frontend, got, tc.want)
		}
	}
}
