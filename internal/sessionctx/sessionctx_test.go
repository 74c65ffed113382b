package sessionctx

import (
	"context"
	"sync"
	"testing"

	"github.com/quickdatapro/core/internal/domain"
	"github.com/quickdatapro/core/internal/store"
)

type fakeRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{sessions: make(map[string]*domain.Session)}
}

func (f *fakeRepo) GetSession(_ context.Context, key string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sess := f.sessions[key]
	if sess == nil {
		return nil, nil
	}
	copy := *sess
	return &copy, nil
}

func (f *fakeRepo) SaveSession(_ context.Context, key string, sess *domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy := *sess
	f.sessions[key] = &copy
	return nil
}

func (f *fakeRepo) DeleteSession(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, key)
	return nil
}

func (f *fakeRepo) Ping(_ context.Context) error { return nil }
func (f *fakeRepo) Close() error                 { return nil }

func TestContext_StartsEmpty(t *testing.T) {
	c := New(newFakeRepo())
	if c.Current() != nil {
		t.Error("expected no session before restore or login")
	}
}

func TestContext_RestorePersisted(t *testing.T) {
	repo := newFakeRepo()
	repo.sessions[store.SessionKey] = &domain.Session{
		Email:       "a@x.com",
		IDToken:     "t1",
		AccessToken: "t2",
		Role:        domain.RoleRegistered,
	}

	c := New(repo)
	if err := c.Restore(context.Background()); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	sess := c.Current()
	if sess == nil || sess.Email != "a@x.com" {
		t.Fatalf("expected restored session for a@x.com, got %+v", sess)
	}
}

func TestContext_RestoreCorrupted(t *testing.T) {
	repo := newFakeRepo()
	// Missing access token and bogus role: not a valid session.
	repo.sessions[store.SessionKey] = &domain.Session{Email: "a@x.com", Role: "Admin"}

	c := New(repo)
	if err := c.Restore(context.Background()); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if c.Current() != nil {
		t.Error("corrupted persisted state should restore to no session")
	}
	if repo.sessions[store.SessionKey] != nil {
		t.Error("corrupted record should be removed from the store")
	}
}

func TestContext_SetAndClear(t *testing.T) {
	repo := newFakeRepo()
	c := New(repo)

	sess := &domain.Session{Email: "a@x.com", IDToken: "t1", AccessToken: "t2", Role: domain.RoleRegistered}
	if err := c.Set(context.Background(), sess); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if got := c.Current(); got == nil || got.AccessToken != "t2" {
		t.Fatalf("expected active session, got %+v", got)
	}
	if repo.sessions[store.SessionKey] == nil {
		t.Fatal("expected session to be persisted")
	}

	if err := c.Clear(context.Background()); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if c.Current() != nil {
		t.Error("expected no session after clear")
	}
	if repo.sessions[store.SessionKey] != nil {
		t.Error("expected persisted record removed after clear")
	}
}

func TestContext_DecorateByRole(t *testing.T) {
	repo := newFakeRepo()
	c := New(repo)

	payload := map[string]string{"process_code": "pc-1"}
	c.Decorate(payload)
	if _, ok := payload["user_email"]; ok {
		t.Error("no session: payload must be left untouched")
	}

	_ = c.Set(context.Background(), &domain.Session{Email: "u@x.com", IDToken: "t", AccessToken: "t", Role: domain.RoleRegistered})
	c.Decorate(payload)
	if payload["user_email"] != "u@x.com" {
		t.Errorf("expected user_email decoration, got %v", payload)
	}

	_ = c.Set(context.Background(), &domain.Session{Email: "ag@x.com", IDToken: "t", AccessToken: "t", Role: domain.RoleAgent})
	agentPayload := map[string]string{"process_code": "pc-1"}
	c.Decorate(agentPayload)
	if agentPayload["agent_email"] != "ag@x.com" {
		t.Errorf("expected agent_email decoration, got %v", agentPayload)
	}
}
