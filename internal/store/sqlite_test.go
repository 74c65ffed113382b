package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/quickdatapro/core/internal/domain"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()

	repo, err := NewSQLite(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteStore_SessionRoundtrip(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	sess := &domain.Session{
		Email:       "u@x.com",
		IDToken:     "id-token",
		AccessToken: "access-token",
		Role:        domain.RoleRegistered,
	}
	if err := repo.SaveSession(ctx, SessionKey, sess); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	got, err := repo.GetSession(ctx, SessionKey)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected stored session")
	}
	if got.Email != sess.Email || got.IDToken != sess.IDToken ||
		got.AccessToken != sess.AccessToken || got.Role != sess.Role {
		t.Errorf("roundtrip mismatch: got %+v want %+v", got, sess)
	}
}

func TestSQLiteStore_SaveReplaces(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	first := &domain.Session{Email: "a@x.com", IDToken: "t1", AccessToken: "t1", Role: domain.RoleRegistered}
	second := &domain.Session{Email: "b@x.com", IDToken: "t2", AccessToken: "t2", Role: domain.RoleAgent}

	if err := repo.SaveSession(ctx, SessionKey, first); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}
	if err := repo.SaveSession(ctx, SessionKey, second); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	got, err := repo.GetSession(ctx, SessionKey)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Email != "b@x.com" || got.Role != domain.RoleAgent {
		t.Errorf("expected replaced session, got %+v", got)
	}
}

func TestSQLiteStore_MissingSessionIsNil(t *testing.T) {
	repo := newTestStore(t)

	got, err := repo.GetSession(context.Background(), SessionKey)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing session, got %+v", got)
	}
}

func TestSQLiteStore_Delete(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	sess := &domain.Session{Email: "u@x.com", IDToken: "t", AccessToken: "t", Role: domain.RoleRegistered}
	if err := repo.SaveSession(ctx, SessionKey, sess); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}
	if err := repo.DeleteSession(ctx, SessionKey); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}

	got, err := repo.GetSession(ctx, SessionKey)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected session removed, got %+v", got)
	}

	// Deleting again is a no-op, not an error.
	if err := repo.DeleteSession(ctx, SessionKey); err != nil {
		t.Errorf("second delete failed: %v", err)
	}
}
