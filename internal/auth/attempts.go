package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/quickdatapro/core/internal/domain"
)

// loginAttempt is the server-held state of one in-progress login flow.
// Each attempt owns its own challenge instance; nothing is shared between
// concurrent attempts. mu serializes concurrent submissions carrying the
// same attempt ID: step checks and advances happen under it, so at most
// one request can consume a given step.
type loginAttempt struct {
	mu        sync.Mutex
	id        string
	email     string
	step      LoginStep
	idToken   string
	access    string
	role      domain.Role
	question  string
	answer    string // selected pair's expected answer, compared case-sensitively
	challenge domain.Challenge
	createdAt time.Time
}

// signupAttempt is the server-held state of one in-progress signup flow.
// mu plays the same role as on loginAttempt.
type signupAttempt struct {
	mu        sync.Mutex
	id        string
	email     string
	role      domain.Role
	step      SignupStep
	challenge domain.Challenge
	createdAt time.Time
}

// attemptStore keeps in-progress flow attempts in memory. Attempts are
// ephemeral: completed or failed flows remove them, and a sweeper reclaims
// abandoned ones.
type attemptStore struct {
	mu      sync.Mutex
	logins  map[string]*loginAttempt
	signups map[string]*signupAttempt
}

func newAttemptStore() *attemptStore {
	return &attemptStore{
		logins:  make(map[string]*loginAttempt),
		signups: make(map[string]*signupAttempt),
	}
}

func (s *attemptStore) putLogin(a *loginAttempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logins[a.id] = a
}

func (s *attemptStore) getLogin(id string) *loginAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins[id]
}

func (s *attemptStore) deleteLogin(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.logins, id)
}

func (s *attemptStore) putSignup(a *signupAttempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signups[a.id] = a
}

func (s *attemptStore) getSignup(id string) *signupAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signups[id]
}

func (s *attemptStore) deleteSignup(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.signups, id)
}

// sweep removes attempts older than ttl and returns how many were removed.
func (s *attemptStore) sweep(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, a := range s.logins {
		if a.createdAt.Before(cutoff) {
			delete(s.logins, id)
			removed++
		}
	}
	for id, a := range s.signups {
		if a.createdAt.Before(cutoff) {
			delete(s.signups, id)
			removed++
		}
	}
	return removed
}

// StartAttemptSweeper reclaims abandoned flow attempts until ctx is done.
func (o *Orchestrator) StartAttemptSweeper(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Attempt sweeper started", "interval", interval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				if n := o.attempts.sweep(ttl); n > 0 {
					slog.Info("Swept abandoned auth attempts", "count", n)
				}
			case <-ctx.Done():
				slog.Info("Attempt sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
