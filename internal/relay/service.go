// Package relay maintains process-code scoped conversations between an
// end user and a support agent on top of the relay backend collaborator.
package relay

import (
	"context"
	"fmt"
	"strings"

	"github.com/quickdatapro/core/internal/domain"
)

// Backend is the slice of the relay collaborator the service needs.
type Backend interface {
	ListForUser(ctx context.Context, email string) ([]string, error)
	ListForAgent(ctx context.Context, email string) ([]string, error)
	Publish(ctx context.Context, payload map[string]string) error
	Reply(ctx context.Context, payload map[string]string) error
	End(ctx context.Context, payload map[string]string) error
	Poll(ctx context.Context, processCode string) ([]domain.Message, error)
}

// Decorator mutates an outgoing relay payload before dispatch. The
// session context supplies one that appends the caller's identity fields.
type Decorator func(payload map[string]string)

// Service exposes the conversation relay operations with role-aware
// semantics. It holds no conversation state of its own; all durable state
// lives in the backend.
type Service struct {
	backend  Backend
	decorate Decorator
}

// NewService creates a relay service. decorate may be nil.
func NewService(backend Backend, decorate Decorator) *Service {
	if decorate == nil {
		decorate = func(map[string]string) {}
	}
	return &Service{backend: backend, decorate: decorate}
}

// List returns the process codes visible to the caller: all codes for a
// user, only assigned codes for an agent. An empty result is valid.
func (s *Service) List(ctx context.Context, email string, role domain.Role) ([]string, error) {
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if role.IsAgent() {
		return s.backend.ListForAgent(ctx, email)
	}
	return s.backend.ListForUser(ctx, email)
}

// Send appends a message to the conversation under processCode. The
// payload is decorated with the caller's identity before dispatch; agents
// route through the reply endpoint, users through the publisher.
func (s *Service) Send(ctx context.Context, processCode, text string, role domain.Role) error {
	if strings.TrimSpace(processCode) == "" {
		return fmt.Errorf("%w: process code is required", domain.ErrValidation)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: message cannot be empty", domain.ErrValidation)
	}

	payload := map[string]string{
		"process_code": processCode,
		"message":      text,
	}
	s.decorate(payload)

	if role.IsAgent() {
		return s.backend.Reply(ctx, payload)
	}
	return s.backend.Publish(ctx, payload)
}

// Poll returns the full ordered message sequence for processCode. It is
// an idempotent read, safe to call repeatedly.
func (s *Service) Poll(ctx context.Context, processCode string) ([]domain.Message, error) {
	if strings.TrimSpace(processCode) == "" {
		return nil, fmt.Errorf("%w: process code is required", domain.ErrValidation)
	}
	return s.backend.Poll(ctx, processCode)
}

// End requests termination of the conversation. confirmed=false is the
// cancel half of the two-phase confirm: the backend is told "no" and the
// conversation remains open; confirmed=true terminates it for both
// parties and it stops appearing in subsequent List results.
func (s *Service) End(ctx context.Context, processCode string, role domain.Role, confirmed bool) error {
	if strings.TrimSpace(processCode) == "" {
		return fmt.Errorf("%w: process code is required", domain.ErrValidation)
	}

	status := "no"
	if confirmed {
		status = "yes"
	}

	sender := domain.SenderUser
	if role.IsAgent() {
		sender = domain.SenderAgent
	}

	payload := map[string]string{
		"process_code": processCode,
		"role":         string(sender),
		"status":       status,
	}
	s.decorate(payload)

	return s.backend.End(ctx, payload)
}
