package auth

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quickdatapro/core/internal/domain"
	"github.com/quickdatapro/core/internal/gateway"
	"github.com/quickdatapro/core/internal/sessionctx"
)

// IdentityGateway is the slice of the identity provider the flows need.
type IdentityGateway interface {
	Login(ctx context.Context, email, password string) (*gateway.LoginResult, error)
	Signup(ctx context.Context, email, password string, role domain.Role) (string, error)
	PutSecurityProfile(ctx context.Context, p *domain.SecurityProfile) error
	Confirm(ctx context.Context, email string) error
	Logout(ctx context.Context, token string) error
}

// NotificationSender delivers best-effort transactional email.
type NotificationSender interface {
	Notify(ctx context.Context, email string, msg gateway.Notification) error
}

// LoginEventLogger records login events for the dashboard. Best-effort.
type LoginEventLogger interface {
	LogLogin(ctx context.Context, email string, role domain.Role) error
}

// Orchestrator drives the client-visible multi-step login and signup
// state machines. Each in-progress flow is an attempt keyed by an opaque
// ID the client carries between steps.
type Orchestrator struct {
	identity IdentityGateway
	notifier NotificationSender
	loginLog LoginEventLogger
	sessions *sessionctx.Context
	attempts *attemptStore

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates an orchestrator. notifier and loginLog may be nil to disable
// the corresponding side effects.
func New(identity IdentityGateway, notifier NotificationSender, loginLog LoginEventLogger, sessions *sessionctx.Context) *Orchestrator {
	return &Orchestrator{
		identity: identity,
		notifier: notifier,
		loginLog: loginLog,
		sessions: sessions,
		attempts: newAttemptStore(),
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Challenge generates a fresh arithmetic challenge.
func (o *Orchestrator) Challenge() domain.Challenge {
	o.rngMu.Lock()
	defer o.rngMu.Unlock()
	return domain.NewChallenge(o.rng)
}

// LoginStart is the client-visible outcome of a successful credential
// check: an attempt handle and the selected security question. The
// expected answer stays server-side.
type LoginStart struct {
	AttemptID        string
	SecurityQuestion string
}

// MathPrompt presents a generated challenge without its answer.
type MathPrompt struct {
	Operand1 int
	Operand2 int
	Operator domain.Operator
}

// StartLogin runs the credentials step: it authenticates against the
// identity provider, captures the tokens and the selected security pair,
// and generates the challenge for the final step. No session exists until
// every step has passed.
func (o *Orchestrator) StartLogin(ctx context.Context, email, password string) (*LoginStart, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	result, err := o.identity.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if result.SecurityQuestion == "" || result.SecurityAnswer == "" {
		return nil, fmt.Errorf("%w: security profile missing for account", domain.ErrNotFound)
	}

	attempt := &loginAttempt{
		id:        uuid.NewString(),
		email:     email,
		step:      LoginStepSecurityAnswer,
		idToken:   result.IDToken,
		access:    result.AccessToken,
		role:      result.Role,
		question:  result.SecurityQuestion,
		answer:    result.SecurityAnswer,
		challenge: o.Challenge(),
		createdAt: time.Now(),
	}
	o.attempts.putLogin(attempt)

	slog.Info("Login attempt started", "email", email, "attempt_id", attempt.id)
	return &LoginStart{AttemptID: attempt.id, SecurityQuestion: attempt.question}, nil
}

// SubmitSecurityAnswer runs the security-answer step. The comparison is
// case-sensitive exact match against the pair selected at login. A
// mismatch ends the attempt; the caller must restart from credentials.
func (o *Orchestrator) SubmitSecurityAnswer(ctx context.Context, attemptID, answer string) (*MathPrompt, error) {
	attempt := o.attempts.getLogin(attemptID)
	if attempt == nil {
		return nil, fmt.Errorf("%w: login attempt not found", domain.ErrNotFound)
	}

	attempt.mu.Lock()
	defer attempt.mu.Unlock()
	// A concurrent submission may have ended the attempt while we waited.
	if o.attempts.getLogin(attemptID) != attempt {
		return nil, fmt.Errorf("%w: login attempt not found", domain.ErrNotFound)
	}
	if attempt.step != LoginStepSecurityAnswer {
		return nil, fmt.Errorf("%w: security answer not expected at step %s", domain.ErrValidation, attempt.step)
	}

	if answer != attempt.answer {
		o.attempts.deleteLogin(attemptID)
		slog.Info("Login attempt failed at security answer", "email", attempt.email)
		return nil, fmt.Errorf("%w: wrong security answer", domain.ErrAuthentication)
	}

	attempt.step, _ = attempt.step.Next()
	return &MathPrompt{
		Operand1: attempt.challenge.Operand1,
		Operand2: attempt.challenge.Operand2,
		Operator: attempt.challenge.Operator,
	}, nil
}

// SubmitLoginMathAnswer runs the final step. On a correct answer the
// session is constructed from the tokens captured at the credentials step,
// persisted, and the login notification fires best-effort. A wrong answer
// ends the attempt.
func (o *Orchestrator) SubmitLoginMathAnswer(ctx context.Context, attemptID string, answer int) (*domain.Session, error) {
	attempt := o.attempts.getLogin(attemptID)
	if attempt == nil {
		return nil, fmt.Errorf("%w: login attempt not found", domain.ErrNotFound)
	}

	attempt.mu.Lock()
	defer attempt.mu.Unlock()
	if o.attempts.getLogin(attemptID) != attempt {
		return nil, fmt.Errorf("%w: login attempt not found", domain.ErrNotFound)
	}
	if attempt.step != LoginStepMathChallenge {
		return nil, fmt.Errorf("%w: math answer not expected at step %s", domain.ErrValidation, attempt.step)
	}

	if !attempt.challenge.Check(answer) {
		o.attempts.deleteLogin(attemptID)
		slog.Info("Login attempt failed at math challenge", "email", attempt.email)
		return nil, fmt.Errorf("%w: wrong math answer", domain.ErrAuthentication)
	}

	sess := &domain.Session{
		Email:       attempt.email,
		IDToken:     attempt.idToken,
		AccessToken: attempt.access,
		Role:        attempt.role,
	}
	if err := o.sessions.Set(ctx, sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	attempt.step, _ = attempt.step.Next()
	o.attempts.deleteLogin(attemptID)

	o.notify(ctx, attempt.email, gateway.LoginSuccessEmail)
	if o.loginLog != nil {
		if err := o.loginLog.LogLogin(ctx, attempt.email, attempt.role); err != nil {
			slog.Warn("Login event log failed", "email", attempt.email, "error", err)
		}
	}

	slog.Info("Login succeeded", "email", attempt.email, "role", attempt.role)
	return sess, nil
}

// StartSignup runs the signup credentials step. Password confirmation and
// role validity are checked locally; a violation produces no remote call.
func (o *Orchestrator) StartSignup(ctx context.Context, email, password, confirmPassword string, role domain.Role) (string, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return "", fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}
	if password != confirmPassword {
		return "", fmt.Errorf("%w: passwords do not match", domain.ErrValidation)
	}
	if !role.Valid() {
		return "", fmt.Errorf("%w: invalid role %q", domain.ErrValidation, role)
	}

	userID, err := o.identity.Signup(ctx, email, password, role)
	if err != nil {
		return "", err
	}
	slog.Info("Account created", "email", email, "user_id", userID)

	o.notify(ctx, email, gateway.RegistrationStartedEmail)

	attempt := &signupAttempt{
		id:        uuid.NewString(),
		email:     email,
		role:      role,
		step:      SignupStepSecurityQuestions,
		createdAt: time.Now(),
	}
	o.attempts.putSignup(attempt)

	return attempt.id, nil
}

// SubmitSecurityQuestions persists the security profile and generates the
// challenge for the math step. All four fields must be non-empty.
func (o *Orchestrator) SubmitSecurityQuestions(ctx context.Context, attemptID, q1, a1, q2, a2 string) (*MathPrompt, error) {
	attempt := o.attempts.getSignup(attemptID)
	if attempt == nil {
		return nil, fmt.Errorf("%w: signup attempt not found", domain.ErrNotFound)
	}

	attempt.mu.Lock()
	defer attempt.mu.Unlock()
	if o.attempts.getSignup(attemptID) != attempt {
		return nil, fmt.Errorf("%w: signup attempt not found", domain.ErrNotFound)
	}
	if attempt.step != SignupStepSecurityQuestions {
		return nil, fmt.Errorf("%w: security questions not expected at step %s", domain.ErrValidation, attempt.step)
	}

	profile := &domain.SecurityProfile{
		Email:     attempt.email,
		Question1: q1,
		Answer1:   a1,
		Question2: q2,
		Answer2:   a2,
	}
	if !profile.Complete() {
		return nil, fmt.Errorf("%w: security questions and answers are required", domain.ErrValidation)
	}

	if err := o.identity.PutSecurityProfile(ctx, profile); err != nil {
		return nil, err
	}

	attempt.challenge = o.Challenge()
	attempt.step, _ = attempt.step.Next()

	return &MathPrompt{
		Operand1: attempt.challenge.Operand1,
		Operand2: attempt.challenge.Operand2,
		Operator: attempt.challenge.Operator,
	}, nil
}

// SubmitSignupMathAnswer runs the math and confirmation steps. A mismatch
// keeps the attempt at the math step so the caller can re-submit. On
// success the account is confirmed, the success notification fires
// best-effort, and the attempt completes. No session is created; the user
// must log in.
func (o *Orchestrator) SubmitSignupMathAnswer(ctx context.Context, attemptID string, answer int) error {
	attempt := o.attempts.getSignup(attemptID)
	if attempt == nil {
		return fmt.Errorf("%w: signup attempt not found", domain.ErrNotFound)
	}

	attempt.mu.Lock()
	defer attempt.mu.Unlock()
	if o.attempts.getSignup(attemptID) != attempt {
		return fmt.Errorf("%w: signup attempt not found", domain.ErrNotFound)
	}
	if attempt.step != SignupStepMathChallenge {
		return fmt.Errorf("%w: math answer not expected at step %s", domain.ErrValidation, attempt.step)
	}

	if !attempt.challenge.Check(answer) {
		return fmt.Errorf("%w: wrong math answer", domain.ErrAuthentication)
	}

	attempt.step, _ = attempt.step.Next()

	if err := o.identity.Confirm(ctx, attempt.email); err != nil {
		// Confirmation may be retried: drop back to the math step.
		attempt.step = SignupStepMathChallenge
		return err
	}

	attempt.step, _ = attempt.step.Next()
	o.attempts.deleteSignup(attemptID)

	o.notify(ctx, attempt.email, gateway.RegistrationSuccessEmail)

	slog.Info("Signup completed", "email", attempt.email, "role", attempt.role)
	return nil
}

// Logout invalidates the access token with the identity provider and
// clears the session context. Local state is cleared even when the remote
// invalidation fails; the failure is still reported.
func (o *Orchestrator) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("%w: token is required", domain.ErrValidation)
	}

	remoteErr := o.identity.Logout(ctx, token)

	if err := o.sessions.Clear(ctx); err != nil {
		slog.Warn("Failed to clear persisted session", "error", err)
	}

	if remoteErr != nil {
		return remoteErr
	}
	slog.Info("Logged out")
	return nil
}

// notify sends a best-effort notification; failures are logged, never
// propagated to the parent flow.
func (o *Orchestrator) notify(ctx context.Context, email string, msg gateway.Notification) {
	if o.notifier == nil {
		return
	}
	if err := o.notifier.Notify(ctx, email, msg); err != nil {
		slog.Warn("Notification failed", "email", email, "subject", msg.Subject, "error", err)
	}
}
