package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/quickdatapro/core/internal/domain"
)

// Notification is a transactional email template.
type Notification struct {
	Subject string
	Message string
}

// Canned notifications sent by the auth flows. Delivery is best-effort;
// callers log and swallow failures.
var (
	RegistrationStartedEmail = Notification{
		Subject: "Registration Started for QuickDataPro",
		Message: "Thank you for starting your registration with QuickDataPro! " +
			"To complete your registration, please continue with the further steps.",
	}
	RegistrationSuccessEmail = Notification{
		Subject: "Welcome to QuickDataPro! Registration Successful",
		Message: "Welcome aboard! Your registration for QuickDataPro is now complete. " +
			"Start by logging in to access the platform.",
	}
	LoginSuccessEmail = Notification{
		Subject: "QuickDataPro Login Successful",
		Message: "You've successfully logged in to QuickDataPro! " +
			"Feel free to pick up where you left off.",
	}
)

// Notifier delivers email notifications through the per-recipient topic
// managed by the dispatcher collaborator.
type Notifier struct {
	baseURL string
	hc      *http.Client
}

// NewNotifier creates a client for the notification dispatcher.
func NewNotifier(baseURL string, timeout time.Duration) *Notifier {
	return &Notifier{baseURL: baseURL, hc: newHTTPClient(timeout)}
}

// Notify sends one notification to email. The dispatcher creates the
// recipient topic on first use.
func (n *Notifier) Notify(ctx context.Context, email string, msg Notification) error {
	payload := map[string]string{
		"email":   email,
		"subject": msg.Subject,
		"message": msg.Message,
	}

	var resp statusEnvelope
	code, err := postJSON(ctx, n.hc, n.baseURL+"/api/sns", payload, &resp)
	if err != nil {
		return err
	}
	if !resp.success() {
		return classify(code, resp.Message)
	}
	return nil
}

// LoginLogger posts login events to the dashboard collector. Disabled when
// constructed with an empty URL.
type LoginLogger struct {
	url string
	hc  *http.Client
}

// NewLoginLogger creates a client for the login-event collector.
func NewLoginLogger(url string, timeout time.Duration) *LoginLogger {
	return &LoginLogger{url: url, hc: newHTTPClient(timeout)}
}

// LogLogin records one login event. Best-effort like notifications.
func (l *LoginLogger) LogLogin(ctx context.Context, email string, role domain.Role) error {
	if l.url == "" {
		return nil
	}

	payload := map[string]string{
		"user_id":   email,
		"user_type": string(role),
	}

	code, err := postJSON(ctx, l.hc, l.url+"/log-user-login", payload, nil)
	if err != nil {
		return err
	}
	if code >= 400 {
		return fmt.Errorf("%w: login log rejected with status %d", domain.ErrTransient, code)
	}
	return nil
}
