package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/quickdatapro/core/internal/domain"
)

// RegisterRoutes mounts all API routes on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.LoginHandler)
		r.Post("/login/security", h.LoginSecurityHandler)
		r.Post("/login/math", h.LoginMathHandler)

		r.Post("/signup", h.SignupHandler)
		r.Post("/signup/questions", h.SignupQuestionsHandler)
		r.Post("/signup/math", h.SignupMathHandler)

		r.Post("/logout", h.LogoutHandler)
		r.Post("/mathskill", h.MathSkillHandler)
		r.Get("/session", h.SessionHandler)

		r.Get("/conversations", h.ListConversationsHandler)
		r.Get("/conversations/{code}/messages", h.PollMessagesHandler)
		r.Post("/conversations/{code}/messages", h.SendMessageHandler)
		r.Post("/conversations/{code}/end", h.EndConversationHandler)

		r.Post("/feedback", h.SubmitFeedbackHandler)
		r.Get("/feedback", h.ListFeedbackHandler)
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginHandler runs the credentials step of the login flow.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}

	start, err := h.orch.StartLogin(r.Context(), req.Email, req.Password)
	if err != nil {
		fail(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]string{
		"status":           "Success",
		"attempt_id":       start.AttemptID,
		"securityQuestion": start.SecurityQuestion,
	})
}

type securityAnswerRequest struct {
	AttemptID string `json:"attempt_id"`
	Answer    string `json:"answer"`
}

// LoginSecurityHandler runs the security-answer step and, on success,
// presents the math challenge.
func (h *Handler) LoginSecurityHandler(w http.ResponseWriter, r *http.Request) {
	var req securityAnswerRequest
	if !decode(w, r, &req) {
		return
	}

	prompt, err := h.orch.SubmitSecurityAnswer(r.Context(), req.AttemptID, req.Answer)
	if err != nil {
		fail(w, err)
		return
	}

	JSON(w, http.StatusOK, mathPromptResponse(prompt.Operand1, prompt.Operand2, prompt.Operator))
}

type mathAnswerRequest struct {
	AttemptID string `json:"attempt_id"`
	Answer    string `json:"answer"`
}

func parseAnswer(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: answer must be an integer", domain.ErrValidation)
	}
	return n, nil
}

// LoginMathHandler runs the final login step and returns the session.
func (h *Handler) LoginMathHandler(w http.ResponseWriter, r *http.Request) {
	var req mathAnswerRequest
	if !decode(w, r, &req) {
		return
	}

	answer, err := parseAnswer(req.Answer)
	if err != nil {
		fail(w, err)
		return
	}

	sess, err := h.orch.SubmitLoginMathAnswer(r.Context(), req.AttemptID, answer)
	if err != nil {
		fail(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]string{
		"status":      "Success",
		"email":       sess.Email,
		"idToken":     sess.IDToken,
		"accessToken": sess.AccessToken,
		"role":        string(sess.Role),
	})
}

type signupRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Role            string `json:"role"`
}

// SignupHandler runs the signup credentials step.
func (h *Handler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decode(w, r, &req) {
		return
	}

	attemptID, err := h.orch.StartSignup(r.Context(), req.Email, req.Password, req.ConfirmPassword, domain.Role(req.Role))
	if err != nil {
		fail(w, err)
		return
	}

	JSON(w, http.StatusCreated, map[string]string{
		"status":     "Success",
		"attempt_id": attemptID,
	})
}

type securityQuestionsRequest struct {
	AttemptID string `json:"attempt_id"`
	Question1 string `json:"securityQuestion1"`
	Answer1   string `json:"securityAnswer1"`
	Question2 string `json:"securityQuestion2"`
	Answer2   string `json:"securityAnswer2"`
}

// SignupQuestionsHandler persists the security profile and presents the
// math challenge.
func (h *Handler) SignupQuestionsHandler(w http.ResponseWriter, r *http.Request) {
	var req securityQuestionsRequest
	if !decode(w, r, &req) {
		return
	}

	prompt, err := h.orch.SubmitSecurityQuestions(r.Context(), req.AttemptID,
		req.Question1, req.Answer1, req.Question2, req.Answer2)
	if err != nil {
		fail(w, err)
		return
	}

	JSON(w, http.StatusCreated, mathPromptResponse(prompt.Operand1, prompt.Operand2, prompt.Operator))
}

// SignupMathHandler runs the math and confirmation steps of signup.
func (h *Handler) SignupMathHandler(w http.ResponseWriter, r *http.Request) {
	var req mathAnswerRequest
	if !decode(w, r, &req) {
		return
	}

	answer, err := parseAnswer(req.Answer)
	if err != nil {
		fail(w, err)
		return
	}

	if err := h.orch.SubmitSignupMathAnswer(r.Context(), req.AttemptID, answer); err != nil {
		fail(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]string{
		"status":  "Success",
		"message": "Account confirmed. You can now log in.",
	})
}

type logoutRequest struct {
	Token string `json:"token"`
}

// LogoutHandler invalidates the access token and clears the session.
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.orch.Logout(r.Context(), req.Token); err != nil {
		fail(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]string{
		"status":  "Success",
		"message": "User has been logged out successfully.",
	})
}

type mathSkillRequest struct {
	Email string `json:"email"`
}

// MathSkillHandler generates a fresh arithmetic challenge. The response
// mirrors the generator contract, answer included; verification flows
// keep their own copy server-side and never rely on this endpoint.
func (h *Handler) MathSkillHandler(w http.ResponseWriter, r *http.Request) {
	var req mathSkillRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		Error(w, http.StatusBadRequest, "email cannot be empty")
		return
	}

	c := h.orch.Challenge()
	JSON(w, http.StatusOK, map[string]interface{}{
		"status":   "Success",
		"message":  "Math skill generated successfully.",
		"operand":  string(c.Operator),
		"operands": []int{c.Operand1, c.Operand2},
		"answer":   c.Answer,
	})
}

// SessionHandler returns the restored or freshly created session, if any.
func (h *Handler) SessionHandler(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Current()
	if sess == nil {
		Error(w, http.StatusNotFound, "no active session")
		return
	}
	JSON(w, http.StatusOK, sess)
}

func mathPromptResponse(op1, op2 int, operator domain.Operator) map[string]interface{} {
	return map[string]interface{}{
		"status":   "Success",
		"operand":  string(operator),
		"operands": []int{op1, op2},
	}
}
