// Package auth implements the multi-step login and signup flows that
// combine the identity provider, the security-challenge store and the
// challenge generator. Step transitions are gated on successful
// verification at each stage; skipping a step is not possible.
package auth

// LoginStep is a state of the login flow.
type LoginStep int

const (
	LoginStepCredentials LoginStep = iota
	LoginStepSecurityAnswer
	LoginStepMathChallenge
	LoginStepDone
)

// loginTransitions is the closed transition table of the login flow.
// Only successful verification of the current step advances state.
var loginTransitions = map[LoginStep]LoginStep{
	LoginStepCredentials:    LoginStepSecurityAnswer,
	LoginStepSecurityAnswer: LoginStepMathChallenge,
	LoginStepMathChallenge:  LoginStepDone,
}

// Next returns the successor state, or false from a terminal state.
func (s LoginStep) Next() (LoginStep, bool) {
	next, ok := loginTransitions[s]
	return next, ok
}

func (s LoginStep) String() string {
	switch s {
	case LoginStepCredentials:
		return "credentials"
	case LoginStepSecurityAnswer:
		return "security_answer"
	case LoginStepMathChallenge:
		return "math_challenge"
	case LoginStepDone:
		return "done"
	}
	return "unknown"
}

// SignupStep is a state of the signup flow.
type SignupStep int

const (
	SignupStepCredentials SignupStep = iota
	SignupStepSecurityQuestions
	SignupStepMathChallenge
	SignupStepConfirmation
	SignupStepDone
)

var signupTransitions = map[SignupStep]SignupStep{
	SignupStepCredentials:       SignupStepSecurityQuestions,
	SignupStepSecurityQuestions: SignupStepMathChallenge,
	SignupStepMathChallenge:     SignupStepConfirmation,
	SignupStepConfirmation:      SignupStepDone,
}

// Next returns the successor state, or false from a terminal state.
func (s SignupStep) Next() (SignupStep, bool) {
	next, ok := signupTransitions[s]
	return next, ok
}

func (s SignupStep) String() string {
	switch s {
	case SignupStepCredentials:
		return "credentials"
	case SignupStepSecurityQuestions:
		return "security_questions"
	case SignupStepMathChallenge:
		return "math_challenge"
	case SignupStepConfirmation:
		return "confirmation"
	case SignupStepDone:
		return "done"
	}
	return "unknown"
}
