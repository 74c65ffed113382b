// Package domain contains core domain types for the QuickDataPro service.
package domain

// Role is the account role assigned at signup.
type Role string

const (
	RoleGuest      Role = "Guest"
	RoleRegistered Role = "Registered"
	RoleAgent      Role = "Agent"
)

// Valid reports whether the role is one of the three allowed values.
func (r Role) Valid() bool {
	switch r {
	case RoleGuest, RoleRegistered, RoleAgent:
		return true
	}
	return false
}

// IsAgent reports whether the role is the support-agent role.
func (r Role) IsAgent() bool {
	return r == RoleAgent
}

// SecurityProfile holds the two question/answer pairs enrolled during
// signup. Answers are compared case-sensitively, exact match.
type SecurityProfile struct {
	Email     string `json:"email"`
	Question1 string `json:"securityQuestion1"`
	Answer1   string `json:"securityAnswer1"`
	Question2 string `json:"securityQuestion2"`
	Answer2   string `json:"securityAnswer2"`
}

// Complete reports whether all four challenge fields and the email are set.
func (p *SecurityProfile) Complete() bool {
	return p.Email != "" &&
		p.Question1 != "" && p.Answer1 != "" &&
		p.Question2 != "" && p.Answer2 != ""
}
