package domain

// Session is the single active identity/session record produced by a
// completed login flow. It is persisted under a well-known key and restored
// at startup; it never exists partially (no tokens without a completed flow).
type Session struct {
	Email       string `json:"email"`
	IDToken     string `json:"idToken"`
	AccessToken string `json:"accessToken"`
	Role        Role   `json:"role"`
}

// Valid reports whether the record is complete enough to authorize calls.
// Restored state failing this check is treated as "no session", not an error.
func (s *Session) Valid() bool {
	return s != nil && s.Email != "" && s.AccessToken != "" && s.Role.Valid()
}
