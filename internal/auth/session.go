package auth

import (
	"strings"
)

// defaultDisplayName is shown when a session carries neither a name nor an email
const defaultDisplayName = "User"

// Session is the record of who is using the current browser session or CLI
// login. Token presence alone means authenticated.
type Session struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Token       string `json:"-"`
	DisplayName string `json:"display_name"`
}

// Authenticated reports whether the session carries a token
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// ReadSession decodes a stored session blob. Missing, malformed or wrongly
// signed blobs all yield nil: a broken session is the same as no session.
func ReadSession(blob string) *Session {
	blob = strings.TrimSpace(blob)
	if blob == "" {
		return nil
	}

	claims, err := ValidateToken(blob)
	if err != nil {
		return nil
	}

	return claims.Session(blob)
}

// DisplayName picks the trimmed name, then the local part of the email, then "User"
func DisplayName(name, email string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	if local, _, _ := strings.Cut(strings.TrimSpace(email), "@"); local != "" {
		return local
	}
	return defaultDisplayName
}
