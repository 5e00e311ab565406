package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"

	serverauth "github.com/plateadmin/plateadmin/internal/auth"
)

// SessionFromToken decodes the claims of a stored token into a session record.
// The CLI cannot check the signature; the server does that on every request.
// Empty or undecodable tokens yield nil, as on the server.
func SessionFromToken(token string) *serverauth.Session {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}

	var claims serverauth.JWTClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil
	}

	return claims.Session(token)
}
