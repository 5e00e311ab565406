package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenIssuer is stamped into every session token
const tokenIssuer = "plateadmin"

var (
	jwtSecret []byte

	// ErrSecretNotInitialized is returned before InitializeJWT has run
	ErrSecretNotInitialized = errors.New("JWT secret not initialized")
)

// JWTClaims is the session record as carried inside a token
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Session turns decoded claims back into the session record for token
func (c *JWTClaims) Session(token string) *Session {
	return &Session{
		UserID:      c.UserID,
		Email:       c.Email,
		Role:        c.Role,
		Token:       token,
		DisplayName: DisplayName(c.Name, c.Email),
	}
}

// InitializeJWT sets the signing secret. The server loads it from the Config
// row at startup and again after first-admin setup.
func InitializeJWT(secret string) {
	jwtSecret = []byte(secret)
}

// GenerateToken signs a session token. Tokens carry no expiry; the session
// ends when the cookie or keyring entry is cleared.
func GenerateToken(userID, email, name, role string) (string, error) {
	if len(jwtSecret) == 0 {
		return "", ErrSecretNotInitialized
	}

	now := jwt.NewNumericDate(time.Now())
	claims := JWTClaims{
		UserID: userID,
		Email:  email,
		Name:   name,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID,
			IssuedAt:  now,
			NotBefore: now,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken checks the HS256 signature and returns the claims
func ValidateToken(tokenString string) (*JWTClaims, error) {
	if len(jwtSecret) == 0 {
		return nil, ErrSecretNotInitialized
	}

	var claims JWTClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (any, error) { return jwtSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	return &claims, nil
}
