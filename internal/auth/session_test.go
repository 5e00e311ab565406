package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestReadSession_ValidToken(t *testing.T) {
	InitializeJWT(testSecret)

	token, err := GenerateToken("01HUSER", "jane.doe@example.com", "Jane Doe", "admin")
	require.NoError(t, err)

	sess := ReadSession(token)
	require.NotNil(t, sess)
	assert.True(t, sess.Authenticated())
	assert.Equal(t, "01HUSER", sess.UserID)
	assert.Equal(t, "admin", sess.Role, "role is carried as stored; comparison is the gate's job")
	assert.Equal(t, token, sess.Token)
	assert.Equal(t, "Jane Doe", sess.DisplayName)
}

func TestReadSession_MalformedIsNoSession(t *testing.T) {
	InitializeJWT(testSecret)

	otherSigned := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{UserID: "x", Role: "ADMIN"})
	forged, err := otherSigned.SignedString([]byte("a-completely-different-secret"))
	require.NoError(t, err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, JWTClaims{UserID: "x", Role: "ADMIN"})
	noneToken, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name string
		blob string
	}{
		{name: "empty", blob: ""},
		{name: "whitespace", blob: "   "},
		{name: "not a token", blob: `{"role":"ADMIN","token":"mock-jwt-token-12345"}`},
		{name: "truncated", blob: "eyJhbGciOiJIUzI1NiJ9.eyJ1c2VyX2lk"},
		{name: "wrong secret", blob: forged},
		{name: "alg none", blob: noneToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := ReadSession(tt.blob)
			assert.Nil(t, sess)
			assert.False(t, sess.Authenticated())
		})
	}
}

func TestReadSession_MissingRoleStaysEmpty(t *testing.T) {
	InitializeJWT(testSecret)

	token, err := GenerateToken("01HUSER", "nobody@example.com", "", "")
	require.NoError(t, err)

	sess := ReadSession(token)
	require.NotNil(t, sess)
	assert.Empty(t, sess.Role)
	assert.Equal(t, "nobody", sess.DisplayName)
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name, inName, inEmail, want string
	}{
		{"name wins", "  John Doe ", "john@example.com", "John Doe"},
		{"email local part", "", "priya.s@example.com", "priya.s"},
		{"blank name falls through", "   ", "rohan@example.com", "rohan"},
		{"nothing", "", "", "User"},
		{"email without local part", "", "@example.com", "User"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayName(tt.inName, tt.inEmail))
		})
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)

	assert.NoError(t, VerifyPassword("s3cret!", hash))
	assert.Error(t, VerifyPassword("wrong", hash))
}

func TestNewResetToken(t *testing.T) {
	token, hash, err := NewResetToken()
	require.NoError(t, err)

	assert.Len(t, token, 64)
	assert.Equal(t, HashResetToken(token), hash)
	assert.NotEqual(t, token, hash)
}

func TestReadSession_ForeignIssuer(t *testing.T) {
	InitializeJWT(testSecret)

	claims := JWTClaims{UserID: "x", Role: "ADMIN", RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else"}}
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	assert.Nil(t, ReadSession(foreign))
}

func TestGenerateToken_RequiresSecret(t *testing.T) {
	InitializeJWT("")
	t.Cleanup(func() { InitializeJWT(testSecret) })

	_, err := GenerateToken("01HUSER", "a@example.com", "", "USER")
	assert.ErrorIs(t, err, ErrSecretNotInitialized)
	assert.Nil(t, ReadSession("anything"))
}
