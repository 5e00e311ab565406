package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serverauth "github.com/plateadmin/plateadmin/internal/auth"
)

func TestSessionFromToken(t *testing.T) {
	serverauth.InitializeJWT("cli-test-secret")

	token, err := serverauth.GenerateToken("01HUSER", "priya.s@example.com", "", "USER")
	require.NoError(t, err)

	session := SessionFromToken(token)
	require.NotNil(t, session)
	assert.True(t, session.Authenticated())
	assert.Equal(t, "USER", session.Role)
	assert.Equal(t, "priya.s", session.DisplayName)
}

func TestSessionFromToken_Invalid(t *testing.T) {
	for _, token := range []string{"", "   ", "not-a-token", "a.b.c"} {
		assert.Nil(t, SessionFromToken(token), token)
	}
}
