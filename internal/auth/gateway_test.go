package auth

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRequiresSecret(t *testing.T) {
	_, err := New("")
	require.ErrorIs(t, err, ErrMissingSecret)
}

func TestVerifyPassword(t *testing.T) {
	g, err := New("room-secret")
	require.NoError(t, err)

	require.True(t, g.VerifyPassword("room-secret"))
	require.False(t, g.VerifyPassword("wrong"))
	require.False(t, g.VerifyPassword(""))
}

func TestTokenRoundTrip(t *testing.T) {
	g, err := New("room-secret")
	require.NoError(t, err)

	token, err := g.IssueToken()
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.True(t, g.VerifyToken(token))
}

func TestTokensAreUnique(t *testing.T) {
	g, err := New("room-secret")
	require.NoError(t, err)

	first, err := g.IssueToken()
	require.NoError(t, err)
	second, err := g.IssueToken()
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

// Rotating the room secret must invalidate every previously issued token
// with no explicit revocation step.
func TestSecretRotationInvalidatesTokens(t *testing.T) {
	before, err := New("secret-v1")
	require.NoError(t, err)

	token, err := before.IssueToken()
	require.NoError(t, err)
	require.True(t, before.VerifyToken(token))

	after, err := New("secret-v2")
	require.NoError(t, err)
	require.False(t, after.VerifyToken(token))
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	g, err := New("room-secret")
	require.NoError(t, err)

	require.False(t, g.VerifyToken(""))
	require.False(t, g.VerifyToken("not-a-jwt"))

	token, err := g.IssueToken()
	require.NoError(t, err)
	require.False(t, g.VerifyToken(token+"tampered"))
}

func TestAuthenticate(t *testing.T) {
	g, err := New("room-secret")
	require.NoError(t, err)

	token, err := g.IssueToken()
	require.NoError(t, err)

	require.True(t, g.Authenticate("room-secret", ""))
	require.True(t, g.Authenticate("", token))
	require.False(t, g.Authenticate("", ""))
	require.False(t, g.Authenticate("wrong", ""))

	// A supplied password wins over a token, even a valid one.
	require.False(t, g.Authenticate("wrong", token))
}

func TestCredentialsFromQuery(t *testing.T) {
	q := url.Values{}
	q.Set("password", "pw")
	q.Set("token", "tk")

	password, token := CredentialsFromQuery(q)
	require.Equal(t, "pw", password)
	require.Equal(t, "tk", token)

	password, token = CredentialsFromQuery(url.Values{})
	require.Empty(t, password)
	require.Empty(t, token)
}
