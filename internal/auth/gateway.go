// Package auth gates entry to the room. Two credential forms are accepted:
// the configured room password, and a persistent token previously issued by
// this gateway.
//
// Tokens are JWTs signed (HS256) with the room password as the key and are
// never stored server-side: validity is re-derived from the signature alone,
// so tokens survive server restarts and reconnects. Rotating the room
// password silently invalidates every previously issued token, which is the
// intended revocation mechanism.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrMissingSecret = errors.New("room secret is required")

type Gateway struct {
	secret []byte
}

func New(roomSecret string) (*Gateway, error) {
	if roomSecret == "" {
		return nil, ErrMissingSecret
	}
	return &Gateway{secret: []byte(roomSecret)}, nil
}

// VerifyPassword compares the offered password to the room secret in constant
// time.
func (g *Gateway) VerifyPassword(password string) bool {
	if password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), g.secret) == 1
}

// IssueToken mints a new persistent token. The random jti makes every issued
// token distinct; there is deliberately no exp claim, the token stays valid
// until the room password changes.
func (g *Gateway) IssueToken() (string, error) {
	claims := jwt.RegisteredClaims{
		ID:       uuid.New().String(),
		Subject:  "room",
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks a previously issued token against the current room
// secret. No lookup table is involved; a token is valid iff its signature
// verifies under the secret configured right now.
func (g *Gateway) VerifyToken(tokenString string) bool {
	if tokenString == "" {
		return false
	}
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return g.secret, nil
	})
	return err == nil && token.Valid
}

// Authenticate accepts either credential form. A supplied password takes
// precedence over a token.
func (g *Gateway) Authenticate(password, token string) bool {
	if password != "" {
		return g.VerifyPassword(password)
	}
	return g.VerifyToken(token)
}

// CredentialsFromQuery pulls the password/token query parameters used by both
// the WebSocket upgrade and the TURN credentials endpoint.
func CredentialsFromQuery(q url.Values) (password, token string) {
	return q.Get("password"), q.Get("token")
}
