package conn

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CredentialSource yields the current session credential, or "" when
// there is none.
type CredentialSource interface {
	Token() string
}

// TokenFunc adapts a function to CredentialSource.
type TokenFunc func() string

// Token implements CredentialSource.
func (f TokenFunc) Token() string { return f() }

// CredentialValid reports whether token may be used to connect. Tokens that
// parse as a JWT must not be expired; opaque tokens are accepted as-is.
// The signature is not checked, the backend does that.
func CredentialValid(token string, now time.Time) bool {
	if token == "" {
		return false
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return true
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(now) {
		return false
	}
	return true
}
