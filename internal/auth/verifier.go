// Package auth verifies bearer tokens.
package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rotisserie/eris"
)

// ErrInvalidToken covers every verification failure. The HTTP layer maps it
// to 401 with a generic message; the specific reason stays server-side.
var ErrInvalidToken = errors.New("auth: invalid token")

// Verifier resolves a bearer token to a user id.
type Verifier interface {
	Verify(token string) (userID string, err error)
}

// JWTVerifier validates HS256-signed tokens and reads the user id from the
// sub claim.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier builds a verifier from the shared signing secret.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, eris.Errorf("auth: unexpected signing method %s", t.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
