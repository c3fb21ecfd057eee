// Package token issues and verifies the signed bearer tokens used across the
// platform. Tokens are self-contained: validity is derived from the signature
// and the embedded expiry alone, so the server keeps no session state.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"portfolio-auth/internal/model"
)

// DefaultTTL is how long an issued token stays valid unless configuration
// says otherwise.
const DefaultTTL = 24 * time.Hour

type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer uses ttl exactly as given. Config validation guarantees a positive
// value in production; a negative ttl mints already-expired tokens.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token bound to the given user id, expiring ttl from now.
func (i *Issuer) Issue(userID int64) (string, error) {
	now := time.Now().UTC()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
		"exp":     now.Add(i.ttl).Unix(),
	})

	return t.SignedString(i.secret)
}

// Verify checks signature and expiry and recovers the bound user id. Every
// rejection cause (bad signature, malformed structure, expiry) collapses into
// model.ErrInvalidToken so callers cannot probe validation internals.
func (i *Issuer) Verify(tokenString string) (int64, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, model.ErrInvalidToken
		}
		return i.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, model.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return 0, model.ErrInvalidToken
	}

	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return 0, model.ErrInvalidToken
	}

	return int64(userID), nil
}
