package util

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the signed cookie payload. It deliberately carries only
// the registration number: role and voted state are re-read from the store
// on every privileged check, so they can never go stale inside a session.
type SessionClaims struct {
	Regno string `json:"regno"`
	jwt.RegisteredClaims
}

// GenerateSession signs a session token for the given regno, valid for ttl.
func GenerateSession(secret, regno string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := time.Now()
	claims := &SessionClaims{
		Regno: regno,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseSession parses and verifies a session token, returning its claims.
func ParseSession(secret, tokenStr string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
