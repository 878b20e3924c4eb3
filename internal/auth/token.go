package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mesto-api/internal/domain"
)

const authErrorMessage = "authorization error"

// TokenManager issues and verifies stateless HS256 session tokens. There is
// no refresh or revocation; re-authentication is the only renewal path.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue mints a token whose subject is the given user id, expiring ttl from
// now.
func (m *TokenManager) Issue(subjectID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subjectID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	})
	return token.SignedString(m.secret)
}

// Verify validates signature and expiry and returns the subject id. Every
// failure mode collapses to the same unauthorized error.
func (m *TokenManager) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.E(domain.KindUnauthorized, authErrorMessage)
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", domain.E(domain.KindUnauthorized, authErrorMessage)
	}
	return claims.Subject, nil
}
