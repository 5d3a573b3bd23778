package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// SessionTokenManager signs and parses the session cookie. The token only
// names a session row; all state lives server-side on the row itself.
type SessionTokenManager struct {
	Secret []byte
	Issuer string
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func (m SessionTokenManager) Issue(sessionID uuid.UUID, expiresAt time.Time) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.Issuer,
			Subject:   sessionID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.Secret)
}

func (m SessionTokenManager) Parse(token string) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.Secret, nil
	})
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return uuid.Nil, ErrInvalidToken
	}
	id, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}
