package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrTokenInvalid = errors.New("token invalid")

// TokenIssuer signs and verifies the HS256 bearer tokens used for login.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	secretCopy := make([]byte, len(secret))
	copy(secretCopy, secret)
	return &TokenIssuer{secret: secretCopy, ttl: ttl, now: time.Now}
}

type claims struct {
	jwt.RegisteredClaims
}

func (i *TokenIssuer) TTL() time.Duration { return i.ttl }

// Sign issues a token whose subject is the user id.
func (i *TokenIssuer) Sign(userID string) (string, error) {
	now := i.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	})
	signed, err := t.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the subject user id plus
// the issued-at time. Issued-at is compared against the user's
// password_changed_at by the caller to force re-login on password change.
func (i *TokenIssuer) Verify(tokenString string) (string, time.Time, error) {
	var c claims
	t, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil || !t.Valid {
		return "", time.Time{}, ErrTokenInvalid
	}
	if c.Subject == "" || c.IssuedAt == nil {
		return "", time.Time{}, ErrTokenInvalid
	}
	return c.Subject, c.IssuedAt.Time, nil
}
