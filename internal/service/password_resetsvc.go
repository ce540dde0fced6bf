package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"storyshare/internal/auth"
	"storyshare/internal/domain"
)

type PasswordResetStore interface {
	CreateResetToken(ctx context.Context, token domain.PasswordResetToken) error
	GetResetTokenByHash(ctx context.Context, tokenHash string) (domain.PasswordResetToken, error)
	MarkResetTokenUsed(ctx context.Context, tokenHash string, when time.Time) error
	DeleteResetToken(ctx context.Context, tokenHash string) error
}

type ResetUsersStore interface {
	SetPassword(ctx context.Context, userID, passwordHash string, when time.Time) error
}

type PasswordResetService struct {
	Store    PasswordResetStore
	Users    ResetUsersStore
	TokenTTL time.Duration
	Now      func() time.Time
}

func (s *PasswordResetService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *PasswordResetService) ttl() time.Duration {
	if s.TokenTTL != 0 {
		return s.TokenTTL
	}
	return 10 * time.Minute
}

// CreateResetToken issues a one-time token for the user and returns the raw
// value for the email link. Only the sha256 of the token is stored.
func (s *PasswordResetService) CreateResetToken(ctx context.Context, userID, sentToEmail string) (string, error) {
	if userID == "" || sentToEmail == "" {
		return "", fmt.Errorf("user id and email are required")
	}

	raw, tokenHash, err := newResetToken()
	if err != nil {
		return "", err
	}

	now := s.now()
	token := domain.PasswordResetToken{
		UserID:      userID,
		TokenHash:   tokenHash,
		SentToEmail: sentToEmail,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl()),
	}
	if err := s.Store.CreateResetToken(ctx, token); err != nil {
		return "", err
	}
	return raw, nil
}

// CancelResetToken rolls back an issued token when the reset email could not
// be delivered.
func (s *PasswordResetService) CancelResetToken(ctx context.Context, rawToken string) error {
	return s.Store.DeleteResetToken(ctx, hashResetToken(rawToken))
}

// ResetPassword consumes a raw token and sets the new password. Returns the
// user id so the caller can log the user straight in.
func (s *PasswordResetService) ResetPassword(ctx context.Context, rawToken, newPassword string) (string, error) {
	tokenHash := hashResetToken(rawToken)
	token, err := s.Store.GetResetTokenByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrResetTokenInvalid
		}
		return "", err
	}
	if token.UsedAt != nil {
		return "", domain.ErrResetTokenInvalid
	}
	now := s.now()
	if token.ExpiresAt.Before(now) {
		return "", domain.ErrResetTokenExpired
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	if err := s.Users.SetPassword(ctx, token.UserID, hash, now); err != nil {
		return "", err
	}
	if err := s.Store.MarkResetTokenUsed(ctx, tokenHash, now); err != nil {
		return "", err
	}
	return token.UserID, nil
}

func newResetToken() (string, string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("read token: %w", err)
	}
	raw := base64.RawURLEncoding.EncodeToString(buf)
	return raw, hashResetToken(raw), nil
}

func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
