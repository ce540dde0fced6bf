package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"storyshare/internal/auth"
	"storyshare/internal/domain"
)

type UsersStore interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (domain.User, error)
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.UserWithPassword, error)
	GetPasswordHash(ctx context.Context, userID string) (string, error)
	SetPassword(ctx context.Context, userID, passwordHash string, when time.Time) error
	GetUserByExternalAccount(ctx context.Context, provider, providerID string) (domain.User, error)
	CreateUserWithExternalAccount(ctx context.Context, provider, providerID, email, name, passwordHash string) (domain.User, error)
	LinkExternalAccount(ctx context.Context, userID, provider, providerID, email string) error
}

// TokenIssuer is the signing side of the bearer credential.
type TokenIssuer interface {
	Sign(userID string) (string, error)
	Verify(tokenString string) (userID string, issuedAt time.Time, err error)
}

type AuthService struct {
	Users  UsersStore
	Tokens TokenIssuer
	Now    func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) Signup(ctx context.Context, name, email, password string) (domain.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, "", err
	}

	u, err := s.Users.CreateUser(ctx, name, email, passwordHash)
	if err != nil {
		return domain.User{}, "", err
	}

	token, err := s.Tokens.Sign(u.ID)
	if err != nil {
		return domain.User{}, "", err
	}
	return u, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	u, err := s.Users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, "", domain.ErrInvalidCredentials
		}
		return domain.User{}, "", err
	}
	if u.Status == domain.LifecycleDisabled {
		return domain.User{}, "", domain.ErrUserDisabled
	}

	ok, err := auth.VerifyPassword(u.PasswordHash, password)
	if err != nil {
		return domain.User{}, "", err
	}
	if !ok {
		return domain.User{}, "", domain.ErrInvalidCredentials
	}

	token, err := s.Tokens.Sign(u.ID)
	if err != nil {
		return domain.User{}, "", err
	}
	return u.User, token, nil
}

// Authenticate resolves a bearer token to a live user. It fails when the
// token is missing, invalid or expired, when the subject no longer exists or
// is disabled, and when the subject's password changed after the token was
// issued.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (domain.User, error) {
	userID, issuedAt, err := s.Tokens.Verify(tokenString)
	if err != nil {
		return domain.User{}, domain.ErrUnauthorized
	}

	u, err := s.Users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.ErrUnauthorized
		}
		return domain.User{}, err
	}
	if u.Status == domain.LifecycleDisabled {
		return domain.User{}, domain.ErrUserDisabled
	}
	if u.PasswordChangedAt != nil && issuedAt.Before(*u.PasswordChangedAt) {
		return domain.User{}, domain.ErrPasswordChanged
	}
	return u, nil
}

// UpdatePassword changes the password of an authenticated user after
// re-checking the current one, then issues a fresh token. Tokens issued
// before the change stop verifying against password_changed_at.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) (string, error) {
	hash, err := s.Users.GetPasswordHash(ctx, userID)
	if err != nil {
		return "", err
	}

	ok, err := auth.VerifyPassword(hash, currentPassword)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.ErrInvalidCredentials
	}

	newHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return "", err
	}
	if err := s.Users.SetPassword(ctx, userID, newHash, s.now()); err != nil {
		return "", err
	}

	return s.Tokens.Sign(userID)
}

// LoginWithExternal signs a user in from a verified external id token. An
// unknown subject is matched to an existing account by email and linked, or
// a new account is created with an unusable random password.
func (s *AuthService) LoginWithExternal(ctx context.Context, provider string, claims *auth.ExternalTokenClaims) (domain.User, string, error) {
	u, err := s.Users.GetUserByExternalAccount(ctx, provider, claims.Subject)
	switch {
	case err == nil:
		// known account
	case errors.Is(err, domain.ErrNotFound):
		u, err = s.externalSignup(ctx, provider, claims)
		if err != nil {
			return domain.User{}, "", err
		}
	default:
		return domain.User{}, "", err
	}

	if u.Status == domain.LifecycleDisabled {
		return domain.User{}, "", domain.ErrUserDisabled
	}

	token, err := s.Tokens.Sign(u.ID)
	if err != nil {
		return domain.User{}, "", err
	}
	return u, token, nil
}

func (s *AuthService) externalSignup(ctx context.Context, provider string, claims *auth.ExternalTokenClaims) (domain.User, error) {
	if claims.Email != "" {
		existing, err := s.Users.GetUserByEmail(ctx, claims.Email)
		switch {
		case err == nil:
			if err := s.Users.LinkExternalAccount(ctx, existing.ID, provider, claims.Subject, claims.Email); err != nil {
				return domain.User{}, err
			}
			return existing.User, nil
		case errors.Is(err, domain.ErrNotFound):
			// fall through to account creation
		default:
			return domain.User{}, err
		}
	}

	name := claims.Name
	if name == "" {
		name = provider + " user"
	}

	password, err := randomPassword()
	if err != nil {
		return domain.User{}, err
	}
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	return s.Users.CreateUserWithExternalAccount(ctx, provider, claims.Subject, claims.Email, name, passwordHash)
}

func randomPassword() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
