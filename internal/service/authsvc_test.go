package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"storyshare/internal/auth"
	"storyshare/internal/domain"
)

type stubUsersStore struct {
	t *testing.T

	createUserFunc             func(context.Context, string, string, string) (domain.User, error)
	getUserByIDFunc            func(context.Context, string) (domain.User, error)
	getUserByEmailFunc         func(context.Context, string) (domain.UserWithPassword, error)
	getPasswordHashFunc        func(context.Context, string) (string, error)
	setPasswordFunc            func(context.Context, string, string, time.Time) error
	getUserByExternalFunc      func(context.Context, string, string) (domain.User, error)
	createUserWithExternalFunc func(context.Context, string, string, string, string, string) (domain.User, error)
	linkExternalAccountFunc    func(context.Context, string, string, string, string) error
}

func (s *stubUsersStore) CreateUser(ctx context.Context, name, email, passwordHash string) (domain.User, error) {
	if s.createUserFunc != nil {
		return s.createUserFunc(ctx, name, email, passwordHash)
	}
	s.t.Fatalf("CreateUser called unexpectedly")
	return domain.User{}, errors.New("unexpected call")
}

func (s *stubUsersStore) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	if s.getUserByIDFunc != nil {
		return s.getUserByIDFunc(ctx, id)
	}
	s.t.Fatalf("GetUserByID called unexpectedly")
	return domain.User{}, errors.New("unexpected call")
}

func (s *stubUsersStore) GetUserByEmail(ctx context.Context, email string) (domain.UserWithPassword, error) {
	if s.getUserByEmailFunc != nil {
		return s.getUserByEmailFunc(ctx, email)
	}
	s.t.Fatalf("GetUserByEmail called unexpectedly")
	return domain.UserWithPassword{}, errors.New("unexpected call")
}

func (s *stubUsersStore) GetPasswordHash(ctx context.Context, userID string) (string, error) {
	if s.getPasswordHashFunc != nil {
		return s.getPasswordHashFunc(ctx, userID)
	}
	s.t.Fatalf("GetPasswordHash called unexpectedly")
	return "", errors.New("unexpected call")
}

func (s *stubUsersStore) SetPassword(ctx context.Context, userID, passwordHash string, when time.Time) error {
	if s.setPasswordFunc != nil {
		return s.setPasswordFunc(ctx, userID, passwordHash, when)
	}
	s.t.Fatalf("SetPassword called unexpectedly")
	return errors.New("unexpected call")
}

func (s *stubUsersStore) GetUserByExternalAccount(ctx context.Context, provider, providerID string) (domain.User, error) {
	if s.getUserByExternalFunc != nil {
		return s.getUserByExternalFunc(ctx, provider, providerID)
	}
	s.t.Fatalf("GetUserByExternalAccount called unexpectedly")
	return domain.User{}, errors.New("unexpected call")
}

func (s *stubUsersStore) CreateUserWithExternalAccount(ctx context.Context, provider, providerID, email, name, passwordHash string) (domain.User, error) {
	if s.createUserWithExternalFunc != nil {
		return s.createUserWithExternalFunc(ctx, provider, providerID, email, name, passwordHash)
	}
	s.t.Fatalf("CreateUserWithExternalAccount called unexpectedly")
	return domain.User{}, errors.New("unexpected call")
}

func (s *stubUsersStore) LinkExternalAccount(ctx context.Context, userID, provider, providerID, email string) error {
	if s.linkExternalAccountFunc != nil {
		return s.linkExternalAccountFunc(ctx, userID, provider, providerID, email)
	}
	s.t.Fatalf("LinkExternalAccount called unexpectedly")
	return errors.New("unexpected call")
}

type stubTokenIssuer struct {
	t *testing.T

	signFunc   func(string) (string, error)
	verifyFunc func(string) (string, time.Time, error)
}

func (s *stubTokenIssuer) Sign(userID string) (string, error) {
	if s.signFunc != nil {
		return s.signFunc(userID)
	}
	s.t.Fatalf("Sign called unexpectedly")
	return "", errors.New("unexpected call")
}

func (s *stubTokenIssuer) Verify(tokenString string) (string, time.Time, error) {
	if s.verifyFunc != nil {
		return s.verifyFunc(tokenString)
	}
	s.t.Fatalf("Verify called unexpectedly")
	return "", time.Time{}, errors.New("unexpected call")
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	users := &stubUsersStore{
		t: t,
		getUserByEmailFunc: func(_ context.Context, email string) (domain.UserWithPassword, error) {
			if email != "reader@example.com" {
				t.Fatalf("unexpected email lookup: %s", email)
			}
			return domain.UserWithPassword{}, domain.ErrNotFound
		},
	}
	svc := &AuthService{Users: users, Tokens: &stubTokenIssuer{t: t}}

	_, _, err := svc.Login(context.Background(), "Reader@Example.com", "pass1234")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestAuthServiceLoginDisabledAccount(t *testing.T) {
	hash, err := auth.HashPassword("pass1234")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	users := &stubUsersStore{
		t: t,
		getUserByEmailFunc: func(_ context.Context, _ string) (domain.UserWithPassword, error) {
			return domain.UserWithPassword{
				User:         domain.User{ID: "user-1", Status: domain.LifecycleDisabled},
				PasswordHash: hash,
			}, nil
		},
	}
	svc := &AuthService{Users: users, Tokens: &stubTokenIssuer{t: t}}

	_, _, err = svc.Login(context.Background(), "reader@example.com", "pass1234")
	if !errors.Is(err, domain.ErrUserDisabled) {
		t.Fatalf("expected disabled error, got %v", err)
	}
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	hash, err := auth.HashPassword("pass1234")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	users := &stubUsersStore{
		t: t,
		getUserByEmailFunc: func(_ context.Context, _ string) (domain.UserWithPassword, error) {
			return domain.UserWithPassword{
				User:         domain.User{ID: "user-1"},
				PasswordHash: hash,
			}, nil
		},
	}
	svc := &AuthService{Users: users, Tokens: &stubTokenIssuer{t: t}}

	_, _, err = svc.Login(context.Background(), "reader@example.com", "not-the-password")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestAuthServiceAuthenticateStaleToken(t *testing.T) {
	issuedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	changedAt := issuedAt.Add(time.Hour)

	users := &stubUsersStore{
		t: t,
		getUserByIDFunc: func(_ context.Context, id string) (domain.User, error) {
			if id != "user-1" {
				t.Fatalf("unexpected user id: %s", id)
			}
			return domain.User{ID: "user-1", PasswordChangedAt: &changedAt}, nil
		},
	}
	tokens := &stubTokenIssuer{
		t: t,
		verifyFunc: func(_ string) (string, time.Time, error) {
			return "user-1", issuedAt, nil
		},
	}
	svc := &AuthService{Users: users, Tokens: tokens}

	_, err := svc.Authenticate(context.Background(), "stale-token")
	if !errors.Is(err, domain.ErrPasswordChanged) {
		t.Fatalf("expected password changed error, got %v", err)
	}
}

func TestAuthServiceAuthenticateTokenFromChangeSecond(t *testing.T) {
	// the store stamps password_changed_at one second behind the change, so
	// the token issued together with the change keeps verifying
	changed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	storedChangedAt := changed.Add(-time.Second)

	users := &stubUsersStore{
		t: t,
		getUserByIDFunc: func(_ context.Context, _ string) (domain.User, error) {
			return domain.User{ID: "user-1", PasswordChangedAt: &storedChangedAt}, nil
		},
	}
	tokens := &stubTokenIssuer{
		t: t,
		verifyFunc: func(_ string) (string, time.Time, error) {
			return "user-1", changed, nil
		},
	}
	svc := &AuthService{Users: users, Tokens: tokens}

	u, err := svc.Authenticate(context.Background(), "fresh-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != "user-1" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestAuthServiceAuthenticateMissingSubject(t *testing.T) {
	users := &stubUsersStore{
		t: t,
		getUserByIDFunc: func(_ context.Context, _ string) (domain.User, error) {
			return domain.User{}, domain.ErrNotFound
		},
	}
	tokens := &stubTokenIssuer{
		t: t,
		verifyFunc: func(_ string) (string, time.Time, error) {
			return "user-gone", time.Now(), nil
		},
	}
	svc := &AuthService{Users: users, Tokens: tokens}

	_, err := svc.Authenticate(context.Background(), "token")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAuthServiceUpdatePassword(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	oldHash, err := auth.HashPassword("old-password")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	var storedHash string
	users := &stubUsersStore{
		t: t,
		getPasswordHashFunc: func(_ context.Context, userID string) (string, error) {
			if userID != "user-1" {
				t.Fatalf("unexpected user id: %s", userID)
			}
			return oldHash, nil
		},
		setPasswordFunc: func(_ context.Context, userID, passwordHash string, when time.Time) error {
			if userID != "user-1" {
				t.Fatalf("unexpected user id: %s", userID)
			}
			if !when.Equal(now) {
				t.Fatalf("unexpected change time: %s", when)
			}
			storedHash = passwordHash
			return nil
		},
	}
	tokens := &stubTokenIssuer{
		t: t,
		signFunc: func(userID string) (string, error) {
			if userID != "user-1" {
				t.Fatalf("unexpected user id: %s", userID)
			}
			return "fresh-token", nil
		},
	}
	svc := &AuthService{Users: users, Tokens: tokens, Now: func() time.Time { return now }}

	token, err := svc.UpdatePassword(context.Background(), "user-1", "old-password", "new-password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "fresh-token" {
		t.Fatalf("unexpected token: %s", token)
	}

	ok, err := auth.VerifyPassword(storedHash, "new-password")
	if err != nil || !ok {
		t.Fatalf("stored hash does not verify new password: %v", err)
	}
}

func TestAuthServiceUpdatePasswordWrongCurrent(t *testing.T) {
	hash, err := auth.HashPassword("old-password")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	users := &stubUsersStore{
		t: t,
		getPasswordHashFunc: func(_ context.Context, _ string) (string, error) {
			return hash, nil
		},
	}
	svc := &AuthService{Users: users, Tokens: &stubTokenIssuer{t: t}}

	_, err = svc.UpdatePassword(context.Background(), "user-1", "wrong", "new-password")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestAuthServiceLoginWithExternalExistingAccount(t *testing.T) {
	users := &stubUsersStore{
		t: t,
		getUserByExternalFunc: func(_ context.Context, provider, providerID string) (domain.User, error) {
			if provider != "google" || providerID != "sub-123" {
				t.Fatalf("unexpected provider lookup: %s %s", provider, providerID)
			}
			return domain.User{ID: "user-1", Email: "reader@example.com"}, nil
		},
	}
	tokens := &stubTokenIssuer{
		t:        t,
		signFunc: func(string) (string, error) { return "token-1", nil },
	}
	svc := &AuthService{Users: users, Tokens: tokens}

	u, token, err := svc.LoginWithExternal(context.Background(), "google", &auth.ExternalTokenClaims{Subject: "sub-123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != "user-1" || token != "token-1" {
		t.Fatalf("unexpected login result: %+v %s", u, token)
	}
}

func TestAuthServiceLoginWithExternalLinksByEmail(t *testing.T) {
	linked := false
	users := &stubUsersStore{
		t: t,
		getUserByExternalFunc: func(_ context.Context, _, _ string) (domain.User, error) {
			return domain.User{}, domain.ErrNotFound
		},
		getUserByEmailFunc: func(_ context.Context, email string) (domain.UserWithPassword, error) {
			if email != "reader@example.com" {
				t.Fatalf("unexpected email lookup: %s", email)
			}
			return domain.UserWithPassword{User: domain.User{ID: "user-2", Email: email}}, nil
		},
		linkExternalAccountFunc: func(_ context.Context, userID, provider, providerID, email string) error {
			if userID != "user-2" || provider != "apple" || providerID != "apple-sub" {
				t.Fatalf("unexpected link args: %s %s %s", userID, provider, providerID)
			}
			linked = true
			return nil
		},
	}
	tokens := &stubTokenIssuer{
		t:        t,
		signFunc: func(string) (string, error) { return "token-2", nil },
	}
	svc := &AuthService{Users: users, Tokens: tokens}

	u, _, err := svc.LoginWithExternal(context.Background(), "apple", &auth.ExternalTokenClaims{
		Subject: "apple-sub",
		Email:   "reader@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != "user-2" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if !linked {
		t.Fatalf("expected external account to be linked")
	}
}

func TestAuthServiceLoginWithExternalCreatesUser(t *testing.T) {
	users := &stubUsersStore{
		t: t,
		getUserByExternalFunc: func(_ context.Context, _, _ string) (domain.User, error) {
			return domain.User{}, domain.ErrNotFound
		},
		getUserByEmailFunc: func(_ context.Context, _ string) (domain.UserWithPassword, error) {
			return domain.UserWithPassword{}, domain.ErrNotFound
		},
		createUserWithExternalFunc: func(_ context.Context, provider, providerID, email, name, passwordHash string) (domain.User, error) {
			if provider != "google" || providerID != "sub-456" || email != "new@example.com" {
				t.Fatalf("unexpected create args: %s %s %s", provider, providerID, email)
			}
			if name != "New Reader" || passwordHash == "" {
				t.Fatalf("unexpected name or password hash")
			}
			return domain.User{ID: "user-3", Email: email, Name: name}, nil
		},
	}
	tokens := &stubTokenIssuer{
		t:        t,
		signFunc: func(string) (string, error) { return "token-3", nil },
	}
	svc := &AuthService{Users: users, Tokens: tokens}

	u, _, err := svc.LoginWithExternal(context.Background(), "google", &auth.ExternalTokenClaims{
		Subject: "sub-456",
		Email:   "new@example.com",
		Name:    "New Reader",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != "user-3" {
		t.Fatalf("unexpected user: %+v", u)
	}
}
