package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"storyshare/internal/auth"
	"storyshare/internal/domain"
)

type stubResetStore struct {
	t *testing.T

	createResetTokenFunc    func(context.Context, domain.PasswordResetToken) error
	getResetTokenByHashFunc func(context.Context, string) (domain.PasswordResetToken, error)
	markResetTokenUsedFunc  func(context.Context, string, time.Time) error
	deleteResetTokenFunc    func(context.Context, string) error
}

func (s *stubResetStore) CreateResetToken(ctx context.Context, token domain.PasswordResetToken) error {
	if s.createResetTokenFunc != nil {
		return s.createResetTokenFunc(ctx, token)
	}
	s.t.Fatalf("CreateResetToken called unexpectedly")
	return errors.New("unexpected call")
}

func (s *stubResetStore) GetResetTokenByHash(ctx context.Context, tokenHash string) (domain.PasswordResetToken, error) {
	if s.getResetTokenByHashFunc != nil {
		return s.getResetTokenByHashFunc(ctx, tokenHash)
	}
	s.t.Fatalf("GetResetTokenByHash called unexpectedly")
	return domain.PasswordResetToken{}, errors.New("unexpected call")
}

func (s *stubResetStore) MarkResetTokenUsed(ctx context.Context, tokenHash string, when time.Time) error {
	if s.markResetTokenUsedFunc != nil {
		return s.markResetTokenUsedFunc(ctx, tokenHash, when)
	}
	s.t.Fatalf("MarkResetTokenUsed called unexpectedly")
	return errors.New("unexpected call")
}

func (s *stubResetStore) DeleteResetToken(ctx context.Context, tokenHash string) error {
	if s.deleteResetTokenFunc != nil {
		return s.deleteResetTokenFunc(ctx, tokenHash)
	}
	s.t.Fatalf("DeleteResetToken called unexpectedly")
	return errors.New("unexpected call")
}

type stubResetUsers struct {
	t *testing.T

	setPasswordFunc func(context.Context, string, string, time.Time) error
}

func (s *stubResetUsers) SetPassword(ctx context.Context, userID, passwordHash string, when time.Time) error {
	if s.setPasswordFunc != nil {
		return s.setPasswordFunc(ctx, userID, passwordHash, when)
	}
	s.t.Fatalf("SetPassword called unexpectedly")
	return errors.New("unexpected call")
}

func TestPasswordResetCreateStoresHashNotRaw(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	var stored domain.PasswordResetToken
	store := &stubResetStore{
		t: t,
		createResetTokenFunc: func(_ context.Context, token domain.PasswordResetToken) error {
			stored = token
			return nil
		},
	}
	svc := &PasswordResetService{Store: store, Now: func() time.Time { return now }}

	raw, err := svc.CreateResetToken(context.Background(), "user-1", "reader@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw == "" {
		t.Fatalf("expected a raw token")
	}
	if stored.TokenHash == raw {
		t.Fatalf("raw token must not be stored")
	}
	if stored.TokenHash != hashResetToken(raw) {
		t.Fatalf("stored hash does not match raw token")
	}
	if !stored.ExpiresAt.Equal(now.Add(10 * time.Minute)) {
		t.Fatalf("unexpected expiry: %s", stored.ExpiresAt)
	}
}

func TestPasswordResetUnknownToken(t *testing.T) {
	store := &stubResetStore{
		t: t,
		getResetTokenByHashFunc: func(_ context.Context, _ string) (domain.PasswordResetToken, error) {
			return domain.PasswordResetToken{}, domain.ErrNotFound
		},
	}
	svc := &PasswordResetService{Store: store, Users: &stubResetUsers{t: t}}

	_, err := svc.ResetPassword(context.Background(), "bogus", "new-password")
	if !errors.Is(err, domain.ErrResetTokenInvalid) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestPasswordResetUsedToken(t *testing.T) {
	usedAt := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	store := &stubResetStore{
		t: t,
		getResetTokenByHashFunc: func(_ context.Context, _ string) (domain.PasswordResetToken, error) {
			return domain.PasswordResetToken{UserID: "user-1", UsedAt: &usedAt}, nil
		},
	}
	svc := &PasswordResetService{Store: store, Users: &stubResetUsers{t: t}}

	_, err := svc.ResetPassword(context.Background(), "raw-token", "new-password")
	if !errors.Is(err, domain.ErrResetTokenInvalid) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestPasswordResetExpiredToken(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	store := &stubResetStore{
		t: t,
		getResetTokenByHashFunc: func(_ context.Context, _ string) (domain.PasswordResetToken, error) {
			return domain.PasswordResetToken{UserID: "user-1", ExpiresAt: now.Add(-time.Minute)}, nil
		},
	}
	svc := &PasswordResetService{Store: store, Users: &stubResetUsers{t: t}, Now: func() time.Time { return now }}

	_, err := svc.ResetPassword(context.Background(), "raw-token", "new-password")
	if !errors.Is(err, domain.ErrResetTokenExpired) {
		t.Fatalf("expected expired token, got %v", err)
	}
}

func TestPasswordResetSuccess(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	var marked bool
	store := &stubResetStore{
		t: t,
		getResetTokenByHashFunc: func(_ context.Context, tokenHash string) (domain.PasswordResetToken, error) {
			if tokenHash != hashResetToken("raw-token") {
				t.Fatalf("unexpected token hash lookup")
			}
			return domain.PasswordResetToken{UserID: "user-1", ExpiresAt: now.Add(5 * time.Minute)}, nil
		},
		markResetTokenUsedFunc: func(_ context.Context, _ string, when time.Time) error {
			if !when.Equal(now) {
				t.Fatalf("unexpected used time: %s", when)
			}
			marked = true
			return nil
		},
	}
	users := &stubResetUsers{
		t: t,
		setPasswordFunc: func(_ context.Context, userID, passwordHash string, when time.Time) error {
			if userID != "user-1" {
				t.Fatalf("unexpected user id: %s", userID)
			}
			ok, err := auth.VerifyPassword(passwordHash, "new-password")
			if err != nil || !ok {
				t.Fatalf("stored hash does not verify new password: %v", err)
			}
			return nil
		},
	}
	svc := &PasswordResetService{Store: store, Users: users, Now: func() time.Time { return now }}

	userID, err := svc.ResetPassword(context.Background(), "raw-token", "new-password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("unexpected user id: %s", userID)
	}
	if !marked {
		t.Fatalf("expected token to be marked used")
	}
}
