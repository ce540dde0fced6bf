package service

import (
	"context"
	"strings"

	"storyshare/internal/domain"
)

type UserAdminStore interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	UpdateProfile(ctx context.Context, userID, name, photo string) (domain.User, error)
	SetUserStatus(ctx context.Context, userID string, status domain.Lifecycle) error
	ListUsers(ctx context.Context) ([]domain.User, error)
}

type UsersService struct {
	Store UserAdminStore
}

func (s *UsersService) UpdateProfile(ctx context.Context, actor domain.User, name, photo string) (domain.User, error) {
	name = strings.TrimSpace(name)
	photo = strings.TrimSpace(photo)
	if name == "" && photo == "" {
		return domain.User{}, domain.NewValidationError(map[string]string{"profile": "nothing to update"})
	}
	return s.Store.UpdateProfile(ctx, actor.ID, name, photo)
}

// Disable soft-deletes an account. Users may disable themselves; admins may
// disable anyone.
func (s *UsersService) Disable(ctx context.Context, actor domain.User, targetID string) error {
	if actor.ID != targetID && actor.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	if _, err := s.Store.GetUserByID(ctx, targetID); err != nil {
		return err
	}
	return s.Store.SetUserStatus(ctx, targetID, domain.LifecycleDisabled)
}

func (s *UsersService) ListAll(ctx context.Context, actor domain.User) ([]domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	return s.Store.ListUsers(ctx)
}
