package service

import (
	"context"
	"strings"

	"storyshare/internal/domain"
)

const maxCommentLength = 2000

type CommentsStore interface {
	CreateComment(ctx context.Context, storyID, authorID, body string) (domain.Comment, error)
	GetComment(ctx context.Context, id string) (domain.Comment, error)
	UpdateCommentBody(ctx context.Context, id, body string) (domain.Comment, error)
	SetCommentStatus(ctx context.Context, id string, status domain.Lifecycle) (domain.Comment, error)
	DeleteComment(ctx context.Context, id string) error
	ListCommentsByStory(ctx context.Context, storyID string, includeDisabled bool) ([]domain.CommentView, error)
}

// CommentService handles comment CRUD. Comments inherit the visibility of
// their parent story, so reads and writes both go through the story gate.
type CommentService struct {
	Comments CommentsStore
	Stories  *StoryService
}

func validateCommentBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", domain.NewValidationError(map[string]string{"comment": "a comment must be provided"})
	}
	if len(body) > maxCommentLength {
		return "", domain.NewValidationError(map[string]string{"comment": "comment is too long"})
	}
	return body, nil
}

func (s *CommentService) Add(ctx context.Context, actor domain.User, storyID, body string) (domain.Comment, error) {
	body, err := validateCommentBody(body)
	if err != nil {
		return domain.Comment{}, err
	}

	// the parent story must resolve and be viewable by the actor
	if _, err := s.Stories.loadVisible(ctx, actor, storyID); err != nil {
		return domain.Comment{}, err
	}

	return s.Comments.CreateComment(ctx, storyID, actor.ID, body)
}

// ListForStory returns a story's comments behind the story's visibility
// gate. Disabled comments stay hidden from non-admin viewers but remain in
// storage.
func (s *CommentService) ListForStory(ctx context.Context, actor domain.User, storyID string) ([]domain.CommentView, error) {
	if _, err := s.Stories.loadVisible(ctx, actor, storyID); err != nil {
		return nil, err
	}
	return s.Comments.ListCommentsByStory(ctx, storyID, actor.Role == domain.RoleAdmin)
}

func (s *CommentService) loadOwned(ctx context.Context, actor domain.User, commentID string) (domain.Comment, error) {
	c, err := s.Comments.GetComment(ctx, commentID)
	if err != nil {
		return domain.Comment{}, err
	}
	if !domain.Owns(actor.ID, c) && actor.Role != domain.RoleAdmin {
		return domain.Comment{}, domain.ErrForbidden
	}
	return c, nil
}

func (s *CommentService) Update(ctx context.Context, actor domain.User, commentID, body string) (domain.Comment, error) {
	body, err := validateCommentBody(body)
	if err != nil {
		return domain.Comment{}, err
	}
	if _, err := s.loadOwned(ctx, actor, commentID); err != nil {
		return domain.Comment{}, err
	}
	return s.Comments.UpdateCommentBody(ctx, commentID, body)
}

func (s *CommentService) Disable(ctx context.Context, actor domain.User, commentID string) (domain.Comment, error) {
	if _, err := s.loadOwned(ctx, actor, commentID); err != nil {
		return domain.Comment{}, err
	}
	return s.Comments.SetCommentStatus(ctx, commentID, domain.LifecycleDisabled)
}

// Remove purges a comment. Routed admin-only.
func (s *CommentService) Remove(ctx context.Context, actor domain.User, commentID string) error {
	if actor.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return s.Comments.DeleteComment(ctx, commentID)
}
