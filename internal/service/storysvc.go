package service

import (
	"context"
	"strings"

	"storyshare/internal/domain"
)

type StoriesStore interface {
	CreateStory(ctx context.Context, authorID, title, text string, images []string, private bool) (domain.Story, error)
	GetStory(ctx context.Context, id string) (domain.Story, error)
	UpdateStory(ctx context.Context, id, title, text string, images []string, private bool) (domain.Story, error)
	SetStoryStatus(ctx context.Context, id string, status domain.Lifecycle) (domain.Story, error)
	DeleteStory(ctx context.Context, id string) error
	ListStoriesByAuthor(ctx context.Context, authorID string) ([]domain.Story, error)
	ListStoriesByAuthors(ctx context.Context, authorIDs []string) ([]domain.Story, error)
	ListAllStories(ctx context.Context) ([]domain.Story, error)
}

type CommentsLister interface {
	ListCommentsByStory(ctx context.Context, storyID string, includeDisabled bool) ([]domain.CommentView, error)
}

// FriendChecker answers friendship questions for the visibility gate.
type FriendChecker interface {
	AreFriends(ctx context.Context, userA, userB string) (bool, error)
	FriendIDs(ctx context.Context, userID string) ([]string, error)
}

type StoryService struct {
	Stories  StoriesStore
	Comments CommentsLister
	Friends  FriendChecker
}

func validateStoryInput(title, text string, images []string) error {
	fields := map[string]string{}
	if strings.TrimSpace(title) == "" {
		fields["title"] = "a title is required"
	}
	if strings.TrimSpace(text) == "" && len(images) == 0 {
		fields["content"] = "a story needs text or at least one image"
	}
	if len(fields) > 0 {
		return domain.NewValidationError(fields)
	}
	return nil
}

func (s *StoryService) Create(ctx context.Context, actor domain.User, title, text string, images []string, private bool) (domain.Story, error) {
	if err := validateStoryInput(title, text, images); err != nil {
		return domain.Story{}, err
	}
	return s.Stories.CreateStory(ctx, actor.ID, strings.TrimSpace(title), text, images, private)
}

// loadVisible fetches a story and applies the gate order of the protected
// routes: existence first, then the disabled filter, then the
// friends-only visibility rule.
func (s *StoryService) loadVisible(ctx context.Context, actor domain.User, storyID string) (domain.Story, error) {
	st, err := s.Stories.GetStory(ctx, storyID)
	if err != nil {
		return domain.Story{}, err
	}
	if st.Status == domain.LifecycleDisabled && actor.Role != domain.RoleAdmin && !domain.Owns(actor.ID, st) {
		return domain.Story{}, domain.ErrNotFound
	}
	if actor.Role == domain.RoleAdmin {
		return st, nil
	}
	if st.Private && !domain.Owns(actor.ID, st) {
		isFriend, err := s.Friends.AreFriends(ctx, actor.ID, st.AuthorID)
		if err != nil {
			return domain.Story{}, err
		}
		if !domain.CanView(actor.ID, st, isFriend) {
			return domain.Story{}, domain.ErrForbidden
		}
	}
	return st, nil
}

// Get returns a story with its comments populated, subject to the
// visibility gate.
func (s *StoryService) Get(ctx context.Context, actor domain.User, storyID string) (domain.StoryView, error) {
	st, err := s.loadVisible(ctx, actor, storyID)
	if err != nil {
		return domain.StoryView{}, err
	}

	comments, err := s.Comments.ListCommentsByStory(ctx, st.ID, actor.Role == domain.RoleAdmin)
	if err != nil {
		return domain.StoryView{}, err
	}
	return domain.StoryView{Story: st, Comments: comments}, nil
}

func (s *StoryService) Update(ctx context.Context, actor domain.User, storyID, title, text string, images []string, private bool) (domain.Story, error) {
	if err := validateStoryInput(title, text, images); err != nil {
		return domain.Story{}, err
	}

	st, err := s.Stories.GetStory(ctx, storyID)
	if err != nil {
		return domain.Story{}, err
	}
	if !domain.Owns(actor.ID, st) && actor.Role != domain.RoleAdmin {
		return domain.Story{}, domain.ErrForbidden
	}

	return s.Stories.UpdateStory(ctx, storyID, strings.TrimSpace(title), text, images, private)
}

// Disable soft-deletes the actor's own story, flipping it from active to
// disabled.
func (s *StoryService) Disable(ctx context.Context, actor domain.User, storyID string) (domain.Story, error) {
	st, err := s.Stories.GetStory(ctx, storyID)
	if err != nil {
		return domain.Story{}, err
	}
	if !domain.Owns(actor.ID, st) && actor.Role != domain.RoleAdmin {
		return domain.Story{}, domain.ErrForbidden
	}
	return s.Stories.SetStoryStatus(ctx, storyID, domain.LifecycleDisabled)
}

// Remove purges a story for good. Routed admin-only.
func (s *StoryService) Remove(ctx context.Context, actor domain.User, storyID string) error {
	if actor.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return s.Stories.DeleteStory(ctx, storyID)
}

func (s *StoryService) ListMine(ctx context.Context, actor domain.User) ([]domain.Story, error) {
	return s.Stories.ListStoriesByAuthor(ctx, actor.ID)
}

// ListByUser returns another user's stories with private ones stripped
// unless the viewer is the author, a friend of the author, or an admin.
func (s *StoryService) ListByUser(ctx context.Context, actor domain.User, userID string) ([]domain.Story, error) {
	stories, err := s.Stories.ListStoriesByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if actor.ID == userID || actor.Role == domain.RoleAdmin {
		return stories, nil
	}

	isFriend, err := s.Friends.AreFriends(ctx, actor.ID, userID)
	if err != nil {
		return nil, err
	}

	out := stories[:0]
	for _, st := range stories {
		if domain.CanView(actor.ID, st, isFriend) {
			out = append(out, st)
		}
	}
	return out, nil
}

// ListFriends returns the stories of the actor's friends, private ones
// included since friendship satisfies the visibility rule.
func (s *StoryService) ListFriends(ctx context.Context, actor domain.User) ([]domain.Story, error) {
	ids, err := s.Friends.FriendIDs(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return s.Stories.ListStoriesByAuthors(ctx, ids)
}

func (s *StoryService) ListAll(ctx context.Context, actor domain.User) ([]domain.Story, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	return s.Stories.ListAllStories(ctx)
}
