package service

import (
	"context"

	"storyshare/internal/domain"
)

type RatingsStore interface {
	ToggleStoryVote(ctx context.Context, userID, storyID string) (domain.Story, bool, error)
	ToggleCommentVote(ctx context.Context, userID, commentID string) (domain.Comment, domain.User, bool, error)
}

// RatingService implements the toggle-vote semantics: the first call casts a
// +1 vote, the next call withdraws it. The store runs each toggle in a
// single transaction, so the voted set and the aggregate counters always
// move together.
type RatingService struct {
	Ratings  RatingsStore
	Stories  *StoryService
	Comments CommentsStore
}

type StoryVote struct {
	Story domain.Story `json:"story"`
	Voted bool         `json:"voted"`
}

type CommentVote struct {
	Comment      domain.Comment `json:"comment"`
	AuthorRating int            `json:"authorRating"`
	Voted        bool           `json:"voted"`
}

// ToggleStory flips the actor's vote on a story they are allowed to view.
func (s *RatingService) ToggleStory(ctx context.Context, actor domain.User, storyID string) (StoryVote, error) {
	if _, err := s.Stories.loadVisible(ctx, actor, storyID); err != nil {
		return StoryVote{}, err
	}

	st, voted, err := s.Ratings.ToggleStoryVote(ctx, actor.ID, storyID)
	if err != nil {
		return StoryVote{}, err
	}
	return StoryVote{Story: st, Voted: voted}, nil
}

// ToggleComment flips the actor's vote on a comment, gated by the parent
// story's visibility. The delta is mirrored onto the comment author's
// aggregate rating.
func (s *RatingService) ToggleComment(ctx context.Context, actor domain.User, commentID string) (CommentVote, error) {
	c, err := s.Comments.GetComment(ctx, commentID)
	if err != nil {
		return CommentVote{}, err
	}
	if c.Status == domain.LifecycleDisabled && actor.Role != domain.RoleAdmin {
		return CommentVote{}, domain.ErrNotFound
	}
	if _, err := s.Stories.loadVisible(ctx, actor, c.StoryID); err != nil {
		return CommentVote{}, err
	}

	updated, author, voted, err := s.Ratings.ToggleCommentVote(ctx, actor.ID, commentID)
	if err != nil {
		return CommentVote{}, err
	}
	return CommentVote{Comment: updated, AuthorRating: author.Rating, Voted: voted}, nil
}
