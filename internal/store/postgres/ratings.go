package postgres

import (
	"context"
	"fmt"

	"storyshare/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RatingsStore owns the per-user voted sets and the aggregate counters they
// feed. Each toggle runs in a single transaction so the voted set and the
// counters cannot drift apart.
type RatingsStore struct {
	pool *pgxpool.Pool
}

func NewRatingsStore(pool *pgxpool.Pool) *RatingsStore {
	return &RatingsStore{pool: pool}
}

// ToggleStoryVote flips userID's vote on the story and applies the one-point delta
// to the story's rating. Returns the updated story and whether the vote now
// stands.
func (s *RatingsStore) ToggleStoryVote(ctx context.Context, userID, storyID string) (domain.Story, bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Story{}, false, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const del = `DELETE FROM story_ratings WHERE user_id = $1 AND story_id = $2`
	ct, err := tx.Exec(ctx, del, userID, storyID)
	if err != nil {
		return domain.Story{}, false, fmt.Errorf("remove story vote: %w", err)
	}

	delta := -1
	voted := false
	if ct.RowsAffected() == 0 {
		const ins = `INSERT INTO story_ratings (user_id, story_id) VALUES ($1, $2)`
		if _, err := tx.Exec(ctx, ins, userID, storyID); err != nil {
			return domain.Story{}, false, fmt.Errorf("cast story vote: %w", err)
		}
		delta = 1
		voted = true
	}

	const upd = `
		UPDATE stories SET rating = rating + $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + storyColumns

	st, err := scanStory(tx.QueryRow(ctx, upd, storyID, delta))
	if err != nil {
		return domain.Story{}, false, fmt.Errorf("update story rating: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Story{}, false, fmt.Errorf("commit: %w", err)
	}
	return st, voted, nil
}

// ToggleCommentVote flips userID's vote on the comment, applies the one-point delta
// to the comment's rating and mirrors it onto the comment author's aggregate
// rating, all in one transaction.
func (s *RatingsStore) ToggleCommentVote(ctx context.Context, userID, commentID string) (domain.Comment, domain.User, bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Comment{}, domain.User{}, false, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const del = `DELETE FROM comment_ratings WHERE user_id = $1 AND comment_id = $2`
	ct, err := tx.Exec(ctx, del, userID, commentID)
	if err != nil {
		return domain.Comment{}, domain.User{}, false, fmt.Errorf("remove comment vote: %w", err)
	}

	delta := -1
	voted := false
	if ct.RowsAffected() == 0 {
		const ins = `INSERT INTO comment_ratings (user_id, comment_id) VALUES ($1, $2)`
		if _, err := tx.Exec(ctx, ins, userID, commentID); err != nil {
			return domain.Comment{}, domain.User{}, false, fmt.Errorf("cast comment vote: %w", err)
		}
		delta = 1
		voted = true
	}

	const updComment = `
		UPDATE comments SET rating = rating + $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + commentColumns

	c, err := scanComment(tx.QueryRow(ctx, updComment, commentID, delta))
	if err != nil {
		return domain.Comment{}, domain.User{}, false, fmt.Errorf("update comment rating: %w", err)
	}

	const updAuthor = `
		UPDATE users SET rating = rating + $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns

	author, err := scanUser(tx.QueryRow(ctx, updAuthor, c.AuthorID, delta))
	if err != nil {
		return domain.Comment{}, domain.User{}, false, fmt.Errorf("update author rating: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Comment{}, domain.User{}, false, fmt.Errorf("commit: %w", err)
	}
	return c, author, voted, nil
}
