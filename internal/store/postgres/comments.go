package postgres

import (
	"context"
	"errors"
	"fmt"

	"storyshare/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CommentsStore struct {
	pool *pgxpool.Pool
}

func NewCommentsStore(pool *pgxpool.Pool) *CommentsStore {
	return &CommentsStore{pool: pool}
}

const commentColumns = `id, story_id, author_id, body, rating, status, created_at, updated_at`

func scanComment(row pgx.Row) (domain.Comment, error) {
	var (
		c       domain.Comment
		idUUID  pgtype.UUID
		storyID pgtype.UUID
		author  pgtype.UUID
	)
	err := row.Scan(
		&idUUID,
		&storyID,
		&author,
		&c.Body,
		&c.Rating,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return domain.Comment{}, err
	}
	c.ID = uuidOrEmpty(idUUID)
	c.StoryID = uuidOrEmpty(storyID)
	c.AuthorID = uuidOrEmpty(author)
	return c, nil
}

func (s *CommentsStore) CreateComment(ctx context.Context, storyID, authorID, body string) (domain.Comment, error) {
	const q = `
		INSERT INTO comments (story_id, author_id, body)
		VALUES ($1, $2, $3)
		RETURNING ` + commentColumns

	c, err := scanComment(s.pool.QueryRow(ctx, q, storyID, authorID, body))
	if err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == "23503" {
			return domain.Comment{}, domain.ErrNotFound
		}
		return domain.Comment{}, fmt.Errorf("create comment: %w", err)
	}
	return c, nil
}

func (s *CommentsStore) GetComment(ctx context.Context, id string) (domain.Comment, error) {
	if !validUUID(id) {
		return domain.Comment{}, domain.ErrNotFound
	}

	const q = `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`

	c, err := scanComment(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Comment{}, domain.ErrNotFound
		}
		return domain.Comment{}, fmt.Errorf("get comment: %w", err)
	}
	return c, nil
}

func (s *CommentsStore) UpdateCommentBody(ctx context.Context, id, body string) (domain.Comment, error) {
	const q = `
		UPDATE comments
		SET body = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + commentColumns

	c, err := scanComment(s.pool.QueryRow(ctx, q, id, body))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Comment{}, domain.ErrNotFound
		}
		return domain.Comment{}, fmt.Errorf("update comment: %w", err)
	}
	return c, nil
}

func (s *CommentsStore) SetCommentStatus(ctx context.Context, id string, status domain.Lifecycle) (domain.Comment, error) {
	const q = `
		UPDATE comments
		SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + commentColumns

	c, err := scanComment(s.pool.QueryRow(ctx, q, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Comment{}, domain.ErrNotFound
		}
		return domain.Comment{}, fmt.Errorf("set comment status: %w", err)
	}
	return c, nil
}

func (s *CommentsStore) DeleteComment(ctx context.Context, id string) error {
	const q = `DELETE FROM comments WHERE id = $1`

	ct, err := s.pool.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListCommentsByStory returns a story's comments joined with the author's
// public summary. Disabled comments are included only when includeDisabled
// is set (admin viewers).
func (s *CommentsStore) ListCommentsByStory(ctx context.Context, storyID string, includeDisabled bool) ([]domain.CommentView, error) {
	const q = `
		SELECT c.id, c.story_id, c.author_id, c.body, c.rating, c.status, c.created_at, c.updated_at,
		       u.id, u.name, u.photo, u.created_at
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.story_id = $1 AND (c.status = 'active' OR $2)
		ORDER BY c.created_at ASC
	`

	rows, err := s.pool.Query(ctx, q, storyID, includeDisabled)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var out []domain.CommentView
	for rows.Next() {
		var (
			v          domain.CommentView
			idUUID     pgtype.UUID
			storyUUID  pgtype.UUID
			authorUUID pgtype.UUID
			sumUUID    pgtype.UUID
			photoText  pgtype.Text
		)
		err := rows.Scan(
			&idUUID,
			&storyUUID,
			&authorUUID,
			&v.Body,
			&v.Rating,
			&v.Status,
			&v.CreatedAt,
			&v.UpdatedAt,
			&sumUUID,
			&v.Author.Name,
			&photoText,
			&v.Author.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		v.ID = uuidOrEmpty(idUUID)
		v.StoryID = uuidOrEmpty(storyUUID)
		v.AuthorID = uuidOrEmpty(authorUUID)
		v.Author.ID = uuidOrEmpty(sumUUID)
		v.Author.Photo = textOrEmpty(photoText)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return out, nil
}
