package postgres

import (
	"context"
	"errors"
	"fmt"

	"storyshare/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StoriesStore struct {
	pool *pgxpool.Pool
}

func NewStoriesStore(pool *pgxpool.Pool) *StoriesStore {
	return &StoriesStore{pool: pool}
}

const storyColumns = `id, author_id, title, text, images, private, status, rating, created_at, updated_at`

func scanStory(row pgx.Row) (domain.Story, error) {
	var (
		st       domain.Story
		idUUID   pgtype.UUID
		author   pgtype.UUID
		textText pgtype.Text
		images   pgtype.FlatArray[string]
	)
	err := row.Scan(
		&idUUID,
		&author,
		&st.Title,
		&textText,
		&images,
		&st.Private,
		&st.Status,
		&st.Rating,
		&st.CreatedAt,
		&st.UpdatedAt,
	)
	if err != nil {
		return domain.Story{}, err
	}
	st.ID = uuidOrEmpty(idUUID)
	st.AuthorID = uuidOrEmpty(author)
	st.Text = textOrEmpty(textText)
	st.Images = textArrayOrEmpty(images)
	return st, nil
}

func (s *StoriesStore) CreateStory(ctx context.Context, authorID, title, text string, images []string, private bool) (domain.Story, error) {
	const q = `
		INSERT INTO stories (author_id, title, text, images, private)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + storyColumns

	st, err := scanStory(s.pool.QueryRow(ctx, q, authorID, title, nullIfEmpty(text), images, private))
	if err != nil {
		return domain.Story{}, fmt.Errorf("create story: %w", err)
	}
	return st, nil
}

func (s *StoriesStore) GetStory(ctx context.Context, id string) (domain.Story, error) {
	if !validUUID(id) {
		return domain.Story{}, domain.ErrNotFound
	}

	const q = `SELECT ` + storyColumns + ` FROM stories WHERE id = $1`

	st, err := scanStory(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Story{}, domain.ErrNotFound
		}
		return domain.Story{}, fmt.Errorf("get story: %w", err)
	}
	return st, nil
}

func (s *StoriesStore) UpdateStory(ctx context.Context, id, title, text string, images []string, private bool) (domain.Story, error) {
	const q = `
		UPDATE stories
		SET title = $2, text = $3, images = $4, private = $5, updated_at = now()
		WHERE id = $1
		RETURNING ` + storyColumns

	st, err := scanStory(s.pool.QueryRow(ctx, q, id, title, nullIfEmpty(text), images, private))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Story{}, domain.ErrNotFound
		}
		return domain.Story{}, fmt.Errorf("update story: %w", err)
	}
	return st, nil
}

func (s *StoriesStore) SetStoryStatus(ctx context.Context, id string, status domain.Lifecycle) (domain.Story, error) {
	const q = `
		UPDATE stories
		SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + storyColumns

	st, err := scanStory(s.pool.QueryRow(ctx, q, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Story{}, domain.ErrNotFound
		}
		return domain.Story{}, fmt.Errorf("set story status: %w", err)
	}
	return st, nil
}

// DeleteStory purges the row. Comments and rating rows go with it via
// ON DELETE CASCADE, and the author's story list is a derived query so no
// detach step is needed.
func (s *StoriesStore) DeleteStory(ctx context.Context, id string) error {
	if !validUUID(id) {
		return domain.ErrNotFound
	}

	const q = `DELETE FROM stories WHERE id = $1`

	ct, err := s.pool.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete story: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *StoriesStore) ListStoriesByAuthor(ctx context.Context, authorID string) ([]domain.Story, error) {
	// a malformed author id lists nothing, like an unknown one
	if !validUUID(authorID) {
		return nil, nil
	}

	const q = `
		SELECT ` + storyColumns + `
		FROM stories
		WHERE author_id = $1 AND status = 'active'
		ORDER BY created_at DESC
	`
	return s.list(ctx, q, authorID)
}

// ListStoriesByAuthors returns the active stories of all given authors,
// private ones included; the caller restricts authors to the viewer's
// friends.
func (s *StoriesStore) ListStoriesByAuthors(ctx context.Context, authorIDs []string) ([]domain.Story, error) {
	const q = `
		SELECT ` + storyColumns + `
		FROM stories
		WHERE author_id = ANY($1) AND status = 'active'
		ORDER BY created_at DESC
	`
	return s.list(ctx, q, authorIDs)
}

func (s *StoriesStore) ListAllStories(ctx context.Context) ([]domain.Story, error) {
	const q = `SELECT ` + storyColumns + ` FROM stories ORDER BY created_at DESC`
	return s.list(ctx, q)
}

func (s *StoriesStore) list(ctx context.Context, q string, args ...any) ([]domain.Story, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	defer rows.Close()

	var out []domain.Story
	for rows.Next() {
		st, err := scanStory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan story: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	return out, nil
}
