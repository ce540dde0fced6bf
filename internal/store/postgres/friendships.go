package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storyshare/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FriendshipsStore keeps one row per unordered user pair, enforced by a
// unique index on (least(requester_id, addressee_id), greatest(...)). Every
// state transition of the pair is a single-row write, so both sides of the
// relationship can never disagree.
type FriendshipsStore struct {
	pool *pgxpool.Pool
}

func NewFriendshipsStore(pool *pgxpool.Pool) *FriendshipsStore {
	return &FriendshipsStore{pool: pool}
}

func (s *FriendshipsStore) CreateRequest(ctx context.Context, requesterID, addresseeID string) (domain.Friendship, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Friendship{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const existing = `
		SELECT status FROM friendships
		WHERE (requester_id = $1 AND addressee_id = $2)
		   OR (requester_id = $2 AND addressee_id = $1)
	`
	var status domain.FriendshipStatus
	err = tx.QueryRow(ctx, existing, requesterID, addresseeID).Scan(&status)
	switch {
	case err == nil:
		if status == domain.FriendshipAccepted {
			return domain.Friendship{}, domain.ErrAlreadyFriends
		}
		return domain.Friendship{}, domain.ErrRequestPending
	case errors.Is(err, pgx.ErrNoRows):
		// pair is free, insert below
	default:
		return domain.Friendship{}, fmt.Errorf("check pair: %w", err)
	}

	const insert = `
		INSERT INTO friendships (requester_id, addressee_id, status)
		VALUES ($1, $2, 'pending')
		RETURNING id, created_at
	`
	var (
		idUUID    pgtype.UUID
		createdAt time.Time
	)
	if err := tx.QueryRow(ctx, insert, requesterID, addresseeID).Scan(&idUUID, &createdAt); err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == "23505" && pgerr.ConstraintName == "friendships_pair_uq" {
			// lost a race with a concurrent request on the same pair
			return domain.Friendship{}, domain.ErrRequestPending
		}
		if errors.As(err, &pgerr) && pgerr.Code == "23503" {
			return domain.Friendship{}, domain.ErrNotFound
		}
		return domain.Friendship{}, fmt.Errorf("create friend request: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Friendship{}, fmt.Errorf("commit: %w", err)
	}

	return domain.Friendship{
		ID:          uuidOrEmpty(idUUID),
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      domain.FriendshipPending,
		CreatedAt:   createdAt,
	}, nil
}

// Accept flips the pending requester-to-addressee row to accepted. The caller
// must be the addressee.
func (s *FriendshipsStore) Accept(ctx context.Context, requesterID, addresseeID string, when time.Time) error {
	if !validUUID(requesterID) || !validUUID(addresseeID) {
		return domain.ErrNotFound
	}

	const q = `
		UPDATE friendships
		SET status = 'accepted', responded_at = $3
		WHERE requester_id = $1 AND addressee_id = $2 AND status = 'pending'
	`
	ct, err := s.pool.Exec(ctx, q, requesterID, addresseeID, when)
	if err != nil {
		return fmt.Errorf("accept friend request: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Cancel removes the pending requester-to-addressee row. The caller must be
// the requester.
func (s *FriendshipsStore) Cancel(ctx context.Context, requesterID, addresseeID string) error {
	if !validUUID(requesterID) || !validUUID(addresseeID) {
		return domain.ErrNotFound
	}

	const q = `
		DELETE FROM friendships
		WHERE requester_id = $1 AND addressee_id = $2 AND status = 'pending'
	`
	ct, err := s.pool.Exec(ctx, q, requesterID, addresseeID)
	if err != nil {
		return fmt.Errorf("cancel friend request: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RemoveFriend deletes the accepted row in either orientation.
func (s *FriendshipsStore) RemoveFriend(ctx context.Context, userID, friendID string) error {
	if !validUUID(userID) || !validUUID(friendID) {
		return domain.ErrNotFriends
	}

	const q = `
		DELETE FROM friendships
		WHERE status = 'accepted'
		  AND ((requester_id = $1 AND addressee_id = $2)
		    OR (requester_id = $2 AND addressee_id = $1))
	`
	ct, err := s.pool.Exec(ctx, q, userID, friendID)
	if err != nil {
		return fmt.Errorf("remove friend: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFriends
	}
	return nil
}

func (s *FriendshipsStore) AreFriends(ctx context.Context, userA, userB string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM friendships
			WHERE status = 'accepted'
			  AND ((requester_id = $1 AND addressee_id = $2)
			    OR (requester_id = $2 AND addressee_id = $1))
		)
	`
	var ok bool
	if err := s.pool.QueryRow(ctx, q, userA, userB).Scan(&ok); err != nil {
		return false, fmt.Errorf("are friends: %w", err)
	}
	return ok, nil
}

func (s *FriendshipsStore) FriendIDs(ctx context.Context, userID string) ([]string, error) {
	const q = `
		SELECT CASE WHEN requester_id = $1 THEN addressee_id ELSE requester_id END
		FROM friendships
		WHERE status = 'accepted' AND (requester_id = $1 OR addressee_id = $1)
	`
	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("friend ids: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var idUUID pgtype.UUID
		if err := rows.Scan(&idUUID); err != nil {
			return nil, fmt.Errorf("scan friend id: %w", err)
		}
		out = append(out, uuidOrEmpty(idUUID))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("friend ids: %w", err)
	}
	return out, nil
}

func (s *FriendshipsStore) ListOverview(ctx context.Context, userID string) (domain.FriendsOverview, error) {
	friends, err := s.listSummaries(ctx, `
		SELECT u.id, u.name, u.photo, u.created_at
		FROM friendships f
		JOIN users u ON u.id = CASE
			WHEN f.requester_id = $1 THEN f.addressee_id
			ELSE f.requester_id
		END
		WHERE f.status = 'accepted' AND (f.requester_id = $1 OR f.addressee_id = $1)
		ORDER BY u.name ASC
	`, userID)
	if err != nil {
		return domain.FriendsOverview{}, fmt.Errorf("list friends: %w", err)
	}

	received, err := s.listSummaries(ctx, `
		SELECT u.id, u.name, u.photo, u.created_at
		FROM friendships f
		JOIN users u ON u.id = f.requester_id
		WHERE f.status = 'pending' AND f.addressee_id = $1
		ORDER BY f.created_at DESC
	`, userID)
	if err != nil {
		return domain.FriendsOverview{}, fmt.Errorf("list received requests: %w", err)
	}

	sent, err := s.listSummaries(ctx, `
		SELECT u.id, u.name, u.photo, u.created_at
		FROM friendships f
		JOIN users u ON u.id = f.addressee_id
		WHERE f.status = 'pending' AND f.requester_id = $1
		ORDER BY f.created_at DESC
	`, userID)
	if err != nil {
		return domain.FriendsOverview{}, fmt.Errorf("list sent requests: %w", err)
	}

	return domain.FriendsOverview{
		Friends:          friends,
		RequestsReceived: received,
		RequestsSent:     sent,
	}, nil
}

func (s *FriendshipsStore) listSummaries(ctx context.Context, q, userID string) ([]domain.UserSummary, error) {
	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.UserSummary
	for rows.Next() {
		var (
			sum       domain.UserSummary
			idUUID    pgtype.UUID
			photoText pgtype.Text
		)
		if err := rows.Scan(&idUUID, &sum.Name, &photoText, &sum.CreatedAt); err != nil {
			return nil, err
		}
		sum.ID = uuidOrEmpty(idUUID)
		sum.Photo = textOrEmpty(photoText)
		out = append(out, sum)
	}
	return out, rows.Err()
}
