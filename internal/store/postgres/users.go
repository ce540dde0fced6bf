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

type UsersStore struct {
	pool *pgxpool.Pool
}

func NewUsersStore(pool *pgxpool.Pool) *UsersStore {
	return &UsersStore{pool: pool}
}

const userColumns = `id, name, email, role, photo, rating, status, password_changed_at, created_at, updated_at`

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		u         domain.User
		idUUID    pgtype.UUID
		photoText pgtype.Text
		changedTS pgtype.Timestamptz
	)
	err := row.Scan(
		&idUUID,
		&u.Name,
		&u.Email,
		&u.Role,
		&photoText,
		&u.Rating,
		&u.Status,
		&changedTS,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	u.ID = uuidOrEmpty(idUUID)
	u.Photo = textOrEmpty(photoText)
	u.PasswordChangedAt = timestamptzPtr(changedTS)
	return u, nil
}

func (s *UsersStore) CreateUser(ctx context.Context, name, email, passwordHash string) (domain.User, error) {
	const q = `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	u, err := scanUser(s.pool.QueryRow(ctx, q, name, email, passwordHash))
	if err != nil {
		return domain.User{}, mapUserWriteError(err)
	}
	return u, nil
}

func (s *UsersStore) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	if !validUUID(id) {
		return domain.User{}, domain.ErrNotFound
	}

	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

func (s *UsersStore) GetUserByEmail(ctx context.Context, email string) (domain.UserWithPassword, error) {
	const q = `
		SELECT password_hash, ` + userColumns + `
		FROM users
		WHERE email = $1
		LIMIT 1
	`

	var (
		u         domain.UserWithPassword
		idUUID    pgtype.UUID
		photoText pgtype.Text
		changedTS pgtype.Timestamptz
	)
	err := s.pool.QueryRow(ctx, q, email).Scan(
		&u.PasswordHash,
		&idUUID,
		&u.Name,
		&u.Email,
		&u.Role,
		&photoText,
		&u.Rating,
		&u.Status,
		&changedTS,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserWithPassword{}, domain.ErrNotFound
		}
		return domain.UserWithPassword{}, fmt.Errorf("get user by email: %w", err)
	}
	u.ID = uuidOrEmpty(idUUID)
	u.Photo = textOrEmpty(photoText)
	u.PasswordChangedAt = timestamptzPtr(changedTS)
	return u, nil
}

func (s *UsersStore) GetPasswordHash(ctx context.Context, userID string) (string, error) {
	const q = `SELECT password_hash FROM users WHERE id = $1`

	var hash string
	if err := s.pool.QueryRow(ctx, q, userID).Scan(&hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("get password hash: %w", err)
	}
	return hash, nil
}

// SetPassword stores the new hash and stamps password_changed_at one second
// in the past so a token issued in the same second as the change still
// passes the issued-at comparison.
func (s *UsersStore) SetPassword(ctx context.Context, userID, passwordHash string, when time.Time) error {
	const q = `
		UPDATE users
		SET password_hash = $2, password_changed_at = $3, updated_at = now()
		WHERE id = $1
	`
	ct, err := s.pool.Exec(ctx, q, userID, passwordHash, when.Add(-time.Second))
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *UsersStore) UpdateProfile(ctx context.Context, userID, name, photo string) (domain.User, error) {
	const q = `
		UPDATE users
		SET name = COALESCE(NULLIF($2, ''), name),
		    photo = COALESCE(NULLIF($3, ''), photo),
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns

	u, err := scanUser(s.pool.QueryRow(ctx, q, userID, name, photo))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

func (s *UsersStore) SetUserStatus(ctx context.Context, userID string, status domain.Lifecycle) error {
	const q = `UPDATE users SET status = $2, updated_at = now() WHERE id = $1`

	ct, err := s.pool.Exec(ctx, q, userID, status)
	if err != nil {
		return fmt.Errorf("set user status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *UsersStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (s *UsersStore) GetUserByExternalAccount(ctx context.Context, provider, providerID string) (domain.User, error) {
	const q = `
		SELECT ` + prefixedUserColumns + `
		FROM users u
		JOIN external_accounts ea ON ea.user_id = u.id
		WHERE ea.provider = $1 AND ea.provider_id = $2
	`

	u, err := scanUser(s.pool.QueryRow(ctx, q, provider, providerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("get user by external account: %w", err)
	}
	return u, nil
}

const prefixedUserColumns = `u.id, u.name, u.email, u.role, u.photo, u.rating, u.status, u.password_changed_at, u.created_at, u.updated_at`

// CreateUserWithExternalAccount inserts the user row and its external account
// link in one transaction.
func (s *UsersStore) CreateUserWithExternalAccount(ctx context.Context, provider, providerID, email, name, passwordHash string) (domain.User, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const insertUser = `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	u, err := scanUser(tx.QueryRow(ctx, insertUser, name, email, passwordHash))
	if err != nil {
		return domain.User{}, mapUserWriteError(err)
	}

	const insertAccount = `
		INSERT INTO external_accounts (user_id, provider, provider_id, email)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.Exec(ctx, insertAccount, u.ID, provider, providerID, nullIfEmpty(email)); err != nil {
		return domain.User{}, mapExternalWriteError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.User{}, fmt.Errorf("commit: %w", err)
	}
	return u, nil
}

func (s *UsersStore) LinkExternalAccount(ctx context.Context, userID, provider, providerID, email string) error {
	const q = `
		INSERT INTO external_accounts (user_id, provider, provider_id, email)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := s.pool.Exec(ctx, q, userID, provider, providerID, nullIfEmpty(email)); err != nil {
		return mapExternalWriteError(err)
	}
	return nil
}

func mapUserWriteError(err error) error {
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) && pgerr.Code == "23505" {
		if pgerr.ConstraintName == "users_email_uq" {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("unique violation (%s): %w", pgerr.ConstraintName, err)
	}
	return fmt.Errorf("create user: %w", err)
}

func mapExternalWriteError(err error) error {
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) && pgerr.Code == "23505" {
		return domain.ErrExternalAccountExists
	}
	return fmt.Errorf("link external account: %w", err)
}
