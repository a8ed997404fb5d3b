// internal/repository/postgres/user_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"taskline-service/internal/domain/user"
	xerrors "taskline-service/internal/pkg/errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, password_hash, google_id, name, picture,
	       logins_count, last_login, created_at, updated_at`

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.GoogleID, &u.Name, &u.Picture,
		&u.LoginsCount, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

// FindByEmail retrieves a user by email (case-insensitive).
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

// FindByID retrieves a user by id.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// FindByGoogleID retrieves a user by the federated subject id.
func (r *UserRepository) FindByGoogleID(ctx context.Context, googleID string) (*user.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE google_id = $1
	`
	return scanUser(r.db.QueryRow(ctx, query, googleID))
}

// Create inserts a new user. A unique violation on email or google_id is
// reported as ErrConflict; the DB constraint is the authority, there is no
// pre-check.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (email, password_hash, google_id, name, picture, last_login)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, logins_count, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		u.Email, u.PasswordHash, u.GoogleID, u.Name, u.Picture, u.LastLogin,
	).Scan(&u.ID, &u.LoginsCount, &u.CreatedAt, &u.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return xerrors.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// RecordLogin bumps the login counter and timestamp.
func (r *UserRepository) RecordLogin(ctx context.Context, id int64) error {
	query := `
		UPDATE users
		SET logins_count = logins_count + 1,
		    last_login = NOW(),
		    updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}
