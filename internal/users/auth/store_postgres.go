// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// PostgreSQL implementation of the auth storage contracts.
//
// # Architecture
//
// Repositories in this file are strictly separated from domain logic. They
// implement domain-defined interfaces (e.g., [UserRepository]) using the
// [pgxpool.Pool] connection manager.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types via [dberr.Wrap] to avoid leaking storage
// implementation details.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/vidora/internal/platform/dberr"
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// accountColumns is the canonical projection for hydrating a [User].
const accountColumns = `
	id, handle, email, passwordhash, displayname, avatarurl,
	COALESCE(coverimageurl, ''), COALESCE(refreshtoken, ''), createdat, updatedat`

// scanUser hydrates a User from a row carrying [accountColumns].
func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Handle,
		&user.Email,
		&user.PasswordHash,
		&user.DisplayName,
		&user.AvatarURL,
		&user.CoverImageURL,
		&user.RefreshToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

/*
Create persists a new user record into the users.account table.

Description: Deep-persists account metadata, ensuring timestamps are initialized
if not provided.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: Unique-constraint violations (mapped to validation errors) or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, handle, email, passwordhash, displayname, avatarurl, coverimageurl, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Handle,
		user.Email,
		user.PasswordHash,
		user.DisplayName,
		user.AvatarURL,
		user.CoverImageURL,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_user_repo_create_failed: %w", err), "User")
	}

	return nil
}

/*
FindByID retrieves a user record by their unique ID.

Description: Primary key resolution for user accounts.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM users.account
		WHERE id = $1`

	user, err := scanUser(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}

	return user, nil
}

/*
FindByHandleOrEmail retrieves a user record matching the login identifier on
either unique key.

Description: Flexible credential lookup so members can sign in with the handle
or the email interchangeably.

Parameters:
  - context: context.Context
  - login: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresUserRepository) FindByHandleOrEmail(context context.Context, login string) (*User, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM users.account
		WHERE handle = $1 OR email = $1`

	user, err := scanUser(repository.pool.QueryRow(context, query, login))
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}

	return user, nil
}

/*
ExistsByHandleOrEmail checks both unique keys in a single round trip.

Parameters:
  - context: context.Context
  - handle: string
  - email: string

Returns:
  - bool: True if an account already claims either identifier
  - error: Execution errors
*/
func (repository *PostgresUserRepository) ExistsByHandleOrEmail(context context.Context, handle, email string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM users.account WHERE handle = $1 OR email = $2
		)`

	var exists bool
	if err := repository.pool.QueryRow(context, query, handle, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_user_repo_exists_failed: %w", err)
	}

	return exists, nil
}

/*
UpdateRefreshToken replaces the stored refresh token for a specific user.

Description: The account row holds at most one active refresh token. Every
login and every rotation overwrites the previous value, which invalidates it.
An empty token stores NULL (logout).

Parameters:
  - context: context.Context
  - userID: string
  - token: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) UpdateRefreshToken(context context.Context, userID, token string) error {
	const query = `
		UPDATE users.account
		SET refreshtoken = NULLIF($2, ''), updatedat = $3
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, token, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_refresh_token_failed: %w", err)
	}

	return nil
}
