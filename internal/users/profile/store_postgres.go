// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// PostgreSQL implementation of the profile storage contracts.
//
// # Error Mapping
//
// Storage-specific errors are mapped to domain-friendly [apperr.AppError]
// types via [dberr.Wrap] to avoid leaking storage implementation details.
package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/vidora/internal/platform/dberr"
	"github.com/taibuivan/vidora/internal/users/auth"
	"github.com/taibuivan/vidora/pkg/pagination"
	"github.com/taibuivan/vidora/pkg/pointer"
)

// # Account Repository

// PostgresAccountRepository implements the AccountRepository interface using pgx.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new PostgreSQL implementation of AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

// accountReturning is the canonical RETURNING/SELECT projection for hydrating
// an [auth.User] from users.account.
const accountReturning = `
	id, handle, email, passwordhash, displayname, avatarurl,
	COALESCE(coverimageurl, ''), COALESCE(refreshtoken, ''), createdat, updatedat`

// scanAccount hydrates an auth.User from a row carrying [accountReturning].
func scanAccount(row interface{ Scan(...any) error }) (*auth.User, error) {
	user := &auth.User{}
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
FindByID retrieves a user record by their unique ID.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *auth.User: Hydrated account entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresAccountRepository) FindByID(context context.Context, id string) (*auth.User, error) {
	query := `
		SELECT ` + accountReturning + `
		FROM users.account
		WHERE id = $1`

	user, err := scanAccount(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}

	return user, nil
}

/*
FindByHandle retrieves a user record by their unique channel handle.

Parameters:
  - context: context.Context
  - handle: string

Returns:
  - *auth.User: Hydrated account entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresAccountRepository) FindByHandle(context context.Context, handle string) (*auth.User, error) {
	query := `
		SELECT ` + accountReturning + `
		FROM users.account
		WHERE handle = $1`

	user, err := scanAccount(repository.pool.QueryRow(context, query, handle))
	if err != nil {
		return nil, dberr.Wrap(err, "Channel")
	}

	return user, nil
}

/*
UpdatePassword updates only the password hash for a specific user.

Parameters:
  - context: context.Context
  - userID: string
  - newHash: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresAccountRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	const query = `
		UPDATE users.account
		SET passwordhash = $2, updatedat = $3
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_account_repo_update_password_failed: %w", err)
	}

	return nil
}

/*
UpdateAccountDetails persists the display name and email together.

Description: Whitelist mutation of exactly two fields. The updated row is
returned so the caller can respond without a second round trip.

Parameters:
  - context: context.Context
  - userID: string
  - displayName: string
  - email: string

Returns:
  - *auth.User: The updated account entity
  - error: apperr.NotFound, unique-email violations, or execution errors
*/
func (repository *PostgresAccountRepository) UpdateAccountDetails(context context.Context, userID, displayName, email string) (*auth.User, error) {
	query := `
		UPDATE users.account
		SET displayname = $2, email = $3, updatedat = $4
		WHERE id = $1
		RETURNING ` + accountReturning

	user, err := scanAccount(repository.pool.QueryRow(context, query, userID, displayName, email, time.Now()))
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}

	return user, nil
}

/*
UpdateAvatar replaces the avatar reference for a specific user.

Parameters:
  - context: context.Context
  - userID: string
  - avatarURL: string

Returns:
  - *auth.User: The updated account entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresAccountRepository) UpdateAvatar(context context.Context, userID, avatarURL string) (*auth.User, error) {
	query := `
		UPDATE users.account
		SET avatarurl = $2, updatedat = $3
		WHERE id = $1
		RETURNING ` + accountReturning

	user, err := scanAccount(repository.pool.QueryRow(context, query, userID, avatarURL, time.Now()))
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}

	return user, nil
}

/*
UpdateCoverImage replaces the cover image reference for a specific user.

Parameters:
  - context: context.Context
  - userID: string
  - coverImageURL: string

Returns:
  - *auth.User: The updated account entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresAccountRepository) UpdateCoverImage(context context.Context, userID, coverImageURL string) (*auth.User, error) {
	query := `
		UPDATE users.account
		SET coverimageurl = $2, updatedat = $3
		WHERE id = $1
		RETURNING ` + accountReturning

	user, err := scanAccount(repository.pool.QueryRow(context, query, userID, coverImageURL, time.Now()))
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}

	return user, nil
}

// # Subscription Queries

// PostgresSubscriptionQueries implements SubscriptionQueries over users.subscription.
type PostgresSubscriptionQueries struct {
	pool *pgxpool.Pool
}

// NewSubscriptionQueries creates a new PostgreSQL implementation of SubscriptionQueries.
func NewSubscriptionQueries(pool *pgxpool.Pool) *PostgresSubscriptionQueries {
	return &PostgresSubscriptionQueries{pool: pool}
}

/*
CountSubscribers counts the subscription edges pointing at the channel.

Parameters:
  - context: context.Context
  - channelID: string

Returns:
  - int64: Subscriber count
  - error: Execution errors
*/
func (queries *PostgresSubscriptionQueries) CountSubscribers(context context.Context, channelID string) (int64, error) {
	const query = "SELECT COUNT(*) FROM users.subscription WHERE channelid = $1"

	var count int64
	if err := queries.pool.QueryRow(context, query, channelID).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres_subscription_count_subscribers_failed: %w", err)
	}

	return count, nil
}

/*
CountSubscriptions counts the subscription edges originating from the user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - int64: Subscription count
  - error: Execution errors
*/
func (queries *PostgresSubscriptionQueries) CountSubscriptions(context context.Context, userID string) (int64, error) {
	const query = "SELECT COUNT(*) FROM users.subscription WHERE subscriberid = $1"

	var count int64
	if err := queries.pool.QueryRow(context, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres_subscription_count_subscriptions_failed: %w", err)
	}

	return count, nil
}

/*
IsSubscribed reports whether a subscription edge exists from viewer to channel.

Parameters:
  - context: context.Context
  - viewerID: string
  - channelID: string

Returns:
  - bool: True if the edge exists
  - error: Execution errors
*/
func (queries *PostgresSubscriptionQueries) IsSubscribed(context context.Context, viewerID, channelID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM users.subscription WHERE subscriberid = $1 AND channelid = $2
		)`

	var exists bool
	if err := queries.pool.QueryRow(context, query, viewerID, channelID).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_subscription_is_subscribed_failed: %w", err)
	}

	return exists, nil
}

// # Watch History Queries

// PostgresWatchHistoryQueries implements WatchHistoryQueries over
// users.watchhistory joined with core.video and the owner account.
type PostgresWatchHistoryQueries struct {
	pool *pgxpool.Pool
}

// NewWatchHistoryQueries creates a new PostgreSQL implementation of WatchHistoryQueries.
func NewWatchHistoryQueries(pool *pgxpool.Pool) *PostgresWatchHistoryQueries {
	return &PostgresWatchHistoryQueries{pool: pool}
}

/*
ListWatched returns one page of watched videos, most recent first.

Description: Joins the history rows with the video catalogue and the owning
account to build the denormalized owner projection in a single query, plus a
count query for pagination metadata.

Parameters:
  - context: context.Context
  - userID: string
  - params: pagination.Params

Returns:
  - []WatchEntry: Page of watched videos
  - int: Total history size
  - error: Execution errors
*/
func (queries *PostgresWatchHistoryQueries) ListWatched(context context.Context, userID string, params pagination.Params) ([]WatchEntry, int, error) {
	const countQuery = "SELECT COUNT(*) FROM users.watchhistory WHERE userid = $1"

	var total int
	if err := queries.pool.QueryRow(context, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_watch_history_count_failed: %w", err)
	}

	const listQuery = `
		SELECT
			w.watchedat,
			v.id, v.title, v.description, v.thumbnailurl,
			v.duration, v.views, v.createdat,
			o.id, o.handle, o.displayname, o.avatarurl
		FROM users.watchhistory w
		JOIN core.video v ON v.id = w.videoid
		JOIN users.account o ON o.id = v.ownerid
		WHERE w.userid = $1
		ORDER BY w.watchedat DESC
		LIMIT $2 OFFSET $3`

	rows, err := queries.pool.Query(context, listQuery, userID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_watch_history_list_failed: %w", err)
	}
	defer rows.Close()

	entries := []WatchEntry{}
	for rows.Next() {
		var entry WatchEntry
		var description *string // nullable column
		err := rows.Scan(
			&entry.WatchedAt,
			&entry.Video.ID,
			&entry.Video.Title,
			&description,
			&entry.Video.ThumbnailURL,
			&entry.Video.Duration,
			&entry.Video.Views,
			&entry.Video.CreatedAt,
			&entry.Video.Owner.ID,
			&entry.Video.Owner.Handle,
			&entry.Video.Owner.DisplayName,
			&entry.Video.Owner.AvatarURL,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_watch_history_scan_failed: %w", err)
		}
		entry.Video.Description = pointer.Val(description)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_watch_history_rows_failed: %w", err)
	}

	return entries, total, nil
}
