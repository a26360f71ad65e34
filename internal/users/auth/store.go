// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByHandleOrEmail returns the account whose handle or email matches
		the given login identifier.

		Parameters:
		  - context: context.Context
		  - login: string (handle or email)

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByHandleOrEmail(context context.Context, login string) (*User, error)

	/*
		ExistsByHandleOrEmail reports whether any account already claims the
		given handle or email.

		Parameters:
		  - context: context.Context
		  - handle: string
		  - email: string

		Returns:
		  - bool: True if either identifier is taken
		  - error: Database retrieval failures
	*/
	ExistsByHandleOrEmail(context context.Context, handle, email string) (bool, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures (including unique-constraint violations)
	*/
	Create(context context.Context, user *User) error

	/*
		UpdateRefreshToken replaces the single stored refresh token for a user.
		An empty token clears the field (logout).

		Parameters:
		  - context: context.Context
		  - userID: string
		  - token: string

		Returns:
		  - error: Persistence failures
	*/
	UpdateRefreshToken(context context.Context, userID, token string) error
}
