// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/vidora/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// The resource argument names the entity for client-facing messages
// (e.g. "User" yields "User not found" / "User already exists").
func Wrap(err error, resource string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		if resource == "" {
			return ErrNotFound
		}
		return apperr.NotFound(resource)
	}

	// 2. Unique-constraint violations become client-safe validation failures.
	// The violated constraint names the colliding column (account_email_key,
	// account_handle_key), so the message can say which identity is taken.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		switch {
		case strings.Contains(pgErr.ConstraintName, "email"):
			return apperr.ValidationError("Email already in use")
		case strings.Contains(pgErr.ConstraintName, "handle"):
			return apperr.ValidationError("Handle already taken")
		}
		return apperr.ValidationError(resource + " already exists")
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(err)
}
