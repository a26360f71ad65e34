// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/dberr"
)

/*
TestWrap verifies the database-to-domain error classification.
*/
func TestWrap(t *testing.T) {
	testCases := []struct {
		name            string
		err             error
		resource        string
		expectedCode    string
		expectedMessage string
	}{
		{
			name:            "no rows maps to not found",
			err:             pgx.ErrNoRows,
			resource:        "User",
			expectedCode:    "NOT_FOUND",
			expectedMessage: "User not found",
		},
		{
			name: "email unique violation names the email",
			err: &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "account_email_key",
			},
			resource:        "User",
			expectedCode:    "VALIDATION_ERROR",
			expectedMessage: "Email already in use",
		},
		{
			name: "handle unique violation names the handle",
			err: &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "account_handle_key",
			},
			resource:        "User",
			expectedCode:    "VALIDATION_ERROR",
			expectedMessage: "Handle already taken",
		},
		{
			name: "unrecognized constraint falls back to the resource",
			err: &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "subscription_pair_key",
			},
			resource:        "Subscription",
			expectedCode:    "VALIDATION_ERROR",
			expectedMessage: "Subscription already exists",
		},
		{
			name:            "unknown errors become internal",
			err:             fmt.Errorf("connection reset"),
			resource:        "User",
			expectedCode:    "INTERNAL_ERROR",
			expectedMessage: "An unexpected error occurred",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			wrapped := dberr.Wrap(testCase.err, testCase.resource)
			require.Error(t, wrapped)

			ae := apperr.As(wrapped)
			require.NotNil(t, ae)
			assert.Equal(t, testCase.expectedCode, ae.Code)
			assert.Equal(t, testCase.expectedMessage, ae.Message)
		})
	}
}

/*
TestWrap_Nil verifies a nil error passes through untouched.
*/
func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, dberr.Wrap(nil, "User"))
}

/*
TestWrap_WrappedCause verifies classification works through fmt.Errorf chains,
which is how the repositories surface storage errors.
*/
func TestWrap_WrappedCause(t *testing.T) {
	cause := &pgconn.PgError{
		Code:           pgerrcode.UniqueViolation,
		ConstraintName: "account_email_key",
	}
	wrapped := dberr.Wrap(fmt.Errorf("insert failed: %w", cause), "User")

	ae := apperr.As(wrapped)
	require.NotNil(t, ae)
	assert.Equal(t, "Email already in use", ae.Message)
}
