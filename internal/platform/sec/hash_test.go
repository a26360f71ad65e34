// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vidora/internal/platform/sec"
)

/*
TestHashPassword verifies that hashing is irreversible and verifiable.
*/
func TestHashPassword(t *testing.T) {
	hash, err := sec.HashPassword("correct horse battery staple")
	require.NoError(t, err)

	// The hash must never equal the plaintext.
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, sec.CheckPasswordHash("correct horse battery staple", hash))
	assert.False(t, sec.CheckPasswordHash("wrong password", hash))
}

/*
TestHashPassword_UniqueSalts verifies that two hashes of the same password differ.
*/
func TestHashPassword_UniqueSalts(t *testing.T) {
	first, err := sec.HashPassword("same-password")
	require.NoError(t, err)

	second, err := sec.HashPassword("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
