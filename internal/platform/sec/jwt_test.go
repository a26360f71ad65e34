// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vidora/internal/platform/sec"
)

func newTestTokenService(t *testing.T) *sec.TokenService {
	t.Helper()

	service, err := sec.NewTokenService(sec.TokenConfig{
		AccessSecret:  "access-secret-for-tests",
		RefreshSecret: "refresh-secret-for-tests",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    240 * time.Hour,
		Issuer:        "vidora.test",
	})
	require.NoError(t, err)

	return service
}

/*
TestNewTokenService_Validation verifies the configuration guards of the constructor.
*/
func TestNewTokenService_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  sec.TokenConfig
	}{
		{"empty_access_secret", sec.TokenConfig{RefreshSecret: "r", AccessTTL: time.Minute, RefreshTTL: time.Hour}},
		{"empty_refresh_secret", sec.TokenConfig{AccessSecret: "a", AccessTTL: time.Minute, RefreshTTL: time.Hour}},
		{"identical_secrets", sec.TokenConfig{AccessSecret: "same", RefreshSecret: "same", AccessTTL: time.Minute, RefreshTTL: time.Hour}},
		{"zero_access_ttl", sec.TokenConfig{AccessSecret: "a", RefreshSecret: "r", RefreshTTL: time.Hour}},
		{"negative_refresh_ttl", sec.TokenConfig{AccessSecret: "a", RefreshSecret: "r", AccessTTL: time.Minute, RefreshTTL: -time.Hour}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sec.NewTokenService(tt.cfg)
			assert.Error(t, err)
		})
	}
}

/*
TestTokenService_IssueAndVerify tests the round trip for both token kinds.
*/
func TestTokenService_IssueAndVerify(t *testing.T) {
	service := newTestTokenService(t)

	accessToken, err := service.IssueAccessToken("user-123")
	require.NoError(t, err)

	refreshToken, err := service.IssueRefreshToken("user-123")
	require.NoError(t, err)

	// Both verify against their own kind and carry the user ID.
	accessClaims, err := service.Verify(accessToken, sec.TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-123", accessClaims.UserID)

	refreshClaims, err := service.Verify(refreshToken, sec.TokenKindRefresh)
	require.NoError(t, err)
	assert.Equal(t, "user-123", refreshClaims.UserID)
}

/*
TestTokenService_CrossKindRejection verifies that a token of one kind can
never be verified as the other. This is the replay protection the dual-secret
design exists for.
*/
func TestTokenService_CrossKindRejection(t *testing.T) {
	service := newTestTokenService(t)

	accessToken, err := service.IssueAccessToken("user-123")
	require.NoError(t, err)

	refreshToken, err := service.IssueRefreshToken("user-123")
	require.NoError(t, err)

	_, err = service.Verify(accessToken, sec.TokenKindRefresh)
	assert.Error(t, err, "access token must not pass refresh verification")

	_, err = service.Verify(refreshToken, sec.TokenKindAccess)
	assert.Error(t, err, "refresh token must not pass access verification")
}

/*
TestTokenService_Expiry verifies that an expired token is rejected.
*/
func TestTokenService_Expiry(t *testing.T) {
	service, err := sec.NewTokenService(sec.TokenConfig{
		AccessSecret:  "access-secret-for-tests",
		RefreshSecret: "refresh-secret-for-tests",
		AccessTTL:     time.Millisecond,
		RefreshTTL:    240 * time.Hour,
		Issuer:        "vidora.test",
	})
	require.NoError(t, err)

	token, err := service.IssueAccessToken("user-123")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = service.Verify(token, sec.TokenKindAccess)
	assert.Error(t, err)
}

/*
TestTokenService_Garbage verifies that malformed input never verifies.
*/
func TestTokenService_Garbage(t *testing.T) {
	service := newTestTokenService(t)

	for _, input := range []string{"", "garbage", "a.b.c"} {
		_, err := service.Verify(input, sec.TokenKindAccess)
		assert.Error(t, err)
	}
}
