// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vidora/internal/platform/constants"
	"github.com/taibuivan/vidora/internal/platform/middleware"
	"github.com/taibuivan/vidora/internal/platform/respond"
	"github.com/taibuivan/vidora/internal/platform/sec"
	"github.com/taibuivan/vidora/internal/users/profile"
)

// stubVerifier resolves a single well-known bearer token to a fixed user.
type stubVerifier struct {
	token  string
	userID string
}

func (verifier *stubVerifier) Verify(tokenString string, _ sec.TokenKind) (*sec.AuthClaims, error) {
	if tokenString != verifier.token {
		return nil, fmt.Errorf("unknown token")
	}
	return &sec.AuthClaims{UserID: verifier.userID}, nil
}

// newProfileRouter wires the handler behind the authentication middleware the
// API server uses, resolving access-token-1 to user-1.
func newProfileRouter(t *testing.T, fixture *profileFixture) chi.Router {
	t.Helper()

	handler := profile.NewHandler(fixture.service, t.TempDir())

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(&stubVerifier{token: "access-token-1", userID: "user-1"}))
	handler.Routes(router)
	return router
}

func authenticate(request *http.Request) *http.Request {
	request.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: "access-token-1"})
	return request
}

/*
TestHandler_ChangePassword verifies validation and error mapping of the
credential rotation endpoint.
*/
func TestHandler_ChangePassword(t *testing.T) {
	fixture := newProfileFixture()
	seedTestUser(t, fixture, "old-password-123")
	router := newProfileRouter(t, fixture)

	t.Run("anonymous request rejected", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/change-password",
			strings.NewReader(`{"oldPassword": "old-password-123", "newPassword": "new-password-456"}`))
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("short new password rejected", func(t *testing.T) {
		request := authenticate(httptest.NewRequest(http.MethodPost, "/change-password",
			strings.NewReader(`{"oldPassword": "old-password-123", "newPassword": "short"}`)))
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, request)
		require.Equal(t, http.StatusBadRequest, recorder.Code)

		var envelope respond.ErrorEnvelope
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
		require.NotEmpty(t, envelope.Errors)
		assert.Equal(t, profile.FieldNewPassword, envelope.Errors[0].Field)
	})

	t.Run("wrong current password maps to 400", func(t *testing.T) {
		request := authenticate(httptest.NewRequest(http.MethodPost, "/change-password",
			strings.NewReader(`{"oldPassword": "not-the-password", "newPassword": "new-password-456"}`)))
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, request)
		require.Equal(t, http.StatusBadRequest, recorder.Code)

		var envelope respond.ErrorEnvelope
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
		assert.Equal(t, "Current password is incorrect", envelope.Message)
	})

	t.Run("successful rotation", func(t *testing.T) {
		request := authenticate(httptest.NewRequest(http.MethodPost, "/change-password",
			strings.NewReader(`{"oldPassword": "old-password-123", "newPassword": "new-password-456"}`)))
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

/*
TestHandler_GetCurrentUser verifies the private profile endpoint.
*/
func TestHandler_GetCurrentUser(t *testing.T) {
	fixture := newProfileFixture()
	seedTestUser(t, fixture, "old-password-123")
	router := newProfileRouter(t, fixture)

	request := authenticate(httptest.NewRequest(http.MethodGet, "/current-user", nil))
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	body := recorder.Body.String()
	assert.Contains(t, body, `"handle":"alice"`)
	assert.NotContains(t, body, "passwordHash")
}

/*
TestHandler_UpdateAccountDetails verifies the paired mutation of display name
and email.
*/
func TestHandler_UpdateAccountDetails(t *testing.T) {
	fixture := newProfileFixture()
	seedTestUser(t, fixture, "old-password-123")
	router := newProfileRouter(t, fixture)

	t.Run("both fields required", func(t *testing.T) {
		request := authenticate(httptest.NewRequest(http.MethodPatch, "/account",
			strings.NewReader(`{"displayName": "Alice W."}`)))
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("successful update", func(t *testing.T) {
		request := authenticate(httptest.NewRequest(http.MethodPatch, "/account",
			strings.NewReader(`{"displayName": "Alice W.", "email": "Alice.W@Example.com"}`)))
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, request)
		require.Equal(t, http.StatusOK, recorder.Code)

		body := recorder.Body.String()
		assert.Contains(t, body, `"displayName":"Alice W."`)
		assert.Contains(t, body, `"email":"alice.w@example.com"`)
	})
}

/*
TestHandler_UpdateAvatar verifies the multipart imagery update flow.
*/
func TestHandler_UpdateAvatar(t *testing.T) {
	fixture := newProfileFixture()
	seedTestUser(t, fixture, "old-password-123")
	router := newProfileRouter(t, fixture)

	t.Run("missing file rejected", func(t *testing.T) {
		var body bytes.Buffer
		form := multipart.NewWriter(&body)
		require.NoError(t, form.Close())

		request := authenticate(httptest.NewRequest(http.MethodPatch, "/avatar", &body))
		request.Header.Set("Content-Type", form.FormDataContentType())
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("successful replacement", func(t *testing.T) {
		var body bytes.Buffer
		form := multipart.NewWriter(&body)
		filePart, err := form.CreateFormFile(constants.UploadFieldAvatar, "new-avatar.png")
		require.NoError(t, err)
		_, err = filePart.Write([]byte("fake png bytes"))
		require.NoError(t, err)
		require.NoError(t, form.Close())

		request := authenticate(httptest.NewRequest(http.MethodPatch, "/avatar", &body))
		request.Header.Set("Content-Type", form.FormDataContentType())
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, request)
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, 1, fixture.media.calls)
	})
}

/*
TestHandler_GetChannelProfile verifies the optional-auth channel endpoint.
*/
func TestHandler_GetChannelProfile(t *testing.T) {
	fixture := newProfileFixture()
	seedTestUser(t, fixture, "old-password-123")
	fixture.subscriptions.subscribers = 10
	fixture.subscriptions.subscribed = true
	router := newProfileRouter(t, fixture)

	t.Run("anonymous viewer", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/channel/alice", nil)
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, request)
		require.Equal(t, http.StatusOK, recorder.Code)

		body := recorder.Body.String()
		assert.Contains(t, body, `"subscriberCount":10`)
		assert.Contains(t, body, `"isSubscribed":false`)
	})

	t.Run("authenticated viewer", func(t *testing.T) {
		request := authenticate(httptest.NewRequest(http.MethodGet, "/channel/alice", nil))
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, request)
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"isSubscribed":true`)
	})

	t.Run("unknown handle", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/channel/nobody", nil)
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

/*
TestHandler_GetWatchHistory verifies pagination parameters flow through to
the listing.
*/
func TestHandler_GetWatchHistory(t *testing.T) {
	fixture := newProfileFixture()
	seedTestUser(t, fixture, "old-password-123")
	for index := 0; index < 3; index++ {
		fixture.watchHistory.entries = append(fixture.watchHistory.entries,
			profile.WatchEntry{Video: videoSummaryWithID(fmt.Sprintf("video-%d", index))})
	}
	fixture.watchHistory.total = 3
	router := newProfileRouter(t, fixture)

	request := authenticate(httptest.NewRequest(http.MethodGet, "/watch-history?page=2&limit=2", nil))
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	var envelope respond.SuccessEnvelope
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)

	meta, ok := data["meta"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(3), meta["total"])
	assert.Equal(t, float64(2), meta["total_pages"])
	assert.Equal(t, float64(2), meta["page"])

	items, ok := data["items"].([]any)
	require.True(t, ok)
	assert.Len(t, items, 1)
}
