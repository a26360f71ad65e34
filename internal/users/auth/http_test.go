// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
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
	"github.com/taibuivan/vidora/internal/users/auth"
)

// newAuthRouter wires the handler behind the same middleware stack the API
// server uses for authentication.
func newAuthRouter(t *testing.T, fixture *authFixture) chi.Router {
	t.Helper()

	handler := auth.NewHandler(fixture.service, t.TempDir())

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(fixture.issuer))
	handler.Routes(router)
	return router
}

func decodeErrorEnvelope(t *testing.T, body io.Reader) respond.ErrorEnvelope {
	t.Helper()

	var envelope respond.ErrorEnvelope
	require.NoError(t, json.NewDecoder(body).Decode(&envelope))
	return envelope
}

/*
TestHandler_Register verifies the multipart enrollment endpoint end to end.
*/
func TestHandler_Register(t *testing.T) {
	fixture := newAuthFixture()
	router := newAuthRouter(t, fixture)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("handle", "Dana"))
	require.NoError(t, form.WriteField("email", "dana@example.com"))
	require.NoError(t, form.WriteField("password", "s3cret-password"))
	require.NoError(t, form.WriteField("displayName", "Dana"))

	filePart, err := form.CreateFormFile(constants.UploadFieldAvatar, "avatar.png")
	require.NoError(t, err)
	_, err = filePart.Write([]byte("fake png bytes"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	request := httptest.NewRequest(http.MethodPost, "/register", &body)
	request.Header.Set("Content-Type", form.FormDataContentType())
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusCreated, recorder.Code)

	var envelope respond.SuccessEnvelope
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
	assert.True(t, envelope.Success)

	// Sensitive fields must never serialize.
	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "passwordHash")
	assert.NotContains(t, string(raw), "refreshToken")
	assert.Contains(t, string(raw), `"handle":"dana"`)
}

/*
TestHandler_Register_MissingAvatar verifies that enrollment without the
mandatory avatar part fails validation.
*/
func TestHandler_Register_MissingAvatar(t *testing.T) {
	fixture := newAuthFixture()
	router := newAuthRouter(t, fixture)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("handle", "dana"))
	require.NoError(t, form.WriteField("email", "dana@example.com"))
	require.NoError(t, form.WriteField("password", "s3cret-password"))
	require.NoError(t, form.WriteField("displayName", "Dana"))
	require.NoError(t, form.Close())

	request := httptest.NewRequest(http.MethodPost, "/register", &body)
	request.Header.Set("Content-Type", form.FormDataContentType())
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	envelope := decodeErrorEnvelope(t, recorder.Body)
	require.Len(t, envelope.Errors, 1)
	assert.Equal(t, auth.FieldAvatar, envelope.Errors[0].Field)

	// The failed upload must not have created an account.
	assert.Empty(t, fixture.repo.users)
}

/*
TestHandler_Register_SymbolOnlyHandle verifies that a handle collapsing to
nothing under normalization fails validation at the transport layer.
*/
func TestHandler_Register_SymbolOnlyHandle(t *testing.T) {
	fixture := newAuthFixture()
	router := newAuthRouter(t, fixture)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("handle", "!!!"))
	require.NoError(t, form.WriteField("email", "dana@example.com"))
	require.NoError(t, form.WriteField("password", "s3cret-password"))
	require.NoError(t, form.WriteField("displayName", "Dana"))

	filePart, err := form.CreateFormFile(constants.UploadFieldAvatar, "avatar.png")
	require.NoError(t, err)
	_, err = filePart.Write([]byte("fake png bytes"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	request := httptest.NewRequest(http.MethodPost, "/register", &body)
	request.Header.Set("Content-Type", form.FormDataContentType())
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	envelope := decodeErrorEnvelope(t, recorder.Body)
	require.NotEmpty(t, envelope.Errors)
	for _, fieldError := range envelope.Errors {
		assert.Equal(t, auth.FieldHandle, fieldError.Field)
	}

	assert.Empty(t, fixture.repo.users)
}

/*
TestHandler_Login verifies the session cookies are injected on success.
*/
func TestHandler_Login(t *testing.T) {
	fixture := newAuthFixture()
	registerTestUser(t, fixture)
	router := newAuthRouter(t, fixture)

	request := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"login": "alice", "password": "s3cret-password"}`))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	cookies := map[string]*http.Cookie{}
	for _, cookie := range recorder.Result().Cookies() {
		cookies[cookie.Name] = cookie
	}

	for _, name := range []string{constants.AccessTokenCookieName, constants.RefreshTokenCookieName} {
		cookie, ok := cookies[name]
		require.True(t, ok, "missing cookie %s", name)
		assert.NotEmpty(t, cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.True(t, cookie.Secure)
		assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	}
}

/*
TestHandler_Login_WrongPassword verifies the transport mapping of a failed
credential check.
*/
func TestHandler_Login_WrongPassword(t *testing.T) {
	fixture := newAuthFixture()
	registerTestUser(t, fixture)
	router := newAuthRouter(t, fixture)

	request := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"login": "alice", "password": "wrong"}`))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	envelope := decodeErrorEnvelope(t, recorder.Body)
	assert.False(t, envelope.Success)
	assert.Equal(t, "Invalid user credentials", envelope.Message)
}

/*
TestHandler_RefreshToken verifies all three presentation paths: cookie, JSON
body, and nothing at all.
*/
func TestHandler_RefreshToken(t *testing.T) {
	fixture := newAuthFixture()
	registerTestUser(t, fixture)
	router := newAuthRouter(t, fixture)

	session, err := fixture.service.Login(context.Background(), auth.LoginInput{
		Login:    "alice",
		Password: "s3cret-password",
	})
	require.NoError(t, err)

	t.Run("absent token rejected before verification", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/refresh-token", nil)
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, request)
		require.Equal(t, http.StatusUnauthorized, recorder.Code)

		envelope := decodeErrorEnvelope(t, recorder.Body)
		assert.Equal(t, "Refresh token is required", envelope.Message)
	})

	t.Run("malformed token rejected", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/refresh-token",
			strings.NewReader(`{"refreshToken": "garbage"}`))
		request.Header.Set("Content-Type", "application/json")
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, request)
		require.Equal(t, http.StatusUnauthorized, recorder.Code)

		envelope := decodeErrorEnvelope(t, recorder.Body)
		assert.Equal(t, "Invalid refresh token", envelope.Message)
	})

	t.Run("cookie token rotates the pair", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/refresh-token", nil)
		request.AddCookie(&http.Cookie{
			Name:  constants.RefreshTokenCookieName,
			Value: session.RefreshToken,
		})
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, request)
		require.Equal(t, http.StatusOK, recorder.Code)

		var envelope respond.SuccessEnvelope
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
		data, ok := envelope.Data.(map[string]any)
		require.True(t, ok)
		assert.NotEmpty(t, data["accessToken"])
		assert.NotEqual(t, session.RefreshToken, data["refreshToken"])
	})

	t.Run("rotated-away token is reuse", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/refresh-token",
			strings.NewReader(`{"refreshToken": "`+session.RefreshToken+`"}`))
		request.Header.Set("Content-Type", "application/json")
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, request)
		require.Equal(t, http.StatusUnauthorized, recorder.Code)

		envelope := decodeErrorEnvelope(t, recorder.Body)
		assert.Equal(t, "Refresh token is expired or already used", envelope.Message)
	})
}

/*
TestHandler_Logout verifies the protected logout endpoint clears both cookies.
*/
func TestHandler_Logout(t *testing.T) {
	fixture := newAuthFixture()
	user := registerTestUser(t, fixture)
	router := newAuthRouter(t, fixture)

	session, err := fixture.service.Login(context.Background(), auth.LoginInput{
		Login:    "alice",
		Password: "s3cret-password",
	})
	require.NoError(t, err)

	t.Run("anonymous request rejected", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/logout", nil)
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("authenticated logout clears the session", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/logout", nil)
		request.AddCookie(&http.Cookie{
			Name:  constants.AccessTokenCookieName,
			Value: session.AccessToken,
		})
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, request)
		require.Equal(t, http.StatusOK, recorder.Code)

		for _, cookie := range recorder.Result().Cookies() {
			assert.Empty(t, cookie.Value)
			assert.Negative(t, cookie.MaxAge)
		}

		stored, err := fixture.repo.FindByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.RefreshToken)
	})
}
