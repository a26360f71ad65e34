// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
HTTP delivery layer for user identity management.

It implements the gateway for the authentication lifecycle—from account creation
to session rotation and logout.

# Architecture

The handler acts as a thin mediation layer between the web and domain services:
  - Protocol: Standard RESTful JSON interface, multipart for registration.
  - Security: Handles token pair cookie injection and clearing.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes, headers, JSON).
*/
package auth

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/constants"
	"github.com/taibuivan/vidora/internal/platform/middleware"
	requestutil "github.com/taibuivan/vidora/internal/platform/request"
	"github.com/taibuivan/vidora/internal/platform/respond"
	"github.com/taibuivan/vidora/internal/platform/validate"
	"github.com/taibuivan/vidora/pkg/handle"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages everything related to the session lifecycle entry
// points (Registration, Login, Token Refresh, Logout).
type Handler struct {
	authService *Service
	tmpDir      string
}

// NewHandler constructs a new [Handler] with its service dependency.
//
// tmpDir is where incoming multipart files are spooled before the media
// store consumes them.
func NewHandler(service *Service, tmpDir string) *Handler {
	return &Handler{authService: service, tmpDir: tmpDir}
}

// Routes registers the authentication-specific routes on the given router.
// The auth and profile handlers share the /users prefix, so routes are
// attached rather than mounted.
//
// # Endpoints
//   - POST /register      : Creates a new account (multipart, avatar required).
//   - POST /login         : Authenticates and sets the token pair cookies.
//   - POST /refresh-token : Rotates the token pair.
//   - POST /logout        : Clears the stored refresh token and cookies.
func (handler *Handler) Routes(router chi.Router) {

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh-token", handler.refreshToken)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
	})
}

// # Request Payloads

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

/*
Register handles the creation of a new user account.

POST /api/v1/users/register

Description: Parses the multipart form, validates input, spools the avatar
(required) and cover image (optional) to temporary files, and delegates to
the service. Registration does not auto-login.

Request:
  - Multipart fields: handle, email, password, displayName
  - Multipart files: avatar (required), coverImage (optional)

Response:
  - 201: User: Created user profile (no password or refresh token fields)
  - 400: ValidationError: Bad input, missing avatar, or identity taken
  - 400: UploadFailed: Avatar could not be stored
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	if err := request.ParseMultipartForm(constants.MaxUploadBytes); err != nil {
		respond.Error(writer, request, validate.ErrInvalidForm)
		return
	}

	// The handle is canonicalized up front so the length and format rules run
	// against what will actually be stored: a symbol-only input like "!!!"
	// collapses to "" and must fail here, not slip through as an empty handle.
	input := RegisterInput{
		Handle:      handle.Normalize(request.FormValue(FieldHandle)),
		Email:       strings.TrimSpace(request.FormValue(FieldEmail)),
		Password:    request.FormValue(FieldPassword),
		DisplayName: strings.TrimSpace(request.FormValue(FieldDisplayName)),
	}

	validator := &validate.Validator{}
	validator.Required(FieldHandle, input.Handle).
		MinLen(FieldHandle, input.Handle, MinHandleLength).
		MaxLen(FieldHandle, input.Handle, MaxHandleLength).
		Handle(FieldHandle, input.Handle).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, MinPasswordLength).
		Required(FieldDisplayName, input.DisplayName).
		MaxLen(FieldDisplayName, input.DisplayName, MaxDisplayNameLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Spool the mandatory avatar.
	avatarPath, err := requestutil.SpoolFile(request, constants.UploadFieldAvatar, handler.tmpDir)
	if err != nil {
		respond.Error(writer, request, validate.RequiredError(FieldAvatar, "file is required"))
		return
	}
	input.AvatarPath = avatarPath

	// Spool the optional cover image. A missing or broken part is tolerated.
	if coverPath, err := requestutil.SpoolFile(request, constants.UploadFieldCoverImage, handler.tmpDir); err == nil {
		input.CoverImagePath = coverPath
	}

	// The media store removes spooled files it consumes. If the service
	// bails out earlier (e.g. identity taken), clean up what remains.
	defer os.Remove(avatarPath)
	if input.CoverImagePath != "" {
		defer os.Remove(input.CoverImagePath)
	}

	user, err := handler.authService.Register(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user, "User registered successfully")
}

/*
Login authenticates a user and establishes a session.

POST /api/v1/users/login

Description: Verifies credentials, issues the access/refresh pair, persists
the refresh token as the single active session token, and injects both
tokens as secure HTTP-only cookies.

Request:
  - Body: loginRequest (Login, Password)

Response:
  - 200: Session: Token pair and the stripped user profile
  - 404: NotFound: No account matches the login identifier
  - 401: InvalidCredentials: Password check failed
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldLogin, input.Login)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Login:    input.Login,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setAuthCookies(writer, session)

	respond.OK(writer, map[string]any{
		FieldUser:         session.User,
		FieldAccessToken:  session.AccessToken,
		FieldRefreshToken: session.RefreshToken,
	}, "User logged in successfully")
}

/*
RefreshToken rotates the session using a valid refresh token.

POST /api/v1/users/refresh-token

Description: Reads the refresh token from the cookie or, failing that, the
JSON body. An absent token short-circuits to Unauthorized before any
verification work. On success both cookies are replaced with the new pair.

Request:
  - Cookie: refreshToken, or Body: refreshTokenRequest (RefreshToken)

Response:
  - 200: Session: New token pair
  - 401: Unauthorized: No token presented
  - 401: InvalidToken: Signature or subject verification failed
  - 401: TokenReuse: Token does not match the single stored value
*/
func (handler *Handler) refreshToken(writer http.ResponseWriter, request *http.Request) {
	presented := presentedRefreshToken(request)
	if presented == "" {
		respond.Error(writer, request, apperr.Unauthorized("Refresh token is required"))
		return
	}

	session, err := handler.authService.RefreshSession(request.Context(), presented)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setAuthCookies(writer, session)

	respond.OK(writer, map[string]any{
		FieldAccessToken:  session.AccessToken,
		FieldRefreshToken: session.RefreshToken,
	}, "Access token refreshed")
}

/*
Logout terminates the current user session.

POST /api/v1/users/logout

Description: Clears the stored refresh token for the authenticated user and
expires both security cookies on the client.

Response:
  - 200: Success: Session terminated
  - 401: Unauthorized: Authentication required
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	clearAuthCookies(writer)

	respond.OK(writer, map[string]any{}, "User logged out")
}

// # Cookie Helpers

// presentedRefreshToken extracts the refresh token from the request cookie,
// falling back to the JSON body.
func presentedRefreshToken(request *http.Request) string {
	if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	var body refreshTokenRequest
	if err := requestutil.DecodeJSON(request, &body); err == nil {
		return body.RefreshToken
	}

	return ""
}

// setAuthCookies injects both security tokens as secure, HTTP-only cookies.
func setAuthCookies(writer http.ResponseWriter, session *LoginSession) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AccessTokenCookieName,
		Value:    session.AccessToken,
		Path:     constants.TokenCookiePath,
		Expires:  session.AccessTokenExpiresAt,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    session.RefreshToken,
		Path:     constants.TokenCookiePath,
		Expires:  session.RefreshTokenExpiresAt,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearAuthCookies expires both security cookies on the client.
func clearAuthCookies(writer http.ResponseWriter) {
	for _, name := range []string{constants.AccessTokenCookieName, constants.RefreshTokenCookieName} {
		http.SetCookie(writer, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     constants.TokenCookiePath,
			MaxAge:   -1,
			Secure:   true,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

