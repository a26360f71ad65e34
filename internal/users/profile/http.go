// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
HTTP delivery layer for profile mutations and channel reads.

# Architecture

The handler acts as a thin mediation layer between the web and domain services:
  - Protocol: RESTful JSON, multipart for imagery updates.
  - Security: All mutations require authentication; channel reads accept
    anonymous viewers.
  - Verification: Enforces strict input validation before passing to [Service].
*/
package profile

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/vidora/internal/platform/constants"
	"github.com/taibuivan/vidora/internal/platform/middleware"
	requestutil "github.com/taibuivan/vidora/internal/platform/request"
	"github.com/taibuivan/vidora/internal/platform/respond"
	"github.com/taibuivan/vidora/internal/platform/validate"
	"github.com/taibuivan/vidora/internal/users/auth"
	"github.com/taibuivan/vidora/pkg/pagination"
)

// # Definitions & Constructors

// Handler implements profile-related HTTP endpoints.
type Handler struct {
	profileService *Service
	tmpDir         string
}

// NewHandler constructs a new [Handler] with its service dependency.
//
// tmpDir is where incoming multipart files are spooled before the media
// store consumes them.
func NewHandler(service *Service, tmpDir string) *Handler {
	return &Handler{profileService: service, tmpDir: tmpDir}
}

// Routes registers the profile-specific routes on the given router.
// The auth and profile handlers share the /users prefix, so routes are
// attached rather than mounted.
//
// # Endpoints
//   - POST  /change-password  : Rotates the user's credential.
//   - GET   /current-user     : Returns the authenticated user's profile.
//   - PATCH /account          : Updates display name and email.
//   - PATCH /avatar           : Replaces the avatar image.
//   - PATCH /cover-image      : Replaces the cover image.
//   - GET   /channel/{handle} : Public channel aggregation (optional auth).
//   - GET   /watch-history    : Paginated watch history.
func (handler *Handler) Routes(router chi.Router) {

	// Optional-auth endpoint: an anonymous viewer still gets the profile,
	// just with isSubscribed pinned false.
	router.Get("/channel/{handle}", handler.getChannelProfile)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/change-password", handler.changePassword)
		r.Get("/current-user", handler.getCurrentUser)
		r.Patch("/account", handler.updateAccountDetails)
		r.Patch("/avatar", handler.updateAvatar)
		r.Patch("/cover-image", handler.updateCoverImage)
		r.Get("/watch-history", handler.getWatchHistory)
	})
}

// # Request Payloads

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type updateAccountRequest struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

/*
ChangePassword updates the authenticated user's password.

POST /api/v1/users/change-password

Description: Verifies the current password before applying the new one.

Request:
  - Body: changePasswordRequest (OldPassword, NewPassword)

Response:
  - 200: Success: Password changed
  - 400: IncorrectPassword: The old password failed verification
  - 401: Unauthorized: Authentication required
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldOldPassword, input.OldPassword).
		Required(FieldNewPassword, input.NewPassword).
		MinLen(FieldNewPassword, input.NewPassword, auth.MinPasswordLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.profileService.ChangePassword(request.Context(), userID, input.OldPassword, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{}, "Password changed successfully")
}

/*
GetCurrentUser returns the authenticated user's private profile.

GET /api/v1/users/current-user

Response:
  - 200: User: The stripped user profile
  - 401: Unauthorized: Authentication required
*/
func (handler *Handler) getCurrentUser(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.profileService.GetCurrentUser(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user, "Current user fetched")
}

/*
UpdateAccountDetails updates the display name and email together.

PATCH /api/v1/users/account

Request:
  - Body: updateAccountRequest (DisplayName, Email) — both required

Response:
  - 200: User: The updated profile
  - 400: ValidationError: Empty field or email already taken
  - 401: Unauthorized: Authentication required
*/
func (handler *Handler) updateAccountDetails(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateAccountRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	input.DisplayName = strings.TrimSpace(input.DisplayName)
	input.Email = strings.TrimSpace(input.Email)

	validator := &validate.Validator{}
	validator.Required(FieldDisplayName, input.DisplayName).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.profileService.UpdateAccountDetails(request.Context(), userID, input.DisplayName, input.Email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user, "Account details updated")
}

/*
UpdateAvatar replaces the authenticated user's avatar image.

PATCH /api/v1/users/avatar

Request:
  - Multipart file: avatar

Response:
  - 200: User: The updated profile
  - 400: ValidationError: Missing file
  - 400: UploadFailed: The image could not be stored
  - 401: Unauthorized: Authentication required
*/
func (handler *Handler) updateAvatar(writer http.ResponseWriter, request *http.Request) {
	handler.updateImage(writer, request, constants.UploadFieldAvatar, FieldAvatar,
		handler.profileService.UpdateAvatar, "Avatar updated")
}

/*
UpdateCoverImage replaces the authenticated user's cover image.

PATCH /api/v1/users/cover-image

Request:
  - Multipart file: coverImage

Response:
  - 200: User: The updated profile
  - 400: ValidationError: Missing file
  - 400: UploadFailed: The image could not be stored
  - 401: Unauthorized: Authentication required
*/
func (handler *Handler) updateCoverImage(writer http.ResponseWriter, request *http.Request) {
	handler.updateImage(writer, request, constants.UploadFieldCoverImage, FieldCoverImage,
		handler.profileService.UpdateCoverImage, "Cover image updated")
}

/*
GetChannelProfile returns the public aggregation view of a channel.

GET /api/v1/users/channel/{handle}

Description: Anonymous viewers receive isSubscribed = false; authenticated
viewers get their actual subscription state.

Response:
  - 200: ChannelProfile: Aggregated channel view
  - 404: NotFound: Unknown handle
*/
func (handler *Handler) getChannelProfile(writer http.ResponseWriter, request *http.Request) {
	channelHandle := requestutil.Param(request, FieldHandle)

	validator := &validate.Validator{}
	validator.Required(FieldHandle, channelHandle)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Optional authentication: claims may be nil here.
	viewerID := ""
	if claims := requestutil.Claims(request); claims != nil {
		viewerID = claims.UserID
	}

	channel, err := handler.profileService.GetChannelProfile(request.Context(), channelHandle, viewerID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, channel, "Channel profile fetched")
}

/*
GetWatchHistory returns a page of the authenticated user's watch history.

GET /api/v1/users/watch-history?page=&limit=

Response:
  - 200: []WatchEntry with pagination metadata
  - 401: Unauthorized: Authentication required
*/
func (handler *Handler) getWatchHistory(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)

	entries, meta, err := handler.profileService.GetWatchHistory(request.Context(), userID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, entries, meta, "Watch history fetched")
}

// # Upload Plumbing

// updateImage is the shared multipart flow behind the avatar and cover-image
// endpoints: spool the file, hand it to the service mutation, respond with
// the updated profile.
func (handler *Handler) updateImage(
	writer http.ResponseWriter,
	request *http.Request,
	uploadField string,
	validationField string,
	mutate func(ctx context.Context, userID, localPath string) (*auth.User, error),
	message string,
) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := request.ParseMultipartForm(constants.MaxUploadBytes); err != nil {
		respond.Error(writer, request, validate.ErrInvalidForm)
		return
	}

	path, err := requestutil.SpoolFile(request, uploadField, handler.tmpDir)
	if err != nil {
		respond.Error(writer, request, validate.RequiredError(validationField, "file is required"))
		return
	}
	// The media store removes the spooled file on success and failure alike;
	// this covers service bail-outs before the upload starts.
	defer os.Remove(path)

	user, err := mutate(request.Context(), userID, path)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user, message)
}
