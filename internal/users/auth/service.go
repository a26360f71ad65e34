// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Service layer for the authentication domain.

It handles user enrollment (including mandatory avatar ingestion), credential
verification, and the refresh-token rotation lifecycle.

Architecture:

  - Service: Orchestrates business logic (Register, Login, RefreshSession, Logout).
  - Repository: Abstracted interface for Postgres (Users).
  - Security: Leverages bcrypt hashing and a dual-secret HS256 JWT issuer.

The package ensures that identity data remains consistent and secure throughout
the platform's lifecycle.
*/
package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/ctxutil"
	"github.com/taibuivan/vidora/internal/platform/sec"
	"github.com/taibuivan/vidora/internal/platform/storage"
	"github.com/taibuivan/vidora/pkg/handle"
	"github.com/taibuivan/vidora/pkg/uuid"
)

// # Contracts & Types

// TokenIssuer defines the contract for generating and verifying security tokens.
// Implemented by [sec.TokenService].
type TokenIssuer interface {
	// IssueAccessToken creates a signed, short-lived access JWT for the user.
	IssueAccessToken(userID string) (string, error)

	// IssueRefreshToken creates a signed, long-lived refresh JWT for the user.
	IssueRefreshToken(userID string) (string, error)

	// Verify parses a token string, enforcing that it was signed with the
	// secret matching the expected kind.
	Verify(tokenString string, kind sec.TokenKind) (*sec.AuthClaims, error)

	// AccessTTL reports the configured access token lifetime.
	AccessTTL() time.Duration

	// RefreshTTL reports the configured refresh token lifetime.
	RefreshTTL() time.Duration
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or token rotation logic must be reviewed by the security team.
type Service struct {
	userRepository UserRepository
	tokenIssuer    TokenIssuer
	media          storage.Uploader
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(userRepo UserRepository, tokenIssuer TokenIssuer, media storage.Uploader) *Service {
	return &Service{
		userRepository: userRepo,
		tokenIssuer:    tokenIssuer,
		media:          media,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
//
// AvatarPath and CoverImagePath point at temporary files already received by
// the transport layer; the media store consumes and removes them.
type RegisterInput struct {
	Handle         string
	Email          string
	Password       string
	DisplayName    string
	AvatarPath     string
	CoverImagePath string // optional
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Deep-enrollment of a new member. The avatar must be successfully
stored before the account row is created, so an upload failure never leaves a
registered-but-unusable user behind. Cover image ingestion is best-effort.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - err: ValidationError (if identity exists), UploadFailed, or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {

	// Canonicalize both unique keys before any uniqueness check.
	normalizedHandle := handle.Normalize(input.Handle)
	normalizedEmail := strings.ToLower(strings.TrimSpace(input.Email))

	// Normalization can collapse a symbol-only or accent-only handle to
	// nothing. An empty canonical handle would be unreachable via channel
	// lookup and would collide with every other such registration.
	if normalizedHandle == "" {
		return nil, apperr.ValidationError("Handle contains no usable characters")
	}

	// Verify identity uniqueness up front. The unique indexes remain the
	// final arbiter; this check exists for a clean client-safe message.
	taken, err := service.userRepository.ExistsByHandleOrEmail(context, normalizedHandle, normalizedEmail)
	if err != nil {
		return nil, fmt.Errorf("auth_service_uniqueness_check_failed: %w", err)
	}
	if taken {
		return nil, apperr.ValidationError("User with this handle or email already exists")
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// The avatar is mandatory: ingestion failure aborts registration before
	// any row is written.
	avatarURL, err := service.media.Upload(context, input.AvatarPath)
	if err != nil {
		return nil, apperr.UploadFailed("Avatar upload failed")
	}

	// Cover image is optional and its failure is tolerated.
	coverImageURL := ""
	if input.CoverImagePath != "" {
		coverImageURL, err = service.media.Upload(context, input.CoverImagePath)
		if err != nil {
			ctxutil.GetLogger(context).Warn("cover image upload failed, continuing without it",
				"handle", normalizedHandle,
				"error", err,
			)
			coverImageURL = ""
		}
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:            uuid.New(),
		Handle:        normalizedHandle,
		Email:         normalizedEmail,
		PasswordHash:  hashedPassword,
		DisplayName:   input.DisplayName,
		AvatarURL:     avatarURL,
		CoverImageURL: coverImageURL,
	}

	// Persist the user to the database
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Login    string // Can be Handle or Email
	Password string
}

// LoginSession represents a successfully established user session.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	User                  *User
}

/*
Login validates user credentials and issues a fresh token pair.

Description: Resolves the account by handle or email, performs constant-time
password comparison, and persists the newly issued refresh token as the single
active session token (any previously issued refresh token dies here).

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready session identifiers
  - err: NotFound, InvalidCredentials, or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {

	// Resolve the account on either unique key. Both handle and email are
	// stored lowercase, so folding the login identifier is enough.
	user, err := service.userRepository.FindByHandleOrEmail(context, strings.ToLower(strings.TrimSpace(input.Login)))
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("User")
		}
		return nil, err
	}

	// Verify password hash using bcrypt's constant-time comparison to prevent timing attacks
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.InvalidCredentials("Invalid user credentials")
	}

	session, err := service.issueSession(context, user)
	if err != nil {
		return nil, err
	}

	return session, nil
}

/*
Logout clears the user's stored refresh token.

Description: Ensures the previously issued refresh token can never be used
again. Idempotent: logging out twice is not an error.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - err: Persistence failures
*/
func (service *Service) Logout(context context.Context, userID string) error {
	if err := service.userRepository.UpdateRefreshToken(context, userID, ""); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	return nil
}

// # Session Management

/*
RefreshSession implements the refresh-token rotation mechanism.

Description: Verifies the presented refresh token's signature, re-resolves
the user, and requires a byte-for-byte match against the single stored token.
A signature-valid token that does not match the stored value has been rotated
away already and is treated as reuse. On success a fresh pair is issued and
the new refresh token overwrites the old one.

Two concurrent refreshes can both pass the comparison before either persists;
the later write wins and the earlier pair fails the match on its next use.
This race is accepted: the sequence is intentionally not transactional.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - *LoginSession: New session credentials
  - err: InvalidToken, TokenReuse, or storage failures
*/
func (service *Service) RefreshSession(context context.Context, refreshToken string) (*LoginSession, error) {

	// Signature and expiry check against the refresh secret.
	claims, err := service.tokenIssuer.Verify(refreshToken, sec.TokenKindRefresh)
	if err != nil {
		return nil, apperr.InvalidToken("Invalid refresh token")
	}

	// Re-resolve the subject. A deleted account invalidates its tokens.
	user, err := service.userRepository.FindByID(context, claims.UserID)
	if err != nil {
		return nil, apperr.InvalidToken("Invalid refresh token")
	}

	// The account holds exactly one active refresh token. Anything else,
	// however well-signed, is a stale or replayed token.
	if subtle.ConstantTimeCompare([]byte(user.RefreshToken), []byte(refreshToken)) != 1 {
		return nil, apperr.TokenReuse("Refresh token is expired or already used")
	}

	session, err := service.issueSession(context, user)
	if err != nil {
		return nil, err
	}

	return session, nil
}

// issueSession generates a fresh access/refresh pair and persists the refresh
// token as the account's single active session token.
func (service *Service) issueSession(context context.Context, user *User) (*LoginSession, error) {
	accessToken, err := service.tokenIssuer.IssueAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	refreshToken, err := service.tokenIssuer.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	if err := service.userRepository.UpdateRefreshToken(context, user.ID, refreshToken); err != nil {
		return nil, fmt.Errorf("auth_service_persist_refresh_token_failed: %w", err)
	}
	user.RefreshToken = refreshToken

	now := time.Now()
	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  now.Add(service.tokenIssuer.AccessTTL()),
		RefreshTokenExpiresAt: now.Add(service.tokenIssuer.RefreshTTL()),
		User:                  user,
	}, nil
}
