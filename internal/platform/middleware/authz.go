// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package middleware provides the HTTP middleware chain for the Vidora API server.
//
// # Architecture
//
// Middleware intercepts incoming HTTP requests to apply global policies
// before they reach the domain handlers. This includes cross-cutting concerns
// like Logging, AuthZ/AuthN, Rate Limiting, and CORS.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/constants"
	"github.com/taibuivan/vidora/internal/platform/ctxkey"
	"github.com/taibuivan/vidora/internal/platform/respond"
	"github.com/taibuivan/vidora/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the token service
// implementation, allowing us to easily inject mocks during unit testing.
type TokenVerifier interface {
	Verify(tokenStr string, kind sec.TokenKind) (*sec.AuthClaims, error)
}

// Authenticate extracts and verifies the access token from the request.
//
// # Flow
//  1. Look for the token in the 'accessToken' cookie, then in the
//     'Authorization: Bearer <token>' header.
//  2. If absent everywhere, request proceeds as anonymous.
//  3. If present, parse and verify the JWT via [TokenVerifier] using the
//     access signing key.
//  4. Inject [*sec.AuthClaims] into the request context for downstream use.
//
// # Parameters
//   - verifier: The TokenVerifier instance.
//
// # Returns
//   - An [http.Handler] middleware.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Anonymous Access ───────────────────────────────────────────
			tokenStr, err := extractAccessToken(request)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}
			if tokenStr == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Token Verification ─────────────────────────────────────────
			claims, err := verifier.Verify(tokenStr, sec.TokenKindAccess)
			if err != nil {
				respond.Error(writer, request, apperr.InvalidToken("Invalid or expired access token"))
				return
			}

			// ── 3. Context Injection ──────────────────────────────────────────
			ctx := context.WithValue(request.Context(), ctxkey.KeyUser, claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// extractAccessToken pulls the raw token from the cookie or the
// Authorization header. An empty string with a nil error means the request
// is anonymous.
func extractAccessToken(request *http.Request) (string, error) {
	if cookie, err := request.Cookie(constants.AccessTokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	authHeader := request.Header.Get(constants.HeaderAuthorization)
	if authHeader == "" {
		return "", nil
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", apperr.Unauthorized("Invalid authorization format")
	}

	return parts[1], nil
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
//
// # Flow
//  1. Check if [*sec.AuthClaims] exists in context.
//  2. If missing, abort with HTTP 401 Unauthorized.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := GetUser(request.Context())
		if claims == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// GetUser retrieves the [*sec.AuthClaims] from the [context.Context].
//
// # Returns
//   - A pointer to [*sec.AuthClaims] if the user is authenticated.
//   - nil if the user is anonymous.
func GetUser(ctx context.Context) *sec.AuthClaims {
	claims, ok := ctx.Value(ctxkey.KeyUser).(*sec.AuthClaims)
	if !ok {
		return nil
	}
	return claims
}
