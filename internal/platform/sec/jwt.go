// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via small interfaces ([auth.TokenIssuer]).
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind selects which signing secret a token is bound to.
//
// Access and refresh tokens are signed with distinct secrets so that a leaked
// access token (transmitted on every request) can never be replayed against
// the refresh endpoint to mint new sessions.
type TokenKind string

const (
	// TokenKindAccess is the short-lived token authorizing API requests.
	TokenKindAccess TokenKind = "access"

	// TokenKindRefresh is the long-lived token used only to rotate sessions.
	TokenKindRefresh TokenKind = "refresh"
)

// AuthClaims represents the payload embedded inside a Vidora JWT.
//
// # Why custom claims?
//
// By embedding the UserID directly inside the JWT, the authentication
// middleware can reconstruct the active user context WITHOUT querying the
// database on every single API request. Nothing else goes in: the token
// carries only the user identifier.
type AuthClaims struct {
	jwt.RegisteredClaims

	// UserID is abbreviated to keep the JWT payload small.
	UserID string `json:"uid"`
}

// TokenConfig holds the signing secrets and lifetimes for the token service.
//
// It is constructed explicitly from application config at startup and passed
// into [NewTokenService] — no ambient global state.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// TokenService handles generation and verification of JWT tokens using HS256.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
}

// NewTokenService creates a new TokenService.
//
// It rejects empty secrets and refuses identical access/refresh secrets,
// since the kind separation is only meaningful with distinct keys.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("auth: token secrets must not be empty")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("auth: access and refresh secrets must be distinct")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("auth: token lifetimes must be positive")
	}

	return &TokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		issuer:        cfg.Issuer,
	}, nil
}

// AccessTTL returns the configured access token lifetime.
func (service *TokenService) AccessTTL() time.Duration { return service.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (service *TokenService) RefreshTTL() time.Duration { return service.refreshTTL }

// IssueAccessToken creates a new short-lived access token for a user.
func (service *TokenService) IssueAccessToken(userID string) (string, error) {
	return service.issue(userID, TokenKindAccess, service.accessTTL)
}

// IssueRefreshToken creates a new long-lived refresh token for a user.
//
// The caller is responsible for persisting the returned value on the user
// record as the sole valid refresh token.
func (service *TokenService) IssueRefreshToken(userID string) (string, error) {
	return service.issue(userID, TokenKindRefresh, service.refreshTTL)
}

// issue signs a token of the given kind embedding only the user identifier.
func (service *TokenService) issue(userID string, kind TokenKind, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		UserID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secretFor(kind))
	if err != nil {
		return "", fmt.Errorf("auth: failed to sign %s token: %w", kind, err)
	}

	return signedToken, nil
}

// Verify checks the signature and validity of a JWT string against the
// secret selected by kind.
//
// A token signed with the other kind's secret fails signature verification
// here, which is exactly the cross-replay protection the split exists for.
func (service *TokenService) Verify(tokenString string, kind TokenKind) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secretFor(kind), nil
	})

	if err != nil {
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, errors.New("auth: invalid token claims")
	}

	return claims, nil
}

// secretFor maps a token kind to its signing secret.
func (service *TokenService) secretFor(kind TokenKind) []byte {
	if kind == TokenKindRefresh {
		return service.refreshSecret
	}
	return service.accessSecret
}
