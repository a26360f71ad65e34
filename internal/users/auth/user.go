// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the user identity and session management layer.

It defines the core domain entity (User) and the logic for registration,
login, and the refresh-token lifecycle.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to user identity.
*/
package auth

import "time"

// # Domain Entities

// User represents a registered member of the Vidora platform.
//
// A user is simultaneously an account (credentials, tokens) and a channel
// (handle, avatar, cover image) that other users can subscribe to.
type User struct {
	ID            string    `json:"id"`
	Handle        string    `json:"handle"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"` // Explicitly omitted from JSON for security.
	DisplayName   string    `json:"displayName"`
	AvatarURL     string    `json:"avatarUrl"`
	CoverImageURL string    `json:"coverImageUrl,omitempty"`
	RefreshToken  string    `json:"-"` // The single active refresh token. Omitted for security.
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldHandle       = "handle"
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldDisplayName  = "displayName"
	FieldLogin        = "login"
	FieldAvatar       = "avatar"
	FieldCoverImage   = "coverImage"
	FieldRefreshToken = "refreshToken"
	FieldAccessToken  = "accessToken"
	FieldUser         = "user"
)
