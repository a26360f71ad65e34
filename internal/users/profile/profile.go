// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package profile handles authenticated account mutations and channel aggregation queries.

It provides functionalities for users to change their password, update their
identity fields and imagery, and to read aggregated channel and watch-history
views built from the subscription and video relations.

# Architecture

  - Entities: ChannelProfile, ChannelStats, WatchEntry (DTOs).
  - Domain: This package depends on the auth package for the User entity.
  - Caching: Channel statistics are cached in Redis with a short TTL;
    the viewer-specific subscription flag is always resolved fresh.
*/
package profile

import (
	"context"
	"time"

	"github.com/taibuivan/vidora/internal/users/auth"
	"github.com/taibuivan/vidora/pkg/pagination"
)

// # Domain Entities

// ChannelStats holds the aggregate counters for a channel.
// This is the cacheable, viewer-independent part of a channel profile.
type ChannelStats struct {
	SubscriberCount   int64 `json:"subscriberCount"`
	SubscribedToCount int64 `json:"subscribedToCount"`
}

// ChannelProfile is the public aggregation view of a user's channel.
type ChannelProfile struct {
	ID                string `json:"id"`
	Handle            string `json:"handle"`
	DisplayName       string `json:"displayName"`
	Email             string `json:"email"`
	AvatarURL         string `json:"avatarUrl"`
	CoverImageURL     string `json:"coverImageUrl,omitempty"`
	SubscriberCount   int64  `json:"subscriberCount"`
	SubscribedToCount int64  `json:"subscribedToCount"`
	IsSubscribed      bool   `json:"isSubscribed"`
}

// VideoOwner is the denormalized single-owner projection attached to each
// watched video.
type VideoOwner struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
}

// VideoSummary is the transport view of a video inside list responses.
type VideoSummary struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	ThumbnailURL string     `json:"thumbnailUrl"`
	Duration     float64    `json:"duration"`
	Views        int64      `json:"views"`
	CreatedAt    time.Time  `json:"createdAt"`
	Owner        VideoOwner `json:"owner"`
}

// WatchEntry is one item of a user's watch history.
type WatchEntry struct {
	WatchedAt time.Time    `json:"watchedAt"`
	Video     VideoSummary `json:"video"`
}

// # Repository Contracts

// AccountRepository defines the persistence contract for account mutations
// issued by the profile layer.
type AccountRepository interface {
	/*
		FindByID retrieves a user record by their unique ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *auth.User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*auth.User, error)

	/*
		FindByHandle retrieves a user record by their unique channel handle.

		Parameters:
		  - context: context.Context
		  - handle: string

		Returns:
		  - *auth.User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByHandle(context context.Context, handle string) (*auth.User, error)

	/*
		UpdatePassword replaces only the user's password hash.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - newHash: string

		Returns:
		  - error: Storage failures
	*/
	UpdatePassword(context context.Context, userID, newHash string) error

	/*
		UpdateAccountDetails persists the display name and email together.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - displayName: string
		  - email: string

		Returns:
		  - *auth.User: The updated account entity
		  - error: Storage or unique-constraint failures
	*/
	UpdateAccountDetails(context context.Context, userID, displayName, email string) (*auth.User, error)

	/*
		UpdateAvatar replaces the avatar reference.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - avatarURL: string

		Returns:
		  - *auth.User: The updated account entity
		  - error: Storage failures
	*/
	UpdateAvatar(context context.Context, userID, avatarURL string) (*auth.User, error)

	/*
		UpdateCoverImage replaces the cover image reference.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - coverImageURL: string

		Returns:
		  - *auth.User: The updated account entity
		  - error: Storage failures
	*/
	UpdateCoverImage(context context.Context, userID, coverImageURL string) (*auth.User, error)
}

// SubscriptionQueries is the read-only join capability over the subscription
// relation (subscriber → channel edges). The relation itself is not owned by
// this package.
type SubscriptionQueries interface {
	/*
		CountSubscribers returns how many users subscribe to the channel.

		Parameters:
		  - context: context.Context
		  - channelID: string

		Returns:
		  - int64: Subscriber count
		  - error: Execution failures
	*/
	CountSubscribers(context context.Context, channelID string) (int64, error)

	/*
		CountSubscriptions returns how many channels the user subscribes to.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - int64: Subscription count
		  - error: Execution failures
	*/
	CountSubscriptions(context context.Context, userID string) (int64, error)

	/*
		IsSubscribed reports whether the viewer subscribes to the channel.

		Parameters:
		  - context: context.Context
		  - viewerID: string
		  - channelID: string

		Returns:
		  - bool: True if a subscription edge exists
		  - error: Execution failures
	*/
	IsSubscribed(context context.Context, viewerID, channelID string) (bool, error)
}

// WatchHistoryQueries is the read-only join capability over the watch-history
// and video relations.
type WatchHistoryQueries interface {
	/*
		ListWatched returns a page of the user's watch history ordered by
		most recently watched, with the owner projection attached.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - params: pagination.Params

		Returns:
		  - []WatchEntry: Page of watched videos
		  - int: Total history size (for pagination metadata)
		  - error: Execution failures
	*/
	ListWatched(context context.Context, userID string, params pagination.Params) ([]WatchEntry, int, error)
}

// StatsCache is the volatile store for channel statistics.
type StatsCache interface {
	/*
		GetChannelStats returns the cached counters for a channel.

		Parameters:
		  - context: context.Context
		  - channelID: string

		Returns:
		  - *ChannelStats: Cached counters
		  - error: apperr.NotFound on cache miss, or connectivity errors
	*/
	GetChannelStats(context context.Context, channelID string) (*ChannelStats, error)

	/*
		SetChannelStats caches the counters for a channel with a TTL.

		Parameters:
		  - context: context.Context
		  - channelID: string
		  - stats: *ChannelStats
		  - ttl: time.Duration

		Returns:
		  - error: Connectivity failures
	*/
	SetChannelStats(context context.Context, channelID string, stats *ChannelStats, ttl time.Duration) error
}

// # Field Identifiers

// Global field names for validation in the profile domain.
const (
	FieldOldPassword = "oldPassword"
	FieldNewPassword = "newPassword"
	FieldDisplayName = "displayName"
	FieldEmail       = "email"
	FieldHandle      = "handle"
	FieldAvatar      = "avatar"
	FieldCoverImage  = "coverImage"
)

// # Caching

const (
	// ChannelStatsTTL bounds how stale the cached channel counters may be.
	ChannelStatsTTL = 5 * time.Minute
)
