// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/sec"
	"github.com/taibuivan/vidora/internal/platform/storage"
	"github.com/taibuivan/vidora/internal/users/auth"
	"github.com/taibuivan/vidora/pkg/handle"
	"github.com/taibuivan/vidora/pkg/pagination"
)

// # Service Layer

// Service orchestrates business logic for profile mutations and channel reads.
//
// It ensures that password changes verify the current credential first, that
// imagery mutations go through the media store, and that channel aggregation
// reads stay cheap via the stats cache.
type Service struct {
	accountRepository AccountRepository
	subscriptions     SubscriptionQueries
	watchHistory      WatchHistoryQueries
	statsCache        StatsCache
	media             storage.Uploader
	logger            *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	accountRepo AccountRepository,
	subscriptions SubscriptionQueries,
	watchHistory WatchHistoryQueries,
	statsCache StatsCache,
	media storage.Uploader,
	logger *slog.Logger,
) *Service {
	return &Service{
		accountRepository: accountRepo,
		subscriptions:     subscriptions,
		watchHistory:      watchHistory,
		statsCache:        statsCache,
		media:             media,
		logger:            logger,
	}
}

// # Account Mutations

/*
ChangePassword rotates the user's credential after verifying the current one.

Description: Fetches the account, performs a constant-time check of the
presented old password, and persists a fresh hash of the new one.

Parameters:
  - context: context.Context
  - userID: string
  - oldPassword: string
  - newPassword: string

Returns:
  - err: IncorrectPassword if the old password fails verification, or storage failures
*/
func (service *Service) ChangePassword(context context.Context, userID, oldPassword, newPassword string) error {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	// Verify the current password before allowing the change.
	if !sec.CheckPasswordHash(oldPassword, user.PasswordHash) {
		return apperr.IncorrectPassword("Current password is incorrect")
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("profile_service_change_password_hash_failed: %w", err)
	}

	if err := service.accountRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("profile_service_change_password_update_failed: %w", err)
	}

	service.logger.Info("user_password_changed", slog.String("user_id", userID))

	return nil
}

/*
GetCurrentUser retrieves the full private identity of the authenticated user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.User: The hydrated user profile
  - err: Not found or execution failures
*/
func (service *Service) GetCurrentUser(context context.Context, userID string) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

/*
UpdateAccountDetails persists the display name and email together.

Description: Both fields are mandatory; partial updates are not supported for
this pair. Email is folded to lowercase to keep the unique key canonical.

Parameters:
  - context: context.Context
  - userID: string
  - displayName: string
  - email: string

Returns:
  - *auth.User: The updated user profile
  - err: Validation, unique-constraint, or storage failures
*/
func (service *Service) UpdateAccountDetails(context context.Context, userID, displayName, email string) (*auth.User, error) {
	user, err := service.accountRepository.UpdateAccountDetails(
		context,
		userID,
		strings.TrimSpace(displayName),
		strings.ToLower(strings.TrimSpace(email)),
	)
	if err != nil {
		return nil, err
	}

	service.logger.Info("user_account_details_updated", slog.String("user_id", userID))

	return user, nil
}

/*
UpdateAvatar ingests a new avatar image and persists its reference.

Parameters:
  - context: context.Context
  - userID: string
  - localPath: string (spooled upload, consumed by the media store)

Returns:
  - *auth.User: The updated user profile
  - err: UploadFailed or storage failures
*/
func (service *Service) UpdateAvatar(context context.Context, userID, localPath string) (*auth.User, error) {
	avatarURL, err := service.media.Upload(context, localPath)
	if err != nil {
		return nil, apperr.UploadFailed("Avatar upload failed")
	}

	user, err := service.accountRepository.UpdateAvatar(context, userID, avatarURL)
	if err != nil {
		return nil, err
	}

	return user, nil
}

/*
UpdateCoverImage ingests a new cover image and persists its reference.

Parameters:
  - context: context.Context
  - userID: string
  - localPath: string (spooled upload, consumed by the media store)

Returns:
  - *auth.User: The updated user profile
  - err: UploadFailed or storage failures
*/
func (service *Service) UpdateCoverImage(context context.Context, userID, localPath string) (*auth.User, error) {
	coverImageURL, err := service.media.Upload(context, localPath)
	if err != nil {
		return nil, apperr.UploadFailed("Cover image upload failed")
	}

	user, err := service.accountRepository.UpdateCoverImage(context, userID, coverImageURL)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// # Channel Aggregation

/*
GetChannelProfile builds the public aggregation view of a channel.

Description: Resolves the channel by handle, then assembles the counters from
the stats cache (falling back to the subscription queries on a miss) and the
viewer-specific subscription flag, which is always resolved fresh so a viewer
never sees a stale membership state.

Parameters:
  - context: context.Context
  - channelHandle: string
  - viewerID: string (empty for anonymous viewers)

Returns:
  - *ChannelProfile: Aggregated channel view
  - err: NotFound if the handle is unknown, or execution failures
*/
func (service *Service) GetChannelProfile(context context.Context, channelHandle, viewerID string) (*ChannelProfile, error) {
	channel, err := service.accountRepository.FindByHandle(context, handle.Normalize(channelHandle))
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("Channel")
		}
		return nil, err
	}

	stats, err := service.channelStats(context, channel.ID)
	if err != nil {
		return nil, err
	}

	isSubscribed := false
	if viewerID != "" {
		isSubscribed, err = service.subscriptions.IsSubscribed(context, viewerID, channel.ID)
		if err != nil {
			return nil, fmt.Errorf("profile_service_is_subscribed_failed: %w", err)
		}
	}

	return &ChannelProfile{
		ID:                channel.ID,
		Handle:            channel.Handle,
		DisplayName:       channel.DisplayName,
		Email:             channel.Email,
		AvatarURL:         channel.AvatarURL,
		CoverImageURL:     channel.CoverImageURL,
		SubscriberCount:   stats.SubscriberCount,
		SubscribedToCount: stats.SubscribedToCount,
		IsSubscribed:      isSubscribed,
	}, nil
}

// channelStats returns the channel counters, preferring the cache.
//
// Cache failures degrade to a direct count; they never fail the request.
func (service *Service) channelStats(context context.Context, channelID string) (*ChannelStats, error) {
	if cached, err := service.statsCache.GetChannelStats(context, channelID); err == nil {
		return cached, nil
	}

	subscriberCount, err := service.subscriptions.CountSubscribers(context, channelID)
	if err != nil {
		return nil, fmt.Errorf("profile_service_count_subscribers_failed: %w", err)
	}

	subscribedToCount, err := service.subscriptions.CountSubscriptions(context, channelID)
	if err != nil {
		return nil, fmt.Errorf("profile_service_count_subscriptions_failed: %w", err)
	}

	stats := &ChannelStats{
		SubscriberCount:   subscriberCount,
		SubscribedToCount: subscribedToCount,
	}

	if err := service.statsCache.SetChannelStats(context, channelID, stats, ChannelStatsTTL); err != nil {
		service.logger.Warn("channel_stats_cache_write_failed",
			slog.String("channel_id", channelID),
			slog.Any("error", err),
		)
	}

	return stats, nil
}

// # Watch History

/*
GetWatchHistory returns a page of the user's watch history.

Description: Ordered by most recently watched; each entry carries the
denormalized owner projection resolved by the storage layer.

Parameters:
  - context: context.Context
  - userID: string
  - params: pagination.Params

Returns:
  - []WatchEntry: Page of watched videos
  - pagination.Meta: Page metadata
  - err: Execution failures
*/
func (service *Service) GetWatchHistory(context context.Context, userID string, params pagination.Params) ([]WatchEntry, pagination.Meta, error) {
	entries, total, err := service.watchHistory.ListWatched(context, userID, params)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("profile_service_watch_history_failed: %w", err)
	}

	return entries, pagination.NewMeta(params.Page, params.Limit, total), nil
}
