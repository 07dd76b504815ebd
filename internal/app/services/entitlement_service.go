package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/collegeprep/organizer/internal/pkg/cache"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const entitlementKeyPrefix = "entitlement:v1:"

// EntitlementService answers whether a user has paid access.
// Subscriptions in the database are the only source of truth; redis only
// caches the answer.
type EntitlementService struct {
	subscriptionRepo SubscriptionStore
	cache            cache.Interface
	ttl              time.Duration
	logger           zerolog.Logger
	now              func() time.Time
}

// NewEntitlementService creates a new EntitlementService. client may be nil.
func NewEntitlementService(subscriptionRepo SubscriptionStore, client cache.Interface, ttl time.Duration, logger zerolog.Logger) *EntitlementService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &EntitlementService{
		subscriptionRepo: subscriptionRepo,
		cache:            client,
		ttl:              ttl,
		logger:           logger,
		now:              time.Now,
	}
}

func entitlementKey(userID uuid.UUID) string {
	return entitlementKeyPrefix + userID.String()
}

// HasPaidAccess reports whether the user holds an active, unexpired subscription
func (s *EntitlementService) HasPaidAccess(ctx context.Context, userID uuid.UUID) (bool, error) {
	if s.cache != nil {
		var cached bool
		err := cache.GetJSON(ctx, s.cache, entitlementKey(userID), &cached)
		switch {
		case err == nil:
			return cached, nil
		case !errors.Is(err, cache.ErrMiss):
			s.logger.Warn().Err(err).Str("userID", userID.String()).Msg("Entitlement cache read failed")
		}
	}

	active, err := s.subscriptionRepo.HasActive(ctx, userID, s.now())
	if err != nil {
		return false, fmt.Errorf("failed to check subscription: %w", err)
	}

	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, entitlementKey(userID), active, s.ttl); err != nil {
			s.logger.Warn().Err(err).Str("userID", userID.String()).Msg("Entitlement cache write failed")
		}
	}
	return active, nil
}

// Invalidate drops the cached answer for a user
func (s *EntitlementService) Invalidate(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := cache.Delete(ctx, s.cache, entitlementKey(userID)); err != nil {
		s.logger.Warn().Err(err).Str("userID", userID.String()).Msg("Entitlement cache invalidation failed")
	}
}
