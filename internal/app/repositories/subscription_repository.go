package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/collegeprep/organizer/internal/app/models"
	"github.com/collegeprep/organizer/internal/db"
	"github.com/collegeprep/organizer/internal/pkg/apperrors"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
)

var subscriptionColumns = []string{
	"id", "user_id", "provider_customer_id", "status", "current_period_start",
	"current_period_end", "cancel_at_period_end", "created_at", "updated_at",
}

// A lifetime grant (NULL end) is never shortened by a later timed grant.
const subscriptionUpsertSuffix = `ON CONFLICT (user_id) DO UPDATE SET
    provider_customer_id = COALESCE(EXCLUDED.provider_customer_id, subscriptions.provider_customer_id),
    status = EXCLUDED.status,
    current_period_start = EXCLUDED.current_period_start,
    current_period_end = CASE
        WHEN subscriptions.status = 'active' AND subscriptions.current_period_end IS NULL THEN NULL
        WHEN EXCLUDED.current_period_end IS NULL THEN NULL
        ELSE GREATEST(subscriptions.current_period_end, EXCLUDED.current_period_end)
    END,
    cancel_at_period_end = EXCLUDED.cancel_at_period_end,
    updated_at = EXCLUDED.updated_at`

// SubscriptionRepository handles subscription database operations
type SubscriptionRepository struct {
	db db.DB
	sb squirrel.StatementBuilderType
}

// NewSubscriptionRepository creates a new SubscriptionRepository
func NewSubscriptionRepository(conn db.DB) *SubscriptionRepository {
	return &SubscriptionRepository{
		db: conn,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// HasActive reports whether the user holds an active subscription whose period has not ended at now
func (r *SubscriptionRepository) HasActive(ctx context.Context, userID uuid.UUID, now time.Time) (bool, error) {
	sql, args, err := r.sb.Select("1").From("subscriptions").
		Where(squirrel.Eq{"user_id": userID, "status": models.SubscriptionActive}).
		Where(squirrel.Or{
			squirrel.Eq{"current_period_end": nil},
			squirrel.Gt{"current_period_end": now},
		}).
		Prefix("SELECT EXISTS (").Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build active subscription query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking subscription: %w", err)
	}
	return exists, nil
}

// GetByUserID returns the user's subscription
func (r *SubscriptionRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	sql, args, err := r.sb.Select(subscriptionColumns...).From("subscriptions").
		Where(squirrel.Eq{"user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get subscription query: %w", err)
	}

	var sub models.Subscription
	if err := pgxscan.Get(ctx, r.db, &sub, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error retrieving subscription: %w", err)
	}
	return &sub, nil
}

// Upsert creates or refreshes the user's single subscription row
func (r *SubscriptionRepository) Upsert(ctx context.Context, sub *models.Subscription) error {
	return upsertSubscription(ctx, r.db, r.sb, sub)
}

func upsertSubscription(ctx context.Context, q db.DB, sb squirrel.StatementBuilderType, sub *models.Subscription) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	now := time.Now().UTC()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now

	sql, args, err := sb.Insert("subscriptions").
		Columns(subscriptionColumns...).
		Values(sub.ID, sub.UserID, sub.ProviderCustomerID, sub.Status, sub.CurrentPeriodStart,
			sub.CurrentPeriodEnd, sub.CancelAtPeriodEnd, sub.CreatedAt, sub.UpdatedAt).
		Suffix(subscriptionUpsertSuffix).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert subscription query: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error upserting subscription: %w", err)
	}
	return nil
}
