package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/collegeprep/organizer/internal/app/models"
	"github.com/collegeprep/organizer/internal/app/models/dto"
	"github.com/collegeprep/organizer/internal/pkg/apperrors"
	"github.com/collegeprep/organizer/internal/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntitlementService_HasPaidAccess(t *testing.T) {
	ctx := context.Background()
	past := anchor.Add(-time.Hour)
	future := anchor.Add(time.Hour)

	tests := []struct {
		name string
		sub  *models.Subscription
		want bool
	}{
		{name: "no subscription", sub: nil, want: false},
		{name: "active lifetime", sub: &models.Subscription{Status: models.SubscriptionActive}, want: true},
		{name: "active until later", sub: &models.Subscription{Status: models.SubscriptionActive, CurrentPeriodEnd: &future}, want: true},
		{name: "active but lapsed", sub: &models.Subscription{Status: models.SubscriptionActive, CurrentPeriodEnd: &past}, want: false},
		{name: "canceled", sub: &models.Subscription{Status: models.SubscriptionCanceled}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(nil)
			userID := uuid.New()
			if tt.sub != nil {
				tt.sub.UserID = userID
				env.billing.subs[userID] = tt.sub
			}
			got, err := env.entitlement.HasPaidAccess(ctx, userID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEntitlementService_Cache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	billing := newFakeBilling()
	svc := NewEntitlementService(billing, client, time.Minute, logger.Nop())
	svc.now = fixedClock
	userID := uuid.New()

	t.Run("Should answer repeated checks from the cache", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			ok, err := svc.HasPaidAccess(ctx, userID)
			require.NoError(t, err)
			assert.False(t, ok)
		}
		assert.Equal(t, 1, billing.lookups)
		assert.True(t, mr.Exists(entitlementKey(userID)))
	})

	t.Run("Should re-read the database after invalidation", func(t *testing.T) {
		billing.subs[userID] = &models.Subscription{UserID: userID, Status: models.SubscriptionActive}
		svc.Invalidate(ctx, userID)

		ok, err := svc.HasPaidAccess(ctx, userID)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 2, billing.lookups)
	})

	t.Run("Should fall through to the database when redis is down", func(t *testing.T) {
		mr.Close()
		ok, err := svc.HasPaidAccess(ctx, userID)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestPaymentService_Purchase(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(nil)
	buyer := env.createUser("buyer@example.com", rolePtr(models.RoleParent))

	intent, err := env.payments.CreatePaymentIntent(ctx, buyer.ID, &dto.CreatePaymentIntentRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(499), intent.Amount)
	assert.Equal(t, "4.99 USD", intent.DisplayAmount)
	assert.Regexp(t, `^pi_`, intent.PaymentIntentID)

	t.Run("Should refuse confirming someone else's intent", func(t *testing.T) {
		other := env.createUser("other@example.com", nil)
		otherIntent, err := env.payments.CreatePaymentIntent(ctx, other.ID, &dto.CreatePaymentIntentRequest{})
		require.NoError(t, err)

		_, err = env.payments.ConfirmPayment(ctx, buyer.ID, &dto.ConfirmPaymentRequest{PaymentIntentID: otherIntent.PaymentIntentID})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("Should grant lifetime access on confirmation", func(t *testing.T) {
		before, err := env.payments.CheckAccess(ctx, buyer.ID)
		require.NoError(t, err)
		assert.False(t, before.HasPaidAccess)

		resp, err := env.payments.ConfirmPayment(ctx, buyer.ID, &dto.ConfirmPaymentRequest{PaymentIntentID: intent.PaymentIntentID})
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Nil(t, resp.ExpiresAt)

		after, err := env.payments.CheckAccess(ctx, buyer.ID)
		require.NoError(t, err)
		assert.True(t, after.HasPaidAccess)
		assert.Nil(t, env.billing.subs[buyer.ID].CurrentPeriodEnd)
	})

	t.Run("Should record a repeated confirmation only once", func(t *testing.T) {
		upserts := env.billing.upserts
		resp, err := env.payments.ConfirmPayment(ctx, buyer.ID, &dto.ConfirmPaymentRequest{PaymentIntentID: intent.PaymentIntentID})
		require.NoError(t, err)
		assert.True(t, resp.HasPaidAccess)
		assert.Len(t, env.billing.payments, 1)
		assert.Equal(t, upserts, env.billing.upserts)
	})
}

func TestPaymentService_Price(t *testing.T) {
	ctx := context.Background()

	t.Run("Should reject a client amount other than the price", func(t *testing.T) {
		env := newTestEnv(nil)
		buyer := env.createUser("buyer@example.com", nil)
		_, err := env.payments.CreatePaymentIntent(ctx, buyer.ID, &dto.CreatePaymentIntentRequest{Amount: 1})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("Should reject another currency", func(t *testing.T) {
		env := newTestEnv(nil)
		buyer := env.createUser("buyer@example.com", nil)
		_, err := env.payments.CreatePaymentIntent(ctx, buyer.ID, &dto.CreatePaymentIntentRequest{Currency: "jpy"})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("Should accept a restated price", func(t *testing.T) {
		env := newTestEnv(nil)
		buyer := env.createUser("buyer@example.com", nil)
		intent, err := env.payments.CreatePaymentIntent(ctx, buyer.ID, &dto.CreatePaymentIntentRequest{Amount: 499, Currency: "USD"})
		require.NoError(t, err)
		assert.Equal(t, int64(499), intent.Amount)
		assert.Equal(t, "usd", intent.Currency)
	})

	t.Run("Should not grant access for an underpaid charge", func(t *testing.T) {
		env := newTestEnv(nil)
		buyer := env.createUser("buyer@example.com", nil)
		cheap, err := env.provider.CreateIntent(ctx, 1, "usd", buyer.ID, buyer.Email)
		require.NoError(t, err)

		_, err = env.payments.ConfirmPayment(ctx, buyer.ID, &dto.ConfirmPaymentRequest{PaymentIntentID: cheap.ID})
		assert.ErrorIs(t, err, apperrors.ErrPaymentDeclined)

		ok, err := env.entitlement.HasPaidAccess(ctx, buyer.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Should grant access on retry after a failed write", func(t *testing.T) {
		env := newTestEnv(nil)
		buyer := env.createUser("buyer@example.com", nil)
		intent, err := env.payments.CreatePaymentIntent(ctx, buyer.ID, &dto.CreatePaymentIntentRequest{})
		require.NoError(t, err)

		env.billing.failSuccess = errors.New("connection reset")
		_, err = env.payments.ConfirmPayment(ctx, buyer.ID, &dto.ConfirmPaymentRequest{PaymentIntentID: intent.PaymentIntentID})
		require.Error(t, err)

		resp, err := env.payments.ConfirmPayment(ctx, buyer.ID, &dto.ConfirmPaymentRequest{PaymentIntentID: intent.PaymentIntentID})
		require.NoError(t, err)
		assert.True(t, resp.HasPaidAccess)
	})
}

func TestPaymentService_HandleWebhook(t *testing.T) {
	ctx := context.Background()

	event := func(typ string, userID uuid.UUID) *dto.WebhookEvent {
		e := &dto.WebhookEvent{ID: "evt_1", Type: typ}
		e.Data.Object = dto.WebhookPaymentIntent{
			ID:       "pi_" + uuid.NewString(),
			Amount:   499,
			Currency: "usd",
			Metadata: map[string]string{"userId": userID.String()},
		}
		return e
	}

	t.Run("Should reject a wrong secret", func(t *testing.T) {
		env := newTestEnv(nil)
		err := env.payments.HandleWebhook(ctx, "nope", event(EventPaymentSucceeded, uuid.New()))
		assert.ErrorIs(t, err, apperrors.ErrInvalidWebhook)
	})

	t.Run("Should grant a year of access on success", func(t *testing.T) {
		env := newTestEnv(nil)
		userID := uuid.New()
		require.NoError(t, env.payments.HandleWebhook(ctx, "whsec_test", event(EventPaymentSucceeded, userID)))

		sub := env.billing.subs[userID]
		require.NotNil(t, sub)
		require.NotNil(t, sub.CurrentPeriodEnd)
		assert.Equal(t, anchor.Add(365*24*time.Hour), *sub.CurrentPeriodEnd)

		ok, err := env.entitlement.HasPaidAccess(ctx, userID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Should not extend access when an event is replayed", func(t *testing.T) {
		env := newTestEnv(nil)
		userID := uuid.New()
		evt := event(EventPaymentSucceeded, userID)
		require.NoError(t, env.payments.HandleWebhook(ctx, "whsec_test", evt))

		env.payments.now = func() time.Time { return anchor.Add(30 * 24 * time.Hour) }
		require.NoError(t, env.payments.HandleWebhook(ctx, "whsec_test", evt))

		assert.Equal(t, anchor.Add(365*24*time.Hour), *env.billing.subs[userID].CurrentPeriodEnd)
		assert.Equal(t, 1, env.billing.upserts)
	})

	t.Run("Should record an underpayment without granting access", func(t *testing.T) {
		env := newTestEnv(nil)
		userID := uuid.New()
		evt := event(EventPaymentSucceeded, userID)
		evt.Data.Object.Amount = 1
		require.NoError(t, env.payments.HandleWebhook(ctx, "whsec_test", evt))

		assert.Equal(t, models.PaymentSucceeded, env.billing.payments[evt.Data.Object.ID].Status)
		assert.Nil(t, env.billing.subs[userID])
	})

	t.Run("Should record failures without granting access", func(t *testing.T) {
		env := newTestEnv(nil)
		userID := uuid.New()
		evt := event(EventPaymentFailed, userID)
		require.NoError(t, env.payments.HandleWebhook(ctx, "whsec_test", evt))

		assert.Equal(t, models.PaymentFailed, env.billing.payments[evt.Data.Object.ID].Status)
		assert.Nil(t, env.billing.subs[userID])
	})

	t.Run("Should acknowledge unknown event types", func(t *testing.T) {
		env := newTestEnv(nil)
		assert.NoError(t, env.payments.HandleWebhook(ctx, "whsec_test", event("charge.refunded", uuid.New())))
		assert.Empty(t, env.billing.payments)
	})

	t.Run("Should reject events without a user", func(t *testing.T) {
		env := newTestEnv(nil)
		evt := event(EventPaymentSucceeded, uuid.New())
		evt.Data.Object.Metadata = nil
		assert.ErrorIs(t, env.payments.HandleWebhook(ctx, "whsec_test", evt), apperrors.ErrInvalidWebhook)
	})
}
