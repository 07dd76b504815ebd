package models

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus is the provider-reported state of access
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
)

// Subscription grants paid access while active and inside its period
type Subscription struct {
	ID                 uuid.UUID          `json:"id" db:"id"`
	UserID             uuid.UUID          `json:"userId" db:"user_id"`
	ProviderCustomerID *string            `json:"providerCustomerId,omitempty" db:"provider_customer_id"`
	Status             SubscriptionStatus `json:"status" db:"status"`
	CurrentPeriodStart *time.Time         `json:"currentPeriodStart,omitempty" db:"current_period_start"`
	CurrentPeriodEnd   *time.Time         `json:"currentPeriodEnd,omitempty" db:"current_period_end"` // nil = lifetime
	CancelAtPeriodEnd  bool               `json:"cancelAtPeriodEnd" db:"cancel_at_period_end"`
	CreatedAt          time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time          `json:"updatedAt" db:"updated_at"`
}

// GrantsAccess reports whether the subscription entitles its owner at now
func (s *Subscription) GrantsAccess(now time.Time) bool {
	if s == nil || s.Status != SubscriptionActive {
		return false
	}
	return s.CurrentPeriodEnd == nil || s.CurrentPeriodEnd.After(now)
}

// PaymentStatus is the outcome of a charge
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
)

// Payment is a recorded charge attempt; Amount is in minor units
type Payment struct {
	ID                uuid.UUID     `json:"id" db:"id"`
	UserID            uuid.UUID     `json:"userId" db:"user_id"`
	ProviderPaymentID string        `json:"providerPaymentId" db:"provider_payment_id"`
	Amount            int64         `json:"amount" db:"amount"`
	Currency          string        `json:"currency" db:"currency"`
	Status            PaymentStatus `json:"status" db:"status"`
	Description       string        `json:"description" db:"description"`
	CreatedAt         time.Time     `json:"createdAt" db:"created_at"`
}
