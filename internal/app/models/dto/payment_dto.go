package dto

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CreatePaymentIntentRequest starts a one-time purchase. The configured price is always
// charged; a non-zero amount or a currency must match it.
type CreatePaymentIntentRequest struct {
	Amount   int64  `json:"amount" binding:"omitempty,min=1" example:"499"`
	Currency string `json:"currency" binding:"omitempty,currency" example:"usd"`
}

// PaymentIntentResponse is what the client needs to complete the charge
type PaymentIntentResponse struct {
	PaymentIntentID string `json:"paymentIntentId" example:"pi_2Q1f..."`
	ClientSecret    string `json:"clientSecret"`
	Amount          int64  `json:"amount" example:"499"`
	Currency        string `json:"currency" example:"usd"`
	DisplayAmount   string `json:"displayAmount" example:"4.99 USD"`
}

// ConfirmPaymentRequest confirms a previously created intent
type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"paymentIntentId" binding:"required"`
}

// ConfirmPaymentResponse reports the unlocked entitlement
type ConfirmPaymentResponse struct {
	Success       bool    `json:"success"`
	HasPaidAccess bool    `json:"hasPaidAccess"`
	ExpiresAt     *string `json:"expiresAt"` // null means lifetime access
	DisplayAmount string  `json:"displayAmount"`
}

// CheckAccessResponse is the body of GET /payments/check-access
type CheckAccessResponse struct {
	HasPaidAccess bool `json:"hasPaidAccess"`
}

// WebhookEvent is the provider callback body
type WebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type" binding:"required" example:"payment_intent.succeeded"`
	Data struct {
		Object WebhookPaymentIntent `json:"object"`
	} `json:"data"`
}

// WebhookPaymentIntent is the payment intent embedded in a webhook event
type WebhookPaymentIntent struct {
	ID       string            `json:"id"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Customer string            `json:"customer"`
	Metadata map[string]string `json:"metadata"`
}

// FormatMinorUnits renders cents as a major-unit string, e.g. 499/usd -> "4.99 USD"
func FormatMinorUnits(amount int64, currency string) string {
	return decimal.New(amount, -2).StringFixed(2) + " " + strings.ToUpper(currency)
}
