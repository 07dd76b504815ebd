package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/collegeprep/organizer/internal/app/models"
	"github.com/collegeprep/organizer/internal/app/models/dto"
	"github.com/collegeprep/organizer/internal/pkg/apperrors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Webhook event types handled by PaymentService
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

const purchaseDescription = "College Prep Organizer full access"

// PaymentConfig holds pricing and webhook settings
type PaymentConfig struct {
	PriceCents    int64
	Currency      string
	AccessPeriod  time.Duration // granted by webhook-confirmed payments
	WebhookSecret string
}

// PaymentService sells and records access
type PaymentService struct {
	userRepo    UserStore
	paymentRepo PaymentStore
	entitlement *EntitlementService
	provider    PaymentProvider
	config      PaymentConfig
	logger      zerolog.Logger
	now         func() time.Time
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	userRepo UserStore,
	paymentRepo PaymentStore,
	entitlement *EntitlementService,
	provider PaymentProvider,
	config PaymentConfig,
	logger zerolog.Logger,
) *PaymentService {
	if config.Currency == "" {
		config.Currency = "usd"
	}
	if config.AccessPeriod <= 0 {
		config.AccessPeriod = 365 * 24 * time.Hour
	}
	return &PaymentService{
		userRepo:    userRepo,
		paymentRepo: paymentRepo,
		entitlement: entitlement,
		provider:    provider,
		config:      config,
		logger:      logger,
		now:         time.Now,
	}
}

// CreatePaymentIntent starts a purchase for the caller
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, userID uuid.UUID, req *dto.CreatePaymentIntentRequest) (*dto.PaymentIntentResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// the price is fixed server side; a client amount or currency may only restate it
	if req.Amount != 0 && req.Amount != s.config.PriceCents {
		return nil, apperrors.NewValidationError("amount", fmt.Sprintf("Amount must be %d", s.config.PriceCents))
	}
	if c := strings.TrimSpace(req.Currency); c != "" && !strings.EqualFold(c, s.config.Currency) {
		return nil, apperrors.NewValidationError("currency", "Currency must be "+strings.ToUpper(s.config.Currency))
	}
	amount, currency := s.config.PriceCents, s.config.Currency

	intent, err := s.provider.CreateIntent(ctx, amount, currency, user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	s.logger.Info().
		Str("userID", user.ID.String()).
		Str("paymentIntentID", intent.ID).
		Int64("amount", amount).
		Msg("Payment intent created")

	return &dto.PaymentIntentResponse{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Amount:          intent.Amount,
		Currency:        intent.Currency,
		DisplayAmount:   dto.FormatMinorUnits(intent.Amount, intent.Currency),
	}, nil
}

// ConfirmPayment charges an intent and grants lifetime access
func (s *PaymentService) ConfirmPayment(ctx context.Context, userID uuid.UUID, req *dto.ConfirmPaymentRequest) (*dto.ConfirmPaymentResponse, error) {
	intent, err := s.provider.GetIntent(ctx, req.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	if intent.UserID != userID {
		return nil, apperrors.NewForbiddenError("Payment intent belongs to another user")
	}

	receipt, err := s.provider.Charge(ctx, intent.ID)
	if err != nil {
		return nil, err
	}
	if !s.coversPrice(receipt.Amount, receipt.Currency) {
		s.logger.Warn().
			Str("userID", userID.String()).
			Str("paymentIntentID", receipt.IntentID).
			Int64("amount", receipt.Amount).
			Str("currency", receipt.Currency).
			Msg("Charge does not cover the price; access not granted")
		return nil, apperrors.NewCustomError(apperrors.ErrPaymentDeclined, "Payment does not cover the price")
	}

	now := s.now()
	payment := &models.Payment{
		UserID:            userID,
		ProviderPaymentID: receipt.IntentID,
		Amount:            receipt.Amount,
		Currency:          receipt.Currency,
		Status:            models.PaymentSucceeded,
		Description:       purchaseDescription,
	}
	sub := &models.Subscription{
		UserID:             userID,
		ProviderCustomerID: optionalString(receipt.CustomerID),
		Status:             models.SubscriptionActive,
		CurrentPeriodStart: &now,
	}
	created, err := s.paymentRepo.RecordSuccess(ctx, payment, sub)
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	s.entitlement.Invalidate(ctx, userID)

	s.logger.Info().
		Str("userID", userID.String()).
		Str("paymentIntentID", receipt.IntentID).
		Bool("firstConfirmation", created).
		Msg("Payment confirmed, lifetime access granted")

	return &dto.ConfirmPaymentResponse{
		Success:       true,
		HasPaidAccess: true,
		DisplayAmount: dto.FormatMinorUnits(receipt.Amount, receipt.Currency),
	}, nil
}

// HandleWebhook applies a provider callback after checking the shared secret.
// Unknown event types are acknowledged and ignored.
func (s *PaymentService) HandleWebhook(ctx context.Context, secret string, event *dto.WebhookEvent) error {
	if s.config.WebhookSecret == "" ||
		subtle.ConstantTimeCompare([]byte(secret), []byte(s.config.WebhookSecret)) != 1 {
		return apperrors.ErrInvalidWebhook
	}

	switch event.Type {
	case EventPaymentSucceeded, EventPaymentFailed:
	default:
		s.logger.Debug().Str("type", event.Type).Msg("Ignoring webhook event")
		return nil
	}

	intent := event.Data.Object
	userID, err := uuid.Parse(intent.Metadata["userId"])
	if err != nil || intent.ID == "" {
		return apperrors.NewCustomError(apperrors.ErrInvalidWebhook, "Webhook event lacks a payment id or userId metadata")
	}
	currency := strings.ToLower(intent.Currency)
	if currency == "" {
		currency = s.config.Currency
	}

	payment := &models.Payment{
		UserID:            userID,
		ProviderPaymentID: intent.ID,
		Amount:            intent.Amount,
		Currency:          currency,
		Description:       purchaseDescription,
	}

	if event.Type == EventPaymentFailed {
		payment.Status = models.PaymentFailed
		if _, err := s.paymentRepo.Record(ctx, payment); err != nil {
			return fmt.Errorf("failed to record failed payment: %w", err)
		}
		s.logger.Warn().Str("userID", userID.String()).Str("paymentIntentID", intent.ID).Msg("Payment failed")
		return nil
	}

	payment.Status = models.PaymentSucceeded
	if !s.coversPrice(intent.Amount, currency) {
		if _, err := s.paymentRepo.Record(ctx, payment); err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}
		s.logger.Warn().
			Str("userID", userID.String()).
			Str("paymentIntentID", intent.ID).
			Int64("amount", intent.Amount).
			Str("currency", currency).
			Msg("Webhook payment does not cover the price; access not granted")
		return nil
	}

	now := s.now()
	end := now.Add(s.config.AccessPeriod)
	sub := &models.Subscription{
		UserID:             userID,
		ProviderCustomerID: optionalString(intent.Customer),
		Status:             models.SubscriptionActive,
		CurrentPeriodStart: &now,
		CurrentPeriodEnd:   &end,
	}
	created, err := s.paymentRepo.RecordSuccess(ctx, payment, sub)
	if err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}
	if !created {
		s.logger.Debug().Str("paymentIntentID", intent.ID).Msg("Webhook payment already recorded")
		return nil
	}
	s.entitlement.Invalidate(ctx, userID)

	s.logger.Info().
		Str("userID", userID.String()).
		Str("paymentIntentID", intent.ID).
		Time("accessUntil", end).
		Msg("Webhook payment recorded")
	return nil
}

// coversPrice reports whether a charge pays the configured price in the configured currency
func (s *PaymentService) coversPrice(amount int64, currency string) bool {
	return amount >= s.config.PriceCents && strings.EqualFold(currency, s.config.Currency)
}

// CheckAccess reports the caller's entitlement
func (s *PaymentService) CheckAccess(ctx context.Context, userID uuid.UUID) (*dto.CheckAccessResponse, error) {
	ok, err := s.entitlement.HasPaidAccess(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.CheckAccessResponse{HasPaidAccess: ok}, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
