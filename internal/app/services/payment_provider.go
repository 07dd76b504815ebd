package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/collegeprep/organizer/internal/pkg/apperrors"
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

// PaymentIntent is a charge the client has been asked to complete
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
	UserID       uuid.UUID
	CustomerID   string
}

// Receipt is the outcome of a successful charge
type Receipt struct {
	IntentID   string
	Amount     int64
	Currency   string
	UserID     uuid.UUID
	CustomerID string
}

// PaymentProvider is the card processor capability
type PaymentProvider interface {
	CreateIntent(ctx context.Context, amount int64, currency string, userID uuid.UUID, email string) (*PaymentIntent, error)
	GetIntent(ctx context.Context, intentID string) (*PaymentIntent, error)
	Charge(ctx context.Context, intentID string) (*Receipt, error)
}

// SimulatedProvider is an in-process processor whose charges always succeed
type SimulatedProvider struct {
	mu       sync.Mutex
	intents  map[string]*PaymentIntent
	receipts map[string]*Receipt
}

// NewSimulatedProvider creates a new SimulatedProvider
func NewSimulatedProvider() *SimulatedProvider {
	return &SimulatedProvider{
		intents:  make(map[string]*PaymentIntent),
		receipts: make(map[string]*Receipt),
	}
}

// CreateIntent registers a pi_<ksuid> intent
func (p *SimulatedProvider) CreateIntent(_ context.Context, amount int64, currency string, userID uuid.UUID, email string) (*PaymentIntent, error) {
	id := "pi_" + ksuid.New().String()
	intent := &PaymentIntent{
		ID:           id,
		ClientSecret: fmt.Sprintf("%s_secret_%s", id, ksuid.New().String()),
		Amount:       amount,
		Currency:     strings.ToLower(currency),
		UserID:       userID,
		CustomerID:   "cus_" + strings.ReplaceAll(strings.ToLower(email), "@", "_at_"),
	}

	p.mu.Lock()
	p.intents[id] = intent
	p.mu.Unlock()
	return intent, nil
}

// GetIntent returns a known intent, charged or not
func (p *SimulatedProvider) GetIntent(_ context.Context, intentID string) (*PaymentIntent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	intent, ok := p.intents[intentID]
	if !ok {
		return nil, apperrors.NewCustomError(apperrors.ErrPaymentDeclined, "Unknown payment intent")
	}
	cp := *intent
	return &cp, nil
}

// Charge completes an intent. The card is charged once; repeated calls return the first receipt.
func (p *SimulatedProvider) Charge(_ context.Context, intentID string) (*Receipt, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if receipt, ok := p.receipts[intentID]; ok {
		cp := *receipt
		return &cp, nil
	}
	intent, ok := p.intents[intentID]
	if !ok {
		return nil, apperrors.NewCustomError(apperrors.ErrPaymentDeclined, "Unknown payment intent")
	}

	receipt := &Receipt{
		IntentID:   intent.ID,
		Amount:     intent.Amount,
		Currency:   intent.Currency,
		UserID:     intent.UserID,
		CustomerID: intent.CustomerID,
	}
	p.receipts[intentID] = receipt
	cp := *receipt
	return &cp, nil
}
