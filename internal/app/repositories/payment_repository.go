package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/collegeprep/organizer/internal/app/models"
	"github.com/collegeprep/organizer/internal/db"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var paymentColumns = []string{
	"id", "user_id", "provider_payment_id", "amount", "currency", "status", "description", "created_at",
}

// PaymentRepository records charge attempts
type PaymentRepository struct {
	db db.DB
	sb squirrel.StatementBuilderType
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(conn db.DB) *PaymentRepository {
	return &PaymentRepository{
		db: conn,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Record stores a payment. A provider id seen before is ignored and reported as false.
func (r *PaymentRepository) Record(ctx context.Context, payment *models.Payment) (bool, error) {
	return r.insert(ctx, r.db, payment)
}

// RecordSuccess stores a succeeded payment and upserts the subscription it pays for, atomically.
// A provider id recorded before leaves the subscription untouched and reports false.
func (r *PaymentRepository) RecordSuccess(ctx context.Context, payment *models.Payment, sub *models.Subscription) (bool, error) {
	var created bool
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		if created, err = r.insert(ctx, tx, payment); err != nil || !created {
			return err
		}
		return upsertSubscription(ctx, tx, r.sb, sub)
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (r *PaymentRepository) insert(ctx context.Context, q db.DB, payment *models.Payment) (bool, error) {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}

	sql, args, err := r.sb.Insert("payments").
		Columns(paymentColumns...).
		Values(payment.ID, payment.UserID, payment.ProviderPaymentID, payment.Amount, payment.Currency,
			payment.Status, payment.Description, payment.CreatedAt).
		Suffix("ON CONFLICT (provider_payment_id) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build record payment query: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("error recording payment: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
