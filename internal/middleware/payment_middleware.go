package middleware

import (
	"context"

	"github.com/collegeprep/organizer/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AccessChecker answers whether a user has paid access
type AccessChecker interface {
	HasPaidAccess(ctx context.Context, userID uuid.UUID) (bool, error)
}

// PaymentMiddleware gates routes behind a purchase
type PaymentMiddleware struct {
	access AccessChecker
	logger zerolog.Logger
}

// NewPaymentMiddleware creates a new PaymentMiddleware
func NewPaymentMiddleware(access AccessChecker, logger zerolog.Logger) *PaymentMiddleware {
	return &PaymentMiddleware{access: access, logger: logger}
}

// RequirePaidAccess must run after JWTAuth. Only server-side subscription
// state is consulted.
func (m *PaymentMiddleware) RequirePaidAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			abortUnauthorized(c, apperrors.ErrUnauthorized, "User information not found")
			return
		}

		paid, err := m.access.HasPaidAccess(c.Request.Context(), userID)
		if err != nil {
			m.logger.Error().Err(err).Str("userID", userID.String()).Msg("Entitlement check failed")
			HandleAPIError(c, err)
			return
		}

		if !paid {
			HandleAPIError(c, apperrors.NewCustomError(apperrors.ErrPaymentRequired, "Payment required").
				WithDetails(map[string]interface{}{
					"requiresPayment": true,
					"userEmail":       GetEmail(c),
				}))
			return
		}

		c.Next()
	}
}
