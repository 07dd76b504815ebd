package controllers

import (
	"net/http"

	"github.com/collegeprep/organizer/internal/app/models/dto"
	"github.com/collegeprep/organizer/internal/app/services"
	"github.com/collegeprep/organizer/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// WebhookSecretHeader carries the shared secret on provider callbacks
const WebhookSecretHeader = "X-Webhook-Secret"

// PaymentController handles the one-time purchase flow
type PaymentController struct {
	paymentService *services.PaymentService
	logger         zerolog.Logger
}

// NewPaymentController creates a new PaymentController
func NewPaymentController(paymentService *services.PaymentService, logger zerolog.Logger) *PaymentController {
	return &PaymentController{paymentService: paymentService, logger: logger}
}

// CheckAccess reports whether the caller has paid access
// @Summary Check paid access
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.CheckAccessResponse} "Access state"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Router /payments/check-access [get]
func (c *PaymentController) CheckAccess(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	resp, err := c.paymentService.CheckAccess(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// CreatePaymentIntent starts a purchase
// @Summary Create payment intent
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePaymentIntentRequest false "Optional restatement of the price"
// @Success 200 {object} dto.APIResponse{data=dto.PaymentIntentResponse} "Intent created"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Router /payments/create-payment-intent [post]
func (c *PaymentController) CreatePaymentIntent(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var req dto.CreatePaymentIntentRequest
	if !middleware.BindOptionalJSON(ctx, &req) {
		return
	}

	resp, err := c.paymentService.CreatePaymentIntent(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// ConfirmPayment charges an intent and unlocks access
// @Summary Confirm payment
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ConfirmPaymentRequest true "Intent to confirm"
// @Success 200 {object} dto.APIResponse{data=dto.ConfirmPaymentResponse} "Access unlocked"
// @Failure 400 {object} dto.ErrorResponse "Payment declined"
// @Failure 403 {object} dto.ErrorResponse "Intent belongs to another user"
// @Router /payments/confirm-payment [post]
func (c *PaymentController) ConfirmPayment(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var req dto.ConfirmPaymentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.paymentService.ConfirmPayment(ctx.Request.Context(), userID, &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("userID", userID.String()).Str("intent", req.PaymentIntentID).Msg("Confirm payment failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// Webhook receives provider events
// @Summary Payment webhook
// @Tags payments
// @Accept json
// @Produce json
// @Param X-Webhook-Secret header string true "Shared webhook secret"
// @Param event body dto.WebhookEvent true "Provider event"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Acknowledged"
// @Failure 400 {object} dto.ErrorResponse "Invalid webhook request"
// @Router /payments/webhook [post]
func (c *PaymentController) Webhook(ctx *gin.Context) {
	var event dto.WebhookEvent
	if !middleware.BindJSON(ctx, &event) {
		return
	}

	if err := c.paymentService.HandleWebhook(ctx.Request.Context(), ctx.GetHeader(WebhookSecretHeader), &event); err != nil {
		c.logger.Warn().Err(err).Str("eventType", event.Type).Msg("Webhook rejected")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "received"}))
}
