package middleware

import (
	"errors"
	"net/http"

	"github.com/collegeprep/organizer/internal/app/models/dto"
	"github.com/collegeprep/organizer/internal/pkg/apperrors"
	"github.com/collegeprep/organizer/internal/pkg/logger"
	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// apiErrors maps sentinel errors to responses; the first match wins
var apiErrors = []errorMapping{
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"},
	{apperrors.ErrEmailAlreadyExists, http.StatusBadRequest, dto.ErrorCodeDuplicateEmail, "Email already exists"},
	{apperrors.ErrUserExists, http.StatusBadRequest, dto.ErrorCodeUserExists, "A user with this email already exists"},
	{apperrors.ErrInvalidRole, http.StatusBadRequest, dto.ErrorCodeInvalidRole, "Role must be student or parent"},
	{apperrors.ErrDuplicateInvitation, http.StatusBadRequest, dto.ErrorCodeDuplicateInvitation, "A pending invitation already exists for this student"},
	{apperrors.ErrInvitationExpired, http.StatusBadRequest, dto.ErrorCodeInvitationExpired, "Invitation has expired"},
	{apperrors.ErrInvitationUsed, http.StatusBadRequest, dto.ErrorCodeInvitationUsed, "Invitation has already been used"},
	{apperrors.ErrEmailMismatch, http.StatusBadRequest, dto.ErrorCodeEmailMismatch, "Email does not match invitation"},
	{apperrors.ErrInvitationNotFound, http.StatusNotFound, dto.ErrorCodeInvitationNotFound, "Invalid invitation token"},
	{apperrors.ErrInvalidWebhook, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Invalid webhook request"},
	{apperrors.ErrPaymentDeclined, http.StatusBadRequest, dto.ErrorCodePaymentFailed, "Payment declined"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid email or password"},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrTokenNotFound, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Token not found"},
	{apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Token revoked"},
	{apperrors.ErrPaymentRequired, http.StatusPaymentRequired, dto.ErrorCodePaymentRequired, "Payment required"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrRateLimited, http.StatusTooManyRequests, dto.ErrorCodeRateLimited, "Too many requests"},
	{apperrors.ErrUserNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "User not found"},
	{apperrors.ErrTaskNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Task not found"},
	{apperrors.ErrDocumentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Document not found"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrMethodNotAllowed, http.StatusMethodNotAllowed, dto.ErrorCodeMethodNotAllowed, "Method not allowed"},
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	status, detail := ErrorDetailFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("Unhandled API error")
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

// ErrorDetailFor resolves err to a status and an error body
func ErrorDetailFor(err error) (int, *dto.ErrorDetail) {
	for _, m := range apiErrors {
		if !errors.Is(err, m.target) {
			continue
		}
		detail := dto.NewErrorDetail(m.code, m.message)

		var custom *apperrors.CustomError
		if errors.As(err, &custom) {
			if custom.Message != "" {
				detail.Message = custom.Message
			}
			if field := custom.Field(); field != "" {
				detail.WithField(field)
			} else if len(custom.Details) > 0 {
				detail.WithDetails(custom.Details)
			}
		}
		return m.status, detail
	}
	return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
}

// RouteNotFound answers unmatched paths with a JSON 404
func RouteNotFound(c *gin.Context) {
	HandleAPIError(c, apperrors.NewCustomError(apperrors.ErrResourceNotFound, "Route not found"))
}

// MethodNotAllowed answers a known path hit with the wrong verb
func MethodNotAllowed(c *gin.Context) {
	HandleAPIError(c, apperrors.ErrMethodNotAllowed)
}

// RecoverJSON is a gin.RecoveryFunc that answers panics with a JSON 500 without a stack
func RecoverJSON(c *gin.Context, recovered any) {
	logger.Error().
		Interface("panic", recovered).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("Recovered from panic")
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(errorDetail))
}
