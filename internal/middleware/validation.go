package middleware

import (
	"errors"
	"io"
	"net/http"

	"github.com/collegeprep/organizer/internal/app/models/dto"
	"github.com/collegeprep/organizer/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BindJSON binds and validates the request body into obj. On failure it
// writes a 400 and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return false
	}
	return true
}

// BindOptionalJSON is BindJSON for bodies that may be left out entirely. An
// empty body leaves obj untouched whatever the Content-Length says.
func BindOptionalJSON(c *gin.Context, obj interface{}) bool {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return true
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return false
	}
	return true
}

// ParamUUID parses a path parameter as a UUID. On failure it writes a 400 and returns false.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		HandleAPIError(c, apperrors.NewBadRequestError(name, "Invalid "+name))
		return uuid.UUID{}, false
	}
	return id, true
}
