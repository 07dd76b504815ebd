package controllers

import (
	"net/http"

	"github.com/collegeprep/organizer/internal/app/models/dto"
	"github.com/collegeprep/organizer/internal/app/services"
	"github.com/collegeprep/organizer/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// DocumentController exposes the caller's document checklist
type DocumentController struct {
	documentService *services.DocumentService
	logger          zerolog.Logger
}

// NewDocumentController creates a new DocumentController
func NewDocumentController(documentService *services.DocumentService, logger zerolog.Logger) *DocumentController {
	return &DocumentController{documentService: documentService, logger: logger}
}

// ListDocuments returns the caller's documents
// @Summary List documents
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Document} "Documents"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 402 {object} dto.ErrorResponse "Payment required"
// @Router /documents [get]
func (c *DocumentController) ListDocuments(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	docs, err := c.documentService.ListDocuments(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(docs))
}

// CreateDocument adds a document
// @Summary Create document
// @Tags documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateDocumentRequest true "Document"
// @Success 201 {object} dto.APIResponse{data=models.Document} "Created"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Router /documents [post]
func (c *DocumentController) CreateDocument(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var req dto.CreateDocumentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	doc, err := c.documentService.CreateDocument(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(doc))
}

// UpdateDocument applies a partial update
// @Summary Update document
// @Tags documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Param request body dto.UpdateDocumentRequest true "Changed fields"
// @Success 200 {object} dto.APIResponse{data=models.Document} "Updated"
// @Failure 404 {object} dto.ErrorResponse "Document not found"
// @Router /documents/{id} [patch]
func (c *DocumentController) UpdateDocument(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	docID, ok := middleware.ParamUUID(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateDocumentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	doc, err := c.documentService.UpdateDocument(ctx.Request.Context(), userID, docID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(doc))
}

// DeleteDocument removes a document
// @Summary Delete document
// @Tags documents
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Success 204 "Deleted"
// @Failure 404 {object} dto.ErrorResponse "Document not found"
// @Router /documents/{id} [delete]
func (c *DocumentController) DeleteDocument(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	docID, ok := middleware.ParamUUID(ctx, "id")
	if !ok {
		return
	}

	if err := c.documentService.DeleteDocument(ctx.Request.Context(), userID, docID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
