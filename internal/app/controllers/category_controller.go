package controllers

import (
	"net/http"

	"github.com/collegeprep/organizer/internal/app/models/dto"
	"github.com/collegeprep/organizer/internal/app/services"
	"github.com/collegeprep/organizer/internal/middleware"
	"github.com/gin-gonic/gin"
)

// CategoryController serves the shared category list
type CategoryController struct {
	categoryService *services.CategoryService
}

// NewCategoryController creates a new CategoryController
func NewCategoryController(categoryService *services.CategoryService) *CategoryController {
	return &CategoryController{categoryService: categoryService}
}

// GetAllCategories returns every category ordered by sort order
// @Summary List categories
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Category} "Categories"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 402 {object} dto.ErrorResponse "Payment required"
// @Router /categories [get]
func (c *CategoryController) GetAllCategories(ctx *gin.Context) {
	categories, err := c.categoryService.GetAllCategories(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(categories))
}
