package controllers

import (
	"net/http"

	"github.com/collegeprep/organizer/internal/app/models/dto"
	"github.com/collegeprep/organizer/internal/app/services"
	"github.com/collegeprep/organizer/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// TaskController exposes the caller's task list
type TaskController struct {
	taskService *services.TaskService
	logger      zerolog.Logger
}

// NewTaskController creates a new TaskController
func NewTaskController(taskService *services.TaskService, logger zerolog.Logger) *TaskController {
	return &TaskController{taskService: taskService, logger: logger}
}

// ListTasks returns the caller's tasks, seeding the default catalog on first use
// @Summary List tasks
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Task} "Tasks"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 402 {object} dto.ErrorResponse "Payment required"
// @Router /tasks [get]
func (c *TaskController) ListTasks(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	tasks, err := c.taskService.ListTasks(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(tasks))
}

// CreateTask adds a task
// @Summary Create task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateTaskRequest true "Task"
// @Success 201 {object} dto.APIResponse{data=models.Task} "Created"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Router /tasks [post]
func (c *TaskController) CreateTask(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	task, err := c.taskService.CreateTask(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(task))
}

// UpdateTask applies a partial update
// @Summary Update task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Param request body dto.UpdateTaskRequest true "Changed fields"
// @Success 200 {object} dto.APIResponse{data=models.Task} "Updated"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 404 {object} dto.ErrorResponse "Task not found"
// @Router /tasks/{id} [patch]
func (c *TaskController) UpdateTask(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	taskID, ok := middleware.ParamUUID(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	task, err := c.taskService.UpdateTask(ctx.Request.Context(), userID, taskID, req.ToUpdate())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(task))
}

// DeleteTask removes a task
// @Summary Delete task
// @Tags tasks
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 204 "Deleted"
// @Failure 404 {object} dto.ErrorResponse "Task not found"
// @Router /tasks/{id} [delete]
func (c *TaskController) DeleteTask(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	taskID, ok := middleware.ParamUUID(ctx, "id")
	if !ok {
		return
	}

	if err := c.taskService.DeleteTask(ctx.Request.Context(), userID, taskID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// GetStats summarizes the caller's progress
// @Summary Task statistics
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.TaskStats} "Stats"
// @Router /tasks/stats [get]
func (c *TaskController) GetStats(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	stats, err := c.taskService.GetStats(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(stats))
}

// GetTemplates lists the default task catalog
// @Summary Task templates
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.TaskTemplateResponse} "Templates"
// @Router /tasks/templates [get]
func (c *TaskController) GetTemplates(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(c.taskService.Templates()))
}

// SeedTasks seeds the default catalog for the caller
// @Summary Seed default tasks
// @Description Idempotent. A userId in the body must match the caller.
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SeedTasksRequest false "Optional target user"
// @Success 200 {object} dto.APIResponse{data=dto.SeedTasksResponse} "Tasks after seeding"
// @Failure 403 {object} dto.ErrorResponse "Cannot seed tasks for another user"
// @Router /tasks/seed [post]
func (c *TaskController) SeedTasks(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var req dto.SeedTasksRequest
	if !middleware.BindOptionalJSON(ctx, &req) {
		return
	}

	resp, err := c.taskService.SeedTasks(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("userID", userID.String()).Int("seeded", resp.Seeded).Msg("Seed tasks requested")
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}
