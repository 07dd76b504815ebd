package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/collegeprep/organizer/internal/app/models"
	"github.com/collegeprep/organizer/internal/app/models/dto"
	"github.com/collegeprep/organizer/internal/app/tasktemplates"
	"github.com/collegeprep/organizer/internal/pkg/apperrors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TaskService manages a user's checklist
type TaskService struct {
	taskRepo     TaskStore
	categoryRepo CategoryStore
	seeder       *SeedingService
	logger       zerolog.Logger
	now          func() time.Time
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo TaskStore, categoryRepo CategoryStore, seeder *SeedingService, logger zerolog.Logger) *TaskService {
	return &TaskService{
		taskRepo:     taskRepo,
		categoryRepo: categoryRepo,
		seeder:       seeder,
		logger:       logger,
		now:          time.Now,
	}
}

// ListTasks returns the user's tasks, seeding the starter checklist on first use
func (s *TaskService) ListTasks(ctx context.Context, userID uuid.UUID) ([]*models.Task, error) {
	s.seeder.EnsureSeeded(ctx, userID)
	return s.taskRepo.List(ctx, userID)
}

func (s *TaskService) checkCategory(ctx context.Context, id uuid.UUID) error {
	ok, err := s.categoryRepo.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}
	if !ok {
		return apperrors.NewValidationError("categoryId", "Category does not exist")
	}
	return nil
}

// CreateTask adds a task for the user
func (s *TaskService) CreateTask(ctx context.Context, userID uuid.UUID, req *dto.CreateTaskRequest) (*models.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title", "Title is required")
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	task := &models.Task{
		UserID:      userID,
		CategoryID:  req.CategoryID,
		Title:       title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    models.TaskPriority(req.Priority),
		AssignedTo:  models.Assignee(req.AssignedTo),
		Notes:       req.Notes,
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.AssignedTo == "" {
		task.AssignedTo = models.AssignedStudent
	}
	status := models.TaskPending
	if req.Status != "" {
		status = models.TaskStatus(req.Status)
	}
	task.SetStatus(status, s.now())

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask applies a partial update to a task the user owns
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID uuid.UUID, upd dto.TaskUpdate) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if upd.CategoryID != nil && *upd.CategoryID != task.CategoryID {
		if err := s.checkCategory(ctx, *upd.CategoryID); err != nil {
			return nil, err
		}
		task.CategoryID = *upd.CategoryID
	}
	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title", "Title cannot be empty")
		}
		task.Title = title
	}
	if upd.Description != nil {
		task.Description = upd.Description
	}
	if upd.DueDate != nil {
		task.DueDate = upd.DueDate
	}
	if upd.Priority != nil {
		task.Priority = *upd.Priority
	}
	if upd.Notes != nil {
		task.Notes = upd.Notes
	}
	if upd.AssignedTo != nil {
		task.AssignedTo = *upd.AssignedTo
	}
	if upd.Status != nil {
		task.SetStatus(*upd.Status, s.now())
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes a task the user owns
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	return s.taskRepo.Delete(ctx, userID, taskID)
}

// GetStats aggregates the user's tasks at the current time
func (s *TaskService) GetStats(ctx context.Context, userID uuid.UUID) (*models.TaskStats, error) {
	return s.taskRepo.Stats(ctx, userID, s.now())
}

// Templates lists the starter checklist catalog
func (s *TaskService) Templates() []dto.TaskTemplateResponse {
	catalog := tasktemplates.Catalog()
	out := make([]dto.TaskTemplateResponse, 0, len(catalog))
	for _, t := range catalog {
		out = append(out, dto.TaskTemplateResponse{
			Category:    t.Category,
			Title:       t.Title,
			Description: t.Description,
			Notes:       t.Notes,
			Priority:    string(t.Priority),
			AssignedTo:  string(t.AssignedTo),
			DueInDays:   t.DueInDays,
		})
	}
	return out
}

// SeedTasks seeds the caller's checklist on demand. A userId other than the caller is refused.
func (s *TaskService) SeedTasks(ctx context.Context, callerID uuid.UUID, req *dto.SeedTasksRequest) (*dto.SeedTasksResponse, error) {
	if req != nil && req.UserID != nil && *req.UserID != callerID {
		return nil, apperrors.NewForbiddenError("Tasks can only be seeded for the signed-in user")
	}

	seeded, err := s.seeder.SeedDefaultTasksForUser(ctx, callerID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.List(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return &dto.SeedTasksResponse{Tasks: tasks, Seeded: seeded}, nil
}
