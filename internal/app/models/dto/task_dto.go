package dto

import (
	"time"

	"github.com/collegeprep/organizer/internal/app/models"
	"github.com/google/uuid"
)

// CreateTaskRequest is the body of POST /tasks
type CreateTaskRequest struct {
	CategoryID  uuid.UUID  `json:"categoryId" binding:"required"`
	Title       string     `json:"title" binding:"required,notblank,max=200" example:"Visit campus"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"dueDate" example:"2026-03-01T23:59:00Z"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high urgent" example:"medium"`
	Status      string     `json:"status" binding:"omitempty,oneof=pending in_progress completed" example:"pending"`
	Notes       *string    `json:"notes"`
	AssignedTo  string     `json:"assignedTo" binding:"omitempty,oneof=student parent" example:"student"`
}

// UpdateTaskRequest is a partial update; nil fields are left unchanged
type UpdateTaskRequest struct {
	CategoryID  *uuid.UUID `json:"categoryId"`
	Title       *string    `json:"title" binding:"omitempty,notblank,max=200"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Priority    *string    `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Status      *string    `json:"status" binding:"omitempty,oneof=pending in_progress completed"`
	Notes       *string    `json:"notes"`
	AssignedTo  *string    `json:"assignedTo" binding:"omitempty,oneof=student parent"`
}

// TaskUpdate carries validated partial changes into the service layer
type TaskUpdate struct {
	CategoryID  *uuid.UUID
	Title       *string
	Description *string
	DueDate     *time.Time
	Priority    *models.TaskPriority
	Status      *models.TaskStatus
	Notes       *string
	AssignedTo  *models.Assignee
}

// ToUpdate converts the request into a TaskUpdate
func (r *UpdateTaskRequest) ToUpdate() TaskUpdate {
	u := TaskUpdate{
		CategoryID:  r.CategoryID,
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		Notes:       r.Notes,
	}
	if r.Priority != nil {
		p := models.TaskPriority(*r.Priority)
		u.Priority = &p
	}
	if r.Status != nil {
		s := models.TaskStatus(*r.Status)
		u.Status = &s
	}
	if r.AssignedTo != nil {
		a := models.Assignee(*r.AssignedTo)
		u.AssignedTo = &a
	}
	return u
}

// SeedTasksRequest is the body of POST /tasks/seed; UserID must match the caller when present
type SeedTasksRequest struct {
	UserID *uuid.UUID `json:"userId"`
}

// SeedTasksResponse returns the caller's tasks after seeding
type SeedTasksResponse struct {
	Tasks  []*models.Task `json:"tasks"`
	Seeded int            `json:"seeded"`
}

// TaskTemplateResponse describes a catalog entry
type TaskTemplateResponse struct {
	Category    string `json:"category" example:"Financial Aid & FAFSA"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
	Priority    string `json:"priority" example:"urgent"`
	AssignedTo  string `json:"assignedTo" example:"parent"`
	DueInDays   int    `json:"dueInDays" example:"61"`
}
