package models

import (
	"time"

	"github.com/google/uuid"
)

// Task is a single college-prep to-do owned by one user
type Task struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	UserID       uuid.UUID    `json:"userId" db:"user_id"`
	CategoryID   uuid.UUID    `json:"categoryId" db:"category_id"`
	CategoryName *string      `json:"categoryName,omitempty" db:"category_name"` // filled by listing joins
	Title        string       `json:"title" db:"title" example:"Complete FAFSA Application"`
	Description  *string      `json:"description,omitempty" db:"description"`
	DueDate      *time.Time   `json:"dueDate,omitempty" db:"due_date"`
	Priority     TaskPriority `json:"priority" db:"priority" example:"urgent"`
	Status       TaskStatus   `json:"status" db:"status" example:"pending"`
	CompletedAt  *time.Time   `json:"completedAt,omitempty" db:"completed_at"`
	Notes        *string      `json:"notes,omitempty" db:"notes"`
	AssignedTo   Assignee     `json:"assignedTo" db:"assigned_to" example:"student"`
	CreatedAt    time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time    `json:"updatedAt" db:"updated_at"`
}

// SetStatus changes status and keeps CompletedAt set iff the task is completed
func (t *Task) SetStatus(status TaskStatus, now time.Time) {
	if status == TaskCompleted {
		if t.Status != TaskCompleted || t.CompletedAt == nil {
			completed := now
			t.CompletedAt = &completed
		}
	} else {
		t.CompletedAt = nil
	}
	t.Status = status
}

// TaskStats aggregates a user's tasks relative to a point in time
type TaskStats struct {
	TotalTasks     int `json:"totalTasks" db:"total_tasks"`
	CompletedTasks int `json:"completedTasks" db:"completed_tasks"`
	OverdueTasks   int `json:"overdueTasks" db:"overdue_tasks"`
	UpcomingTasks  int `json:"upcomingTasks" db:"upcoming_tasks"`
}
