package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is a paper the household has to collect or submit
type Document struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	UserID      uuid.UUID      `json:"userId" db:"user_id"`
	TaskID      *uuid.UUID     `json:"taskId,omitempty" db:"task_id"`
	Name        string         `json:"name" db:"name" example:"Birth certificate"`
	Description *string        `json:"description,omitempty" db:"description"`
	Type        *string        `json:"type,omitempty" db:"type" example:"identity"`
	Status      DocumentStatus `json:"status" db:"status" example:"pending"`
	DueDate     *time.Time     `json:"dueDate,omitempty" db:"due_date"`
	Notes       *string        `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time      `json:"updatedAt" db:"updated_at"`
}
