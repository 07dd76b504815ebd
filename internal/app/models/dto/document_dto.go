package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateDocumentRequest is the body of POST /documents
type CreateDocumentRequest struct {
	TaskID      *uuid.UUID `json:"taskId"`
	Name        string     `json:"name" binding:"required,notblank,max=255" example:"Immunization record"`
	Description *string    `json:"description"`
	Type        *string    `json:"type" binding:"omitempty,max=100" example:"health"`
	Status      string     `json:"status" binding:"omitempty,oneof=pending received submitted" example:"pending"`
	DueDate     *time.Time `json:"dueDate"`
	Notes       *string    `json:"notes"`
}

// UpdateDocumentRequest is a partial update; nil fields are left unchanged
type UpdateDocumentRequest struct {
	TaskID      *uuid.UUID `json:"taskId"`
	Name        *string    `json:"name" binding:"omitempty,notblank,max=255"`
	Description *string    `json:"description"`
	Type        *string    `json:"type" binding:"omitempty,max=100"`
	Status      *string    `json:"status" binding:"omitempty,oneof=pending received submitted"`
	DueDate     *time.Time `json:"dueDate"`
	Notes       *string    `json:"notes"`
}
