package services

import (
	"context"
	"errors"
	"strings"

	"github.com/collegeprep/organizer/internal/app/models"
	"github.com/collegeprep/organizer/internal/app/models/dto"
	"github.com/collegeprep/organizer/internal/pkg/apperrors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DocumentService manages the papers a household tracks
type DocumentService struct {
	documentRepo DocumentStore
	taskRepo     TaskStore
	logger       zerolog.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(documentRepo DocumentStore, taskRepo TaskStore, logger zerolog.Logger) *DocumentService {
	return &DocumentService{
		documentRepo: documentRepo,
		taskRepo:     taskRepo,
		logger:       logger,
	}
}

// checkTask ensures a linked task belongs to the same user
func (s *DocumentService) checkTask(ctx context.Context, userID uuid.UUID, taskID *uuid.UUID) error {
	if taskID == nil {
		return nil
	}
	if _, err := s.taskRepo.GetByID(ctx, userID, *taskID); err != nil {
		if errors.Is(err, apperrors.ErrTaskNotFound) {
			return apperrors.NewValidationError("taskId", "Task does not exist")
		}
		return err
	}
	return nil
}

// ListDocuments returns the user's documents
func (s *DocumentService) ListDocuments(ctx context.Context, userID uuid.UUID) ([]*models.Document, error) {
	return s.documentRepo.List(ctx, userID)
}

// CreateDocument adds a document for the user
func (s *DocumentService) CreateDocument(ctx context.Context, userID uuid.UUID, req *dto.CreateDocumentRequest) (*models.Document, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "Name is required")
	}
	if err := s.checkTask(ctx, userID, req.TaskID); err != nil {
		return nil, err
	}

	doc := &models.Document{
		UserID:      userID,
		TaskID:      req.TaskID,
		Name:        name,
		Description: req.Description,
		Type:        req.Type,
		Status:      models.DocumentStatus(req.Status),
		DueDate:     req.DueDate,
		Notes:       req.Notes,
	}
	if err := s.documentRepo.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// UpdateDocument applies a partial update to a document the user owns
func (s *DocumentService) UpdateDocument(ctx context.Context, userID, docID uuid.UUID, req *dto.UpdateDocumentRequest) (*models.Document, error) {
	doc, err := s.documentRepo.GetByID(ctx, userID, docID)
	if err != nil {
		return nil, err
	}

	if req.TaskID != nil {
		if err := s.checkTask(ctx, userID, req.TaskID); err != nil {
			return nil, err
		}
		doc.TaskID = req.TaskID
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name", "Name cannot be empty")
		}
		doc.Name = name
	}
	if req.Description != nil {
		doc.Description = req.Description
	}
	if req.Type != nil {
		doc.Type = req.Type
	}
	if req.Status != nil {
		doc.Status = models.DocumentStatus(*req.Status)
	}
	if req.DueDate != nil {
		doc.DueDate = req.DueDate
	}
	if req.Notes != nil {
		doc.Notes = req.Notes
	}

	if err := s.documentRepo.Update(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// DeleteDocument removes a document the user owns
func (s *DocumentService) DeleteDocument(ctx context.Context, userID, docID uuid.UUID) error {
	return s.documentRepo.Delete(ctx, userID, docID)
}
