package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/collegeprep/organizer/internal/app/models"
	"github.com/collegeprep/organizer/internal/db"
	"github.com/collegeprep/organizer/internal/pkg/apperrors"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
)

var documentColumns = []string{
	"id", "user_id", "task_id", "name", "description", "type", "status",
	"due_date", "notes", "created_at", "updated_at",
}

// DocumentRepository handles document database operations
type DocumentRepository struct {
	db db.DB
	sb squirrel.StatementBuilderType
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(conn db.DB) *DocumentRepository {
	return &DocumentRepository{
		db: conn,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// List returns the user's documents newest first
func (r *DocumentRepository) List(ctx context.Context, userID uuid.UUID) ([]*models.Document, error) {
	sql, args, err := r.sb.Select(documentColumns...).
		From("documents").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list documents query: %w", err)
	}

	documents := []*models.Document{}
	if err := pgxscan.Select(ctx, r.db, &documents, sql, args...); err != nil {
		return nil, fmt.Errorf("error listing documents: %w", err)
	}
	return documents, nil
}

// GetByID retrieves a document owned by userID
func (r *DocumentRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Document, error) {
	sql, args, err := r.sb.Select(documentColumns...).
		From("documents").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get document query: %w", err)
	}

	var doc models.Document
	if err := pgxscan.Get(ctx, r.db, &doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperrors.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("error retrieving document: %w", err)
	}
	return &doc, nil
}

// Create inserts a document, filling id and timestamps when unset
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	doc.UpdatedAt = doc.CreatedAt
	if doc.Status == "" {
		doc.Status = models.DocumentPending
	}

	sql, args, err := r.sb.Insert("documents").
		Columns(documentColumns...).
		Values(doc.ID, doc.UserID, doc.TaskID, doc.Name, doc.Description, doc.Type, doc.Status,
			doc.DueDate, doc.Notes, doc.CreatedAt, doc.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create document query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error creating document: %w", err)
	}
	return nil
}

// Update writes the mutable fields of a document owned by doc.UserID
func (r *DocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	doc.UpdatedAt = time.Now().UTC()

	sql, args, err := r.sb.Update("documents").
		SetMap(map[string]any{
			"task_id":     doc.TaskID,
			"name":        doc.Name,
			"description": doc.Description,
			"type":        doc.Type,
			"status":      doc.Status,
			"due_date":    doc.DueDate,
			"notes":       doc.Notes,
			"updated_at":  doc.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": doc.ID, "user_id": doc.UserID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update document query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrDocumentNotFound
	}
	return nil
}

// Delete removes a document owned by userID
func (r *DocumentRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	sql, args, err := r.sb.Delete("documents").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete document query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrDocumentNotFound
	}
	return nil
}
