package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/collegeprep/organizer/internal/app/models"
	"github.com/collegeprep/organizer/internal/db"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
)

// RelationRepository reads parent/student links
type RelationRepository struct {
	db db.DB
	sb squirrel.StatementBuilderType
}

// NewRelationRepository creates a new RelationRepository
func NewRelationRepository(conn db.DB) *RelationRepository {
	return &RelationRepository{
		db: conn,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListStudents returns the students linked to a parent, oldest link first
func (r *RelationRepository) ListStudents(ctx context.Context, parentID uuid.UUID) ([]*models.User, error) {
	cols := make([]string, 0, len(userColumns))
	for _, c := range userColumns {
		cols = append(cols, "u."+c)
	}

	sql, args, err := r.sb.Select(cols...).
		From("parent_student_relations psr").
		Join("users u ON u.id = psr.student_id").
		Where(squirrel.Eq{"psr.parent_id": parentID}).
		OrderBy("psr.created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list students query: %w", err)
	}

	students := []*models.User{}
	if err := pgxscan.Select(ctx, r.db, &students, sql, args...); err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	return students, nil
}

func insertRelation(ctx context.Context, q db.DB, sb squirrel.StatementBuilderType, parentID, studentID uuid.UUID) error {
	sql, args, err := sb.Insert("parent_student_relations").
		Columns("id", "parent_id", "student_id", "created_at").
		Values(uuid.New(), parentID, studentID, time.Now().UTC()).
		Suffix("ON CONFLICT (parent_id, student_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create relation query: %w", err)
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error creating relation: %w", err)
	}
	return nil
}
