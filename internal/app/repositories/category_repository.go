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

var categoryColumns = []string{"id", "name", "description", "color", "icon", "sort_order", "created_at"}

// CategoryRepository reads the static category reference data
type CategoryRepository struct {
	db db.DB
	sb squirrel.StatementBuilderType
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(conn db.DB) *CategoryRepository {
	return &CategoryRepository{
		db: conn,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// List returns all categories ordered for display
func (r *CategoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	sql, args, err := r.sb.Select(categoryColumns...).
		From("categories").
		OrderBy("sort_order ASC", "name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list categories query: %w", err)
	}

	var categories []*models.Category
	if err := pgxscan.Select(ctx, r.db, &categories, sql, args...); err != nil {
		return nil, fmt.Errorf("error listing categories: %w", err)
	}
	for _, c := range categories {
		c.Normalize()
	}
	return categories, nil
}

// Exists reports whether a category with the id exists
func (r *CategoryRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	sql, args, err := r.sb.Select("1").From("categories").
		Where(squirrel.Eq{"id": id}).
		Prefix("SELECT EXISTS (").Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build category exists query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking category: %w", err)
	}
	return exists, nil
}

// EnsureDefaults inserts every category whose name is not present yet and
// returns how many rows were added.
func (r *CategoryRepository) EnsureDefaults(ctx context.Context, categories []models.Category) (int, error) {
	inserted := 0
	for _, c := range categories {
		c.Normalize()
		id := c.ID
		if id == uuid.Nil {
			id = uuid.New()
		}

		sql, args, err := r.sb.Insert("categories").
			Columns(categoryColumns...).
			Values(id, c.Name, c.Description, c.Color, c.Icon, c.SortOrder, time.Now().UTC()).
			Suffix("ON CONFLICT (name) DO NOTHING").
			ToSql()
		if err != nil {
			return inserted, fmt.Errorf("failed to build insert category query: %w", err)
		}

		tag, err := r.db.Exec(ctx, sql, args...)
		if err != nil {
			return inserted, fmt.Errorf("error inserting category %q: %w", c.Name, err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// NameToIDMap maps category names to their ids
func (r *CategoryRepository) NameToIDMap(ctx context.Context) (map[string]uuid.UUID, error) {
	sql, args, err := r.sb.Select("id", "name").From("categories").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build category map query: %w", err)
	}

	var rows []struct {
		ID   uuid.UUID `db:"id"`
		Name string    `db:"name"`
	}
	if err := pgxscan.Select(ctx, r.db, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("error loading categories: %w", err)
	}

	out := make(map[string]uuid.UUID, len(rows))
	for _, row := range rows {
		out[row.Name] = row.ID
	}
	return out, nil
}
