package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/collegeprep/organizer/internal/app/models"
	"github.com/collegeprep/organizer/internal/db"
	"github.com/collegeprep/organizer/internal/pkg/apperrors"
	"github.com/collegeprep/organizer/internal/pkg/dberrors"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var taskColumns = []string{
	"id", "user_id", "category_id", "title", "description", "due_date", "priority",
	"status", "completed_at", "notes", "assigned_to", "created_at", "updated_at",
}

// TaskRepository handles task database operations
type TaskRepository struct {
	db db.DB
	sb squirrel.StatementBuilderType
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(conn db.DB) *TaskRepository {
	return &TaskRepository{
		db: conn,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *TaskRepository) selectWithCategory() squirrel.SelectBuilder {
	cols := make([]string, 0, len(taskColumns)+1)
	for _, c := range taskColumns {
		cols = append(cols, "t."+c)
	}
	cols = append(cols, "c.name AS category_name")
	return r.sb.Select(cols...).
		From("tasks t").
		LeftJoin("categories c ON c.id = t.category_id")
}

// List returns the user's tasks newest first
func (r *TaskRepository) List(ctx context.Context, userID uuid.UUID) ([]*models.Task, error) {
	sql, args, err := r.selectWithCategory().
		Where(squirrel.Eq{"t.user_id": userID}).
		OrderBy("t.created_at DESC", "t.due_date ASC NULLS LAST").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list tasks query: %w", err)
	}

	tasks := []*models.Task{}
	if err := pgxscan.Select(ctx, r.db, &tasks, sql, args...); err != nil {
		return nil, fmt.Errorf("error listing tasks: %w", err)
	}
	return tasks, nil
}

// GetByID retrieves a task owned by userID
func (r *TaskRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Task, error) {
	sql, args, err := r.selectWithCategory().
		Where(squirrel.Eq{"t.id": id, "t.user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get task query: %w", err)
	}

	var task models.Task
	if err := pgxscan.Get(ctx, r.db, &task, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("error retrieving task: %w", err)
	}
	return &task, nil
}

// Create inserts a task, filling id and timestamps when unset
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	prepareTask(task, time.Now().UTC())

	sql, args, err := r.sb.Insert("tasks").
		Columns(taskColumns...).
		Values(taskValues(task)...).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create task query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error creating task: %w", err)
	}
	return nil
}

// Update writes the mutable fields of a task owned by task.UserID
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now().UTC()

	sql, args, err := r.sb.Update("tasks").
		SetMap(map[string]any{
			"category_id":  task.CategoryID,
			"title":        task.Title,
			"description":  task.Description,
			"due_date":     task.DueDate,
			"priority":     task.Priority,
			"status":       task.Status,
			"completed_at": task.CompletedAt,
			"notes":        task.Notes,
			"assigned_to":  task.AssignedTo,
			"updated_at":   task.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": task.ID, "user_id": task.UserID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update task query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTaskNotFound
	}
	return nil
}

// Delete removes a task owned by userID
func (r *TaskRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	sql, args, err := r.sb.Delete("tasks").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete task query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTaskNotFound
	}
	return nil
}

// CountByUser returns how many tasks the user owns
func (r *TaskRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From("tasks").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count tasks query: %w", err)
	}

	var count int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting tasks: %w", err)
	}
	return count, nil
}

// Stats aggregates the user's tasks relative to now. Tasks without a due date
// are neither overdue nor upcoming.
func (r *TaskRepository) Stats(ctx context.Context, userID uuid.UUID, now time.Time) (*models.TaskStats, error) {
	sql, args, err := r.sb.Select("COUNT(*) AS total_tasks").
		Column("COUNT(*) FILTER (WHERE status = 'completed') AS completed_tasks").
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE status <> 'completed' AND due_date < ?) AS overdue_tasks", now)).
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE status <> 'completed' AND due_date >= ?) AS upcoming_tasks", now)).
		From("tasks").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build task stats query: %w", err)
	}

	var stats models.TaskStats
	if err := pgxscan.Get(ctx, r.db, &stats, sql, args...); err != nil {
		return nil, fmt.Errorf("error computing task stats: %w", err)
	}
	return &stats, nil
}

// SeedForUser inserts the seed marker and the drafts in one transaction. It
// returns false without inserting anything when the user was already seeded.
func (r *TaskRepository) SeedForUser(ctx context.Context, userID uuid.UUID, drafts []models.Task) (bool, error) {
	seeded := false
	now := time.Now().UTC()

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Insert("task_seed_markers").
			Columns("user_id", "seeded_at").
			Values(userID, now).
			Suffix("ON CONFLICT (user_id) DO NOTHING").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build seed marker query: %w", err)
		}

		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("error inserting seed marker: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}

		if len(drafts) > 0 {
			insert := r.sb.Insert("tasks").Columns(taskColumns...)
			for i := range drafts {
				drafts[i].UserID = userID
				prepareTask(&drafts[i], now)
				insert = insert.Values(taskValues(&drafts[i])...)
			}
			sql, args, err = insert.ToSql()
			if err != nil {
				return fmt.Errorf("failed to build seed tasks query: %w", err)
			}
			if _, err := tx.Exec(ctx, sql, args...); err != nil {
				return fmt.Errorf("error inserting seed tasks: %w", err)
			}
		}

		seeded = true
		return nil
	})
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return seeded, nil
}

func prepareTask(task *models.Task, now time.Time) {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = task.CreatedAt
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.Status == "" {
		task.Status = models.TaskPending
	}
	if task.AssignedTo == "" {
		task.AssignedTo = models.AssignedStudent
	}
}

func taskValues(t *models.Task) []any {
	return []any{
		t.ID, t.UserID, t.CategoryID, t.Title, t.Description, t.DueDate, t.Priority,
		t.Status, t.CompletedAt, t.Notes, t.AssignedTo, t.CreatedAt, t.UpdatedAt,
	}
}
