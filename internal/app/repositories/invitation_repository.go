package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
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

var invitationColumns = []string{
	"id", "parent_id", "student_email", "student_first_name", "student_last_name",
	"invitation_token", "status", "expires_at", "accepted_at", "created_at",
}

const pendingInvitationIndex = "student_invitations_pending_unique"

// InvitationRepository handles student invitation database operations
type InvitationRepository struct {
	db db.DB
	sb squirrel.StatementBuilderType
}

// NewInvitationRepository creates a new InvitationRepository
func NewInvitationRepository(conn db.DB) *InvitationRepository {
	return &InvitationRepository{
		db: conn,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create stores a pending invitation. A stale pending invitation for the same
// parent and email is marked expired first so the partial unique index only
// rejects live duplicates.
func (r *InvitationRepository) Create(ctx context.Context, inv *models.StudentInvitation) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}
	inv.StudentEmail = strings.ToLower(strings.TrimSpace(inv.StudentEmail))
	inv.Status = models.InvitationPending

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Update("student_invitations").
			Set("status", models.InvitationExpired).
			Where(squirrel.Eq{
				"parent_id":            inv.ParentID,
				"lower(student_email)": inv.StudentEmail,
				"status":               models.InvitationPending,
			}).
			Where(squirrel.LtOrEq{"expires_at": inv.CreatedAt}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build expire stale invitation query: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("error expiring stale invitation: %w", err)
		}

		sql, args, err = r.sb.Insert("student_invitations").
			Columns(invitationColumns...).
			Values(inv.ID, inv.ParentID, inv.StudentEmail, inv.StudentFirstName, inv.StudentLastName,
				inv.Token, inv.Status, inv.ExpiresAt, inv.AcceptedAt, inv.CreatedAt).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create invitation query: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, pendingInvitationIndex) {
			return apperrors.ErrDuplicateInvitation
		}
		return fmt.Errorf("error creating invitation: %w", err)
	}
	return nil
}

// GetByToken retrieves an invitation by its token
func (r *InvitationRepository) GetByToken(ctx context.Context, token string) (*models.StudentInvitation, error) {
	sql, args, err := r.sb.Select(invitationColumns...).From("student_invitations").
		Where(squirrel.Eq{"invitation_token": token}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get invitation query: %w", err)
	}

	var inv models.StudentInvitation
	if err := pgxscan.Get(ctx, r.db, &inv, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperrors.ErrInvitationNotFound
		}
		return nil, fmt.Errorf("error retrieving invitation: %w", err)
	}
	return &inv, nil
}

// HasPendingFor reports whether the parent has a live pending invitation for email
func (r *InvitationRepository) HasPendingFor(ctx context.Context, parentID uuid.UUID, email string, now time.Time) (bool, error) {
	sql, args, err := r.sb.Select("1").From("student_invitations").
		Where(squirrel.Eq{
			"parent_id":            parentID,
			"lower(student_email)": strings.ToLower(strings.TrimSpace(email)),
			"status":               models.InvitationPending,
		}).
		Where(squirrel.Gt{"expires_at": now}).
		Prefix("SELECT EXISTS (").Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build pending invitation query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking pending invitation: %w", err)
	}
	return exists, nil
}

// AcceptAndCreateStudent consumes the invitation and provisions the student
// with its parent link in one transaction. Losing the conditional update to a
// concurrent acceptance yields ErrInvitationUsed.
func (r *InvitationRepository) AcceptAndCreateStudent(ctx context.Context, token string, student *models.User, now time.Time) (*models.StudentInvitation, error) {
	var accepted models.StudentInvitation

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Update("student_invitations").
			Set("status", models.InvitationAccepted).
			Set("accepted_at", now).
			Where(squirrel.Eq{"invitation_token": token, "status": models.InvitationPending}).
			Where(squirrel.Gt{"expires_at": now}).
			Suffix("RETURNING " + strings.Join(invitationColumns, ", ")).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build accept invitation query: %w", err)
		}
		if err := pgxscan.Get(ctx, tx, &accepted, sql, args...); err != nil {
			if pgxscan.NotFound(err) {
				return apperrors.ErrInvitationUsed
			}
			return fmt.Errorf("error accepting invitation: %w", err)
		}

		if err := insertUser(ctx, tx, r.sb, student); err != nil {
			if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
				return apperrors.ErrUserExists
			}
			return err
		}

		return insertRelation(ctx, tx, r.sb, accepted.ParentID, student.ID)
	})
	if err != nil {
		return nil, err
	}
	return &accepted, nil
}

// MarkExpired flips pending invitations past their deadline to expired
func (r *InvitationRepository) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	sql, args, err := r.sb.Update("student_invitations").
		Set("status", models.InvitationExpired).
		Where(squirrel.Eq{"status": models.InvitationPending}).
		Where(squirrel.LtOrEq{"expires_at": now}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build expire invitations query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error expiring invitations: %w", err)
	}
	return tag.RowsAffected(), nil
}
