package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/collegeprep/organizer/internal/app/models"
	"github.com/collegeprep/organizer/internal/app/repositories"
	"github.com/collegeprep/organizer/internal/pkg/apperrors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var invitationRowColumns = []string{
	"id", "parent_id", "student_email", "student_first_name", "student_last_name",
	"invitation_token", "status", "expires_at", "accepted_at", "created_at",
}

func TestInvitationRepository_Create(t *testing.T) {
	newInvitation := func() *models.StudentInvitation {
		return &models.StudentInvitation{
			ParentID:         uuid.New(),
			StudentEmail:     "Kid@Example.com",
			StudentFirstName: "Kid",
			StudentLastName:  "Doe",
			Token:            uuid.NewString(),
			ExpiresAt:        time.Now().Add(7 * 24 * time.Hour),
		}
	}

	t.Run("Should expire stale duplicates then insert", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := repositories.NewInvitationRepository(mockPool)
		inv := newInvitation()
		mockPool.ExpectBegin()
		mockPool.ExpectExec("UPDATE student_invitations SET status = \\$1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mockPool.ExpectExec("INSERT INTO student_invitations").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockPool.ExpectCommit()
		err = repo.Create(context.Background(), inv)
		require.NoError(t, err)
		assert.Equal(t, "kid@example.com", inv.StudentEmail)
		assert.Equal(t, models.InvitationPending, inv.Status)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
	t.Run("Should map the pending index violation to ErrDuplicateInvitation", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := repositories.NewInvitationRepository(mockPool)
		mockPool.ExpectBegin()
		mockPool.ExpectExec("UPDATE student_invitations").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mockPool.ExpectExec("INSERT INTO student_invitations").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "student_invitations_pending_unique"})
		mockPool.ExpectRollback()
		err = repo.Create(context.Background(), newInvitation())
		assert.ErrorIs(t, err, apperrors.ErrDuplicateInvitation)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestInvitationRepository_GetByToken(t *testing.T) {
	t.Run("Should return ErrInvitationNotFound for an unknown token", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := repositories.NewInvitationRepository(mockPool)
		mockPool.ExpectQuery("SELECT (.+) FROM student_invitations WHERE invitation_token = \\$1").
			WithArgs("nope").
			WillReturnError(pgx.ErrNoRows)
		inv, err := repo.GetByToken(context.Background(), "nope")
		assert.Nil(t, inv)
		assert.ErrorIs(t, err, apperrors.ErrInvitationNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestInvitationRepository_AcceptAndCreateStudent(t *testing.T) {
	t.Run("Should flip the invitation and create the student with its relation", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := repositories.NewInvitationRepository(mockPool)
		now := time.Now()
		parentID := uuid.New()
		rows := mockPool.NewRows(invitationRowColumns).
			AddRow(uuid.New(), parentID, "kid@example.com", "Kid", "Doe", "tok", models.InvitationAccepted,
				now.Add(time.Hour), &now, now.Add(-time.Hour))
		mockPool.ExpectBegin()
		mockPool.ExpectQuery("UPDATE student_invitations SET status = \\$1, accepted_at = \\$2 (.+) RETURNING").
			WithArgs(models.InvitationAccepted, now, "tok", models.InvitationPending, now).
			WillReturnRows(rows)
		mockPool.ExpectExec("INSERT INTO users").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockPool.ExpectExec("INSERT INTO parent_student_relations").
			WithArgs(pgxmock.AnyArg(), parentID, pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockPool.ExpectCommit()
		student := &models.User{Email: "kid@example.com", PasswordHash: "h", EmailVerified: true}
		inv, err := repo.AcceptAndCreateStudent(context.Background(), "tok", student, now)
		require.NoError(t, err)
		assert.Equal(t, models.InvitationAccepted, inv.Status)
		assert.Equal(t, parentID, inv.ParentID)
		assert.NotEqual(t, uuid.Nil, student.ID)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
	t.Run("Should return ErrInvitationUsed when the conditional update matches nothing", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := repositories.NewInvitationRepository(mockPool)
		mockPool.ExpectBegin()
		mockPool.ExpectQuery("UPDATE student_invitations").
			WillReturnError(pgx.ErrNoRows)
		mockPool.ExpectRollback()
		inv, err := repo.AcceptAndCreateStudent(context.Background(), "tok", &models.User{Email: "kid@example.com"}, time.Now())
		assert.Nil(t, inv)
		assert.ErrorIs(t, err, apperrors.ErrInvitationUsed)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
	t.Run("Should return ErrUserExists when the student email is taken", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := repositories.NewInvitationRepository(mockPool)
		now := time.Now()
		rows := mockPool.NewRows(invitationRowColumns).
			AddRow(uuid.New(), uuid.New(), "kid@example.com", "Kid", "Doe", "tok", models.InvitationAccepted,
				now.Add(time.Hour), &now, now)
		mockPool.ExpectBegin()
		mockPool.ExpectQuery("UPDATE student_invitations").WillReturnRows(rows)
		mockPool.ExpectExec("INSERT INTO users").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
		mockPool.ExpectRollback()
		_, err = repo.AcceptAndCreateStudent(context.Background(), "tok", &models.User{Email: "kid@example.com"}, now)
		assert.ErrorIs(t, err, apperrors.ErrUserExists)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestInvitationRepository_MarkExpired(t *testing.T) {
	t.Run("Should report how many invitations were expired", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := repositories.NewInvitationRepository(mockPool)
		now := time.Now()
		mockPool.ExpectExec("UPDATE student_invitations SET status = \\$1 WHERE status = \\$2 AND expires_at <= \\$3").
			WithArgs(models.InvitationExpired, models.InvitationPending, now).
			WillReturnResult(pgxmock.NewResult("UPDATE", 3))
		n, err := repo.MarkExpired(context.Background(), now)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
