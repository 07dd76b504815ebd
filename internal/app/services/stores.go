package services

import (
	"context"
	"time"

	"github.com/collegeprep/organizer/internal/app/models"
	"github.com/google/uuid"
)

// The interfaces below are the slices of the repositories each service needs.
// The concrete types in the repositories package satisfy them.

// UserStore persists users
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.User, error)
}

// TokenStore persists refresh tokens
type TokenStore interface {
	CreateToken(ctx context.Context, token string, userID uuid.UUID, expiryDate time.Time) error
	GetTokenByValue(ctx context.Context, token string) (uuid.UUID, time.Time, error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

// CategoryStore reads categories
type CategoryStore interface {
	List(ctx context.Context) ([]*models.Category, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	NameToIDMap(ctx context.Context) (map[string]uuid.UUID, error)
}

// TaskStore persists tasks
type TaskStore interface {
	List(ctx context.Context, userID uuid.UUID) ([]*models.Task, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	Stats(ctx context.Context, userID uuid.UUID, now time.Time) (*models.TaskStats, error)
	SeedForUser(ctx context.Context, userID uuid.UUID, drafts []models.Task) (bool, error)
}

// DocumentStore persists documents
type DocumentStore interface {
	List(ctx context.Context, userID uuid.UUID) ([]*models.Document, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Document, error)
	Create(ctx context.Context, doc *models.Document) error
	Update(ctx context.Context, doc *models.Document) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// SubscriptionStore reads entitlement state
type SubscriptionStore interface {
	HasActive(ctx context.Context, userID uuid.UUID, now time.Time) (bool, error)
}

// PaymentStore records payments
type PaymentStore interface {
	Record(ctx context.Context, payment *models.Payment) (bool, error)
	RecordSuccess(ctx context.Context, payment *models.Payment, sub *models.Subscription) (bool, error)
}

// InvitationStore persists student invitations
type InvitationStore interface {
	Create(ctx context.Context, inv *models.StudentInvitation) error
	GetByToken(ctx context.Context, token string) (*models.StudentInvitation, error)
	HasPendingFor(ctx context.Context, parentID uuid.UUID, email string, now time.Time) (bool, error)
	AcceptAndCreateStudent(ctx context.Context, token string, student *models.User, now time.Time) (*models.StudentInvitation, error)
}

// RelationStore reads parent/student links
type RelationStore interface {
	ListStudents(ctx context.Context, parentID uuid.UUID) ([]*models.User, error)
}
