package repositories

import (
	"github.com/collegeprep/organizer/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         *UserRepository
	CategoryRepository     *CategoryRepository
	TaskRepository         *TaskRepository
	DocumentRepository     *DocumentRepository
	SubscriptionRepository *SubscriptionRepository
	PaymentRepository      *PaymentRepository
	InvitationRepository   *InvitationRepository
	RelationRepository     *RelationRepository
	TokenRepository        *TokenRepository
}

// NewRepositories initializes all repositories
func NewRepositories(conn db.DB) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(conn),
		CategoryRepository:     NewCategoryRepository(conn),
		TaskRepository:         NewTaskRepository(conn),
		DocumentRepository:     NewDocumentRepository(conn),
		SubscriptionRepository: NewSubscriptionRepository(conn),
		PaymentRepository:      NewPaymentRepository(conn),
		InvitationRepository:   NewInvitationRepository(conn),
		RelationRepository:     NewRelationRepository(conn),
		TokenRepository:        NewTokenRepository(conn),
	}
}
