package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/collegeprep/organizer/internal/app/models"
	"github.com/collegeprep/organizer/internal/app/models/dto"
	"github.com/collegeprep/organizer/internal/pkg/apperrors"
	"github.com/collegeprep/organizer/internal/pkg/auth"
	"github.com/collegeprep/organizer/internal/pkg/email"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultInvitationExpiry is used when no expiry is configured
const DefaultInvitationExpiry = 7 * 24 * time.Hour

const maxNameLength = 100

// InvitationService lets parents provision linked student accounts
type InvitationService struct {
	userRepo       UserStore
	invitationRepo InvitationStore
	relationRepo   RelationStore
	hasher         auth.PasswordHasher
	mailer         email.Mailer
	authService    *AuthService
	seeder         *SeedingService
	expiry         time.Duration
	logger         zerolog.Logger
	now            func() time.Time
}

// NewInvitationService creates a new InvitationService
func NewInvitationService(
	userRepo UserStore,
	invitationRepo InvitationStore,
	relationRepo RelationStore,
	hasher auth.PasswordHasher,
	mailer email.Mailer,
	authService *AuthService,
	seeder *SeedingService,
	expiry time.Duration,
	logger zerolog.Logger,
) *InvitationService {
	if expiry <= 0 {
		expiry = DefaultInvitationExpiry
	}
	return &InvitationService{
		userRepo:       userRepo,
		invitationRepo: invitationRepo,
		relationRepo:   relationRepo,
		hasher:         hasher,
		mailer:         mailer,
		authService:    authService,
		seeder:         seeder,
		expiry:         expiry,
		logger:         logger,
		now:            time.Now,
	}
}

// requireParent loads the caller and checks the stored role
func (s *InvitationService) requireParent(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.HasRole(models.RoleParent) {
		return nil, apperrors.NewForbiddenError("Only parents can manage student invitations")
	}
	return user, nil
}

// InviteStudent creates a pending invitation and emails the acceptance link
func (s *InvitationService) InviteStudent(ctx context.Context, parentID uuid.UUID, req *dto.InviteStudentRequest) (*dto.InvitationResponse, error) {
	parent, err := s.requireParent(ctx, parentID)
	if err != nil {
		return nil, err
	}

	studentEmail := strings.ToLower(strings.TrimSpace(req.StudentEmail))
	if studentEmail == "" {
		return nil, apperrors.NewValidationError("studentEmail", "Student email is required")
	}
	now := s.now()

	pending, err := s.invitationRepo.HasPendingFor(ctx, parent.ID, studentEmail, now)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending invitations: %w", err)
	}
	if pending {
		return nil, apperrors.ErrDuplicateInvitation
	}

	exists, err := s.userRepo.EmailExists(ctx, studentEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, apperrors.ErrUserExists
	}

	inv := &models.StudentInvitation{
		ParentID:         parent.ID,
		StudentEmail:     studentEmail,
		StudentFirstName: strings.TrimSpace(req.StudentFirstName),
		StudentLastName:  strings.TrimSpace(req.StudentLastName),
		Token:            uuid.NewString(),
		ExpiresAt:        now.Add(s.expiry),
		CreatedAt:        now,
	}
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		return nil, err
	}

	parentName := strings.TrimSpace(parent.FirstName + " " + parent.LastName)
	if err := s.mailer.SendStudentInvitation(inv.StudentEmail, inv.StudentFirstName, parentName, inv.Token, inv.ExpiresAt); err != nil {
		// The invitation stays valid; the parent can resend later
		s.logger.Error().Err(err).Str("invitationID", inv.ID.String()).Msg("Failed to send invitation email")
	}

	s.logger.Info().
		Str("parentID", parent.ID.String()).
		Str("invitationID", inv.ID.String()).
		Time("expiresAt", inv.ExpiresAt).
		Msg("Student invited")

	return &dto.InvitationResponse{
		InvitationID: inv.ID,
		StudentEmail: inv.StudentEmail,
		ExpiresAt:    inv.ExpiresAt,
	}, nil
}

// pendingInvitation loads an invitation and fails unless it can still be accepted
func (s *InvitationService) pendingInvitation(ctx context.Context, token string, now time.Time) (*models.StudentInvitation, error) {
	inv, err := s.invitationRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	switch inv.EffectiveStatus(now) {
	case models.InvitationAccepted:
		return nil, apperrors.ErrInvitationUsed
	case models.InvitationExpired:
		return nil, apperrors.ErrInvitationExpired
	}
	return inv, nil
}

// CheckInvitation reports why a token can no longer be accepted, or nil while it is pending
func (s *InvitationService) CheckInvitation(ctx context.Context, token string) error {
	_, err := s.pendingInvitation(ctx, token, s.now())
	return err
}

// AcceptInvitation consumes a pending invitation and signs the new student in.
// Token state is checked before any request field.
func (s *InvitationService) AcceptInvitation(ctx context.Context, token string, req *dto.AcceptInvitationRequest) (*dto.AuthResponse, error) {
	now := s.now()
	inv, err := s.pendingInvitation(ctx, token, now)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(strings.TrimSpace(req.Email), inv.StudentEmail) {
		return nil, apperrors.ErrEmailMismatch
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperrors.NewValidationError("password", fmt.Sprintf("Password must be at least %d characters long", minPasswordLength))
	}
	for field, name := range map[string]string{"firstName": req.FirstName, "lastName": req.LastName} {
		if len(strings.TrimSpace(name)) > maxNameLength {
			return nil, apperrors.NewValidationError(field, fmt.Sprintf("%s must be at most %d characters", field, maxNameLength))
		}
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := models.RoleStudent
	student := &models.User{
		Email:         inv.StudentEmail,
		PasswordHash:  hash,
		FirstName:     firstNonEmpty(req.FirstName, inv.StudentFirstName),
		LastName:      firstNonEmpty(req.LastName, inv.StudentLastName),
		Role:          &role,
		EmailVerified: true,
	}

	if _, err := s.invitationRepo.AcceptAndCreateStudent(ctx, token, student, now); err != nil {
		if errors.Is(err, apperrors.ErrInvitationUsed) || errors.Is(err, apperrors.ErrUserExists) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("invitationID", inv.ID.String()).Msg("Failed to accept invitation")
		return nil, fmt.Errorf("failed to accept invitation: %w", err)
	}

	s.seeder.EnsureSeeded(ctx, student.ID)

	s.logger.Info().
		Str("invitationID", inv.ID.String()).
		Str("studentID", student.ID.String()).
		Msg("Invitation accepted")

	return s.authService.signIn(ctx, student, false)
}

// ListStudents returns the students linked to a parent
func (s *InvitationService) ListStudents(ctx context.Context, parentID uuid.UUID) ([]dto.StudentSummary, error) {
	if _, err := s.requireParent(ctx, parentID); err != nil {
		return nil, err
	}

	students, err := s.relationRepo.ListStudents(ctx, parentID)
	if err != nil {
		return nil, err
	}

	result := make([]dto.StudentSummary, 0, len(students))
	for _, st := range students {
		result = append(result, dto.StudentSummary{
			ID:        st.ID,
			Email:     st.Email,
			FirstName: st.FirstName,
			LastName:  st.LastName,
		})
	}
	return result, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
