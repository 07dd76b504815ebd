package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/collegeprep/organizer/internal/app/models"
	"github.com/collegeprep/organizer/internal/app/models/dto"
	"github.com/collegeprep/organizer/internal/pkg/apperrors"
	"github.com/collegeprep/organizer/internal/pkg/auth"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const minPasswordLength = 8

// AuthService handles authentication operations
type AuthService struct {
	userRepo   UserStore
	tokenRepo  TokenStore
	jwtService *auth.JWTService
	hasher     auth.PasswordHasher
	seeder     *SeedingService
	sessions   *SessionStateStore
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo UserStore,
	tokenRepo TokenStore,
	jwtService *auth.JWTService,
	hasher auth.PasswordHasher,
	seeder *SeedingService,
	sessions *SessionStateStore,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtService: jwtService,
		hasher:     hasher,
		seeder:     seeder,
		sessions:   sessions,
		logger:     logger,
	}
}

// validateRegistration checks the fields a new account needs
func validateRegistration(email, password, firstName, lastName string) error {
	switch {
	case strings.TrimSpace(email) == "":
		return apperrors.NewValidationError("email", "Email is required")
	case strings.TrimSpace(firstName) == "":
		return apperrors.NewValidationError("firstName", "First name is required")
	case strings.TrimSpace(lastName) == "":
		return apperrors.NewValidationError("lastName", "Last name is required")
	case len(password) < minPasswordLength:
		return apperrors.NewValidationError("password", fmt.Sprintf("Password must be at least %d characters long", minPasswordLength))
	}
	return nil
}

// Register creates an account without a role and signs it in
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := validateRegistration(req.Email, req.Password, req.FirstName, req.LastName); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("Error checking email existence")
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent registration can still win the unique index
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("email", email).Msg("Error creating user")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info().Str("userID", user.ID.String()).Msg("User registered")
	return s.signIn(ctx, user, false)
}

// Login authenticates a user by email and password
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !s.hasher.Compare(user.PasswordHash, req.Password) {
		s.logger.Debug().Str("userID", user.ID.String()).Msg("Password mismatch")
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.signIn(ctx, user, true)
}

// RefreshToken rotates a refresh token into a new token pair
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	userID, _, err := s.tokenRepo.GetTokenByValue(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrTokenInvalid
		}
		return nil, err
	}

	if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes every refresh token of the user and drops the cached snapshot
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.tokenRepo.RevokeAllUserTokens(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn().Err(err).Str("userID", userID.String()).Msg("Could not load user during logout")
		return nil
	}
	s.sessions.Delete(ctx, user.Email)
	return nil
}

// GetCurrentUser returns the stored user
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// SelectRole persists the role and seeds the starter checklist.
// Seeding failures are logged, never returned.
func (s *AuthService) SelectRole(ctx context.Context, userID uuid.UUID, role string) (*models.User, error) {
	parsed, ok := models.ParseRole(strings.ToLower(strings.TrimSpace(role)))
	if !ok {
		return nil, apperrors.ErrInvalidRole
	}

	user, err := s.userRepo.UpdateRole(ctx, userID, parsed)
	if err != nil {
		return nil, err
	}

	s.sessions.Delete(ctx, user.Email)
	s.seeder.EnsureSeeded(ctx, user.ID)

	s.logger.Info().Str("userID", user.ID.String()).Str("role", string(parsed)).Msg("Role selected")
	return user, nil
}

// signIn issues tokens and records the reconciled session snapshot
func (s *AuthService) signIn(ctx context.Context, user *models.User, isLogin bool) (*dto.AuthResponse, error) {
	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	snap := s.sessions.Record(ctx, user, isLogin)
	resp := dto.NewUserResponse(user)
	if snap.FirstName != "" {
		resp.FirstName = snap.FirstName
		resp.LastName = snap.LastName
	}

	return &dto.AuthResponse{User: resp, Tokens: tokens}, nil
}

// issueTokens generates a token pair and stores the refresh half
func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	if err := s.tokenRepo.CreateToken(ctx, pair.RefreshToken, user.ID, pair.RefreshExpiry); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:           pair.AccessToken,
		TokenType:             "Bearer",
		ExpiresIn:             pair.ExpiresIn,
		RefreshToken:          pair.RefreshToken,
		RefreshTokenExpiresIn: pair.RefreshExpiresIn,
	}, nil
}
