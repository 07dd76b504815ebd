package dto

import (
	"time"

	"github.com/collegeprep/organizer/internal/app/models"
	"github.com/google/uuid"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"jane@example.com"`
	Password string `json:"password" binding:"required" example:"pw123456"`
}

// RegisterRequest represents a registration form
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email" example:"jane@example.com"`
	Password  string `json:"password" binding:"required,min=8" example:"pw123456"`
	FirstName string `json:"firstName" binding:"required,notblank,max=100" example:"Jane"`
	LastName  string `json:"lastName" binding:"required,notblank,max=100" example:"Doe"`
}

// SelectRoleRequest chooses the account role
type SelectRoleRequest struct {
	Role string `json:"role" binding:"required" example:"student"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// InviteStudentRequest is sent by a parent to provision a student account
type InviteStudentRequest struct {
	StudentEmail     string `json:"studentEmail" binding:"required,email" example:"sam@example.com"`
	StudentFirstName string `json:"studentFirstName" binding:"required,notblank,max=100" example:"Sam"`
	StudentLastName  string `json:"studentLastName" binding:"required,notblank,max=100" example:"Doe"`
}

// AcceptInvitationRequest completes a student account from an invitation.
// Fields are checked by the service after the token state, so it carries no binding rules.
type AcceptInvitationRequest struct {
	Email     string `json:"email" example:"sam@example.com"`
	Password  string `json:"password" example:"pw123456"`
	FirstName string `json:"firstName" example:"Sam"`
	LastName  string `json:"lastName" example:"Doe"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType" example:"Bearer"`
	ExpiresIn             int64  `json:"expiresIn" example:"3600"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn,omitempty" example:"2592000"`
}

// UserResponse is the public view of a user; it has no credential field
type UserResponse struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email" example:"jane@example.com"`
	FirstName       string    `json:"firstName" example:"Jane"`
	LastName        string    `json:"lastName" example:"Doe"`
	ProfileImageURL *string   `json:"profileImageUrl,omitempty"`
	Role            *string   `json:"role" example:"student"`
	EmailVerified   bool      `json:"emailVerified"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// NewUserResponse maps a user model to its public view
func NewUserResponse(u *models.User) *UserResponse {
	if u == nil {
		return nil
	}
	var role *string
	if u.Role != nil {
		r := string(*u.Role)
		role = &r
	}
	return &UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		ProfileImageURL: u.ProfileImageURL,
		Role:            role,
		EmailVerified:   u.EmailVerified,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	User   *UserResponse  `json:"user"`
	Tokens *TokenResponse `json:"tokens"`
}

// InvitationResponse is returned when an invitation is created
type InvitationResponse struct {
	InvitationID uuid.UUID `json:"invitationId"`
	StudentEmail string    `json:"studentEmail"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// StudentSummary lists a student linked to the calling parent
type StudentSummary struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
}
