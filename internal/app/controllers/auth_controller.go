// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/collegeprep/organizer/internal/app/models/dto"
	"github.com/collegeprep/organizer/internal/app/services"
	"github.com/collegeprep/organizer/internal/middleware"
	"github.com/collegeprep/organizer/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuthController handles authentication, role selection and student invitations
type AuthController struct {
	authService       *services.AuthService
	invitationService *services.InvitationService
	logger            zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, invitationService *services.InvitationService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService:       authService,
		invitationService: invitationService,
		logger:            logger,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Description Creates an account without a role. The role is chosen afterwards with PATCH /auth/user/role.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration form"
// @Success 201 {object} dto.APIResponse{data=dto.AuthResponse} "Account created"
// @Failure 400 {object} dto.ErrorResponse "Validation failed or email already exists"
// @Failure 429 {object} dto.ErrorResponse "Too many requests"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if !middleware.BindJSON(ctx, &req) {
		c.logger.Warn().Msg("Invalid registration request payload")
		return
	}

	resp, err := c.authService.Register(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", req.Email).Msg("Registration failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("userID", resp.User.ID.String()).Msg("User registered")
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(resp))
}

// Login handles user login
// @Summary User login
// @Description Authenticates a user and returns the profile with a token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 429 {object} dto.ErrorResponse "Too many requests"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", req.Email).Msg("Login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// RefreshToken rotates a refresh token
// @Summary Refresh access token
// @Description Revokes the given refresh token and issues a new pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.APIResponse{data=dto.TokenResponse} "Token refreshed"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 401 {object} dto.ErrorResponse "Invalid, expired or revoked refresh token"
// @Router /auth/refresh [post]
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	var req dto.RefreshTokenRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	tokens, err := c.authService.RefreshToken(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Refresh token failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(tokens))
}

// Logout revokes every refresh token of the caller
// @Summary Log out
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Logged out"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	if err := c.authService.Logout(ctx.Request.Context(), userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Logged out"}))
}

// GetCurrentUser returns the authenticated user
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "Current user"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /auth/user [get]
func (c *AuthController) GetCurrentUser(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	user, err := c.authService.GetCurrentUser(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewUserResponse(user)))
}

// SelectRole sets the caller's role and seeds the task catalog
// @Summary Select role
// @Description Sets the role to student or parent. The default task catalog is seeded on first selection.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SelectRoleRequest true "Role"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "Role updated"
// @Failure 400 {object} dto.ErrorResponse "Role must be student or parent"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Router /auth/user/role [patch]
func (c *AuthController) SelectRole(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var req dto.SelectRoleRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	user, err := c.authService.SelectRole(ctx.Request.Context(), userID, req.Role)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("userID", userID.String()).Str("role", req.Role).Msg("Role selected")
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewUserResponse(user)))
}

// InviteStudent lets a parent invite a student by email
// @Summary Invite a student
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.InviteStudentRequest true "Student details"
// @Success 200 {object} dto.APIResponse{data=dto.InvitationResponse} "Invitation sent"
// @Failure 400 {object} dto.ErrorResponse "Duplicate invitation or existing user"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Only parents can invite students"
// @Router /auth/invite-student [post]
func (c *AuthController) InviteStudent(ctx *gin.Context) {
	parentID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var req dto.InviteStudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.invitationService.InviteStudent(ctx.Request.Context(), parentID, &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("parentID", parentID.String()).Msg("Invite student failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// AcceptInvitation creates the student account behind an invitation
// @Summary Accept an invitation
// @Tags invitations
// @Accept json
// @Produce json
// @Param token path string true "Invitation token"
// @Param request body dto.AcceptInvitationRequest true "Student account details"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse} "Student account created"
// @Failure 400 {object} dto.ErrorResponse "Expired, already used or email mismatch"
// @Failure 404 {object} dto.ErrorResponse "Invalid invitation token"
// @Router /auth/accept-invitation/{token} [post]
func (c *AuthController) AcceptInvitation(ctx *gin.Context) {
	token := ctx.Param("token")

	var req dto.AcceptInvitationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		// an unusable token is reported ahead of a malformed body
		if tokenErr := c.invitationService.CheckInvitation(ctx.Request.Context(), token); tokenErr != nil {
			middleware.HandleAPIError(ctx, tokenErr)
			return
		}
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.invitationService.AcceptInvitation(ctx.Request.Context(), token, &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", req.Email).Msg("Accept invitation failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// ListStudents returns the students linked to the calling parent
// @Summary Linked students
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.StudentSummary} "Linked students"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Only parents have linked students"
// @Router /auth/students [get]
func (c *AuthController) ListStudents(ctx *gin.Context) {
	parentID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	students, err := c.invitationService.ListStudents(ctx.Request.Context(), parentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(students))
}

// requireUserID reads the authenticated user id or aborts with 401
func requireUserID(ctx *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthorized)
		return uuid.Nil, false
	}
	return userID, true
}
