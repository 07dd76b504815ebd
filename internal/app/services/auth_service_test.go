package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/collegeprep/organizer/internal/app/models"
	"github.com/collegeprep/organizer/internal/app/models/dto"
	"github.com/collegeprep/organizer/internal/app/reconcile"
	"github.com/collegeprep/organizer/internal/pkg/apperrors"
	"github.com/collegeprep/organizer/internal/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerReq(email string) *dto.RegisterRequest {
	return &dto.RegisterRequest{Email: email, Password: "pw123456", FirstName: "Jane", LastName: "Doe"}
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Should create a user without a role and never expose the hash", func(t *testing.T) {
		env := newTestEnv(nil)
		resp, err := env.auth.Register(ctx, registerReq("Jane@Example.com"))
		require.NoError(t, err)

		assert.Equal(t, "jane@example.com", resp.User.Email)
		assert.Nil(t, resp.User.Role)
		assert.NotEmpty(t, resp.Tokens.AccessToken)
		assert.NotEmpty(t, resp.Tokens.RefreshToken)

		body, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.NotContains(t, string(body), "password")
		assert.NotContains(t, string(body), "$2a$")

		stored, err := env.users.GetByEmail(ctx, "jane@example.com")
		require.NoError(t, err)
		assert.NotEqual(t, "pw123456", stored.PasswordHash)
		assert.Equal(t, 1, env.tokens.active(stored.ID))
	})

	t.Run("Should reject a second registration with the same email", func(t *testing.T) {
		env := newTestEnv(nil)
		_, err := env.auth.Register(ctx, registerReq("dup@example.com"))
		require.NoError(t, err)

		_, err = env.auth.Register(ctx, registerReq("DUP@example.com"))
		assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
	})

	t.Run("Should reject short passwords and missing names", func(t *testing.T) {
		env := newTestEnv(nil)
		req := registerReq("short@example.com")
		req.Password = "1234567"
		_, err := env.auth.Register(ctx, req)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

		req = registerReq("noname@example.com")
		req.FirstName = "  "
		_, err = env.auth.Register(ctx, req)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(nil)
	_, err := env.auth.Register(ctx, registerReq("login@example.com"))
	require.NoError(t, err)

	t.Run("Should sign in with valid credentials", func(t *testing.T) {
		resp, err := env.auth.Login(ctx, &dto.LoginRequest{Email: "LOGIN@example.com", Password: "pw123456"})
		require.NoError(t, err)
		assert.Equal(t, "login@example.com", resp.User.Email)
		assert.Equal(t, "Bearer", resp.Tokens.TokenType)
	})

	t.Run("Should return the same error for unknown email and wrong password", func(t *testing.T) {
		_, err := env.auth.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "pw123456"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

		_, err = env.auth.Login(ctx, &dto.LoginRequest{Email: "login@example.com", Password: "wrong-password"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})
}

func TestAuthService_RefreshAndLogout(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(nil)
	resp, err := env.auth.Register(ctx, registerReq("rotate@example.com"))
	require.NoError(t, err)

	t.Run("Should rotate the refresh token", func(t *testing.T) {
		tokens, err := env.auth.RefreshToken(ctx, resp.Tokens.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, resp.Tokens.RefreshToken, tokens.RefreshToken)

		_, err = env.auth.RefreshToken(ctx, resp.Tokens.RefreshToken)
		assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
	})

	t.Run("Should revoke every token on logout", func(t *testing.T) {
		require.NoError(t, env.auth.Logout(ctx, resp.User.ID))
		assert.Zero(t, env.tokens.active(resp.User.ID))
	})
}

func TestAuthService_SelectRole(t *testing.T) {
	ctx := context.Background()

	t.Run("Should persist the role and seed the checklist once", func(t *testing.T) {
		env := newTestEnv(nil)
		resp, err := env.auth.Register(ctx, registerReq("role@example.com"))
		require.NoError(t, err)

		user, err := env.auth.SelectRole(ctx, resp.User.ID, "parent")
		require.NoError(t, err)
		assert.True(t, user.HasRole(models.RoleParent))

		tasks, err := env.tasksSvc.ListTasks(ctx, user.ID)
		require.NoError(t, err)
		assert.Len(t, tasks, 12)
		for _, task := range tasks {
			assert.NotEqual(t, uuid.Nil, task.CategoryID)
			assert.NotNil(t, task.CategoryName)
		}

		_, err = env.auth.SelectRole(ctx, resp.User.ID, "student")
		require.NoError(t, err)
		n, _ := env.tasks.CountByUser(ctx, user.ID)
		assert.Equal(t, 12, n)
	})

	t.Run("Should reject unknown roles", func(t *testing.T) {
		env := newTestEnv(nil)
		resp, err := env.auth.Register(ctx, registerReq("badrole@example.com"))
		require.NoError(t, err)

		_, err = env.auth.SelectRole(ctx, resp.User.ID, "admin")
		assert.ErrorIs(t, err, apperrors.ErrInvalidRole)
	})
}

func TestAuthService_SessionSnapshot(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := NewSessionStateStore(client, 0, logger.Nop())
	env := newTestEnv(sessions)

	_, err := env.auth.Register(ctx, registerReq("snap@example.com"))
	require.NoError(t, err)

	t.Run("Should write the snapshot through on registration", func(t *testing.T) {
		snap, ok := sessions.Get(ctx, "snap@example.com")
		require.True(t, ok)
		assert.Equal(t, "Jane", snap.FirstName)
		assert.Equal(t, reconcile.SchemaVersion, snap.Version)
	})

	t.Run("Should never surface the placeholder name pair on login", func(t *testing.T) {
		sessions.Put(ctx, reconcile.Snapshot{
			Version: reconcile.SchemaVersion, Email: "snap@example.com", FirstName: "Demo", LastName: "User",
		})
		resp, err := env.auth.Login(ctx, &dto.LoginRequest{Email: "snap@example.com", Password: "pw123456"})
		require.NoError(t, err)
		assert.Equal(t, "Jane", resp.User.FirstName)
		assert.Equal(t, "Doe", resp.User.LastName)
	})

	t.Run("Should replace a stale cached snapshot with the server record on login", func(t *testing.T) {
		sessions.Put(ctx, reconcile.Snapshot{
			Version: reconcile.SchemaVersion, Email: "snap@example.com", FirstName: "Old", LastName: "Name", Role: "parent",
		})
		_, err := env.auth.Login(ctx, &dto.LoginRequest{Email: "snap@example.com", Password: "pw123456"})
		require.NoError(t, err)

		snap, ok := sessions.Get(ctx, "snap@example.com")
		require.True(t, ok)
		assert.Equal(t, "Jane", snap.FirstName)
		assert.Equal(t, "Doe", snap.LastName)
		assert.Empty(t, snap.Role)
	})

	t.Run("Should drop the snapshot on logout", func(t *testing.T) {
		user, err := env.users.GetByEmail(ctx, "snap@example.com")
		require.NoError(t, err)
		require.NoError(t, env.auth.Logout(ctx, user.ID))
		_, ok := sessions.Get(ctx, "snap@example.com")
		assert.False(t, ok)
	})

	t.Run("Should treat another schema version as a miss", func(t *testing.T) {
		sessions.Put(ctx, reconcile.Snapshot{Version: reconcile.SchemaVersion + 1, Email: "old@example.com", FirstName: "X"})
		_, ok := sessions.Get(ctx, "old@example.com")
		assert.False(t, ok)
	})
}
