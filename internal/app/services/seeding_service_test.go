package services

import (
	"context"
	"errors"
	"testing"

	"github.com/collegeprep/organizer/internal/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSeedingFailureNeverFailsTheRequest(t *testing.T) {
	ctx := context.Background()

	breakages := []struct {
		name       string
		breakStore func(e *testEnv)
	}{
		{"category lookup fails", func(e *testEnv) { e.categories.mapErr = errors.New("categories unavailable") }},
		{"task insert fails", func(e *testEnv) { e.tasks.seedErr = errors.New("insert failed") }},
		{"categories are missing", func(e *testEnv) { e.categories.categories = nil }},
	}

	for _, b := range breakages {
		t.Run("Should still select a role when "+b.name, func(t *testing.T) {
			env := newTestEnv(nil)
			user := env.createUser("jane@example.com", nil)
			b.breakStore(env)

			updated, err := env.auth.SelectRole(ctx, user.ID, "student")
			require.NoError(t, err)
			assert.True(t, updated.HasRole(models.RoleStudent))
		})

		t.Run("Should still list tasks when "+b.name, func(t *testing.T) {
			env := newTestEnv(nil)
			user := env.createUser("jane@example.com", rolePtr(models.RoleStudent))
			b.breakStore(env)

			tasks, err := env.tasksSvc.ListTasks(ctx, user.ID)
			require.NoError(t, err)
			assert.Empty(t, tasks)
		})

		t.Run("Should still accept an invitation when "+b.name, func(t *testing.T) {
			env := newTestEnv(nil)
			parent := env.createUser("parent@example.com", rolePtr(models.RoleParent))
			env.mailer.On("SendStudentInvitation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
			_, err := env.invites.InviteStudent(ctx, parent.ID, inviteReq("sam@example.com"))
			require.NoError(t, err)
			b.breakStore(env)

			resp, err := env.invites.AcceptInvitation(ctx, lastToken(t, env.mailer), acceptReq("sam@example.com"))
			require.NoError(t, err)
			assert.NotEmpty(t, resp.Tokens.AccessToken)
		})
	}

	t.Run("Should report the failure to direct callers", func(t *testing.T) {
		env := newTestEnv(nil)
		user := env.createUser("jane@example.com", nil)
		env.tasks.seedErr = errors.New("insert failed")

		n, err := env.seeder.SeedDefaultTasksForUser(ctx, user.ID)
		assert.Error(t, err)
		assert.Zero(t, n)
	})
}
