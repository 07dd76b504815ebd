package tasktemplates_test

import (
	"testing"
	"time"

	"github.com/collegeprep/organizer/internal/app/models"
	"github.com/collegeprep/organizer/internal/app/tasktemplates"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func categoryMap() map[string]uuid.UUID {
	return map[string]uuid.UUID{
		tasktemplates.CategoryApplications: uuid.New(),
		tasktemplates.CategoryFinancialAid: uuid.New(),
		tasktemplates.CategoryHousing:      uuid.New(),
		tasktemplates.CategoryTesting:      uuid.New(),
		tasktemplates.CategoryHealth:       uuid.New(),
		tasktemplates.CategoryMoveIn:       uuid.New(),
	}
}

func TestDefaultTasks(t *testing.T) {
	now := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Should build twelve pending tasks with resolved categories", func(t *testing.T) {
		userID := uuid.New()
		categories := categoryMap()
		tasks, err := tasktemplates.DefaultTasks(userID, categories, now)
		require.NoError(t, err)
		require.Len(t, tasks, 12)
		for _, task := range tasks {
			assert.Equal(t, userID, task.UserID)
			assert.Equal(t, models.TaskPending, task.Status)
			assert.Nil(t, task.CompletedAt)
			require.NotNil(t, task.CategoryName)
			assert.Equal(t, categories[*task.CategoryName], task.CategoryID)
			require.NotNil(t, task.DueDate)
		}
		assert.Equal(t, "🚨 Complete FAFSA Application", tasks[0].Title)
		assert.Equal(t, models.AssignedParent, tasks[0].AssignedTo)
	})

	t.Run("Should be deterministic apart from ids", func(t *testing.T) {
		categories := categoryMap()
		userID := uuid.New()
		a, err := tasktemplates.DefaultTasks(userID, categories, now)
		require.NoError(t, err)
		b, err := tasktemplates.DefaultTasks(userID, categories, now)
		require.NoError(t, err)
		require.Len(t, b, len(a))
		for i := range a {
			assert.NotEqual(t, a[i].ID, b[i].ID)
			a[i].ID = b[i].ID
			assert.Equal(t, a[i], b[i])
		}
	})

	t.Run("Should include overdue and upcoming deadlines relative to now", func(t *testing.T) {
		tasks, err := tasktemplates.DefaultTasks(uuid.New(), categoryMap(), now)
		require.NoError(t, err)
		overdue := 0
		for _, task := range tasks {
			if task.DueDate.Before(now) {
				overdue++
			}
		}
		assert.Equal(t, 2, overdue)
	})

	t.Run("Should fail on a missing category", func(t *testing.T) {
		categories := categoryMap()
		delete(categories, tasktemplates.CategoryHealth)
		tasks, err := tasktemplates.DefaultTasks(uuid.New(), categories, now)
		assert.Nil(t, tasks)
		assert.ErrorIs(t, err, tasktemplates.ErrUnknownCategory)
	})
}

func TestDueDate(t *testing.T) {
	now := time.Date(2025, 12, 31, 8, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 1, 1, 23, 59, 0, 0, time.UTC), tasktemplates.DueDate(now, 1))
	assert.Equal(t, time.Date(2025, 12, 14, 23, 59, 0, 0, time.UTC), tasktemplates.DueDate(now, -17))
}

func TestCatalog(t *testing.T) {
	t.Run("Should return a copy", func(t *testing.T) {
		c := tasktemplates.Catalog()
		require.Len(t, c, 12)
		c[0].Title = "changed"
		assert.NotEqual(t, "changed", tasktemplates.Catalog()[0].Title)
	})
}
