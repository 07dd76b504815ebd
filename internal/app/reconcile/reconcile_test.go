package reconcile_test

import (
	"testing"
	"time"

	"github.com/collegeprep/organizer/internal/app/models"
	"github.com/collegeprep/organizer/internal/app/reconcile"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile(t *testing.T) {
	server := &reconcile.Snapshot{ID: "u1", Email: "jane@example.com", FirstName: "Jane", LastName: "Doe", Role: "student"}
	demo := &reconcile.Snapshot{ID: "demo-user", Email: "jane@example.com", FirstName: "Demo", LastName: "User"}
	stale := &reconcile.Snapshot{ID: "u1", Email: "jane@example.com", FirstName: "Old", LastName: "Name", Role: "parent"}

	tests := []struct {
		name      string
		existing  *reconcile.Snapshot
		incoming  *reconcile.Snapshot
		isLogin   bool
		wantFirst string
		wantLast  string
	}{
		{
			name:      "Should prefer the fresh server record over a stale cache on login",
			existing:  stale,
			incoming:  server,
			isLogin:   true,
			wantFirst: "Jane",
			wantLast:  "Doe",
		},
		{
			name:      "Should keep the server names over a cached demo record on login",
			existing:  demo,
			incoming:  server,
			isLogin:   true,
			wantFirst: "Jane",
			wantLast:  "Doe",
		},
		{
			name:      "Should fall back to cached names when the server carries the placeholder",
			existing:  server,
			incoming:  demo,
			isLogin:   true,
			wantFirst: "Jane",
			wantLast:  "Doe",
		},
		{
			name:      "Should prefer the submitted record on registration",
			existing:  &reconcile.Snapshot{FirstName: "Old", LastName: "Name"},
			incoming:  &reconcile.Snapshot{FirstName: "New", LastName: "Name"},
			isLogin:   false,
			wantFirst: "New",
			wantLast:  "Name",
		},
		{
			name:      "Should substitute the neutral placeholder when only demo names exist",
			existing:  demo,
			incoming:  &reconcile.Snapshot{Email: "jane@example.com"},
			isLogin:   false,
			wantFirst: "Student",
			wantLast:  "",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := reconcile.Reconcile(tc.existing, tc.incoming, tc.isLogin)
			assert.Equal(t, tc.wantFirst, got.FirstName)
			assert.Equal(t, tc.wantLast, got.LastName)
			assert.False(t, reconcile.IsPlaceholder(got.FirstName, got.LastName))
			assert.Equal(t, reconcile.SchemaVersion, got.Version)
		})
	}

	t.Run("Should take every field from the server record on login", func(t *testing.T) {
		got := reconcile.Reconcile(stale, server, true)
		assert.Equal(t, "student", got.Role)
		assert.Equal(t, "u1", got.ID)
	})

	t.Run("Should fill empty submitted fields from the cache on registration", func(t *testing.T) {
		got := reconcile.Reconcile(
			&reconcile.Snapshot{FirstName: "Jane", LastName: "Doe", Role: "parent", ProfileImageURL: "https://img"},
			&reconcile.Snapshot{ID: "u1", Email: "Jane@Example.com"},
			false,
		)
		assert.Equal(t, "u1", got.ID)
		assert.Equal(t, "jane@example.com", got.Email)
		assert.Equal(t, "Jane", got.FirstName)
		assert.Equal(t, "parent", got.Role)
		assert.Equal(t, "https://img", got.ProfileImageURL)
	})

	t.Run("Should tolerate nil inputs", func(t *testing.T) {
		got := reconcile.Reconcile(nil, server, true)
		assert.Equal(t, "Jane", got.FirstName)
		got = reconcile.Reconcile(server, nil, false)
		assert.Equal(t, "Jane", got.FirstName)
		got = reconcile.Reconcile(nil, nil, false)
		assert.Equal(t, "", got.Email)
	})
}

func TestFromUser(t *testing.T) {
	role := models.RoleParent
	u := &models.User{ID: uuid.New(), Email: "Parent@Example.com", FirstName: "Pat", LastName: "Doe", Role: &role, UpdatedAt: time.Now()}
	s := reconcile.FromUser(u)
	require.NotNil(t, s)
	assert.Equal(t, u.ID.String(), s.ID)
	assert.Equal(t, "parent@example.com", s.Email)
	assert.Equal(t, "parent", s.Role)
	assert.Nil(t, reconcile.FromUser(nil))
}
