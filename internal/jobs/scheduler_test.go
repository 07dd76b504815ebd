package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/collegeprep/organizer/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTokens struct{ mock.Mock }

func (m *mockTokens) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockInvitations struct{ mock.Mock }

func (m *mockInvitations) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func TestNewScheduler(t *testing.T) {
	t.Run("Should register both jobs with default specs", func(t *testing.T) {
		s, err := NewScheduler(&mockTokens{}, &mockInvitations{}, Specs{}, logger.Nop())
		require.NoError(t, err)
		assert.Len(t, s.cron.Entries(), 2)
	})

	t.Run("Should reject an invalid spec", func(t *testing.T) {
		_, err := NewScheduler(&mockTokens{}, &mockInvitations{}, Specs{TokenCleanup: "every tuesday"}, logger.Nop())
		assert.Error(t, err)
	})

	t.Run("Should start and stop cleanly", func(t *testing.T) {
		s, err := NewScheduler(&mockTokens{}, &mockInvitations{}, Specs{}, logger.Nop())
		require.NoError(t, err)
		s.Start()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Stop(ctx)
	})
}

func TestJobs(t *testing.T) {
	now := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Should clean up tokens", func(t *testing.T) {
		tokens := &mockTokens{}
		tokens.On("CleanupExpiredTokens", mock.Anything).Return(int64(3), nil).Once()

		s, err := NewScheduler(tokens, &mockInvitations{}, Specs{}, logger.Nop())
		require.NoError(t, err)
		s.RunTokenCleanup(context.Background())

		tokens.AssertExpectations(t)
	})

	t.Run("Should sweep invitations with the scheduler clock", func(t *testing.T) {
		invitations := &mockInvitations{}
		invitations.On("MarkExpired", mock.Anything, now).Return(int64(1), nil).Once()

		s, err := NewScheduler(&mockTokens{}, invitations, Specs{}, logger.Nop())
		require.NoError(t, err)
		s.now = func() time.Time { return now }
		s.RunInvitationSweep(context.Background())

		invitations.AssertExpectations(t)
	})

	t.Run("Should swallow job errors", func(t *testing.T) {
		tokens := &mockTokens{}
		tokens.On("CleanupExpiredTokens", mock.Anything).Return(int64(0), errors.New("db down")).Once()

		s, err := NewScheduler(tokens, &mockInvitations{}, Specs{}, logger.Nop())
		require.NoError(t, err)
		assert.NotPanics(t, func() { s.RunTokenCleanup(context.Background()) })
		tokens.AssertExpectations(t)
	})
}
