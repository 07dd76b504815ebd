package services

import (
	"context"
	"fmt"
	"time"

	"github.com/collegeprep/organizer/internal/app/tasktemplates"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SeedingService gives new accounts their starter checklist
type SeedingService struct {
	categories CategoryStore
	tasks      TaskStore
	logger     zerolog.Logger
	now        func() time.Time
}

// NewSeedingService creates a new SeedingService
func NewSeedingService(categories CategoryStore, tasks TaskStore, logger zerolog.Logger) *SeedingService {
	return &SeedingService{
		categories: categories,
		tasks:      tasks,
		logger:     logger,
		now:        time.Now,
	}
}

// SeedDefaultTasksForUser inserts the template tasks unless the user already
// owns a task or was seeded before. It returns how many tasks were created.
func (s *SeedingService) SeedDefaultTasksForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.tasks.CountByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	if count > 0 {
		s.logger.Debug().Str("userID", userID.String()).Int("existing", count).Msg("User already has tasks, skipping seed")
		return 0, nil
	}

	categoryIDs, err := s.categories.NameToIDMap(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load categories: %w", err)
	}

	drafts, err := tasktemplates.DefaultTasks(userID, categoryIDs, s.now())
	if err != nil {
		return 0, err
	}

	seeded, err := s.tasks.SeedForUser(ctx, userID, drafts)
	if err != nil {
		return 0, fmt.Errorf("failed to insert default tasks: %w", err)
	}
	if !seeded {
		s.logger.Debug().Str("userID", userID.String()).Msg("User was already seeded")
		return 0, nil
	}

	s.logger.Info().Str("userID", userID.String()).Int("count", len(drafts)).Msg("Seeded default tasks")
	return len(drafts), nil
}

// EnsureSeeded runs SeedDefaultTasksForUser and only logs failures
func (s *SeedingService) EnsureSeeded(ctx context.Context, userID uuid.UUID) {
	if _, err := s.SeedDefaultTasksForUser(ctx, userID); err != nil {
		s.logger.Error().Err(err).Str("userID", userID.String()).Msg("Default task seeding failed")
	}
}
