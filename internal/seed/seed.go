// Package seed installs the reference data the API expects at startup.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/collegeprep/organizer/internal/app/models"
	"github.com/collegeprep/organizer/internal/app/tasktemplates"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CategoryStore is the slice of the category repository seeding needs
type CategoryStore interface {
	EnsureDefaults(ctx context.Context, categories []models.Category) (int, error)
	NameToIDMap(ctx context.Context) (map[string]uuid.UUID, error)
}

// DefaultCategories returns the six categories the task catalog refers to
func DefaultCategories() []models.Category {
	return []models.Category{
		{Name: tasktemplates.CategoryApplications, Description: "Application submissions, essays, and deadlines", Color: models.ColorChart1, Icon: models.IconFileText, SortOrder: 1},
		{Name: tasktemplates.CategoryFinancialAid, Description: "Financial aid forms, scholarships, and FAFSA submission", Color: models.ColorChart2, Icon: models.IconDollarSign, SortOrder: 2},
		{Name: tasktemplates.CategoryHousing, Description: "Dorm selection, course registration, and orientation", Color: models.ColorChart3, Icon: models.IconHome, SortOrder: 3},
		{Name: tasktemplates.CategoryTesting, Description: "SAT/ACT scores, transcripts, and test prep", Color: models.ColorChart4, Icon: models.IconGraduationCap, SortOrder: 4},
		{Name: tasktemplates.CategoryHealth, Description: "Immunizations, insurance, and medical records", Color: models.ColorChart5, Icon: models.IconHeart, SortOrder: 5},
		{Name: tasktemplates.CategoryMoveIn, Description: "Packing, shopping, and logistics for move-in", Color: models.ColorPrimary, Icon: models.IconPackage, SortOrder: 6},
	}
}

// CreateDefaultData inserts missing categories and then checks that every
// category the task catalog names can be resolved.
func CreateDefaultData(ctx context.Context, store CategoryStore, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default categories...")

	inserted, err := store.EnsureDefaults(ctx, DefaultCategories())
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating default categories")
		return err
	}
	if inserted > 0 {
		lgr.Info().Int("inserted", inserted).Msg("Default categories created")
	}

	ids, err := store.NameToIDMap(ctx)
	if err != nil {
		return fmt.Errorf("error loading categories: %w", err)
	}

	var finalErr error
	seen := make(map[string]bool)
	for _, tmpl := range tasktemplates.Catalog() {
		if seen[tmpl.Category] {
			continue
		}
		seen[tmpl.Category] = true
		if _, ok := ids[tmpl.Category]; !ok {
			lgr.Error().Str("category", tmpl.Category).Msg("Task catalog references a missing category")
			finalErr = errors.Join(finalErr, fmt.Errorf("%w: %s", tasktemplates.ErrUnknownCategory, tmpl.Category))
		}
	}

	if finalErr == nil {
		lgr.Info().Msg("Default data check completed")
	}
	return finalErr
}
