// Package tasktemplates holds the default college-prep checklist every new
// account starts with.
package tasktemplates

import (
	"errors"
	"fmt"
	"time"

	"github.com/collegeprep/organizer/internal/app/models"
	"github.com/google/uuid"
)

// ErrUnknownCategory is returned when a template names a category missing from the lookup map
var ErrUnknownCategory = errors.New("unknown task category")

// Category names referenced by the catalog
const (
	CategoryApplications = "College Applications"
	CategoryFinancialAid = "Financial Aid & FAFSA"
	CategoryHousing      = "Housing & Registration"
	CategoryTesting      = "Testing & Transcripts"
	CategoryHealth       = "Health & Documentation"
	CategoryMoveIn       = "Move-In Preparation"
)

// Template is one catalog entry. DueInDays is relative to the seeding day.
type Template struct {
	Category    string
	Title       string
	Description string
	Notes       string
	Priority    models.TaskPriority
	AssignedTo  models.Assignee
	DueInDays   int
}

var catalog = []Template{
	{
		Category:    CategoryFinancialAid,
		Title:       "🚨 Complete FAFSA Application",
		Description: "Submit the Free Application for Federal Student Aid (FAFSA) as early as possible. Federal deadline is June 30, but state and college deadlines are much earlier.",
		Notes:       "Early submission recommended for maximum aid eligibility. Need tax documents from parents.",
		Priority:    models.PriorityUrgent,
		AssignedTo:  models.AssignedParent,
		DueInDays:   61,
	},
	{
		Category:    CategoryFinancialAid,
		Title:       "CSS Profile Application",
		Description: "Complete CSS Profile for private colleges and additional aid programs",
		Notes:       "Required by many private colleges. Check each school's specific deadline.",
		Priority:    models.PriorityHigh,
		AssignedTo:  models.AssignedParent,
		DueInDays:   92,
	},
	{
		Category:    CategoryApplications,
		Title:       "Early Decision/Action Applications",
		Description: "Submit early decision and early action applications for priority consideration",
		Notes:       "ED is binding, EA is not. Check each school's specific requirements.",
		Priority:    models.PriorityUrgent,
		AssignedTo:  models.AssignedStudent,
		DueInDays:   0,
	},
	{
		Category:    CategoryApplications,
		Title:       "Common Application Deadline",
		Description: "Submit Common Application for regular decision to all selected colleges",
		Notes:       "Most colleges use Common App. Check for any school-specific supplements.",
		Priority:    models.PriorityUrgent,
		AssignedTo:  models.AssignedStudent,
		DueInDays:   61,
	},
	{
		Category:    CategoryFinancialAid,
		Title:       "💰 National Merit Scholarship",
		Description: "Complete National Merit Scholarship application if semi-finalist",
		Notes:       "Only for PSAT National Merit Semi-finalists. Up to $2,500 award.",
		Priority:    models.PriorityUrgent,
		AssignedTo:  models.AssignedStudent,
		DueInDays:   -17,
	},
	{
		Category:    CategoryFinancialAid,
		Title:       "💰 Coca-Cola Scholars Program",
		Description: "Apply for $20,000 Coca-Cola Scholars Program scholarship",
		Notes:       "Leadership and academic excellence. 150 winners annually. Must be high school senior.",
		Priority:    models.PriorityUrgent,
		AssignedTo:  models.AssignedStudent,
		DueInDays:   -1,
	},
	{
		Category:    CategoryFinancialAid,
		Title:       "💰 Jack Kent Cooke Foundation Scholarship",
		Description: "Apply for Jack Kent Cooke Foundation College Scholarship (up to $55,000/year)",
		Notes:       "High-achieving students with financial need. Must have 3.5+ GPA and demonstrate leadership.",
		Priority:    models.PriorityUrgent,
		AssignedTo:  models.AssignedStudent,
		DueInDays:   14,
	},
	{
		Category:    CategoryTesting,
		Title:       "Send SAT/ACT Scores",
		Description: "Send official test scores to all colleges on your list",
		Notes:       "Order through College Board (SAT) or ACT.org. Allow 2-3 weeks for delivery.",
		Priority:    models.PriorityHigh,
		AssignedTo:  models.AssignedStudent,
		DueInDays:   44,
	},
	{
		Category:    CategoryTesting,
		Title:       "Request High School Transcripts",
		Description: "Request official transcripts from high school for all college applications",
		Notes:       "Contact guidance counselor early. Some schools need 2+ weeks processing time.",
		Priority:    models.PriorityHigh,
		AssignedTo:  models.AssignedStudent,
		DueInDays:   30,
	},
	{
		Category:    CategoryTesting,
		Title:       "Final Transcript After Graduation",
		Description: "Send final high school transcript to enrolled college",
		Notes:       "CRITICAL: Required for enrollment. Must show graduation and final grades.",
		Priority:    models.PriorityUrgent,
		AssignedTo:  models.AssignedStudent,
		DueInDays:   242,
	},
	{
		Category:    CategoryHousing,
		Title:       "Housing Application Deposit",
		Description: "Submit housing application and deposit to secure on-campus housing",
		Notes:       "Most colleges require housing deposit by May 1st. Usually $200-500.",
		Priority:    models.PriorityHigh,
		AssignedTo:  models.AssignedParent,
		DueInDays:   181,
	},
	{
		Category:    CategoryHealth,
		Title:       "Immunization Records",
		Description: "Submit required immunization records to college health center",
		Notes:       "Required for enrollment. May need additional vaccines like meningitis.",
		Priority:    models.PriorityUrgent,
		AssignedTo:  models.AssignedParent,
		DueInDays:   242,
	},
}

// Catalog returns a copy of the template entries in seeding order
func Catalog() []Template {
	out := make([]Template, len(catalog))
	copy(out, catalog)
	return out
}

// DueDate resolves a day offset to 23:59 UTC on that day, counted from now's UTC date
func DueDate(now time.Time, dueInDays int) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d+dueInDays, 23, 59, 0, 0, time.UTC)
}

// DefaultTasks builds the pending task drafts for userID. Every template's
// category must be present in categoryIDs.
func DefaultTasks(userID uuid.UUID, categoryIDs map[string]uuid.UUID, now time.Time) ([]models.Task, error) {
	tasks := make([]models.Task, 0, len(catalog))
	for _, tpl := range catalog {
		categoryID, ok := categoryIDs[tpl.Category]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, tpl.Category)
		}

		due := DueDate(now, tpl.DueInDays)
		description := tpl.Description
		notes := tpl.Notes
		categoryName := tpl.Category

		tasks = append(tasks, models.Task{
			ID:           uuid.New(),
			UserID:       userID,
			CategoryID:   categoryID,
			CategoryName: &categoryName,
			Title:        tpl.Title,
			Description:  &description,
			DueDate:      &due,
			Priority:     tpl.Priority,
			Status:       models.TaskPending,
			Notes:        &notes,
			AssignedTo:   tpl.AssignedTo,
		})
	}
	return tasks, nil
}
