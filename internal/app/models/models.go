package models

// Role defines which side of the household a user is on
type Role string

const (
	RoleStudent Role = "student"
	RoleParent  Role = "parent"
)

// ParseRole validates a role string
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleStudent, RoleParent:
		return Role(s), true
	default:
		return "", false
	}
}

// TaskPriority is the urgency of a task
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// TaskStatus is the lifecycle state of a task
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// Assignee says who in the household owns a task
type Assignee string

const (
	AssignedStudent Assignee = "student"
	AssignedParent  Assignee = "parent"
)

// DocumentStatus tracks a document through collection
type DocumentStatus string

const (
	DocumentPending   DocumentStatus = "pending"
	DocumentReceived  DocumentStatus = "received"
	DocumentSubmitted DocumentStatus = "submitted"
)
