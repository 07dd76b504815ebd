package models

import (
	"time"

	"github.com/google/uuid"
)

// User defines the user model based on the 'users' table
type User struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Email           string    `json:"email" db:"email" example:"jane@example.com"`
	PasswordHash    string    `json:"-" db:"password_hash"` // never serialized
	FirstName       string    `json:"firstName" db:"first_name" example:"Jane"`
	LastName        string    `json:"lastName" db:"last_name" example:"Doe"`
	ProfileImageURL *string   `json:"profileImageUrl,omitempty" db:"profile_image_url"`
	Role            *Role     `json:"role" db:"role" example:"student"` // nil until chosen
	EmailVerified   bool      `json:"emailVerified" db:"email_verified"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// HasRole reports whether the stored role equals r
func (u *User) HasRole(r Role) bool {
	return u != nil && u.Role != nil && *u.Role == r
}

// ParentStudentRelation links a parent account to a student account
type ParentStudentRelation struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ParentID  uuid.UUID `json:"parentId" db:"parent_id"`
	StudentID uuid.UUID `json:"studentId" db:"student_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
