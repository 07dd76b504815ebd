package models

import (
	"time"

	"github.com/google/uuid"
)

// InvitationStatus is the single-use lifecycle of an invitation
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationExpired  InvitationStatus = "expired"
)

// StudentInvitation lets a parent provision a linked student account
type StudentInvitation struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	ParentID         uuid.UUID        `json:"parentId" db:"parent_id"`
	StudentEmail     string           `json:"studentEmail" db:"student_email"`
	StudentFirstName string           `json:"studentFirstName" db:"student_first_name"`
	StudentLastName  string           `json:"studentLastName" db:"student_last_name"`
	Token            string           `json:"-" db:"invitation_token"`
	Status           InvitationStatus `json:"status" db:"status"`
	ExpiresAt        time.Time        `json:"expiresAt" db:"expires_at"`
	AcceptedAt       *time.Time       `json:"acceptedAt,omitempty" db:"accepted_at"`
	CreatedAt        time.Time        `json:"createdAt" db:"created_at"`
}

// EffectiveStatus evaluates expiry lazily: a pending invitation past its deadline is expired
func (i *StudentInvitation) EffectiveStatus(now time.Time) InvitationStatus {
	if i.Status == InvitationPending && now.After(i.ExpiresAt) {
		return InvitationExpired
	}
	return i.Status
}
