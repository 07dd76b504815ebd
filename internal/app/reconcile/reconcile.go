// Package reconcile merges a server-issued user record with a previously
// cached client snapshot for the same account.
package reconcile

import (
	"strings"
	"time"

	"github.com/collegeprep/organizer/internal/app/models"
)

// SchemaVersion is bumped whenever Snapshot changes shape; cached entries
// carrying another version are discarded.
const SchemaVersion = 1

// Placeholder names that must never reach a stored record, and their replacement
const (
	placeholderFirst = "Demo"
	placeholderLast  = "User"
	neutralFirst     = "Student"
	neutralLast      = ""
)

// Snapshot is the client-visible view of a user kept in the session state cache
type Snapshot struct {
	Version         int       `json:"version"`
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Role            string    `json:"role,omitempty"`
	ProfileImageURL string    `json:"profileImageUrl,omitempty"`
	EmailVerified   bool      `json:"emailVerified"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// FromUser builds a snapshot of a stored user
func FromUser(u *models.User) *Snapshot {
	if u == nil {
		return nil
	}
	s := &Snapshot{
		Version:       SchemaVersion,
		ID:            u.ID.String(),
		Email:         strings.ToLower(u.Email),
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		EmailVerified: u.EmailVerified,
		UpdatedAt:     u.UpdatedAt,
	}
	if u.Role != nil {
		s.Role = string(*u.Role)
	}
	if u.ProfileImageURL != nil {
		s.ProfileImageURL = *u.ProfileImageURL
	}
	return s
}

// IsPlaceholder reports whether the name pair is the demo placeholder
func IsPlaceholder(first, last string) bool {
	return first == placeholderFirst && last == placeholderLast
}

// Reconcile merges a previously cached record (existing) with a newer one for
// the same account (incoming). Incoming always wins: on login it is the freshly
// authenticated server record, on registration the newly submitted one.
// On login the server record is authoritative, so only names fall back to
// existing; on registration every empty incoming field is filled from existing.
// The demo placeholder name pair never survives.
func Reconcile(existing, incoming *Snapshot, isLogin bool) Snapshot {
	if existing == nil {
		existing = &Snapshot{}
	}
	if incoming == nil {
		incoming = &Snapshot{}
	}

	var out Snapshot
	if isLogin {
		out = *incoming
	} else {
		out = Snapshot{
			ID:              pick(incoming.ID, existing.ID),
			Email:           pick(incoming.Email, existing.Email),
			Role:            pick(incoming.Role, existing.Role),
			ProfileImageURL: pick(incoming.ProfileImageURL, existing.ProfileImageURL),
			EmailVerified:   incoming.EmailVerified || existing.EmailVerified,
			UpdatedAt:       incoming.UpdatedAt,
		}
		if out.UpdatedAt.IsZero() {
			out.UpdatedAt = existing.UpdatedAt
		}
	}
	out.Version = SchemaVersion
	out.Email = strings.ToLower(out.Email)

	inFirst, inLast := names(incoming)
	exFirst, exLast := names(existing)
	out.FirstName = pick(inFirst, exFirst)
	out.LastName = pick(inLast, exLast)

	if out.FirstName == "" && out.LastName == "" &&
		(IsPlaceholder(incoming.FirstName, incoming.LastName) || IsPlaceholder(existing.FirstName, existing.LastName)) {
		out.FirstName, out.LastName = neutralFirst, neutralLast
	}
	return out
}

// names returns the name pair, blanked when it is the placeholder
func names(s *Snapshot) (string, string) {
	if IsPlaceholder(s.FirstName, s.LastName) {
		return "", ""
	}
	return s.FirstName, s.LastName
}

func pick(preferred, fallback string) string {
	if strings.TrimSpace(preferred) != "" {
		return preferred
	}
	return fallback
}
