package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/collegeprep/organizer/internal/app/models"
	"github.com/collegeprep/organizer/internal/app/reconcile"
	"github.com/collegeprep/organizer/internal/pkg/cache"
	"github.com/rs/zerolog"
)

const sessionStateKeyPrefix = "clientstate:v1:user:"

// SessionStateStore is a write-through cache of the client-visible user
// snapshot, keyed by email. A nil client disables it.
type SessionStateStore struct {
	client cache.Interface
	ttl    time.Duration
	logger zerolog.Logger
}

// NewSessionStateStore creates a new SessionStateStore
func NewSessionStateStore(client cache.Interface, ttl time.Duration, logger zerolog.Logger) *SessionStateStore {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &SessionStateStore{client: client, ttl: ttl, logger: logger}
}

// Enabled reports whether a backing cache is configured
func (s *SessionStateStore) Enabled() bool {
	return s != nil && s.client != nil
}

func sessionStateKey(email string) string {
	return sessionStateKeyPrefix + strings.ToLower(strings.TrimSpace(email))
}

// Get returns the cached snapshot. Entries of another schema version are misses.
func (s *SessionStateStore) Get(ctx context.Context, email string) (*reconcile.Snapshot, bool) {
	if !s.Enabled() {
		return nil, false
	}

	var snap reconcile.Snapshot
	if err := cache.GetJSON(ctx, s.client, sessionStateKey(email), &snap); err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn().Err(err).Msg("Session state read failed")
		}
		return nil, false
	}
	if snap.Version != reconcile.SchemaVersion {
		return nil, false
	}
	return &snap, true
}

// Put stores a snapshot
func (s *SessionStateStore) Put(ctx context.Context, snap reconcile.Snapshot) {
	if !s.Enabled() || snap.Email == "" {
		return
	}
	if err := cache.SetJSON(ctx, s.client, sessionStateKey(snap.Email), snap, s.ttl); err != nil {
		s.logger.Warn().Err(err).Msg("Session state write failed")
	}
}

// Delete drops the cached snapshot for email
func (s *SessionStateStore) Delete(ctx context.Context, email string) {
	if !s.Enabled() {
		return
	}
	if err := cache.Delete(ctx, s.client, sessionStateKey(email)); err != nil {
		s.logger.Warn().Err(err).Msg("Session state delete failed")
	}
}

// Record merges the stored user over any cached snapshot and writes the
// result back. The stored user is the server record on login and the
// submitted record on registration.
func (s *SessionStateStore) Record(ctx context.Context, user *models.User, isLogin bool) reconcile.Snapshot {
	cached, _ := s.Get(ctx, user.Email)
	merged := reconcile.Reconcile(cached, reconcile.FromUser(user), isLogin)
	s.Put(ctx, merged)
	return merged
}
