// Package jobs runs periodic database maintenance.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const jobTimeout = 2 * time.Minute

// TokenCleaner deletes refresh tokens that can no longer be used
type TokenCleaner interface {
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// InvitationExpirer marks overdue pending invitations as expired
type InvitationExpirer interface {
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
}

// Specs holds cron expressions for each job
type Specs struct {
	TokenCleanup    string
	InvitationSweep string
}

// Scheduler owns the cron runner and the maintenance jobs
type Scheduler struct {
	cron        *cron.Cron
	tokens      TokenCleaner
	invitations InvitationExpirer
	logger      zerolog.Logger
	now         func() time.Time
}

// NewScheduler registers the maintenance jobs. Empty specs fall back to
// @daily for tokens and @hourly for invitations.
func NewScheduler(tokens TokenCleaner, invitations InvitationExpirer, specs Specs, logger zerolog.Logger) (*Scheduler, error) {
	if specs.TokenCleanup == "" {
		specs.TokenCleanup = "@daily"
	}
	if specs.InvitationSweep == "" {
		specs.InvitationSweep = "@hourly"
	}

	cronLog := cronLogger{logger: logger}
	s := &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLog),
			cron.SkipIfStillRunning(cronLog),
		)),
		tokens:      tokens,
		invitations: invitations,
		logger:      logger,
		now:         time.Now,
	}

	if _, err := s.cron.AddFunc(specs.TokenCleanup, func() { s.RunTokenCleanup(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid token cleanup spec %q: %w", specs.TokenCleanup, err)
	}
	if _, err := s.cron.AddFunc(specs.InvitationSweep, func() { s.RunInvitationSweep(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid invitation sweep spec %q: %w", specs.InvitationSweep, err)
	}
	return s, nil
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Int("jobs", len(s.cron.Entries())).Msg("Maintenance scheduler started")
}

// Stop stops scheduling and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info().Msg("Maintenance scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn().Msg("Maintenance jobs still running at shutdown")
	}
}

// RunTokenCleanup deletes expired and long-revoked refresh tokens
func (s *Scheduler) RunTokenCleanup(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	n, err := s.tokens.CleanupExpiredTokens(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Token cleanup failed")
		return
	}
	s.logger.Info().Int64("deleted", n).Msg("Token cleanup finished")
}

// RunInvitationSweep marks pending invitations past their deadline as expired.
// Acceptance checks expiry itself, so this only keeps stored statuses tidy.
func (s *Scheduler) RunInvitationSweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	n, err := s.invitations.MarkExpired(ctx, s.now())
	if err != nil {
		s.logger.Error().Err(err).Msg("Invitation sweep failed")
		return
	}
	s.logger.Info().Int64("expired", n).Msg("Invitation sweep finished")
}

// cronLogger adapts zerolog to cron.Logger
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
