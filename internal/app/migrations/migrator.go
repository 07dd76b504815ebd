package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"
	"time"

	"github.com/collegeprep/organizer/internal/pkg/logger"
	"github.com/pressly/goose/v3"

	// pgx stdlib driver for database/sql
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed sql/*.sql
var migrationsFS embed.FS

var gooseMu sync.Mutex

const lockTimeout = 45 * time.Second

// Migrator applies the embedded schema migrations
type Migrator struct {
	dsn string
}

// NewMigrator creates a new migrator for the given postgres DSN
func NewMigrator(dsn string) *Migrator {
	return &Migrator{dsn: dsn}
}

// Up applies all pending migrations while holding an advisory lock so that
// several instances starting together do not race.
func (m *Migrator) Up(ctx context.Context) error {
	db, err := sql.Open("pgx", m.dsn)
	if err != nil {
		return fmt.Errorf("open db for migrations: %w", err)
	}
	defer db.Close()

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire dedicated connection: %w", err)
	}
	defer conn.Close()

	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()
	if _, err := conn.ExecContext(lockCtx,
		"select pg_advisory_lock(hashtext($1), hashtext($2))", "collegeprep", "migrations"); err != nil {
		return fmt.Errorf("acquire migration advisory lock: %w", err)
	}
	defer func() {
		if _, err := conn.ExecContext(context.WithoutCancel(ctx),
			"select pg_advisory_unlock(hashtext($1), hashtext($2))", "collegeprep", "migrations"); err != nil {
			logger.Warn().Err(err).Msg("Failed to release migration advisory lock")
		}
	}()

	return Run(db)
}

// Run applies migrations on an existing *sql.DB
func Run(db *sql.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "sql"); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}

	logger.Info().Msg("Database migrations applied")
	return nil
}

// Files lists the embedded migration file names in apply order
func Files() ([]string, error) {
	entries, err := migrationsFS.ReadDir("sql")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}
