package migrate

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Migration represents a single database migration
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// Execer is satisfied by both *sql.DB and *sql.Tx
type Execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// MigrationProvider loads migrations and tracks the applied version
type MigrationProvider interface {
	GetMigrations() ([]Migration, error)
	GetCurrentVersion(db *sql.DB) (int, error)
	SetVersion(db Execer, version int) error
	CreateMigrationTable(db *sql.DB) error
}

// Migrator applies migrations from a provider to a database
type Migrator struct {
	db       *sql.DB
	provider MigrationProvider
	logger   *zap.SugaredLogger
}

// NewMigrator creates a new migrator instance. A nil logger discards output.
func NewMigrator(db *sql.DB, provider MigrationProvider, logger *zap.SugaredLogger) *Migrator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Migrator{
		db:       db,
		provider: provider,
		logger:   logger,
	}
}

// Latest is the MigrateTo target that applies every known migration
const Latest = -1

// step is one migration applied in one direction
type step struct {
	migration Migration
	up        bool
}

// plan orders the steps that move a schema from current to target. Upgrades
// run oldest first, rollbacks newest first.
func plan(migrations []Migration, current, target int) []step {
	sorted := append([]Migration(nil), migrations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })

	if target == Latest {
		target = current
		if n := len(sorted); n > 0 && sorted[n-1].Version > current {
			target = sorted[n-1].Version
		}
	}

	var steps []step
	if target >= current {
		for _, mg := range sorted {
			if mg.Version > current && mg.Version <= target {
				steps = append(steps, step{migration: mg, up: true})
			}
		}
		return steps
	}

	for i := len(sorted) - 1; i >= 0; i-- {
		if mg := sorted[i]; mg.Version > target && mg.Version <= current {
			steps = append(steps, step{migration: mg, up: false})
		}
	}
	return steps
}

// MigrateUp runs all pending migrations up to the latest version
func (m *Migrator) MigrateUp() error {
	return m.MigrateTo(Latest)
}

// MigrateDown reverts migrations until the schema is at targetVersion
func (m *Migrator) MigrateDown(targetVersion int) error {
	current, err := m.GetCurrentVersion()
	if err != nil {
		return err
	}
	if targetVersion < 0 || targetVersion >= current {
		return fmt.Errorf("target version %d must be between 0 and current version %d", targetVersion, current-1)
	}
	return m.MigrateTo(targetVersion)
}

// MigrateTo runs migrations up or down to reach targetVersion
func (m *Migrator) MigrateTo(targetVersion int) error {
	current, err := m.GetCurrentVersion()
	if err != nil {
		return err
	}

	migrations, err := m.provider.GetMigrations()
	if err != nil {
		return fmt.Errorf("failed to get migrations: %w", err)
	}

	steps := plan(migrations, current, targetVersion)
	if len(steps) == 0 {
		m.logger.Debugw("schema is up to date", "version", current)
		return nil
	}
	for _, s := range steps {
		if err := m.execute(s); err != nil {
			return err
		}
	}
	return nil
}

// Pending returns the migrations MigrateUp would apply, oldest first
func (m *Migrator) Pending() ([]Migration, error) {
	current, err := m.GetCurrentVersion()
	if err != nil {
		return nil, err
	}
	migrations, err := m.provider.GetMigrations()
	if err != nil {
		return nil, fmt.Errorf("failed to get migrations: %w", err)
	}

	var pending []Migration
	for _, s := range plan(migrations, current, Latest) {
		pending = append(pending, s.migration)
	}
	return pending, nil
}

// GetCurrentVersion returns the current migration version
func (m *Migrator) GetCurrentVersion() (int, error) {
	if err := m.provider.CreateMigrationTable(m.db); err != nil {
		return 0, fmt.Errorf("failed to create migration table: %w", err)
	}
	v, err := m.provider.GetCurrentVersion(m.db)
	if err != nil {
		return 0, fmt.Errorf("failed to get current version: %w", err)
	}
	return v, nil
}

// execute runs one step and records the resulting version in a single
// transaction
func (m *Migrator) execute(s step) error {
	mg := s.migration
	stmt, direction, version := mg.Up, "up", mg.Version
	if !s.up {
		stmt, direction, version = mg.Down, "down", mg.Version-1
	}
	if strings.TrimSpace(stmt) == "" {
		return fmt.Errorf("migration %d (%s) has no %s SQL", mg.Version, mg.Name, direction)
	}

	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(stmt); err != nil {
		return fmt.Errorf("migration %d (%s) %s: %w", mg.Version, mg.Name, direction, err)
	}
	if err := m.provider.SetVersion(tx, version); err != nil {
		return fmt.Errorf("failed to record version %d: %w", version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", mg.Version, err)
	}

	m.logger.Infow("applied migration", "version", mg.Version, "name", mg.Name, "direction", direction)
	return nil
}
