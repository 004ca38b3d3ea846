// Package migrate versions the dataset schema. Migrations are stored as
// NNN_name.up.sql / NNN_name.down.sql pairs; each step runs in its own
// transaction together with the version bookkeeping.
package migrate

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/chrissnell/climateapi/internal/log"
)

// Migration is one numbered schema change and its inverse
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// DB is the subset of *sql.DB and *sql.Tx used to record versions
type DB interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// MigrationProvider supplies migrations and tracks which version is applied
type MigrationProvider interface {
	GetMigrations() ([]Migration, error)
	GetCurrentVersion(db *sql.DB) (int, error)
	SetVersion(db DB, version int) error
	CreateMigrationTable(db *sql.DB) error
}

type direction bool

const (
	forward  direction = true
	backward direction = false
)

func (d direction) String() string {
	if d == forward {
		return "up"
	}
	return "down"
}

// Migrator applies a provider's migrations to a database
type Migrator struct {
	db       *sql.DB
	provider MigrationProvider
}

// NewMigrator creates a new migrator instance
func NewMigrator(db *sql.DB, provider MigrationProvider) *Migrator {
	return &Migrator{
		db:       db,
		provider: provider,
	}
}

// Version returns the highest applied migration, 0 for an empty database
func (m *Migrator) Version() (int, error) {
	if err := m.provider.CreateMigrationTable(m.db); err != nil {
		return 0, err
	}
	return m.provider.GetCurrentVersion(m.db)
}

// Pending returns the migrations newer than the applied version, oldest first
func (m *Migrator) Pending() ([]Migration, error) {
	current, err := m.Version()
	if err != nil {
		return nil, err
	}

	all, err := m.ordered()
	if err != nil {
		return nil, err
	}

	pending := make([]Migration, 0, len(all))
	for _, mig := range all {
		if mig.Version > current {
			pending = append(pending, mig)
		}
	}
	return pending, nil
}

// Apply brings the schema up to date and returns the migrations it ran.
// On failure the migrations applied before the failing one stay applied
// and are returned along with the error.
func (m *Migrator) Apply() ([]Migration, error) {
	pending, err := m.Pending()
	if err != nil {
		return nil, err
	}

	for i, mig := range pending {
		if err := m.step(mig, forward); err != nil {
			return pending[:i], fmt.Errorf("failed to apply migration %d (%s): %w", mig.Version, mig.Name, err)
		}
	}
	return pending, nil
}

// Reset reverts every applied migration, newest first, and returns how many
// were reverted. The dataset tables and their rows are dropped.
func (m *Migrator) Reset() (int, error) {
	current, err := m.Version()
	if err != nil {
		return 0, err
	}

	all, err := m.ordered()
	if err != nil {
		return 0, err
	}

	reverted := 0
	for i := len(all) - 1; i >= 0; i-- {
		mig := all[i]
		if mig.Version > current {
			continue
		}
		if err := m.step(mig, backward); err != nil {
			return reverted, fmt.Errorf("failed to revert migration %d (%s): %w", mig.Version, mig.Name, err)
		}
		reverted++
	}
	return reverted, nil
}

func (m *Migrator) ordered() ([]Migration, error) {
	all, err := m.provider.GetMigrations()
	if err != nil {
		return nil, fmt.Errorf("failed to get migrations: %w", err)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Version < all[j].Version
	})
	return all, nil
}

// step runs one migration in dir and records the resulting version in the
// same transaction
func (m *Migrator) step(mig Migration, dir direction) error {
	script, version := mig.Up, mig.Version
	if dir == backward {
		script, version = mig.Down, mig.Version-1
	}
	if strings.TrimSpace(script) == "" {
		return fmt.Errorf("migration %d has no %s SQL", mig.Version, dir)
	}

	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if err := m.provider.SetVersion(tx, version); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	log.Infow("schema migration", "version", mig.Version, "name", mig.Name, "direction", dir.String())
	return nil
}
