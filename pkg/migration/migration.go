// Package migration provides the versioned schema runner for the inventory
// database.
//
// Usage:
//
//	r := migration.New(db)
//	r.Register("20180601000000_create_products_table", &CreateProductsTable{})
//	if err := r.Run(); err != nil { ... }
//
// Every applied migration is recorded in schema_migrations, so Run is safe to
// call on every start: already-applied migrations are skipped and the data
// they created is left alone.
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shashiranjanraj/inventory/pkg/logger"
	"gorm.io/gorm"
)

// Migration is the interface every migration must implement.
type Migration interface {
	// Up applies the migration.
	Up(db *gorm.DB) error
	// Down reverses the migration.
	Down(db *gorm.DB) error
}

// migrationRecord is the GORM model stored in the tracking table.
type migrationRecord struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (migrationRecord) TableName() string { return "schema_migrations" }

// Status describes one registered migration.
type Status struct {
	Name  string
	Ran   bool
	Batch int
}

type registeredMigration struct {
	name string
	m    Migration
}

// ErrNoMigrations is returned when Run is called but no migrations are registered.
var ErrNoMigrations = errors.New("migration: no migrations registered")

// ------------------- Runner -------------------

// Runner executes and tracks migrations.
type Runner struct {
	db       *gorm.DB
	log      *slog.Logger
	registry []registeredMigration
}

// New creates a Runner backed by the provided gorm.DB.
func New(db *gorm.DB) *Runner {
	return &Runner{db: db, log: logger.With("migration")}
}

// WithLogger replaces the runner's logger.
func (r *Runner) WithLogger(log *slog.Logger) *Runner {
	r.log = log
	return r
}

// Register adds a migration. name should be timestamp-prefixed, e.g.
// "20180601000000_create_products_table"; pending migrations run in name
// order.
func (r *Runner) Register(name string, m Migration) *Runner {
	r.registry = append(r.registry, registeredMigration{name: name, m: m})
	return r
}

// EnsureTable creates the tracking table if it does not exist.
func (r *Runner) EnsureTable() error {
	return r.db.AutoMigrate(&migrationRecord{})
}

func (r *Runner) pending() ([]registeredMigration, error) {
	var ran []migrationRecord
	if err := r.db.Find(&ran).Error; err != nil {
		return nil, err
	}

	ranSet := make(map[string]bool, len(ran))
	for _, rec := range ran {
		ranSet[rec.Name] = true
	}

	var pending []registeredMigration
	for _, reg := range r.registry {
		if !ranSet[reg.name] {
			pending = append(pending, reg)
		}
	}

	// Timestamps sort lexicographically.
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].name < pending[j].name
	})

	return pending, nil
}

// Run executes all pending migrations in a single batch and returns how many
// ran.
func (r *Runner) Run() (int, error) {
	if len(r.registry) == 0 {
		return 0, ErrNoMigrations
	}
	if err := r.EnsureTable(); err != nil {
		return 0, fmt.Errorf("migration: ensure table: %w", err)
	}

	pending, err := r.pending()
	if err != nil {
		return 0, fmt.Errorf("migration: fetch pending: %w", err)
	}

	if len(pending) == 0 {
		r.log.Debug("nothing to migrate")
		return 0, nil
	}

	batch, err := r.nextBatch()
	if err != nil {
		return 0, err
	}

	for i, reg := range pending {
		r.log.Info("running", "name", reg.name)

		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := reg.m.Up(tx); err != nil {
				return fmt.Errorf("migration: %s up: %w", reg.name, err)
			}
			record := migrationRecord{Name: reg.name, Batch: batch}
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("migration: record %s: %w", reg.name, err)
			}
			return nil
		})
		if err != nil {
			return i, err
		}
	}

	r.log.Info("done", "ran", len(pending), "batch", batch)
	return len(pending), nil
}

// Rollback reverses all migrations from the most recent batch and returns how
// many were rolled back.
func (r *Runner) Rollback() (int, error) {
	if err := r.EnsureTable(); err != nil {
		return 0, fmt.Errorf("migration: ensure table: %w", err)
	}

	last, err := r.nextBatch()
	if err != nil {
		return 0, err
	}
	last--
	if last == 0 {
		r.log.Debug("nothing to roll back")
		return 0, nil
	}

	var records []migrationRecord
	if err := r.db.Where("batch = ?", last).
		Order("id desc").
		Find(&records).Error; err != nil {
		return 0, err
	}

	regMap := make(map[string]Migration, len(r.registry))
	for _, reg := range r.registry {
		regMap[reg.name] = reg.m
	}

	for i, rec := range records {
		m, ok := regMap[rec.Name]
		if !ok {
			return i, fmt.Errorf("migration: cannot roll back %s: not registered", rec.Name)
		}

		r.log.Info("rolling back", "name", rec.Name)

		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := m.Down(tx); err != nil {
				return fmt.Errorf("migration: %s down: %w", rec.Name, err)
			}
			return tx.Delete(&rec).Error
		})
		if err != nil {
			return i, err
		}
	}

	return len(records), nil
}

// Status lists every registered migration and whether it has been run.
func (r *Runner) Status() ([]Status, error) {
	if err := r.EnsureTable(); err != nil {
		return nil, err
	}

	var ran []migrationRecord
	if err := r.db.Find(&ran).Error; err != nil {
		return nil, err
	}

	ranMap := make(map[string]migrationRecord, len(ran))
	for _, rec := range ran {
		ranMap[rec.Name] = rec
	}

	out := make([]Status, 0, len(r.registry))
	for _, reg := range r.registry {
		st := Status{Name: reg.name}
		if rec, ok := ranMap[reg.name]; ok {
			st.Ran = true
			st.Batch = rec.Batch
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Version returns the number of applied migrations, which is the schema
// version of the database.
func (r *Runner) Version() (int, error) {
	if err := r.EnsureTable(); err != nil {
		return 0, err
	}
	var n int64
	if err := r.db.Model(&migrationRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("migration: count: %w", err)
	}
	return int(n), nil
}

func (r *Runner) nextBatch() (int, error) {
	var maxBatch struct{ Max int }
	if err := r.db.Model(&migrationRecord{}).Select("COALESCE(MAX(batch), 0) as max").Scan(&maxBatch).Error; err != nil {
		return 0, fmt.Errorf("migration: read batch: %w", err)
	}
	return maxBatch.Max + 1, nil
}
