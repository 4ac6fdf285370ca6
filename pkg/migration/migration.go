// Package migration runs and tracks schema migrations over gorm.
//
// Migrations register themselves from init():
//
//	func init() {
//	    migration.Register("20240101000000_create_users_table", &CreateUsersTable{})
//	}
//
// and run from the CLI:
//
//	thali migrate             // run all pending
//	thali migrate:rollback    // roll back the last batch
package migration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/thali/pkg/logger"
)

// Migration is implemented by every schema change.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

// migrationRecord is a row of the tracking table.
type migrationRecord struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (migrationRecord) TableName() string { return "thali_migrations" }

// ------------------- Registry -------------------

type registered struct {
	name string
	m    Migration
}

var (
	registryMu sync.Mutex
	registry   []registered
)

// Register adds a migration. Names are timestamp-prefixed so they sort in
// the order they must run.
func Register(name string, m Migration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = append(registry, registered{name: name, m: m})
}

func sorted() []registered {
	registryMu.Lock()
	out := append([]registered(nil), registry...)
	registryMu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// ------------------- Runner -------------------

// Status is one line of the migrate:status table.
type Status struct {
	Name  string
	Ran   bool
	Batch int
}

type Runner struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Runner {
	return &Runner{db: db}
}

func (r *Runner) ensureTable(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&migrationRecord{}); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}
	return nil
}

func (r *Runner) ran(ctx context.Context) (map[string]migrationRecord, error) {
	var rows []migrationRecord
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("migration: fetch ran: %w", err)
	}
	out := make(map[string]migrationRecord, len(rows))
	for _, rec := range rows {
		out[rec.Name] = rec
	}
	return out, nil
}

// Run applies every pending migration as one batch and returns their names.
// Each migration and its tracking row commit together.
func (r *Runner) Run(ctx context.Context) ([]string, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}

	done, err := r.ran(ctx)
	if err != nil {
		return nil, err
	}

	var pending []registered
	for _, reg := range sorted() {
		if _, ok := done[reg.name]; !ok {
			pending = append(pending, reg)
		}
	}
	if len(pending) == 0 {
		logger.Info("migration: nothing to migrate")
		return nil, nil
	}

	batch, err := r.lastBatch(ctx)
	if err != nil {
		return nil, err
	}
	batch++

	var names []string
	for _, reg := range pending {
		logger.Info("migration: running", "name", reg.name, "batch", batch)

		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := reg.m.Up(tx); err != nil {
				return fmt.Errorf("migration: %s up: %w", reg.name, err)
			}
			return tx.Create(&migrationRecord{Name: reg.name, Batch: batch}).Error
		})
		if err != nil {
			return names, err
		}
		names = append(names, reg.name)
	}

	logger.Info("migration: done", "ran", len(names), "batch", batch)
	return names, nil
}

// Rollback reverses the most recent batch, newest first, and returns the
// names rolled back.
func (r *Runner) Rollback(ctx context.Context) ([]string, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}

	batch, err := r.lastBatch(ctx)
	if err != nil {
		return nil, err
	}
	if batch == 0 {
		logger.Info("migration: nothing to roll back")
		return nil, nil
	}

	var records []migrationRecord
	if err := r.db.WithContext(ctx).Where("batch = ?", batch).Order("id desc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("migration: fetch batch %d: %w", batch, err)
	}

	byName := make(map[string]Migration)
	for _, reg := range sorted() {
		byName[reg.name] = reg.m
	}

	var names []string
	for _, rec := range records {
		m, ok := byName[rec.Name]
		if !ok {
			return names, fmt.Errorf("migration: cannot roll back %s: not registered", rec.Name)
		}

		logger.Info("migration: rolling back", "name", rec.Name)
		rec := rec
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := m.Down(tx); err != nil {
				return fmt.Errorf("migration: %s down: %w", rec.Name, err)
			}
			return tx.Delete(&rec).Error
		})
		if err != nil {
			return names, err
		}
		names = append(names, rec.Name)
	}
	return names, nil
}

// Status lists every registered migration and whether it has run.
func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}

	done, err := r.ran(ctx)
	if err != nil {
		return nil, err
	}

	var out []Status
	for _, reg := range sorted() {
		rec, ok := done[reg.name]
		out = append(out, Status{Name: reg.name, Ran: ok, Batch: rec.Batch})
	}
	return out, nil
}

func (r *Runner) lastBatch(ctx context.Context) (int, error) {
	var row struct{ Max int }
	err := r.db.WithContext(ctx).Model(&migrationRecord{}).
		Select("COALESCE(MAX(batch), 0) AS max").
		Scan(&row).Error
	if err != nil {
		return 0, fmt.Errorf("migration: last batch: %w", err)
	}
	return row.Max, nil
}
