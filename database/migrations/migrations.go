// Package migrations contains all database migration files.
// Apply registers them on a runner; both the CLI and the product store's
// schema guard go through it, so the schema has exactly one definition.
package migrations

import (
	"log/slog"

	"github.com/shashiranjanraj/inventory/pkg/migration"
	"gorm.io/gorm"
)

// SchemaVersion is the number of migrations shipped with this build.
const SchemaVersion = 1

// Register adds every migration to r.
func Register(r *migration.Runner) *migration.Runner {
	return r.Register(CreateProductsTableName, &CreateProductsTable{})
}

// Apply runs all pending migrations against db.
func Apply(db *gorm.DB, log *slog.Logger) (int, error) {
	r := migration.New(db)
	if log != nil {
		r.WithLogger(log)
	}
	return Register(r).Run()
}
