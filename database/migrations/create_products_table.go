package migrations

import (
	"gorm.io/gorm"
)

// CreateProductsTableName is the tracked name of the products migration.
const CreateProductsTableName = "20180601000000_create_products_table"

// Non-negative price and quantity are enforced by the store, so the table
// carries no CHECK constraints.
const createProductsSQL = `CREATE TABLE IF NOT EXISTS products (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	price INTEGER NOT NULL,
	quantity INTEGER NOT NULL,
	supplier_name TEXT NOT NULL,
	supplier_phone TEXT NOT NULL
)`

type CreateProductsTable struct{}

func (m *CreateProductsTable) Up(db *gorm.DB) error {
	return db.Exec(createProductsSQL).Error
}

func (m *CreateProductsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("products")
}
