package models

// Column names of the products table.
const (
	ColumnID            = "id"
	ColumnName          = "name"
	ColumnPrice         = "price"
	ColumnQuantity      = "quantity"
	ColumnSupplierName  = "supplier_name"
	ColumnSupplierPhone = "supplier_phone"
)

// TableProducts is the table backing the product store.
const TableProducts = "products"

// Columns lists every products column in table order.
var Columns = []string{
	ColumnID,
	ColumnName,
	ColumnPrice,
	ColumnQuantity,
	ColumnSupplierName,
	ColumnSupplierPhone,
}

// Product is one row of the products table. Price is kept in the smallest
// currency unit.
type Product struct {
	ID            int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name          string `gorm:"column:name;not null"               json:"name"`
	Price         int64  `gorm:"column:price;not null"              json:"price"`
	Quantity      int64  `gorm:"column:quantity;not null"           json:"quantity"`
	SupplierName  string `gorm:"column:supplier_name;not null"      json:"supplier_name"`
	SupplierPhone string `gorm:"column:supplier_phone;not null"     json:"supplier_phone"`
}

func (Product) TableName() string { return TableProducts }

// IsColumn reports whether name is a products column.
func IsColumn(name string) bool {
	for _, c := range Columns {
		if c == name {
			return true
		}
	}
	return false
}
