package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/inventory/app/models"
	"github.com/shashiranjanraj/inventory/app/store"
	"github.com/shashiranjanraj/inventory/pkg/logger"
)

// MaxQuantity caps Restock.
const MaxQuantity = math.MaxInt32

// priceExponent places the decimal point of stored prices.
const priceExponent = -2

// InventoryService holds the inventory use cases. All reads and writes go
// through the product store, so observers see every change.
type InventoryService struct {
	store *store.Store
	log   *slog.Logger
}

func NewInventoryService(st *store.Store) *InventoryService {
	return &InventoryService{store: st, log: logger.With("inventory")}
}

// AddProduct checks the form and inserts the product. It returns the new
// product's locator.
func (s *InventoryService) AddProduct(ctx context.Context, form ProductForm) (string, error) {
	p, err := form.Parse()
	if err != nil {
		return "", err
	}

	uri, err := s.store.Insert(ctx, s.store.Contract().ProductsURI(), insertValues(p))
	if err != nil {
		return "", err
	}
	if uri == "" {
		return "", ErrInsertFailed
	}
	s.log.Info("product added", "uri", uri)
	return uri, nil
}

// EditProduct checks the form and writes the columns that differ from the
// stored product. It returns the changed columns, none when the form matches
// what is stored.
func (s *InventoryService) EditProduct(ctx context.Context, id int64, form ProductForm) ([]string, error) {
	next, err := form.Parse()
	if err != nil {
		return nil, err
	}
	current, err := s.Product(ctx, id)
	if err != nil {
		return nil, err
	}

	values := changedValues(current, next)
	if len(values) == 0 {
		s.log.Debug("nothing to update", "id", id)
		return nil, nil
	}

	if err := s.updateOne(ctx, id, values); err != nil {
		return nil, err
	}

	cols := make([]string, 0, len(values))
	for col := range values {
		cols = append(cols, col)
	}
	slices.Sort(cols)
	return cols, nil
}

// Product loads one product.
func (s *InventoryService) Product(ctx context.Context, id int64) (models.Product, error) {
	rows, err := s.store.Query(ctx, s.store.Contract().ProductURI(id), store.QueryOptions{})
	if err != nil {
		return models.Product{}, err
	}
	products, err := rows.Products()
	if err != nil {
		return models.Product{}, err
	}
	if len(products) == 0 {
		return models.Product{}, fmt.Errorf("%w: id %d", ErrProductNotFound, id)
	}
	return products[0], nil
}

// Products lists every product. sortOrder is an SQL ORDER BY expression; empty
// keeps the database order.
func (s *InventoryService) Products(ctx context.Context, sortOrder string) ([]models.Product, error) {
	rows, err := s.store.Query(ctx, s.store.Contract().ProductsURI(), store.QueryOptions{SortOrder: sortOrder})
	if err != nil {
		return nil, err
	}
	return rows.Products()
}

// Sell takes one unit out of stock and returns the remaining quantity.
func (s *InventoryService) Sell(ctx context.Context, id int64) (int64, error) {
	p, err := s.Product(ctx, id)
	if err != nil {
		return 0, err
	}
	if p.Quantity == 0 {
		return 0, ErrOutOfStock
	}
	left := p.Quantity - 1
	if err := s.updateOne(ctx, id, store.Values{models.ColumnQuantity: left}); err != nil {
		return p.Quantity, err
	}
	return left, nil
}

// Restock adds n units and returns the new quantity.
func (s *InventoryService) Restock(ctx context.Context, id, n int64) (int64, error) {
	if n <= 0 {
		return 0, ErrInvalidQuantity
	}
	p, err := s.Product(ctx, id)
	if err != nil {
		return 0, err
	}
	if p.Quantity > MaxQuantity-n {
		return p.Quantity, ErrQuantityLimit
	}
	total := p.Quantity + n
	if err := s.updateOne(ctx, id, store.Values{models.ColumnQuantity: total}); err != nil {
		return p.Quantity, err
	}
	return total, nil
}

// SetQuantity stores q as the product quantity. Writing the stored value is
// a no-op.
func (s *InventoryService) SetQuantity(ctx context.Context, id, q int64) error {
	if q < 0 || q > MaxQuantity {
		return ErrInvalidQuantity
	}
	p, err := s.Product(ctx, id)
	if err != nil {
		return err
	}
	if p.Quantity == q {
		return nil
	}
	return s.updateOne(ctx, id, store.Values{models.ColumnQuantity: q})
}

// DeleteProduct removes one product.
func (s *InventoryService) DeleteProduct(ctx context.Context, id int64) error {
	n, err := s.store.Delete(ctx, s.store.Contract().ProductURI(id), "")
	if err != nil {
		return err
	}
	switch {
	case n == 0:
		return ErrDeleteFailed
	case n > 1:
		s.log.Error("delete touched several products", "id", id, "rows", n)
		return ErrUnexpectedRows
	}
	s.log.Info("product deleted", "id", id)
	return nil
}

// DeleteAll removes every product and returns how many were removed.
func (s *InventoryService) DeleteAll(ctx context.Context) (int64, error) {
	n, err := s.store.Delete(ctx, s.store.Contract().ProductsURI(), "")
	if err != nil {
		return 0, err
	}
	s.log.Info("all products deleted", "rows", n)
	return n, nil
}

func (s *InventoryService) updateOne(ctx context.Context, id int64, values store.Values) error {
	n, err := s.store.Update(ctx, s.store.Contract().ProductURI(id), values, "")
	if err != nil {
		return err
	}
	switch {
	case n == 0:
		return ErrUpdateFailed
	case n > 1:
		s.log.Error("update touched several products", "id", id, "rows", n)
		return ErrUnexpectedRows
	}
	return nil
}

// FormatPrice renders a price stored in the smallest currency unit, e.g.
// 500 as "5.00".
func FormatPrice(price int64) string {
	return decimal.New(price, priceExponent).StringFixed(-priceExponent)
}
