package seeders

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/shashiranjanraj/inventory/app/models"
	"github.com/shashiranjanraj/inventory/app/store"
)

func init() {
	Register("dummy_products", SeedDummyProducts)
}

// Dummy product fields. Quantities grow geometrically so list screens get a
// spread of digit widths.
const (
	DummyName          = "Long Dummy Product Name Placeholder v.1.36"
	DummyPrice         = 199
	DummySupplierName  = "Dummy Supplier Name"
	DummySupplierPhone = "+0314159265359"

	dummyQuantityFactor = 9
	dummyQuantityLimit  = 100_000_000
	dummyWorkers        = 4
)

// ErrDummyInsert is returned when the store refuses a dummy row.
var ErrDummyInsert = errors.New("seeders: dummy product was not inserted")

// DummyQuantities returns 1, 9, 81, ... below 100,000,000.
func DummyQuantities() []int64 {
	var out []int64
	for q := int64(1); q < dummyQuantityLimit; q *= dummyQuantityFactor {
		out = append(out, q)
	}
	return out
}

// SeedDummyProducts inserts one dummy product per DummyQuantities entry.
func SeedDummyProducts(ctx context.Context, st *store.Store) error {
	uri := st.Contract().ProductsURI()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(dummyWorkers)

	for _, q := range DummyQuantities() {
		g.Go(func() error {
			got, err := st.Insert(ctx, uri, store.Values{
				models.ColumnName:          DummyName,
				models.ColumnPrice:         DummyPrice,
				models.ColumnQuantity:      q,
				models.ColumnSupplierName:  DummySupplierName,
				models.ColumnSupplierPhone: DummySupplierPhone,
			})
			if err != nil {
				return err
			}
			if got == "" {
				return ErrDummyInsert
			}
			return nil
		})
	}
	return g.Wait()
}
