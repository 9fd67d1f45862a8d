package store

import (
	"database/sql"
	"errors"
	"fmt"
	"iter"

	"github.com/spf13/cast"

	"github.com/shashiranjanraj/inventory/app/models"
	"github.com/shashiranjanraj/inventory/pkg/event"
)

var errNoRow = errors.New("store: Scan called without a current row")

// Row is one materialized result row keyed by column name.
type Row map[string]any

// Int64 returns col coerced to an int64, or 0.
func (r Row) Int64(col string) int64 { return cast.ToInt64(r[col]) }

// String returns col coerced to a string, or "".
func (r Row) String(col string) string { return cast.ToString(r[col]) }

// Product maps the row onto a Product. Columns outside the projection are
// left at their zero value.
func (r Row) Product() models.Product {
	return models.Product{
		ID:            r.Int64(models.ColumnID),
		Name:          r.String(models.ColumnName),
		Price:         r.Int64(models.ColumnPrice),
		Quantity:      r.Int64(models.ColumnQuantity),
		SupplierName:  r.String(models.ColumnSupplierName),
		SupplierPhone: r.String(models.ColumnSupplierPhone),
	}
}

// Rows is a lazy forward cursor over a query result. It holds a database
// connection until Close is called or iteration ends.
//
//	rows, err := st.Query(ctx, uri, store.QueryOptions{})
//	defer rows.Close()
//	for row, err := range rows.All() { ... }
type Rows struct {
	rows    *sql.Rows
	uri     string
	bus     *event.Bus
	columns []string
	current Row
	err     error
}

func newRows(rows *sql.Rows, uri string, bus *event.Bus) (*Rows, error) {
	cols, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, err
	}
	return &Rows{rows: rows, uri: uri, bus: bus, columns: cols}, nil
}

// URI returns the locator the rows were produced for.
func (r *Rows) URI() string { return r.uri }

// Columns returns the projected column names in result order.
func (r *Rows) Columns() []string { return r.columns }

// Next advances to the next row. It returns false at the end of the result
// or on error; check Err afterwards.
func (r *Rows) Next() bool {
	if r.err != nil || !r.rows.Next() {
		r.current = nil
		return false
	}

	dest := make([]any, len(r.columns))
	ptrs := make([]any, len(r.columns))
	for i := range dest {
		ptrs[i] = &dest[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		r.err = err
		r.current = nil
		return false
	}

	row := make(Row, len(r.columns))
	for i, col := range r.columns {
		if b, ok := dest[i].([]byte); ok {
			row[col] = string(b)
			continue
		}
		row[col] = dest[i]
	}
	r.current = row
	return true
}

// Row returns the row Next moved to.
func (r *Rows) Row() Row { return r.current }

// Scan copies the current row into dest, as sql.Rows.Scan does.
func (r *Rows) Scan(dest ...any) error {
	if r.current == nil {
		return errNoRow
	}
	vals := make([]any, len(r.columns))
	for i, col := range r.columns {
		vals[i] = r.current[col]
	}
	for i := range dest {
		if i >= len(vals) {
			break
		}
		if err := convertAssign(dest[i], vals[i]); err != nil {
			return err
		}
	}
	return nil
}

// Err returns the first error met while iterating.
func (r *Rows) Err() error {
	if r.err != nil {
		return r.err
	}
	return r.rows.Err()
}

// Close releases the connection. Safe to call more than once.
func (r *Rows) Close() error { return r.rows.Close() }

// All ranges over the remaining rows and closes the cursor when done. An
// iteration error is yielded once, with a nil row.
func (r *Rows) All() iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		defer r.Close()
		for r.Next() {
			if !yield(r.current, nil) {
				return
			}
		}
		if err := r.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// Products drains the cursor into Products and closes it.
func (r *Rows) Products() ([]models.Product, error) {
	var out []models.Product
	for row, err := range r.All() {
		if err != nil {
			return nil, err
		}
		out = append(out, row.Product())
	}
	return out, nil
}

// Watch subscribes fn to changes on the rows' locator and anything below it,
// so the consumer knows when to query again.
func (r *Rows) Watch(fn event.Observer) *event.Subscription {
	return r.bus.Subscribe(r.uri, true, fn)
}

func convertAssign(dest, src any) error {
	switch d := dest.(type) {
	case *int64:
		n, err := cast.ToInt64E(src)
		if err != nil {
			return err
		}
		*d = n
	case *int:
		n, err := cast.ToIntE(src)
		if err != nil {
			return err
		}
		*d = n
	case *string:
		s, err := cast.ToStringE(src)
		if err != nil {
			return err
		}
		*d = s
	case *any:
		*d = src
	default:
		return fmt.Errorf("store: cannot scan into %T", dest)
	}
	return nil
}
