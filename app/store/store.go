// Package store is the product store: a locator-routed CRUD gateway over the
// products table.
//
// Every call names its target with a content locator. The collection locator
// (content://<authority>/products) addresses all products; an item locator
// (content://<authority>/products/<id>) addresses one. Mutations that change
// data notify the observers subscribed to the affected locator.
//
// Validation failures are returned as errors. Engine refusals are not: a
// failed insert returns an empty locator and a failed update or delete
// returns zero rows, and the failure is logged.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/inventory/app/contract"
	"github.com/shashiranjanraj/inventory/app/models"
	"github.com/shashiranjanraj/inventory/database/migrations"
	"github.com/shashiranjanraj/inventory/pkg/event"
	"github.com/shashiranjanraj/inventory/pkg/locator"
	"github.com/shashiranjanraj/inventory/pkg/logger"
	"github.com/shashiranjanraj/inventory/pkg/metrics"
)

// Options configures a Store. Zero values select defaults.
type Options struct {
	// Authority of the locators the store answers to.
	Authority string
	Logger    *slog.Logger
	// Bus carries change notifications. Stores sharing a bus share observers.
	Bus *event.Bus
}

// QueryOptions narrows a query. Selection is an SQL expression with ?
// placeholders bound to Args; it is ignored for item locators.
type QueryOptions struct {
	Projection []string
	Selection  string
	Args       []any
	SortOrder  string
}

// Store is safe for concurrent use. Writes are serialized by the database.
type Store struct {
	db       *gorm.DB
	log      *slog.Logger
	bus      *event.Bus
	contract contract.Contract
	matcher  *locator.Matcher

	schemaOnce sync.Once
	schemaErr  error
}

// New creates a store over db. The schema is created on first use.
func New(db *gorm.DB, opts Options) *Store {
	log := opts.Logger
	if log == nil {
		log = logger.With("store")
	}
	bus := opts.Bus
	if bus == nil {
		bus = event.NewBus(log)
	}
	c := contract.New(opts.Authority)

	return &Store{
		db:       db,
		log:      log,
		bus:      bus,
		contract: c,
		matcher:  c.Matcher(),
	}
}

// Contract returns the names this store answers to.
func (s *Store) Contract() contract.Contract { return s.contract }

// Bus returns the notification bus.
func (s *Store) Bus() *event.Bus { return s.bus }

// ensureSchema applies the migrations once per Store. A failure is sticky.
func (s *Store) ensureSchema() error {
	s.schemaOnce.Do(func() {
		if _, err := migrations.Apply(s.db, s.log); err != nil {
			s.schemaErr = fmt.Errorf("%w: %v", ErrSchema, err)
		}
	})
	return s.schemaErr
}

// Type returns the content-type tag for uri.
func (s *Store) Type(uri string) (string, error) {
	switch s.matcher.Match(uri).Kind {
	case locator.Collection:
		metrics.RecordOutcome("type", metrics.OutcomeOK)
		return s.contract.CollectionType(), nil
	case locator.Item:
		metrics.RecordOutcome("type", metrics.OutcomeOK)
		return s.contract.ItemType(), nil
	default:
		metrics.RecordOutcome("type", metrics.OutcomeRejected)
		return "", fmt.Errorf("%w: %s", ErrUnknownResource, uri)
	}
}

// Query returns a lazy cursor over the rows uri addresses. The caller must
// close it.
func (s *Store) Query(ctx context.Context, uri string, opts QueryOptions) (*Rows, error) {
	defer metrics.ObserveOperation("query", time.Now())

	m := s.matcher.Match(uri)
	if m.Kind == locator.Unrecognized {
		metrics.RecordOutcome("query", metrics.OutcomeRejected)
		return nil, unsupported("query", uri)
	}
	for _, col := range opts.Projection {
		if !models.IsColumn(col) {
			metrics.RecordOutcome("query", metrics.OutcomeRejected)
			return nil, UnknownColumn(col)
		}
	}
	if err := s.ensureSchema(); err != nil {
		metrics.RecordOutcome("query", metrics.OutcomeFailed)
		return nil, err
	}

	tx := s.scope(ctx, m, opts.Selection, opts.Args)
	if len(opts.Projection) > 0 {
		tx = tx.Select(opts.Projection)
	}
	if opts.SortOrder != "" {
		tx = tx.Order(opts.SortOrder)
	}

	sqlRows, err := tx.Rows()
	if err != nil {
		metrics.RecordOutcome("query", metrics.OutcomeFailed)
		return nil, fmt.Errorf("store: query %s: %w", uri, err)
	}
	rows, err := newRows(sqlRows, uri, s.bus)
	if err != nil {
		metrics.RecordOutcome("query", metrics.OutcomeFailed)
		return nil, fmt.Errorf("store: query %s: %w", uri, err)
	}

	metrics.RecordOutcome("query", metrics.OutcomeOK)
	return rows, nil
}

// Insert adds a product through the collection locator and returns the new
// item locator. Every column except id is required. If the database refuses
// the row the result is "" with a nil error.
func (s *Store) Insert(ctx context.Context, uri string, values Values) (string, error) {
	defer metrics.ObserveOperation("insert", time.Now())

	m := s.matcher.Match(uri)
	if m.Kind != locator.Collection {
		metrics.RecordOutcome("insert", metrics.OutcomeRejected)
		return "", unsupported("insertion", uri)
	}

	checked, err := checkValues(values, false)
	if err != nil {
		metrics.RecordOutcome("insert", metrics.OutcomeRejected)
		return "", err
	}
	if err := s.ensureSchema(); err != nil {
		metrics.RecordOutcome("insert", metrics.OutcomeFailed)
		return "", err
	}

	if unknown := unknownColumns(values); len(unknown) > 0 {
		sort.Strings(unknown)
		s.log.Error("insert refused", "uri", uri, "unknown_columns", strings.Join(unknown, ","))
		metrics.RecordOutcome("insert", metrics.OutcomeFailed)
		return "", nil
	}

	p := models.Product{
		Name:          checked[models.ColumnName].(string),
		Price:         checked[models.ColumnPrice].(int64),
		Quantity:      checked[models.ColumnQuantity].(int64),
		SupplierName:  checked[models.ColumnSupplierName].(string),
		SupplierPhone: checked[models.ColumnSupplierPhone].(string),
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil || p.ID <= 0 {
		s.log.Error("insert failed", "uri", uri, "error", err)
		metrics.RecordOutcome("insert", metrics.OutcomeFailed)
		return "", nil
	}

	s.log.Debug("product inserted", "id", p.ID)
	metrics.RecordOutcome("insert", metrics.OutcomeOK)

	// The new row had no observers of its own yet.
	s.notify(s.canonical(m), false)
	return s.contract.ProductURI(p.ID), nil
}

// Update changes the columns present in values on the rows uri addresses and
// returns how many rows changed. For an item locator selection is ignored.
// Database failures return 0 with a nil error.
func (s *Store) Update(ctx context.Context, uri string, values Values, selection string, args ...any) (int64, error) {
	defer metrics.ObserveOperation("update", time.Now())

	m := s.matcher.Match(uri)
	if m.Kind == locator.Unrecognized {
		metrics.RecordOutcome("update", metrics.OutcomeRejected)
		return 0, unsupported("update", uri)
	}
	if len(values) == 0 {
		metrics.RecordOutcome("update", metrics.OutcomeOK)
		return 0, nil
	}
	if unknown := unknownColumns(values); len(unknown) > 0 {
		sort.Strings(unknown)
		metrics.RecordOutcome("update", metrics.OutcomeRejected)
		return 0, UnknownColumn(unknown[0])
	}

	checked, err := checkValues(values, true)
	if err != nil {
		metrics.RecordOutcome("update", metrics.OutcomeRejected)
		return 0, err
	}
	if err := s.ensureSchema(); err != nil {
		metrics.RecordOutcome("update", metrics.OutcomeFailed)
		return 0, err
	}

	res := s.scope(ctx, m, selection, args).Updates(checked)
	if res.Error != nil {
		s.log.Error("update failed", "uri", uri, "error", res.Error)
		metrics.RecordOutcome("update", metrics.OutcomeFailed)
		return 0, nil
	}

	s.log.Debug("products updated", "uri", uri, "rows", res.RowsAffected)
	metrics.RecordOutcome("update", metrics.OutcomeOK)
	metrics.RecordRows("update", res.RowsAffected)

	if res.RowsAffected > 0 {
		s.notify(s.canonical(m), true)
	}
	return res.RowsAffected, nil
}

// Delete removes the rows uri addresses and returns how many were removed.
// The collection locator with an empty selection removes every product.
// Database failures return 0 with a nil error.
func (s *Store) Delete(ctx context.Context, uri string, selection string, args ...any) (int64, error) {
	defer metrics.ObserveOperation("delete", time.Now())

	m := s.matcher.Match(uri)
	if m.Kind == locator.Unrecognized {
		metrics.RecordOutcome("delete", metrics.OutcomeRejected)
		return 0, unsupported("deletion", uri)
	}
	if err := s.ensureSchema(); err != nil {
		metrics.RecordOutcome("delete", metrics.OutcomeFailed)
		return 0, err
	}

	res := s.scope(ctx, m, selection, args).Delete(&models.Product{})
	if res.Error != nil {
		s.log.Error("delete failed", "uri", uri, "error", res.Error)
		metrics.RecordOutcome("delete", metrics.OutcomeFailed)
		return 0, nil
	}

	s.log.Debug("products deleted", "uri", uri, "rows", res.RowsAffected)
	metrics.RecordOutcome("delete", metrics.OutcomeOK)
	metrics.RecordRows("delete", res.RowsAffected)

	if res.RowsAffected > 0 {
		s.notify(s.canonical(m), true)
	}
	return res.RowsAffected, nil
}

// Subscribe registers fn for changes on uri. With descendants set, changes on
// item locators below a collection locator are delivered too.
func (s *Store) Subscribe(uri string, descendants bool, fn event.Observer) (*event.Subscription, error) {
	if s.matcher.Match(uri).Kind == locator.Unrecognized {
		return nil, unsupported("subscription", uri)
	}
	return s.bus.Subscribe(uri, descendants, fn), nil
}

// scope builds the statement base for a matched locator. Item locators always
// select by id; the caller's selection only applies to the collection.
func (s *Store) scope(ctx context.Context, m locator.Match, selection string, args []any) *gorm.DB {
	tx := s.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Model(&models.Product{})

	if m.Kind == locator.Item {
		return tx.Where(clause.Eq{Column: clause.Column{Name: models.ColumnID}, Value: m.ID})
	}
	if strings.TrimSpace(selection) != "" {
		return tx.Where(clause.Expr{SQL: selection, Vars: args})
	}
	return tx
}

// canonical spells a matched locator the way observers subscribe to it, so
// products/001 publishes on products/1.
func (s *Store) canonical(m locator.Match) string {
	if m.Kind == locator.Item {
		return s.contract.ProductURI(m.ID)
	}
	return s.contract.ProductsURI()
}

func (s *Store) notify(uri string, sweep bool) {
	n := s.bus.Publish(uri, sweep)
	metrics.RecordNotifications(n)
}
