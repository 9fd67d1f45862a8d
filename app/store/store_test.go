package store_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"github.com/shashiranjanraj/inventory/app/models"
	"github.com/shashiranjanraj/inventory/app/store"
	"github.com/shashiranjanraj/inventory/pkg/database"
	"github.com/shashiranjanraj/inventory/pkg/logger"
	"github.com/shashiranjanraj/inventory/pkg/testkit"
)

const authority = "test.inventory"

// StoreSuite runs every test against a fresh database file.
type StoreSuite struct {
	suite.Suite
	ctx   context.Context
	store *store.Store

	collection string
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()

	s.store = testkit.NewStore(s.T(), store.Options{Authority: authority})
	s.collection = s.store.Contract().ProductsURI()
}

func widget() store.Values {
	return store.Values{
		models.ColumnName:          "Widget",
		models.ColumnPrice:         500,
		models.ColumnQuantity:      10,
		models.ColumnSupplierName:  "Acme",
		models.ColumnSupplierPhone: "+1234",
	}
}

func (s *StoreSuite) insert(values store.Values) string {
	uri, err := s.store.Insert(s.ctx, s.collection, values)
	s.Require().NoError(err)
	s.Require().NotEmpty(uri)
	return uri
}

func (s *StoreSuite) products(uri string, opts store.QueryOptions) []models.Product {
	rows, err := s.store.Query(s.ctx, uri, opts)
	s.Require().NoError(err)
	out, err := rows.Products()
	s.Require().NoError(err)
	return out
}

func (s *StoreSuite) TestType() {
	typ, err := s.store.Type(s.collection)
	s.NoError(err)
	s.Equal("vnd.cursor.dir/test.inventory/products", typ)

	typ, err = s.store.Type(s.store.Contract().ProductURI(4))
	s.NoError(err)
	s.Equal("vnd.cursor.item/test.inventory/products", typ)

	_, err = s.store.Type("content://test.inventory/suppliers")
	s.ErrorIs(err, store.ErrUnknownResource)
}

func (s *StoreSuite) TestWidgetScenario() {
	uri := s.insert(widget())
	s.Equal(s.store.Contract().ProductURI(1), uri)

	n, err := s.store.Update(s.ctx, uri, store.Values{models.ColumnQuantity: 9}, "")
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	got := s.products(uri, store.QueryOptions{})
	s.Require().Len(got, 1)
	s.Equal(int64(9), got[0].Quantity)
	s.Equal(int64(500), got[0].Price)

	n, err = s.store.Delete(s.ctx, uri, "")
	s.Require().NoError(err)
	s.Equal(int64(1), n)
	s.Empty(s.products(uri, store.QueryOptions{}))
}

func (s *StoreSuite) TestInsertQueryRoundTrip() {
	first := s.insert(widget())
	second := s.insert(store.Values{
		models.ColumnName:          "Gadget",
		models.ColumnPrice:         "0",
		models.ColumnQuantity:      int64(0),
		models.ColumnSupplierName:  "Globex",
		models.ColumnSupplierPhone: "555-0100",
	})
	s.NotEqual(first, second)

	got := s.products(second, store.QueryOptions{})
	s.Require().Len(got, 1)
	s.Equal(models.Product{
		ID:            2,
		Name:          "Gadget",
		Price:         0,
		Quantity:      0,
		SupplierName:  "Globex",
		SupplierPhone: "555-0100",
	}, got[0])
}

func (s *StoreSuite) TestInsertValidationOrder() {
	tests := []struct {
		drop  []string
		kind  error
		field string
	}{
		{[]string{models.ColumnName, models.ColumnPrice}, store.ErrMissingField, models.ColumnName},
		{[]string{models.ColumnPrice, models.ColumnSupplierPhone}, store.ErrInvalidField, models.ColumnPrice},
		{[]string{models.ColumnQuantity, models.ColumnSupplierName}, store.ErrInvalidField, models.ColumnQuantity},
		{[]string{models.ColumnSupplierName, models.ColumnSupplierPhone}, store.ErrMissingField, models.ColumnSupplierName},
		{[]string{models.ColumnSupplierPhone}, store.ErrMissingField, models.ColumnSupplierPhone},
	}

	for _, tt := range tests {
		s.Run(tt.field, func() {
			values := widget()
			for _, col := range tt.drop {
				delete(values, col)
			}

			uri, err := s.store.Insert(s.ctx, s.collection, values)
			s.Empty(uri)
			s.ErrorIs(err, tt.kind)
			s.ErrorIs(err, store.ErrInvalidArgument)

			var fe *store.FieldError
			s.Require().ErrorAs(err, &fe)
			s.Equal(tt.field, fe.Field)
		})
	}
	s.Empty(s.products(s.collection, store.QueryOptions{}))
}

func (s *StoreSuite) TestInsertRejectsBadValues() {
	tests := map[string]struct {
		col   string
		value any
		kind  error
	}{
		"negative price":    {models.ColumnPrice, -1, store.ErrInvalidField},
		"negative quantity": {models.ColumnQuantity, int64(-5), store.ErrInvalidField},
		"text price":        {models.ColumnPrice, "five", store.ErrInvalidField},
		"fractional price":  {models.ColumnPrice, 1.5, store.ErrInvalidField},
		"bool quantity":     {models.ColumnQuantity, true, store.ErrInvalidField},
		"nil quantity":      {models.ColumnQuantity, nil, store.ErrInvalidField},
		"empty name":        {models.ColumnName, "", store.ErrMissingField},
		"nil phone":         {models.ColumnSupplierPhone, nil, store.ErrMissingField},
		"id supplied":       {models.ColumnID, 7, store.ErrInvalidField},
	}

	for name, tt := range tests {
		s.Run(name, func() {
			values := widget()
			values[tt.col] = tt.value
			uri, err := s.store.Insert(s.ctx, s.collection, values)
			s.Empty(uri)
			s.ErrorIs(err, tt.kind)
		})
	}
}

func (s *StoreSuite) TestInsertUnknownColumnIsSoftFailure() {
	values := widget()
	values["colour"] = "red"

	uri, err := s.store.Insert(s.ctx, s.collection, values)
	s.NoError(err)
	s.Empty(uri)
	s.Empty(s.products(s.collection, store.QueryOptions{}))
}

func (s *StoreSuite) TestInsertNeedsCollectionLocator() {
	_, err := s.store.Insert(s.ctx, s.store.Contract().ProductURI(1), widget())
	s.ErrorIs(err, store.ErrUnsupportedResource)

	_, err = s.store.Insert(s.ctx, "content://elsewhere/products", widget())
	s.ErrorIs(err, store.ErrUnsupportedResource)
}

func (s *StoreSuite) TestPartialUpdateKeepsOtherColumns() {
	uri := s.insert(widget())
	before := s.products(uri, store.QueryOptions{})[0]

	n, err := s.store.Update(s.ctx, uri, store.Values{models.ColumnQuantity: 3}, "")
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	after := s.products(uri, store.QueryOptions{})[0]
	before.Quantity = 3
	s.Equal(before, after)
}

func (s *StoreSuite) TestUpdateValidatesPresentColumnsOnly() {
	uri := s.insert(widget())

	_, err := s.store.Update(s.ctx, uri, store.Values{models.ColumnPrice: -1, models.ColumnName: ""}, "")
	var fe *store.FieldError
	s.Require().ErrorAs(err, &fe)
	s.Equal(models.ColumnName, fe.Field)

	_, err = s.store.Update(s.ctx, uri, store.Values{models.ColumnSupplierPhone: ""}, "")
	s.ErrorIs(err, store.ErrMissingField)

	_, err = s.store.Update(s.ctx, uri, store.Values{models.ColumnID: 3}, "")
	s.ErrorIs(err, store.ErrInvalidField)

	_, err = s.store.Update(s.ctx, uri, store.Values{"colour": "red"}, "")
	s.ErrorIs(err, store.ErrUnknownColumn)
	s.ErrorIs(err, store.ErrInvalidArgument)

	s.Equal(int64(10), s.products(uri, store.QueryOptions{})[0].Quantity)
}

func (s *StoreSuite) TestUpdateMissingRow() {
	n, err := s.store.Update(s.ctx, s.store.Contract().ProductURI(42), store.Values{models.ColumnQuantity: 1}, "")
	s.NoError(err)
	s.Zero(n)
}

func (s *StoreSuite) TestUpdateEmptyValues() {
	uri := s.insert(widget())
	n, err := s.store.Update(s.ctx, uri, store.Values{}, "")
	s.NoError(err)
	s.Zero(n)
}

func (s *StoreSuite) TestItemLocatorOverridesSelection() {
	s.insert(widget())
	second := s.insert(widget())

	// The selection would match nothing; the item id still wins.
	n, err := s.store.Update(s.ctx, second, store.Values{models.ColumnPrice: 1}, "name = ?", "nobody")
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	got := s.products(second, store.QueryOptions{Selection: "id = ?", Args: []any{1}})
	s.Require().Len(got, 1)
	s.Equal(int64(2), got[0].ID)
	s.Equal(int64(1), got[0].Price)
}

func (s *StoreSuite) TestBulkUpdateWithSelection() {
	for i := range 4 {
		v := widget()
		v[models.ColumnQuantity] = i
		s.insert(v)
	}

	n, err := s.store.Update(s.ctx, s.collection, store.Values{models.ColumnPrice: 1}, "quantity >= ?", 2)
	s.Require().NoError(err)
	s.Equal(int64(2), n)

	cheap := s.products(s.collection, store.QueryOptions{Selection: "price = ?", Args: []any{1}})
	s.Len(cheap, 2)
}

func (s *StoreSuite) TestDeleteAllReturnsPriorCount() {
	const n = 5
	for range n {
		s.insert(widget())
	}

	removed, err := s.store.Delete(s.ctx, s.collection, "")
	s.Require().NoError(err)
	s.Equal(int64(n), removed)
	s.Empty(s.products(s.collection, store.QueryOptions{}))

	// Ids are not reused after a bulk delete.
	s.Equal(s.store.Contract().ProductURI(n+1), s.insert(widget()))
}

func (s *StoreSuite) TestDeleteWithSelection() {
	for i := range 3 {
		v := widget()
		v[models.ColumnQuantity] = i
		s.insert(v)
	}

	removed, err := s.store.Delete(s.ctx, s.collection, "quantity = ?", 0)
	s.Require().NoError(err)
	s.Equal(int64(1), removed)
	s.Len(s.products(s.collection, store.QueryOptions{}), 2)

	removed, err = s.store.Delete(s.ctx, s.store.Contract().ProductURI(99), "")
	s.NoError(err)
	s.Zero(removed)
}

func (s *StoreSuite) TestInsertedRowsRoundTrip() {
	const n = 25
	for i := range n {
		v := widget()
		v[models.ColumnName] = fmt.Sprintf("Widget %02d", i)
		s.insert(v)
	}
	s.Len(s.products(s.collection, store.QueryOptions{}), n)
}

func (s *StoreSuite) TestProjectionAndSort() {
	for _, q := range []int{5, 1, 3} {
		v := widget()
		v[models.ColumnQuantity] = q
		s.insert(v)
	}

	rows, err := s.store.Query(s.ctx, s.collection, store.QueryOptions{
		Projection: []string{models.ColumnID, models.ColumnQuantity},
		SortOrder:  "quantity ASC",
	})
	s.Require().NoError(err)
	s.Equal([]string{models.ColumnID, models.ColumnQuantity}, rows.Columns())
	s.Equal(s.collection, rows.URI())

	var quantities []int64
	for rows.Next() {
		var id, q int64
		s.Require().NoError(rows.Scan(&id, &q))
		quantities = append(quantities, q)
		s.NotContains(rows.Row(), models.ColumnName)
	}
	s.NoError(rows.Err())
	s.NoError(rows.Close())
	s.Equal([]int64{1, 3, 5}, quantities)

	_, err = s.store.Query(s.ctx, s.collection, store.QueryOptions{Projection: []string{"colour"}})
	s.ErrorIs(err, store.ErrUnknownColumn)
}

func (s *StoreSuite) TestUnrecognizedLocators() {
	bad := []string{
		"content://test.inventory/suppliers",
		"content://test.inventory/products/0",
		"content://other/products",
		"file://test.inventory/products",
	}
	for _, uri := range bad {
		_, err := s.store.Query(s.ctx, uri, store.QueryOptions{})
		s.ErrorIs(err, store.ErrUnsupportedResource, uri)

		_, err = s.store.Update(s.ctx, uri, store.Values{models.ColumnQuantity: 1}, "")
		s.ErrorIs(err, store.ErrUnsupportedResource, uri)

		_, err = s.store.Delete(s.ctx, uri, "")
		s.ErrorIs(err, store.ErrUnsupportedResource, uri)

		_, err = s.store.Subscribe(uri, false, func(string) {})
		s.ErrorIs(err, store.ErrUnsupportedResource, uri)
	}
}

func (s *StoreSuite) TestEngineFailuresAreSoft() {
	s.insert(widget())

	n, err := s.store.Update(s.ctx, s.collection, store.Values{models.ColumnQuantity: 1}, "no_such_column = ?", 1)
	s.NoError(err)
	s.Zero(n)

	n, err = s.store.Delete(s.ctx, s.collection, "no_such_column = ?", 1)
	s.NoError(err)
	s.Zero(n)

	_, err = s.store.Query(s.ctx, s.collection, store.QueryOptions{Selection: "no_such_column = ?", Args: []any{1}})
	s.Error(err)
}

type notes struct {
	mu   sync.Mutex
	uris []string
}

func (n *notes) observe(uri string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.uris = append(n.uris, uri)
}

func (n *notes) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.uris)
}

func (s *StoreSuite) TestNotifications() {
	list, detail, exact := &notes{}, &notes{}, &notes{}

	sub, err := s.store.Subscribe(s.collection, true, list.observe)
	s.Require().NoError(err)
	defer sub.Close()
	_, err = s.store.Subscribe(s.collection, false, exact.observe)
	s.Require().NoError(err)

	item := s.store.Contract().ProductURI(1)
	_, err = s.store.Subscribe(item, false, detail.observe)
	s.Require().NoError(err)

	// Insert notifies the collection only.
	s.insert(widget())
	s.Equal(1, list.count())
	s.Equal(1, exact.count())
	s.Zero(detail.count())

	// An item update reaches the item and the descendant watcher.
	_, err = s.store.Update(s.ctx, item, store.Values{models.ColumnQuantity: 2}, "")
	s.Require().NoError(err)
	s.Equal(2, list.count())
	s.Equal(1, exact.count())
	s.Equal(1, detail.count())

	// Nothing changed, nothing published.
	_, err = s.store.Update(s.ctx, s.store.Contract().ProductURI(9), store.Values{models.ColumnQuantity: 2}, "")
	s.Require().NoError(err)
	s.Equal(2, list.count())

	// A collection delete reaches item observers too.
	_, err = s.store.Delete(s.ctx, s.collection, "")
	s.Require().NoError(err)
	s.Equal(3, list.count())
	s.Equal(2, exact.count())
	s.Equal(2, detail.count())
	s.Equal(s.collection, detail.uris[1])
}

func (s *StoreSuite) TestNotificationsUseCanonicalLocator() {
	s.insert(widget())
	item := s.store.Contract().ProductURI(1)

	detail := &notes{}
	sub, err := s.store.Subscribe(item, false, detail.observe)
	s.Require().NoError(err)
	defer sub.Close()

	n, err := s.store.Update(s.ctx, s.collection+"/001", store.Values{models.ColumnQuantity: 3}, "")
	s.Require().NoError(err)
	s.Equal(int64(1), n)
	s.Equal([]string{item}, detail.uris)

	n, err = s.store.Delete(s.ctx, s.collection+"/0001", "")
	s.Require().NoError(err)
	s.Equal(int64(1), n)
	s.Equal([]string{item, item}, detail.uris)
}

func (s *StoreSuite) TestRowsWatch() {
	rows, err := s.store.Query(s.ctx, s.collection, store.QueryOptions{})
	s.Require().NoError(err)
	s.Require().NoError(rows.Close())

	seen := &notes{}
	sub := rows.Watch(seen.observe)
	defer sub.Close()

	uri := s.insert(widget())
	_, err = s.store.Update(s.ctx, uri, store.Values{models.ColumnPrice: 1}, "")
	s.Require().NoError(err)

	s.Equal([]string{s.collection, uri}, seen.uris)
}

func (s *StoreSuite) TestConcurrentCallers() {
	const writers, each = 8, 10

	var g errgroup.Group
	for w := range writers {
		g.Go(func() error {
			for i := range each {
				v := widget()
				v[models.ColumnName] = fmt.Sprintf("w%d-%d", w, i)
				uri, err := s.store.Insert(s.ctx, s.collection, v)
				if err != nil {
					return err
				}
				if uri == "" {
					return errors.New("insert refused")
				}
			}
			return nil
		})
		g.Go(func() error {
			rows, err := s.store.Query(s.ctx, s.collection, store.QueryOptions{})
			if err != nil {
				return err
			}
			_, err = rows.Products()
			return err
		})
	}
	s.Require().NoError(g.Wait())

	got := s.products(s.collection, store.QueryOptions{})
	s.Len(got, writers*each)

	ids := map[int64]bool{}
	for _, p := range got {
		ids[p.ID] = true
	}
	s.Len(ids, writers*each)
}

func TestSchemaFailureIsSticky(t *testing.T) {
	db, err := database.Open(testkit.DatabaseConfig(t))
	require.NoError(t, err)
	require.NoError(t, database.Close(db))

	st := store.New(db, store.Options{Authority: authority, Logger: logger.Discard()})
	uri := st.Contract().ProductsURI()

	_, err = st.Query(context.Background(), uri, store.QueryOptions{})
	assert.ErrorIs(t, err, store.ErrSchema)

	_, err = st.Insert(context.Background(), uri, widget())
	assert.ErrorIs(t, err, store.ErrSchema)

	// Resolving a type never touches the database.
	_, err = st.Type(uri)
	assert.NoError(t, err)
}
