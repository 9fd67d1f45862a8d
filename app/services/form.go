package services

import (
	"strconv"
	"strings"

	"github.com/shashiranjanraj/inventory/app/models"
	"github.com/shashiranjanraj/inventory/app/store"
	"github.com/shashiranjanraj/inventory/pkg/validate"
)

// ProductForm is the raw text of the add and edit screens. Price is entered
// in the smallest currency unit.
type ProductForm struct {
	Name          string `validate:"notblank"`
	Price         string `validate:"notblank,max=9"`
	Quantity      string `validate:"notblank,max=9"`
	SupplierName  string `validate:"notblank"`
	SupplierPhone string `validate:"notblank"`
}

// FormFromProduct fills a form with the stored values of p.
func FormFromProduct(p models.Product) ProductForm {
	return ProductForm{
		Name:          p.Name,
		Price:         strconv.FormatInt(p.Price, 10),
		Quantity:      strconv.FormatInt(p.Quantity, 10),
		SupplierName:  p.SupplierName,
		SupplierPhone: p.SupplierPhone,
	}
}

// Parse trims the form and checks it: no blank fields, then price and
// quantity as non-negative integers of at most nine digits.
func (f ProductForm) Parse() (models.Product, error) {
	f = ProductForm{
		Name:          strings.TrimSpace(f.Name),
		Price:         strings.TrimSpace(f.Price),
		Quantity:      strings.TrimSpace(f.Quantity),
		SupplierName:  strings.TrimSpace(f.SupplierName),
		SupplierPhone: strings.TrimSpace(f.SupplierPhone),
	}

	if err := validate.Struct(f); err != nil {
		failures := validate.Failures(err)
		if failures == nil {
			return models.Product{}, err
		}
		for _, fl := range failures {
			if fl.Tag == "notblank" {
				return models.Product{}, ErrBlankFields
			}
		}
		if failures[0].Field == "Price" {
			return models.Product{}, ErrInvalidPrice
		}
		return models.Product{}, ErrInvalidQuantity
	}

	price, err := strconv.ParseInt(f.Price, 10, 64)
	if err != nil || price < 0 {
		return models.Product{}, ErrInvalidPrice
	}
	quantity, err := strconv.ParseInt(f.Quantity, 10, 64)
	if err != nil || quantity < 0 {
		return models.Product{}, ErrInvalidQuantity
	}

	return models.Product{
		Name:          f.Name,
		Price:         price,
		Quantity:      quantity,
		SupplierName:  f.SupplierName,
		SupplierPhone: f.SupplierPhone,
	}, nil
}

func insertValues(p models.Product) store.Values {
	return store.Values{
		models.ColumnName:          p.Name,
		models.ColumnPrice:         p.Price,
		models.ColumnQuantity:      p.Quantity,
		models.ColumnSupplierName:  p.SupplierName,
		models.ColumnSupplierPhone: p.SupplierPhone,
	}
}

// changedValues holds only the columns of next that differ from current.
func changedValues(current, next models.Product) store.Values {
	v := store.Values{}
	if next.Name != current.Name {
		v[models.ColumnName] = next.Name
	}
	if next.Price != current.Price {
		v[models.ColumnPrice] = next.Price
	}
	if next.Quantity != current.Quantity {
		v[models.ColumnQuantity] = next.Quantity
	}
	if next.SupplierName != current.SupplierName {
		v[models.ColumnSupplierName] = next.SupplierName
	}
	if next.SupplierPhone != current.SupplierPhone {
		v[models.ColumnSupplierPhone] = next.SupplierPhone
	}
	return v
}
