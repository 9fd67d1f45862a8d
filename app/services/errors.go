package services

import "errors"

var (
	ErrBlankFields     = errors.New("inventory: all fields are required")
	ErrInvalidPrice    = errors.New("inventory: invalid price")
	ErrInvalidQuantity = errors.New("inventory: invalid quantity")
	ErrProductNotFound = errors.New("inventory: product not found")
	ErrOutOfStock      = errors.New("inventory: no products left to sell")
	ErrQuantityLimit   = errors.New("inventory: maximum quantity reached")

	ErrInsertFailed   = errors.New("inventory: product was not saved")
	ErrUpdateFailed   = errors.New("inventory: product was not updated")
	ErrDeleteFailed   = errors.New("inventory: product was not deleted")
	ErrUnexpectedRows = errors.New("inventory: more than one product changed")
)
