// Package contract holds the public names of the product store: its
// authority, resource paths, content-type tags and locator builders. Callers
// build locators here instead of formatting strings themselves.
package contract

import (
	"github.com/shashiranjanraj/inventory/pkg/locator"
)

// DefaultAuthority is the authority used when none is configured.
const DefaultAuthority = "com.example.inventory.productprovider"

// PathProducts is the path segment of the products collection.
const PathProducts = "products"

// IDParam names the item id parameter in the locator patterns.
const IDParam = "id"

const (
	collectionTypePrefix = "vnd.cursor.dir"
	itemTypePrefix       = "vnd.cursor.item"
)

// Contract binds the resource names to one authority.
type Contract struct {
	authority string
}

// New returns the contract for authority. An empty authority selects
// DefaultAuthority.
func New(authority string) Contract {
	if authority == "" {
		authority = DefaultAuthority
	}
	return Contract{authority: authority}
}

func (c Contract) Authority() string { return c.authority }

// ProductsURI is the collection locator, content://<authority>/products.
func (c Contract) ProductsURI() string {
	return locator.Scheme + "://" + c.authority + "/" + PathProducts
}

// ProductURI is the item locator for id.
func (c Contract) ProductURI(id int64) string {
	return locator.WithID(c.ProductsURI(), id)
}

// CollectionType is the content-type tag for the products collection.
func (c Contract) CollectionType() string {
	return collectionTypePrefix + "/" + c.authority + "/" + PathProducts
}

// ItemType is the content-type tag for a single product.
func (c Contract) ItemType() string {
	return itemTypePrefix + "/" + c.authority + "/" + PathProducts
}

// Matcher builds the locator matcher for the products resources.
func (c Contract) Matcher() *locator.Matcher {
	return locator.New(c.authority, IDParam).
		Add("/"+PathProducts, locator.Collection).
		Add("/"+PathProducts+"/{"+IDParam+":[0-9]+}", locator.Item)
}
