package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// SizeInfo holds per-size inventory state for a product.
type SizeInfo struct {
	Stock     int  `json:"stock"`
	Available bool `json:"available"`
}

// Product represents a catalog item available for purchase. Sizes maps a size
// label (e.g. "S", "M", "Free Size") to its inventory state.
type Product struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Category string
	Sizes    map[string]SizeInfo
	Image    Image
}

// Image holds responsive image URLs for a product.
type Image struct {
	Thumbnail string
	Mobile    string
	Tablet    string
	Desktop   string
}

// InStock reports whether the given size can satisfy the requested quantity.
// A product with no size map is treated as a one-size item that is always
// purchasable.
func (p Product) InStock(size string, quantity int) bool {
	if len(p.Sizes) == 0 {
		return true
	}
	info, ok := p.Sizes[size]
	if !ok {
		return false
	}
	return info.Available && info.Stock >= quantity
}

// Catalog is an in-memory index of products by ID, used by pure pricing code
// that must not perform I/O.
type Catalog map[string]Product

// NewCatalog builds a Catalog from a product list.
func NewCatalog(products []Product) Catalog {
	c := make(Catalog, len(products))
	for _, p := range products {
		c[p.ID] = p
	}
	return c
}

// Lookup returns the product with the given ID.
func (c Catalog) Lookup(id string) (Product, bool) {
	p, ok := c[id]
	return p, ok
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
}
