// Package catalog serves the read-only storefront product seed.
package catalog

import (
	"errors"
	"strings"

	"github.com/noah-isme/toko-storefront/internal/pricing"
	"github.com/noah-isme/toko-storefront/internal/variant"
)

// ErrNotFound indicates an unknown product id.
var ErrNotFound = errors.New("catalog: product not found")

// Product is a purchasable item and its variant dimensions.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Price         pricing.Money   `json:"price"`
	CompareAt     pricing.Money   `json:"compareAt,omitempty"`
	ImageURL      string          `json:"imageUrl,omitempty"`
	VariantGroups []variant.Group `json:"variantGroups,omitempty"`
}

// Group returns the variant group of the given kind.
func (p Product) Group(kind variant.Kind) (variant.Group, bool) {
	for _, g := range p.VariantGroups {
		if g.Kind == kind {
			return g, true
		}
	}
	return variant.Group{}, false
}

// Catalog is an immutable product list.
type Catalog struct {
	products []Product
	byID     map[string]int
}

// New indexes products by id. Later duplicates are ignored.
func New(products []Product) *Catalog {
	c := &Catalog{byID: make(map[string]int, len(products))}
	for _, p := range products {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			continue
		}
		if _, dup := c.byID[id]; dup {
			continue
		}
		p.ID = id
		c.byID[id] = len(c.products)
		c.products = append(c.products, p)
	}
	return c
}

// Default returns the storefront seed catalog.
func Default() *Catalog {
	return New(Seed())
}

// Lookup returns the product with id.
func (c *Catalog) Lookup(id string) (Product, error) {
	idx, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return Product{}, ErrNotFound
	}
	return c.products[idx], nil
}

// List returns all products in seed order.
func (c *Catalog) List() []Product {
	return append([]Product(nil), c.products...)
}

// Seed is the demo product set.
func Seed() []Product {
	return []Product{
		{
			ID:          "premium-smartwatch-series-x",
			Name:        "Premium Smartwatch Series X",
			Description: "Crafted with precision and packed with cutting-edge technology, your companion for a connected and healthy lifestyle.",
			Price:       299.99,
			CompareAt:   349.99,
			ImageURL:    "https://source.unsplash.com/random/800x600?product,tech",
			VariantGroups: []variant.Group{
				{
					Label: "Color",
					Kind:  variant.KindColor,
					Options: []variant.Option{
						{Name: "Midnight Black", ColorValue: "#000000"},
						{Name: "Ocean Blue", ColorValue: "bg-blue-600"},
						{Name: "Forest Green", ColorValue: "#228B22", Disabled: true},
					},
				},
				{
					Label: "Size",
					Kind:  variant.KindSize,
					Options: []variant.Option{
						{Name: "S"},
						{Name: "M", StockInfo: "Low stock"},
						{Name: "L"},
						{Name: "XL", Disabled: true, StockInfo: "Out of stock"},
					},
				},
			},
		},
		{
			ID:       "wireless-noise-cancelling-headphones",
			Name:     "Wireless Noise-Cancelling Headphones",
			Price:    149.50,
			ImageURL: "https://source.unsplash.com/random/100x100?headphones",
			VariantGroups: []variant.Group{
				{
					Label:   "Color",
					Kind:    variant.KindColor,
					Options: []variant.Option{{Name: "Silver", ColorValue: "#C0C0C0"}},
				},
			},
		},
		{
			ID:       "ergonomic-office-chair",
			Name:     "Ergonomic Office Chair",
			Price:    220.00,
			ImageURL: "https://source.unsplash.com/random/100x100?chair",
		},
	}
}
