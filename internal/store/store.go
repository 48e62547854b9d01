// Package store provides an interface for product storage operations.
package store

import (
	"context"
)

// Product represents a product row.
type Product struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// NewProduct holds the client supplied fields of a product to insert.
type NewProduct struct {
	Name  string
	Price float64
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., database, cache decorator).
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*Product, error)

	// FindAll returns all products ordered by ID.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]Product, error)

	// FindByName returns the product with exactly this name, the lowest ID winning on duplicates.
	// Returns ErrProductNotFound if no product has the name.
	FindByName(ctx context.Context, name string) (*Product, error)

	// SearchByName returns products whose name contains keyword, ignoring case.
	SearchByName(ctx context.Context, keyword string) ([]Product, error)

	// Search returns products matching every active predicate of the filter.
	Search(ctx context.Context, filter Filter) ([]Product, error)

	// Create adds a new product and returns it with the assigned ID.
	Create(ctx context.Context, product NewProduct) (*Product, error)

	// CreateBatch adds the products and returns them with assigned IDs, in input order.
	CreateBatch(ctx context.Context, products []NewProduct) ([]Product, error)

	// Update replaces name and price of an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, product Product) (*Product, error)

	// DeleteByID removes a product by its ID and reports whether a row was removed.
	DeleteByID(ctx context.Context, id int64) (bool, error)
}
