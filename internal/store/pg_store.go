package store

import (
	"context"
	"errors"
	"fmt"

	perrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	productColumns = "id, name, price"

	findByIDQuery     = "SELECT " + productColumns + " FROM products WHERE id = $1"
	findAllQuery      = "SELECT " + productColumns + " FROM products ORDER BY id"
	findByNameQuery   = "SELECT " + productColumns + " FROM products WHERE name = $1 ORDER BY id LIMIT 1"
	searchByNameQuery = "SELECT " + productColumns + ` FROM products WHERE name ILIKE $1 ESCAPE '\' ORDER BY id`
	createQuery       = "INSERT INTO products (name, price) VALUES ($1, $2) RETURNING " + productColumns
	updateQuery       = "UPDATE products SET name = $2, price = $3 WHERE id = $1 RETURNING " + productColumns
	deleteQuery       = "DELETE FROM products WHERE id = $1"
)

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{
		db: dbp,
	}
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id int64) (*Product, error) {
	product, err := p.queryOne(ctx, findByIDQuery, id)
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return product, nil
}

// FindAll retrieves all products ordered by ID.
func (p *PgStore) FindAll(ctx context.Context) ([]Product, error) {
	products, err := p.queryMany(ctx, findAllQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	return products, nil
}

// FindByName retrieves the product with exactly the given name.
// Returns ErrProductNotFound if no product has the name.
func (p *PgStore) FindByName(ctx context.Context, name string) (*Product, error) {
	product, err := p.queryOne(ctx, findByNameQuery, name)
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find product by name: %w", err)
	}
	return product, nil
}

// SearchByName retrieves products whose name contains keyword, ignoring case.
func (p *PgStore) SearchByName(ctx context.Context, keyword string) ([]Product, error) {
	products, err := p.queryMany(ctx, searchByNameQuery, containsPattern(keyword))
	if err != nil {
		return nil, fmt.Errorf("failed to search products by name: %w", err)
	}
	return products, nil
}

// Search retrieves products matching every active predicate of the filter.
func (p *PgStore) Search(ctx context.Context, filter Filter) ([]Product, error) {
	where, args := filter.where()
	query := fmt.Sprintf("SELECT %s FROM products %s ORDER BY id", productColumns, where)
	products, err := p.queryMany(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

// Create adds a new product to the system.
// Returns an error if the product cannot be created.
func (p *PgStore) Create(ctx context.Context, product NewProduct) (*Product, error) {
	created, err := p.queryOne(ctx, createQuery, product.Name, product.Price)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return created, nil
}

// CreateBatch inserts all products in a single round trip.
// The batch runs in one implicit transaction, so either every row is inserted or none is.
func (p *PgStore) CreateBatch(ctx context.Context, products []NewProduct) ([]Product, error) {
	if len(products) == 0 {
		return []Product{}, nil
	}
	batch := &pgx.Batch{}
	for _, product := range products {
		batch.Queue(createQuery, product.Name, product.Price)
	}

	results := p.db.SendBatch(ctx, batch)
	created := make([]Product, 0, len(products))
	for range products {
		var product Product
		if err := results.QueryRow().Scan(&product.ID, &product.Name, &product.Price); err != nil {
			_ = results.Close()
			return nil, fmt.Errorf("failed to create products: %w", err)
		}
		created = append(created, product)
	}
	if err := results.Close(); err != nil {
		return nil, fmt.Errorf("failed to create products: %w", err)
	}
	return created, nil
}

// Update replaces name and price of an existing product.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) Update(ctx context.Context, product Product) (*Product, error) {
	updated, err := p.queryOne(ctx, updateQuery, product.ID, product.Name, product.Price)
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return updated, nil
}

// DeleteByID removes a product by its unique identifier.
// Reports false without error when no product had the ID.
func (p *PgStore) DeleteByID(ctx context.Context, id int64) (bool, error) {
	tag, err := p.db.Exec(ctx, deleteQuery, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete product by ID: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// queryOne runs a query returning at most one product row. No row maps to ErrProductNotFound.
func (p *PgStore) queryOne(ctx context.Context, query string, args ...any) (*Product, error) {
	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	product, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Product])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (p *PgStore) queryMany(ctx context.Context, query string, args ...any) ([]Product, error) {
	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Product])
}
