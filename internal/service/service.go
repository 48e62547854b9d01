// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	perrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/events"
	"github.com/abgdnv/catalog/internal/store"
	"github.com/abgdnv/catalog/pkg/messaging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// SaveProduct adds a new product and returns it with its assigned ID.
	SaveProduct(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// SaveProducts adds the products and returns them with assigned IDs, in input order.
	SaveProducts(ctx context.Context, products []ProductCreateDto) ([]ProductDto, error)

	// GetProducts returns all products.
	// Returns an empty slice if no products exist.
	GetProducts(ctx context.Context) ([]ProductDto, error)

	// GetProductByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	GetProductByID(ctx context.Context, id int64) (*ProductDto, error)

	// GetProductByName retrieves the product with exactly this name.
	// Returns ErrProductNotFound if no product has the name.
	GetProductByName(ctx context.Context, name string) (*ProductDto, error)

	// UpdateProduct replaces the product with the same ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	UpdateProduct(ctx context.Context, product ProductDto) (*ProductDto, error)

	// DeleteProduct removes a product by its ID and returns a confirmation message,
	// whether or not the product existed.
	DeleteProduct(ctx context.Context, id int64) (string, error)

	// SearchByKeyword returns products whose name contains keyword, ignoring case.
	SearchByKeyword(ctx context.Context, keyword string) ([]ProductDto, error)

	// Search returns products matching all supplied criteria.
	// Returns ErrInvalidSearchArgument if MinPrice is greater than MaxPrice.
	Search(ctx context.Context, criteria SearchCriteria) ([]ProductDto, error)
}

// ProductCreateDto represents the data transfer object for creating a new product.
type ProductCreateDto struct {
	Name  string  `json:"name"  validate:"required,max=255"`
	Price float64 `json:"price"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID    int64   `json:"id"    validate:"required,gt=0"`
	Name  string  `json:"name"  validate:"required,max=255"`
	Price float64 `json:"price"`
}

// SearchCriteria holds the optional filters of a product search.
type SearchCriteria struct {
	Name     *string
	MinPrice *float64
	MaxPrice *float64
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository      store.ProductStore
	publisher       messaging.Publisher
	createdCounter  metric.Int64Counter
	deletedCounter  metric.Int64Counter
	searchesCounter metric.Int64Counter
}

// NewService creates a new instance of ProductService with the provided repository and event publisher.
func NewService(repo store.ProductStore, publisher messaging.Publisher) *Service {
	meter := otel.Meter("catalog-service")
	return &Service{
		repository:      repo,
		publisher:       publisher,
		createdCounter:  mustCounter(meter, "products_created", "Total number of created products"),
		deletedCounter:  mustCounter(meter, "products_deleted", "Total number of deleted products"),
		searchesCounter: mustCounter(meter, "product_searches", "Total number of product searches"),
	}
}

func mustCounter(meter metric.Meter, name, description string) metric.Int64Counter {
	counter, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		panic(fmt.Sprintf("failed to create %s counter: %v", name, err))
	}
	return counter
}

// SaveProduct creates a new product and returns it as a ProductDto.
func (s *Service) SaveProduct(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	created, err := s.repository.Create(ctx, store.NewProduct{Name: product.Name, Price: product.Price})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.createdCounter.Add(ctx, 1)
	s.publish(ctx, events.ProductCreated, created)
	return toDto(created), nil
}

// SaveProducts creates all products and returns them as ProductDTOs in input order.
// An empty input returns an empty slice without touching the store.
func (s *Service) SaveProducts(ctx context.Context, products []ProductCreateDto) ([]ProductDto, error) {
	if len(products) == 0 {
		return []ProductDto{}, nil
	}
	newProducts := make([]store.NewProduct, len(products))
	for i, p := range products {
		newProducts[i] = store.NewProduct{Name: p.Name, Price: p.Price}
	}
	created, err := s.repository.CreateBatch(ctx, newProducts)
	if err != nil {
		return nil, fmt.Errorf("failed to create products: %w", err)
	}
	s.createdCounter.Add(ctx, int64(len(created)))
	for i := range created {
		s.publish(ctx, events.ProductCreated, &created[i])
	}
	return toDtos(created), nil
}

// GetProducts retrieves all products.
func (s *Service) GetProducts(ctx context.Context) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return toDtos(products), nil
}

// GetProductByID retrieves a product by its ID.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) GetProductByID(ctx context.Context, id int64) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %d: %w", id, err)
	}
	return toDto(product), nil
}

// GetProductByName retrieves a product by its exact name.
// Returns ErrProductNotFound if no product has the name.
func (s *Service) GetProductByName(ctx context.Context, name string) (*ProductDto, error) {
	product, err := s.repository.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by name %q: %w", name, err)
	}
	return toDto(product), nil
}

// UpdateProduct replaces name and price of the product with the given ID.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) UpdateProduct(ctx context.Context, product ProductDto) (*ProductDto, error) {
	updated, err := s.repository.Update(ctx, store.Product{ID: product.ID, Name: product.Name, Price: product.Price})
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %d: %w", product.ID, err)
	}
	s.publish(ctx, events.ProductUpdated, updated)
	return toDto(updated), nil
}

// DeleteProduct deletes a product by its ID. Deleting a missing product is not an error.
func (s *Service) DeleteProduct(ctx context.Context, id int64) (string, error) {
	deleted, err := s.repository.DeleteByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to delete product with ID %d: %w", id, err)
	}
	if deleted {
		s.deletedCounter.Add(ctx, 1)
		s.publish(ctx, events.ProductDeleted, &store.Product{ID: id})
	}
	return fmt.Sprintf("product removed !! %d", id), nil
}

// SearchByKeyword retrieves products whose name contains keyword, ignoring case.
func (s *Service) SearchByKeyword(ctx context.Context, keyword string) ([]ProductDto, error) {
	products, err := s.repository.SearchByName(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("failed to search products by keyword: %w", err)
	}
	s.searchesCounter.Add(ctx, 1)
	return toDtos(products), nil
}

// Search retrieves products matching every supplied criterion.
// Returns ErrInvalidSearchArgument if MinPrice is greater than MaxPrice.
func (s *Service) Search(ctx context.Context, criteria SearchCriteria) ([]ProductDto, error) {
	if criteria.MinPrice != nil && criteria.MaxPrice != nil && *criteria.MinPrice > *criteria.MaxPrice {
		return nil, fmt.Errorf("%w: minPrice (%v) must not be greater than maxPrice (%v)",
			perrors.ErrInvalidSearchArgument, *criteria.MinPrice, *criteria.MaxPrice)
	}
	products, err := s.repository.Search(ctx, store.Filter{
		Name:     criteria.Name,
		MinPrice: criteria.MinPrice,
		MaxPrice: criteria.MaxPrice,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	s.searchesCounter.Add(ctx, 1)
	return toDtos(products), nil
}

// publish sends a product event. Failures are logged and never fail the write.
func (s *Service) publish(ctx context.Context, eventType events.Type, product *store.Product) {
	event := events.ProductEvent{
		Type:       eventType,
		ProductID:  product.ID,
		Name:       product.Name,
		Price:      product.Price,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish product event", "type", eventType, "ID", product.ID, "error", err)
	}
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:    product.ID,
		Name:  product.Name,
		Price: product.Price,
	}
}

func toDtos(products []store.Product) []ProductDto {
	productDTOs := make([]ProductDto, len(products))
	for i := range products {
		productDTOs[i] = *toDto(&products[i])
	}
	return productDTOs
}
