// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	perrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/service"
	"github.com/abgdnv/catalog/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const readinessTimeout = 2 * time.Second

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	service  service.ProductService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of Handler with the provided service.
func NewHandler(service service.ProductService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the catalog service.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/addProduct", h.AddProduct)
	r.Post("/addProducts", h.AddProducts)
	r.Get("/products", h.FindAll)
	r.Get("/productById/{id}", h.FindByID)
	r.Get("/product/{name}", h.FindByName)
	r.Put("/update", h.Update)
	r.Delete("/delete/{id}", h.DeleteByID)

	r.Get("/products/search", h.Search)
	r.Get("/products/search/keyword", h.SearchByKeyword)
}

// RegisterProbes registers liveness and readiness endpoints. Readiness fails while db cannot be pinged.
func (h *Handler) RegisterProbes(r chi.Router, db Pinger) {
	r.Get("/healthz", h.HealthCheck)
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			h.logger.WarnContext(r.Context(), "Readiness check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}

// AddProduct handles the creation of a new product.
func (h *Handler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var productCreateDto service.ProductCreateDto
	if err := json.NewDecoder(r.Body).Decode(&productCreateDto); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to create product", "product", productCreateDto)
	if err := h.validate.Struct(productCreateDto); err != nil {
		web.RespondValidationError(w, h.logger, err)
		return
	}

	newProduct, err := h.service.SaveProduct(r.Context(), productCreateDto)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error creating product", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	h.logger.InfoContext(r.Context(), "Product created successfully", "ID", newProduct.ID, "Name", newProduct.Name)
	web.RespondJSON(w, h.logger, http.StatusOK, newProduct)
}

// AddProducts handles the creation of several products at once.
func (h *Handler) AddProducts(w http.ResponseWriter, r *http.Request) {
	var productCreateDtos []service.ProductCreateDto
	if err := json.NewDecoder(r.Body).Decode(&productCreateDtos); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to create products", "count", len(productCreateDtos))
	for i := range productCreateDtos {
		if err := h.validate.Struct(productCreateDtos[i]); err != nil {
			h.logger.WarnContext(r.Context(), "Invalid product in batch", "index", i)
			web.RespondValidationError(w, h.logger, err)
			return
		}
	}

	created, err := h.service.SaveProducts(r.Context(), productCreateDtos)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error creating products", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to create products")
		return
	}
	h.logger.InfoContext(r.Context(), "Products created successfully", "count", len(created))
	web.RespondJSON(w, h.logger, http.StatusOK, created)
}

// FindAll retrieves a list of all products.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received request to find all products")
	list, err := h.service.GetProducts(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}

	h.logger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.GetProductByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			h.logger.WarnContext(r.Context(), "Product not found", "ID", id)
			web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
			return
		}
		h.logger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with ID %d", id))
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

// FindByName retrieves a product by its exact name.
func (h *Handler) FindByName(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	// chi matches on the raw path only when it differs from the decoded one.
	if r.URL.RawPath != "" {
		var err error
		if name, err = url.PathUnescape(name); err != nil {
			web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid product name")
			return
		}
	}

	h.logger.DebugContext(r.Context(), "Received request to find product by name", "Name", name)
	found, err := h.service.GetProductByName(r.Context(), name)
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			h.logger.WarnContext(r.Context(), "Product not found", "Name", name)
			web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with name %s not found", name))
			return
		}
		h.logger.ErrorContext(r.Context(), "Error retrieving product", "Name", name, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

// Update replaces the product identified by the ID in the body.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var productDTO service.ProductDto
	if err := json.NewDecoder(r.Body).Decode(&productDTO); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to update product", "ID", productDTO.ID)
	if err := h.validate.Struct(productDTO); err != nil {
		web.RespondValidationError(w, h.logger, err)
		return
	}

	updated, err := h.service.UpdateProduct(r.Context(), productDTO)
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			h.logger.WarnContext(r.Context(), "Product not found for update", "ID", productDTO.ID)
			web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", productDTO.ID))
			return
		}
		h.logger.ErrorContext(r.Context(), "Error updating product", "ID", productDTO.ID, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to update product with ID %d", productDTO.ID))
		return
	}
	h.logger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
}

// DeleteByID deletes a product by its ID and answers with a confirmation string.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to delete product", "ID", id)
	msg, err := h.service.DeleteProduct(r.Context(), id)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error deleting product", "ID", id, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to delete product with ID %d", id))
		return
	}
	h.logger.InfoContext(r.Context(), "Product deleted", "ID", id)
	web.RespondJSON(w, h.logger, http.StatusOK, msg)
}

// SearchByKeyword lists products whose name contains the keyword query parameter.
func (h *Handler) SearchByKeyword(w http.ResponseWriter, r *http.Request) {
	keyword, ok := web.RequiredString(w, r, h.logger, "keyword")
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received keyword search", "keyword", keyword)
	list, err := h.service.SearchByKeyword(r.Context(), keyword)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error searching products", "keyword", keyword, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to search products")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// Search lists products matching the optional name, minPrice and maxPrice query parameters.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	minPrice, ok := web.ParseOptionalFloat(w, r, h.logger, "minPrice")
	if !ok {
		return
	}
	maxPrice, ok := web.ParseOptionalFloat(w, r, h.logger, "maxPrice")
	if !ok {
		return
	}
	criteria := service.SearchCriteria{
		Name:     web.OptionalString(r, "name"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
	}
	h.logger.DebugContext(r.Context(), "Received product search", "query", r.URL.RawQuery)

	list, err := h.service.Search(r.Context(), criteria)
	if err != nil {
		if errors.Is(err, perrors.ErrInvalidSearchArgument) {
			h.logger.WarnContext(r.Context(), "Invalid search arguments", "error", err)
			web.RespondError(w, h.logger, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "Error searching products", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to search products")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
