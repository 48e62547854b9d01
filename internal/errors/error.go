// Package errors provides custom error types for product-related operations.
package errors

import "errors"

var (
	// ErrProductNotFound is returned when no product matches the requested id or name.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidSearchArgument marks search parameters that cannot describe any result, e.g. minPrice > maxPrice.
	ErrInvalidSearchArgument = errors.New("invalid search argument")
)
