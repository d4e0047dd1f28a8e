package product

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrTitleRequired   = errors.New("product title is required")
	ErrTitleLength     = errors.New("product title cannot exceed 100 characters")
)
