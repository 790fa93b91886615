package fortune

import "errors"

// Fortune selection error definitions using sentinel errors pattern
var (
	ErrEmptyCatalog    = errors.New("fortune catalog is empty")
	ErrMissingCategory = errors.New("fortune category missing from catalog")
	ErrCatalogNotFound = errors.New("fortune catalog file not found")
	ErrInvalidCatalog  = errors.New("invalid fortune catalog format")
)
