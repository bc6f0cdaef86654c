package errors

import (
	"errors"
	"fmt"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrUnknownEvent   = fmt.Errorf("%w: unknown event", ErrValidation)
	ErrNotFound       = errors.New("not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrUpstreamFetch  = errors.New("upstream fetch failed")
	ErrStoreWrite     = errors.New("store write failed")
	ErrMissingVariant = errors.New("variant not found in product table")
	ErrEmptyCatalog   = errors.New("catalog is empty")
)
