package gateway

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("resource not found on backend")
	ErrUnauthorized = errors.New("backend rejected credentials")
	ErrForbidden    = errors.New("backend denied access")
)

// UpstreamError carries a backend failure that maps to no specific condition.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}
