package apiclient

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authbridge/internal/common"
)

var (
	ErrUnavailable  = common.ErrUnavailable
	ErrUnauthorized = common.ErrorUnauthorized
)

// FieldErrors maps a field name to its ordered validation messages.
type FieldErrors map[string][]string

// FieldError is a 4xx response carrying per-field validation messages.
type FieldError struct {
	Status int
	Fields FieldErrors
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("api validation error: status %d, %d field(s)", e.Status, len(e.Fields))
}

// StatusError is a non-2xx response without a field-keyed body.
type StatusError struct {
	Status int
	Body   string
	kind   error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api error: status %d", e.Status)
}

func (e *StatusError) Unwrap() error { return e.kind }

// AsFieldError returns the field payload carried by err, if any.
func AsFieldError(err error) (FieldErrors, bool) {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe.Fields, true
	}
	return nil, false
}
