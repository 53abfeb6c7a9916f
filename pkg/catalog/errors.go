package catalog

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

var (
	// ErrDataUnavailable means the backing table is missing or has no usable rows.
	// Recommendations cannot be served until it is fixed.
	ErrDataUnavailable = eris.New("catalog: data unavailable")

	// ErrNotFound means no row matched a rating target.
	ErrNotFound = eris.New("catalog: dish not found")
)

// ValidationError lists every field of a write request that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("catalog: invalid or missing fields: %s", strings.Join(e.Fields, ", "))
}

// Has reports whether field is among the failing fields.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f == field {
			return true
		}
	}
	return false
}
