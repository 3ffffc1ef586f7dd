package utex

import (
	"fmt"

	"github.com/pkg/errors"
)

type (
	// SchemaMismatchError reports a required field that is absent or
	// carries the wrong value kind. Malformed texture metadata must not
	// degrade to a generic record, so these are hard errors.
	SchemaMismatchError struct {
		Field  string
		Reason string
	}
)

const (
	ReasonNotFound     = "not found"
	ReasonTypeMismatch = "type mismatch"
)

func (e SchemaMismatchError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// ErrRange means a streaming descriptor sliced outside its resource
// after a positive bundle-name match, which implies corruption rather
// than a resource that simply lives elsewhere.
var ErrRange = errors.New("streaming slice out of resource range")
