package uproject

import (
	"encoding/json"

	"unity-peek/unityfs/uvalue"
)

type (
	// Handle wraps a non-scalar value without expanding it. The type
	// name is available immediately; the projected value is computed on
	// access, and that access is a full (deep) projection.
	Handle struct {
		data uvalue.Data
	}
)

func NewHandle(data uvalue.Data) *Handle {
	return &Handle{data: data}
}

// Type reports the union tag, or the schema type name for named
// variants.
func (h *Handle) Type() string {
	return h.data.Name()
}

// Data projects the wrapped value deeply.
func (h *Handle) Data() (any, error) {
	return ProjectDeep(h.data)
}

// MarshalJSON keeps object dumps bounded: a handle renders as its type
// name only, never its contents.
func (h *Handle) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"type": h.Type()})
}
