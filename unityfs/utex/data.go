package utex

type (
	// Container is the narrow view of a loaded bundle that resolution
	// needs: its own name and exact-name lookup of stored resources.
	// Both operations are read-only and repeatable.
	Container interface {
		Name() string
		Resource(name string) ([]byte, bool)
	}

	// StreamingInfo locates compressed pixel data stored outside the
	// object itself, in this or a sibling bundle.
	StreamingInfo struct {
		Path   string `json:"path"`
		Offset uint32 `json:"offset"`
		Size   uint32 `json:"size"`
	}

	imageState int

	// Texture2D is a recognized texture object. Dimensions are always
	// known; the encoded image exists only in the loaded state.
	Texture2D struct {
		Name   string
		Width  uint32
		Height uint32

		state     imageState
		encoded   []byte
		format    DecodeFormat
		streaming StreamingInfo
	}
)

const (
	stateLoaded imageState = iota
	stateStreaming
	stateUnknown
)
