package lbytes

import (
	"bytes"
	"encoding/binary"
)

type (
	// Reader walks an in-memory buffer with an explicit byte order.
	// Bundle headers are big-endian while serialized-file metadata is
	// usually little-endian, so the order can be swapped mid-stream.
	Reader struct {
		bytes.Reader
		order binary.ByteOrder
	}
)
