package ubundle

import (
	"github.com/pkg/errors"
)

type (
	Header struct {
		Signature                  string `json:"signature"`
		Version                    uint32 `json:"version"`
		PlayerVersion              string `json:"player_version"`
		EngineVersion              string `json:"engine_version"`
		Size                       int64  `json:"size"`
		CompressedBlocksInfoSize   uint32 `json:"compressed_blocks_info_size"`
		UncompressedBlocksInfoSize uint32 `json:"uncompressed_blocks_info_size"`
		Flags                      uint32 `json:"flags"`
	}
	// StorageBlock describes one compressed chunk of the payload.
	StorageBlock struct {
		UncompressedSize uint32 `json:"uncompressed_size"`
		CompressedSize   uint32 `json:"compressed_size"`
		Flags            uint16 `json:"flags"`
	}
	// Node is one directory entry: a named byte range inside the
	// decompressed payload.
	Node struct {
		Offset int64  `json:"offset"`
		Size   int64  `json:"size"`
		Flags  uint32 `json:"flags"`
		Path   string `json:"path"`
	}
	// Meta is a parsed archive whose payload has not been decompressed
	// yet.
	Meta struct {
		Header Header
		Blocks []StorageBlock
		Nodes  []Node

		input      []byte
		dataOffset int
	}
	// Bundle holds the decompressed payload plus the directory over it.
	Bundle struct {
		nodes  []Node
		buffer []byte
	}
)

const (
	Signature = "UnityFS"

	compressionMask = uint32(0x3F)
	CompressionNone = uint32(0)
	CompressionLZMA = uint32(1)
	CompressionLZ4  = uint32(2)
	CompressionLZ4H = uint32(3)

	flagBlocksInfoAtEnd   = uint32(0x80)
	flagBlockInfoPadStart = uint32(0x100)
)

var (
	ErrUnsupportedCompression = errors.New("unsupported compression")
	ErrInvalidSignature       = errors.New("invalid bundle signature")
)
