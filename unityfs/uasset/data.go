package uasset

import (
	"github.com/pkg/errors"
)

type (
	Header struct {
		MetadataSize uint32 `json:"metadata_size"`
		FileSize     uint32 `json:"file_size"`
		Version      uint32 `json:"version"`
		DataOffset   uint32 `json:"data_offset"`
		BigEndian    bool   `json:"big_endian"`
	}
	// TypeTreeNode is one row of a type tree in blob layout. Level
	// nesting (not indices) encodes the parent/child structure.
	TypeTreeNode struct {
		Version   uint16 `json:"version"`
		Level     uint8  `json:"level"`
		TypeFlags uint8  `json:"type_flags"`
		Type      string `json:"type"`
		Name      string `json:"name"`
		ByteSize  int32  `json:"byte_size"`
		Index     int32  `json:"index"`
		MetaFlags uint32 `json:"meta_flags"`
	}
	SerializedType struct {
		ClassID         int32          `json:"class_id"`
		IsStripped      bool           `json:"is_stripped"`
		ScriptTypeIndex int16          `json:"script_type_index"`
		Nodes           []TypeTreeNode `json:"nodes"`
	}
	ObjectInfo struct {
		PathID    int64  `json:"path_id"`
		ByteStart uint32 `json:"byte_start"`
		ByteSize  uint32 `json:"byte_size"`
		TypeID    int32  `json:"type_id"`
	}
	// File is a parsed serialized file: enough metadata to read every
	// object through its embedded type tree.
	File struct {
		Header         Header
		UnityVersion   string
		TargetPlatform uint32
		Types          []SerializedType
		Objects        []ObjectInfo

		input []byte
	}
)

const (
	// versions 17 through 21 cover 2017.x up to 2021.x bundles; older
	// layouts and the large-file layout (22+) are rejected
	minSupportedVersion = 17
	maxSupportedVersion = 21

	classIDMonoBehaviour = 114

	// type tree meta flag: align the stream to 4 bytes after the value
	metaFlagAlignBytes = uint32(0x4000)
	// type flag: the node is an array header
	typeFlagArray = uint8(0x1)
)

var (
	ErrUnsupportedVersion = errors.New("unsupported serialized file version")
	// ErrNoTypeTree marks metadata without embedded type trees; objects
	// cannot be interpreted without an external schema, so this reader
	// rejects them rather than guessing.
	ErrNoTypeTree = errors.New("serialized file carries no type tree")
)
