package uasset

import (
	"encoding/binary"

	"unity-peek/unityfs/lbytes"
	"github.com/pkg/errors"
)

// Parse reads a serialized file's header and metadata: engine version,
// type trees and the object table. Object payloads are read lazily via
// ReadObject.
func Parse(bs []byte) (*File, error) {
	reader := lbytes.NewBytesReader(bs)
	reader.SetOrder(binary.BigEndian)

	file := File{input: bs}
	err := error(nil)

	if file.Header.MetadataSize, err = reader.ReadUint32(); err != nil {
		return nil, errors.Wrap(err, "Parse error: read metadata size")
	}
	if file.Header.FileSize, err = reader.ReadUint32(); err != nil {
		return nil, errors.Wrap(err, "Parse error: read file size")
	}
	if file.Header.Version, err = reader.ReadUint32(); err != nil {
		return nil, errors.Wrap(err, "Parse error: read version")
	}
	if file.Header.DataOffset, err = reader.ReadUint32(); err != nil {
		return nil, errors.Wrap(err, "Parse error: read data offset")
	}
	if file.Header.Version < minSupportedVersion || file.Header.Version > maxSupportedVersion {
		return nil, errors.Wrapf(
			ErrUnsupportedVersion, "Parse error: version %d", file.Header.Version,
		)
	}

	endianness, err := reader.ReadByte()
	if err != nil {
		return nil, errors.Wrap(err, "Parse error: read endianness")
	}
	file.Header.BigEndian = endianness != 0
	if _, err := reader.ReadBytes(3); err != nil {
		return nil, errors.Wrap(err, "Parse error: read reserved bytes")
	}
	if !file.Header.BigEndian {
		reader.SetOrder(binary.LittleEndian)
	}

	if file.UnityVersion, err = reader.ReadCString(); err != nil {
		return nil, errors.Wrap(err, "Parse error: read unity version")
	}
	if file.TargetPlatform, err = reader.ReadUint32(); err != nil {
		return nil, errors.Wrap(err, "Parse error: read target platform")
	}
	enableTypeTree, err := reader.ReadBool()
	if err != nil {
		return nil, errors.Wrap(err, "Parse error: read type tree flag")
	}
	if !enableTypeTree {
		return nil, errors.Wrap(ErrNoTypeTree, "Parse error")
	}

	typeCount, err := reader.ReadInt()
	if err != nil {
		return nil, errors.Wrap(err, "Parse error: read type count")
	}
	file.Types = make([]SerializedType, 0, typeCount)
	for i := int32(0); i < typeCount; i++ {
		serializedType, err := decodeType(reader, file.Header.Version)
		if err != nil {
			return nil, errors.Wrapf(err, "Parse error: type %d", i)
		}
		file.Types = append(file.Types, *serializedType)
	}

	objectCount, err := reader.ReadInt()
	if err != nil {
		return nil, errors.Wrap(err, "Parse error: read object count")
	}
	file.Objects = make([]ObjectInfo, 0, objectCount)
	for i := int32(0); i < objectCount; i++ {
		if err := reader.Align(4); err != nil {
			return nil, errors.Wrapf(err, "Parse error: object %d", i)
		}
		object := ObjectInfo{}
		if object.PathID, err = reader.ReadLong(); err != nil {
			return nil, errors.Wrapf(err, "Parse error: object %d", i)
		}
		if object.ByteStart, err = reader.ReadUint32(); err != nil {
			return nil, errors.Wrapf(err, "Parse error: object %d", i)
		}
		if object.ByteSize, err = reader.ReadUint32(); err != nil {
			return nil, errors.Wrapf(err, "Parse error: object %d", i)
		}
		if object.TypeID, err = reader.ReadInt(); err != nil {
			return nil, errors.Wrapf(err, "Parse error: object %d", i)
		}
		if int(object.TypeID) >= len(file.Types) {
			return nil, errors.Errorf(
				"Parse error: object %d references type %d of %d",
				i, object.TypeID, len(file.Types),
			)
		}
		file.Objects = append(file.Objects, object)
	}
	// script types, externals and user information follow; nothing in
	// this reader needs them
	return &file, nil
}

func decodeType(reader *lbytes.Reader, version uint32) (*SerializedType, error) {
	serializedType := SerializedType{}
	err := error(nil)

	if serializedType.ClassID, err = reader.ReadInt(); err != nil {
		return nil, errors.Wrap(err, "decodeType error: read class id")
	}
	stripped, err := reader.ReadBool()
	if err != nil {
		return nil, errors.Wrap(err, "decodeType error: read stripped flag")
	}
	serializedType.IsStripped = stripped
	scriptTypeIndex, err := reader.ReadUint16()
	if err != nil {
		return nil, errors.Wrap(err, "decodeType error: read script type index")
	}
	serializedType.ScriptTypeIndex = int16(scriptTypeIndex)
	if serializedType.ClassID == classIDMonoBehaviour {
		if _, err := reader.ReadBytes(16); err != nil {
			return nil, errors.Wrap(err, "decodeType error: read script id")
		}
	}
	if _, err := reader.ReadBytes(16); err != nil {
		return nil, errors.Wrap(err, "decodeType error: read old type hash")
	}

	serializedType.Nodes, err = decodeTypeTreeBlob(reader, version)
	if err != nil {
		return nil, errors.Wrap(err, "decodeType error")
	}
	return &serializedType, nil
}

// decodeTypeTreeBlob reads the flat node table plus its string buffer.
// String references with the high bit set point into the shared common
// table, the rest into the local buffer.
func decodeTypeTreeBlob(reader *lbytes.Reader, version uint32) ([]TypeTreeNode, error) {
	nodeCount, err := reader.ReadUint32()
	if err != nil {
		return nil, errors.Wrap(err, "decodeTypeTreeBlob error: read node count")
	}
	stringBufferSize, err := reader.ReadUint32()
	if err != nil {
		return nil, errors.Wrap(err, "decodeTypeTreeBlob error: read string buffer size")
	}

	type rawNode struct {
		node       TypeTreeNode
		typeOffset uint32
		nameOffset uint32
	}
	rawNodes := make([]rawNode, 0, nodeCount)
	for i := uint32(0); i < nodeCount; i++ {
		raw := rawNode{}
		if raw.node.Version, err = reader.ReadUint16(); err != nil {
			return nil, errors.Wrapf(err, "decodeTypeTreeBlob error: node %d", i)
		}
		level, err := reader.ReadByte()
		if err != nil {
			return nil, errors.Wrapf(err, "decodeTypeTreeBlob error: node %d", i)
		}
		raw.node.Level = level
		typeFlags, err := reader.ReadByte()
		if err != nil {
			return nil, errors.Wrapf(err, "decodeTypeTreeBlob error: node %d", i)
		}
		raw.node.TypeFlags = typeFlags
		if raw.typeOffset, err = reader.ReadUint32(); err != nil {
			return nil, errors.Wrapf(err, "decodeTypeTreeBlob error: node %d", i)
		}
		if raw.nameOffset, err = reader.ReadUint32(); err != nil {
			return nil, errors.Wrapf(err, "decodeTypeTreeBlob error: node %d", i)
		}
		if raw.node.ByteSize, err = reader.ReadInt(); err != nil {
			return nil, errors.Wrapf(err, "decodeTypeTreeBlob error: node %d", i)
		}
		if raw.node.Index, err = reader.ReadInt(); err != nil {
			return nil, errors.Wrapf(err, "decodeTypeTreeBlob error: node %d", i)
		}
		if raw.node.MetaFlags, err = reader.ReadUint32(); err != nil {
			return nil, errors.Wrapf(err, "decodeTypeTreeBlob error: node %d", i)
		}
		if version >= 19 {
			// reference type hash, unused here
			if _, err := reader.ReadUint64(); err != nil {
				return nil, errors.Wrapf(err, "decodeTypeTreeBlob error: node %d", i)
			}
		}
		rawNodes = append(rawNodes, raw)
	}

	stringBuffer, err := reader.ReadBytes(int(stringBufferSize))
	if err != nil {
		return nil, errors.Wrap(err, "decodeTypeTreeBlob error: read string buffer")
	}

	nodes := make([]TypeTreeNode, 0, nodeCount)
	for _, raw := range rawNodes {
		raw.node.Type = resolveString(raw.typeOffset, stringBuffer)
		raw.node.Name = resolveString(raw.nameOffset, stringBuffer)
		nodes = append(nodes, raw.node)
	}
	return nodes, nil
}

func resolveString(offset uint32, buffer []byte) string {
	if offset&0x80000000 != 0 {
		return CommonString(offset &^ 0x80000000)
	}
	end := offset
	for end < uint32(len(buffer)) && buffer[end] != 0 {
		end++
	}
	return string(buffer[offset:end])
}
