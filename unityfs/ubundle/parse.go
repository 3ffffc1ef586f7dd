package ubundle

import (
	"encoding/binary"

	"unity-peek/ds"
	"unity-peek/unityfs/lbytes"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

// Parse reads the archive header and the blocks-info table. The
// payload itself stays compressed until Read.
func Parse(bs []byte) (*Meta, error) {
	reader := lbytes.NewBytesReader(bs)
	reader.SetOrder(binary.BigEndian)

	header, err := decodeHeader(reader)
	if err != nil {
		return nil, errors.Wrap(err, "Parse error")
	}

	compressedSize := int(header.CompressedBlocksInfoSize)
	blocksInfoRaw := []byte(nil)
	dataOffset := reader.Position()
	if header.Flags&flagBlocksInfoAtEnd != 0 {
		if compressedSize > len(bs) {
			return nil, errors.Errorf(
				"Parse error: blocks info of %d bytes exceeds %d-byte input",
				compressedSize, len(bs),
			)
		}
		blocksInfoRaw = bs[len(bs)-compressedSize:]
	} else {
		blocksInfoRaw, err = reader.ReadBytes(compressedSize)
		if err != nil {
			return nil, errors.Wrap(err, "Parse error: read blocks info")
		}
		dataOffset = reader.Position()
	}
	if header.Flags&flagBlockInfoPadStart != 0 {
		dataOffset = ds.NearestDivisibleByM(dataOffset, 16)
	}

	blocksInfo, err := decompress(
		blocksInfoRaw, header.UncompressedBlocksInfoSize, header.Flags&compressionMask,
	)
	if err != nil {
		return nil, errors.Wrap(err, "Parse error: blocks info")
	}

	meta := Meta{
		Header:     *header,
		input:      bs,
		dataOffset: dataOffset,
	}
	if err := meta.decodeBlocksInfo(blocksInfo); err != nil {
		return nil, errors.Wrap(err, "Parse error")
	}
	return &meta, nil
}

func decodeHeader(reader *lbytes.Reader) (*Header, error) {
	header := Header{}
	err := error(nil)

	header.Signature, err = reader.ReadCString()
	if err != nil {
		return nil, errors.Wrap(err, "decodeHeader error: read signature")
	}
	if header.Signature != Signature {
		return nil, errors.Wrapf(
			ErrInvalidSignature, `decodeHeader error: got "%s"`, header.Signature,
		)
	}
	header.Version, err = reader.ReadUint32()
	if err != nil {
		return nil, errors.Wrap(err, "decodeHeader error: read version")
	}
	header.PlayerVersion, err = reader.ReadCString()
	if err != nil {
		return nil, errors.Wrap(err, "decodeHeader error: read player version")
	}
	header.EngineVersion, err = reader.ReadCString()
	if err != nil {
		return nil, errors.Wrap(err, "decodeHeader error: read engine version")
	}
	header.Size, err = reader.ReadLong()
	if err != nil {
		return nil, errors.Wrap(err, "decodeHeader error: read size")
	}
	header.CompressedBlocksInfoSize, err = reader.ReadUint32()
	if err != nil {
		return nil, errors.Wrap(err, "decodeHeader error: read compressed blocks info size")
	}
	header.UncompressedBlocksInfoSize, err = reader.ReadUint32()
	if err != nil {
		return nil, errors.Wrap(err, "decodeHeader error: read uncompressed blocks info size")
	}
	header.Flags, err = reader.ReadUint32()
	if err != nil {
		return nil, errors.Wrap(err, "decodeHeader error: read flags")
	}
	if header.Version >= 7 {
		if err := reader.Align(16); err != nil {
			return nil, errors.Wrap(err, "decodeHeader error: align")
		}
	}
	return &header, nil
}

func (m *Meta) decodeBlocksInfo(bs []byte) error {
	reader := lbytes.NewBytesReader(bs)
	reader.SetOrder(binary.BigEndian)

	// leading 16 bytes are the uncompressed data hash, unused here
	if _, err := reader.ReadBytes(16); err != nil {
		return errors.Wrap(err, "decodeBlocksInfo error: read data hash")
	}
	blockCount, err := reader.ReadInt()
	if err != nil {
		return errors.Wrap(err, "decodeBlocksInfo error: read block count")
	}
	m.Blocks = make([]StorageBlock, 0, blockCount)
	for i := int32(0); i < blockCount; i++ {
		block := StorageBlock{}
		if block.UncompressedSize, err = reader.ReadUint32(); err != nil {
			return errors.Wrapf(err, "decodeBlocksInfo error: block %d", i)
		}
		if block.CompressedSize, err = reader.ReadUint32(); err != nil {
			return errors.Wrapf(err, "decodeBlocksInfo error: block %d", i)
		}
		if block.Flags, err = reader.ReadUint16(); err != nil {
			return errors.Wrapf(err, "decodeBlocksInfo error: block %d", i)
		}
		m.Blocks = append(m.Blocks, block)
	}

	nodeCount, err := reader.ReadInt()
	if err != nil {
		return errors.Wrap(err, "decodeBlocksInfo error: read node count")
	}
	m.Nodes = make([]Node, 0, nodeCount)
	for i := int32(0); i < nodeCount; i++ {
		node := Node{}
		if node.Offset, err = reader.ReadLong(); err != nil {
			return errors.Wrapf(err, "decodeBlocksInfo error: node %d", i)
		}
		if node.Size, err = reader.ReadLong(); err != nil {
			return errors.Wrapf(err, "decodeBlocksInfo error: node %d", i)
		}
		if node.Flags, err = reader.ReadUint32(); err != nil {
			return errors.Wrapf(err, "decodeBlocksInfo error: node %d", i)
		}
		if node.Path, err = reader.ReadCString(); err != nil {
			return errors.Wrapf(err, "decodeBlocksInfo error: node %d", i)
		}
		m.Nodes = append(m.Nodes, node)
	}
	return nil
}

// Read decompresses every storage block and hangs the directory over
// the result.
func (m *Meta) Read() (*Bundle, error) {
	total := 0
	for _, block := range m.Blocks {
		total += int(block.UncompressedSize)
	}
	buffer := make([]byte, 0, total)

	position := m.dataOffset
	for i, block := range m.Blocks {
		end := position + int(block.CompressedSize)
		if end > len(m.input) {
			return nil, errors.Errorf(
				"Read error: block %d wants [%d, %d) of %d-byte input",
				i, position, end, len(m.input),
			)
		}
		decompressed, err := decompress(
			m.input[position:end],
			block.UncompressedSize,
			uint32(block.Flags)&compressionMask,
		)
		if err != nil {
			return nil, errors.Wrapf(err, "Read error: block %d", i)
		}
		buffer = append(buffer, decompressed...)
		position = end
	}

	for _, node := range m.Nodes {
		if node.Offset < 0 || node.Offset+node.Size > int64(len(buffer)) {
			return nil, errors.Errorf(
				`Read error: node "%s" wants [%d, %d) of %d-byte payload`,
				node.Path, node.Offset, node.Offset+node.Size, len(buffer),
			)
		}
	}
	return &Bundle{nodes: m.Nodes, buffer: buffer}, nil
}

func (b *Bundle) Nodes() []Node {
	return b.nodes
}

// Node returns the bytes of the directory entry with exactly the given
// path.
func (b *Bundle) Node(path string) ([]byte, bool) {
	for _, node := range b.nodes {
		if node.Path == path {
			return b.buffer[node.Offset : node.Offset+node.Size], true
		}
	}
	return nil, false
}

func decompress(src []byte, uncompressedSize uint32, compression uint32) ([]byte, error) {
	switch compression {
	case CompressionNone:
		return src, nil
	case CompressionLZ4, CompressionLZ4H:
		dst := make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(src, dst)
		if err != nil {
			return nil, errors.Wrap(err, "decompress error: lz4")
		}
		if n != int(uncompressedSize) {
			return nil, errors.Errorf(
				"decompress error: lz4 produced %d bytes, want %d", n, uncompressedSize,
			)
		}
		return dst, nil
	case CompressionLZMA:
		return nil, errors.Wrap(ErrUnsupportedCompression, "decompress error: lzma")
	default:
		return nil, errors.Wrapf(
			ErrUnsupportedCompression, "decompress error: compression type %d", compression,
		)
	}
}
