package unityfs

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"testing"

	"unity-peek/unityfs/utex"
	"github.com/stretchr/testify/assert"
)

// buildTextureAsset lays out a little-endian serialized file (format
// version 17) holding a single deferred ETC1 Texture2D object.
func buildTextureAsset() []byte {
	le := binary.LittleEndian

	strings := bytes.Buffer{}
	offsets := map[string]uint32{}
	intern := func(s string) uint32 {
		if offset, ok := offsets[s]; ok {
			return offset
		}
		offset := uint32(strings.Len())
		offsets[s] = offset
		strings.WriteString(s)
		strings.WriteByte(0)
		return offset
	}

	type row struct {
		level     uint8
		typeFlags uint8
		typeName  string
		name      string
		byteSize  int32
	}
	rows := []row{
		{0, 0, "Texture2D", "Base", -1},
		{1, 0, "string", "m_Name", -1},
		{1, 0, "int", "m_Width", 4},
		{1, 0, "int", "m_Height", 4},
		{1, 0, "int", "m_TextureFormat", 4},
		{1, 0, "TypelessData", "image data", -1},
		{1, 0, "StreamingInfo", "m_StreamData", -1},
		{2, 0, "string", "path", -1},
		{2, 0, "unsigned int", "offset", 4},
		{2, 0, "unsigned int", "size", 4},
	}

	blob := bytes.Buffer{}
	for i, r := range rows {
		binary.Write(&blob, le, uint16(1))
		blob.WriteByte(r.level)
		blob.WriteByte(r.typeFlags)
		binary.Write(&blob, le, intern(r.typeName))
		binary.Write(&blob, le, intern(r.name))
		binary.Write(&blob, le, r.byteSize)
		binary.Write(&blob, le, int32(i))
		binary.Write(&blob, le, uint32(0))
	}

	payload := bytes.Buffer{}
	binary.Write(&payload, le, int32(3))
	payload.WriteString("tex")
	payload.WriteByte(0) // string alignment
	binary.Write(&payload, le, int32(8))
	binary.Write(&payload, le, int32(4))
	binary.Write(&payload, le, int32(34)) // ETC1
	binary.Write(&payload, le, int32(0))  // no inline pixel data
	path := "archive:/CAB-abc/CAB-abc.resS"
	binary.Write(&payload, le, int32(len(path)))
	payload.WriteString(path)
	payload.Write(make([]byte, 3)) // string alignment
	binary.Write(&payload, le, uint32(4))
	binary.Write(&payload, le, uint32(16))

	meta := bytes.Buffer{}
	meta.Write([]byte{0, 0, 0, 0}) // little-endian plus reserved
	meta.WriteString("2019.4.1f1")
	meta.WriteByte(0)
	binary.Write(&meta, le, uint32(5)) // target platform
	meta.WriteByte(1)                  // type tree enabled

	binary.Write(&meta, le, int32(1)) // type count
	binary.Write(&meta, le, int32(28))
	meta.WriteByte(0)
	binary.Write(&meta, le, uint16(0xFFFF))
	meta.Write(make([]byte, 16))
	binary.Write(&meta, le, uint32(len(rows)))
	binary.Write(&meta, le, uint32(strings.Len()))
	meta.Write(blob.Bytes())
	meta.Write(strings.Bytes())

	binary.Write(&meta, le, int32(1)) // object count
	for meta.Len()%4 != 0 {
		meta.WriteByte(0)
	}
	binary.Write(&meta, le, int64(1))
	binary.Write(&meta, le, uint32(0))
	binary.Write(&meta, le, uint32(payload.Len()))
	binary.Write(&meta, le, int32(0))

	dataOffset := 16 + meta.Len()
	for dataOffset%16 != 0 {
		dataOffset++
	}

	file := bytes.Buffer{}
	binary.Write(&file, binary.BigEndian, uint32(meta.Len()))
	binary.Write(&file, binary.BigEndian, uint32(dataOffset+payload.Len()))
	binary.Write(&file, binary.BigEndian, uint32(17))
	binary.Write(&file, binary.BigEndian, uint32(dataOffset))
	file.Write(meta.Bytes())
	for file.Len() < dataOffset {
		file.WriteByte(0)
	}
	file.Write(payload.Bytes())
	return file.Bytes()
}

// buildBundle wraps a serialized file and a streamed resource into an
// uncompressed UnityFS archive. The resource node comes first in the
// directory to make sure main-asset selection skips it.
func buildBundle(serialized []byte, resource []byte) []byte {
	be := binary.BigEndian
	payload := append(append([]byte{}, serialized...), resource...)

	blocksInfo := bytes.Buffer{}
	blocksInfo.Write(make([]byte, 16))
	binary.Write(&blocksInfo, be, int32(1))
	binary.Write(&blocksInfo, be, uint32(len(payload)))
	binary.Write(&blocksInfo, be, uint32(len(payload)))
	binary.Write(&blocksInfo, be, uint16(0))
	binary.Write(&blocksInfo, be, int32(2))
	binary.Write(&blocksInfo, be, int64(len(serialized)))
	binary.Write(&blocksInfo, be, int64(len(resource)))
	binary.Write(&blocksInfo, be, uint32(0))
	blocksInfo.WriteString("CAB-abc.resS")
	blocksInfo.WriteByte(0)
	binary.Write(&blocksInfo, be, int64(0))
	binary.Write(&blocksInfo, be, int64(len(serialized)))
	binary.Write(&blocksInfo, be, uint32(4))
	blocksInfo.WriteString("CAB-abc")
	blocksInfo.WriteByte(0)

	buf := bytes.Buffer{}
	buf.WriteString("UnityFS")
	buf.WriteByte(0)
	binary.Write(&buf, be, uint32(6))
	buf.WriteString("5.x.x")
	buf.WriteByte(0)
	buf.WriteString("2019.4.1f1")
	buf.WriteByte(0)
	binary.Write(&buf, be, int64(0))
	binary.Write(&buf, be, uint32(blocksInfo.Len()))
	binary.Write(&buf, be, uint32(blocksInfo.Len()))
	binary.Write(&buf, be, uint32(0x40))
	buf.Write(blocksInfo.Bytes())
	buf.Write(payload)
	return buf.Bytes()
}

func TestBundle_EndToEnd(t *testing.T) {
	// 4 padding bytes, then two solid gray ETC1 blocks for the 8x4 image
	grayBlock := []byte{0x88, 0x88, 0x88, 0x00, 0, 0, 0, 0}
	resource := append([]byte{0, 0, 0, 0}, grayBlock...)
	resource = append(resource, grayBlock...)
	input := buildBundle(buildTextureAsset(), resource)

	meta, err := Parse(input)
	assert.NoError(t, err)
	assert.Equal(t, "UnityFS", meta.Header().Signature)
	assert.Len(t, meta.Nodes(), 2)

	bundle, err := meta.Read()
	assert.NoError(t, err)
	assert.Equal(t, "CAB-abc", bundle.Name())
	assert.Equal(t, "CAB-abc", bundle.MainAsset().Name)

	resBytes, ok := bundle.Resource("CAB-abc.resS")
	assert.True(t, ok)
	assert.Equal(t, resource, resBytes)

	objects := bundle.MainAsset().Objects()
	assert.Len(t, objects, 1)
	assert.Equal(t, "Texture2D", objects[0].Type())

	projected, err := objects[0].Data()
	assert.NoError(t, err)
	texture, ok := projected.(*utex.Texture2D)
	assert.True(t, ok)
	assert.Equal(t, "tex", texture.Name)
	assert.True(t, texture.Deferred())

	assert.NoError(t, texture.Resolve(bundle))
	assert.True(t, texture.Resolved())

	encoded, ok := texture.EncodedPNG()
	assert.True(t, ok)
	img, err := png.Decode(bytes.NewReader(encoded))
	assert.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 4, img.Bounds().Dy())
	r, g, b, a := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(138*0x101), r)
	assert.Equal(t, uint32(138*0x101), g)
	assert.Equal(t, uint32(138*0x101), b)
	assert.Equal(t, uint32(0xFFFF), a)
}

func TestParse_RejectsGarbage(t *testing.T) {
	_, err := Parse([]byte("not a bundle at all"))
	assert.Error(t, err)
}
