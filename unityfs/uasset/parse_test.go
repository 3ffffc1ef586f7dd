package uasset

import (
	"bytes"
	"encoding/binary"
	"testing"

	"unity-peek/unityfs/uvalue"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

// stringTable interns strings into a type tree's local string buffer
// and hands back their offsets.
type stringTable struct {
	offsets map[string]uint32
	buffer  bytes.Buffer
}

func (t *stringTable) offset(s string) uint32 {
	if t.offsets == nil {
		t.offsets = map[string]uint32{}
	}
	if offset, ok := t.offsets[s]; ok {
		return offset
	}
	offset := uint32(t.buffer.Len())
	t.offsets[s] = offset
	t.buffer.WriteString(s)
	t.buffer.WriteByte(0)
	return offset
}

type blobRow struct {
	level      uint8
	typeFlags  uint8
	typeOffset uint32
	nameOffset uint32
	byteSize   int32
	metaFlags  uint32
}

func writeBlob(buf *bytes.Buffer, version uint32, rows []blobRow, strings *stringTable) {
	binary.Write(buf, binary.LittleEndian, uint32(len(rows)))
	binary.Write(buf, binary.LittleEndian, uint32(strings.buffer.Len()))
	for i, row := range rows {
		binary.Write(buf, binary.LittleEndian, uint16(1))
		buf.WriteByte(row.level)
		buf.WriteByte(row.typeFlags)
		binary.Write(buf, binary.LittleEndian, row.typeOffset)
		binary.Write(buf, binary.LittleEndian, row.nameOffset)
		binary.Write(buf, binary.LittleEndian, row.byteSize)
		binary.Write(buf, binary.LittleEndian, int32(i))
		binary.Write(buf, binary.LittleEndian, row.metaFlags)
		if version >= 19 {
			binary.Write(buf, binary.LittleEndian, uint64(0))
		}
	}
	buf.Write(strings.buffer.Bytes())
}

// buildSerializedFile lays out a file with one TestObject type holding a
// string, an int resolved through the common string table, and an int
// vector, plus one object whose payload decodes to known values.
func buildSerializedFile(version uint32, enableTypeTree bool) []byte {
	strings := stringTable{}
	local := strings.offset
	common := func(s uint32) uint32 { return s | 0x80000000 }

	rows := []blobRow{
		{level: 0, typeOffset: local("TestObject"), nameOffset: local("Base"), byteSize: -1},
		{level: 1, typeOffset: local("string"), nameOffset: local("m_Name"), byteSize: -1},
		{level: 1, typeOffset: common(222), nameOffset: local("m_Value"), byteSize: 4}, // int
		{level: 1, typeOffset: local("vector"), nameOffset: local("m_Ids"), byteSize: -1},
		{level: 2, typeFlags: typeFlagArray, typeOffset: local("Array"), nameOffset: local("Array"), byteSize: -1},
		{level: 3, typeOffset: common(222), nameOffset: local("size"), byteSize: 4},
		{level: 3, typeOffset: common(222), nameOffset: local("data"), byteSize: 4},
	}

	meta := bytes.Buffer{}
	meta.WriteByte(0)             // little-endian
	meta.Write([]byte{0, 0, 0})   // reserved
	meta.WriteString("2019.4.1f1")
	meta.WriteByte(0)
	binary.Write(&meta, binary.LittleEndian, uint32(5)) // target platform
	if enableTypeTree {
		meta.WriteByte(1)
	} else {
		meta.WriteByte(0)
	}

	binary.Write(&meta, binary.LittleEndian, int32(1)) // type count
	binary.Write(&meta, binary.LittleEndian, int32(28))
	meta.WriteByte(0)                                   // stripped
	binary.Write(&meta, binary.LittleEndian, uint16(0xFFFF))
	meta.Write(make([]byte, 16)) // old type hash
	writeBlob(&meta, version, rows, &strings)

	binary.Write(&meta, binary.LittleEndian, int32(1)) // object count
	for meta.Len()%4 != 0 {
		meta.WriteByte(0)
	}
	binary.Write(&meta, binary.LittleEndian, int64(1))  // path id
	binary.Write(&meta, binary.LittleEndian, uint32(0)) // byte start
	binary.Write(&meta, binary.LittleEndian, uint32(24))
	binary.Write(&meta, binary.LittleEndian, int32(0)) // type index

	payload := bytes.Buffer{}
	binary.Write(&payload, binary.LittleEndian, int32(4))
	payload.WriteString("hero")
	binary.Write(&payload, binary.LittleEndian, int32(7))
	binary.Write(&payload, binary.LittleEndian, int32(2))
	binary.Write(&payload, binary.LittleEndian, int32(3))
	binary.Write(&payload, binary.LittleEndian, int32(4))

	dataOffset := 16 + meta.Len()
	for dataOffset%16 != 0 {
		dataOffset++
	}
	total := dataOffset + payload.Len()

	file := bytes.Buffer{}
	binary.Write(&file, binary.BigEndian, uint32(meta.Len()))
	binary.Write(&file, binary.BigEndian, uint32(total))
	binary.Write(&file, binary.BigEndian, version)
	binary.Write(&file, binary.BigEndian, uint32(dataOffset))
	file.Write(meta.Bytes())
	for file.Len() < dataOffset {
		file.WriteByte(0)
	}
	file.Write(payload.Bytes())
	return file.Bytes()
}

func TestParse_Metadata(t *testing.T) {
	file, err := Parse(buildSerializedFile(17, true))
	assert.NoError(t, err)
	assert.Equal(t, uint32(17), file.Header.Version)
	assert.False(t, file.Header.BigEndian)
	assert.Equal(t, "2019.4.1f1", file.UnityVersion)
	assert.Equal(t, uint32(5), file.TargetPlatform)

	assert.Len(t, file.Types, 1)
	assert.Equal(t, int32(28), file.Types[0].ClassID)
	nodes := file.Types[0].Nodes
	assert.Len(t, nodes, 7)
	assert.Equal(t, "TestObject", nodes[0].Type)
	assert.Equal(t, "Base", nodes[0].Name)
	assert.Equal(t, "m_Name", nodes[1].Name)
	// resolved through the common string table
	assert.Equal(t, "int", nodes[2].Type)

	assert.Len(t, file.Objects, 1)
	assert.Equal(t, int64(1), file.Objects[0].PathID)
}

func TestReadObjects(t *testing.T) {
	file, err := Parse(buildSerializedFile(17, true))
	assert.NoError(t, err)

	values, err := file.ReadObjects()
	assert.NoError(t, err)
	assert.Len(t, values, 1)

	value := values[0]
	assert.Equal(t, uvalue.KindStruct, value.Kind)
	assert.Equal(t, "TestObject", value.TypeName)

	name, ok := value.FieldByName("m_Name")
	assert.True(t, ok)
	assert.Equal(t, "hero", string(name.Bytes))

	number, ok := value.FieldByName("m_Value")
	assert.True(t, ok)
	assert.Equal(t, uvalue.SInt32(7), number)

	ids, ok := value.FieldByName("m_Ids")
	assert.True(t, ok)
	assert.Equal(t, uvalue.Array([]uvalue.Data{uvalue.SInt32(3), uvalue.SInt32(4)}), ids)
}

func TestParse_Version19RefTypeHash(t *testing.T) {
	// node rows grow by a reference type hash from version 19 on
	file, err := Parse(buildSerializedFile(19, true))
	assert.NoError(t, err)

	values, err := file.ReadObjects()
	assert.NoError(t, err)
	assert.Len(t, values, 1)
	name, ok := values[0].FieldByName("m_Name")
	assert.True(t, ok)
	assert.Equal(t, "hero", string(name.Bytes))
}

func TestParse_UnsupportedVersion(t *testing.T) {
	_, err := Parse(buildSerializedFile(16, true))
	assert.True(t, errors.Is(err, ErrUnsupportedVersion))

	_, err = Parse(buildSerializedFile(22, true))
	assert.True(t, errors.Is(err, ErrUnsupportedVersion))
}

func TestParse_NoTypeTree(t *testing.T) {
	_, err := Parse(buildSerializedFile(17, false))
	assert.True(t, errors.Is(err, ErrNoTypeTree))
}
