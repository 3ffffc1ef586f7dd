package lbytes

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"unity-peek/ds"
	"github.com/pkg/errors"
)

func NewBytesReader(bs []byte) *Reader {
	return &Reader{
		Reader: *bytes.NewReader(bs),
		order:  binary.LittleEndian,
	}
}

func (b *Reader) SetOrder(order binary.ByteOrder) {
	b.order = order
}

// Position reports the number of bytes consumed so far.
func (b *Reader) Position() int {
	return int(b.Size()) - b.Len()
}

func (b *Reader) ReadBytes(n int) ([]byte, error) {
	bs := make([]byte, n)
	// return early to avoid EOF error when the reader's pointer reached
	// the end of the buffer while the number of next bytes to read is 0
	if n == 0 {
		return bs, nil
	}
	if _, err := io.ReadFull(&b.Reader, bs); err != nil {
		return nil, err
	}
	return bs, nil
}

func (b *Reader) ReadBool() (bool, error) {
	v, err := b.ReadByte()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

func (b *Reader) ReadUint16() (uint16, error) {
	bs, err := b.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return b.order.Uint16(bs), nil
}

func (b *Reader) ReadUint32() (uint32, error) {
	bs, err := b.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return b.order.Uint32(bs), nil
}

func (b *Reader) ReadUint64() (uint64, error) {
	bs, err := b.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return b.order.Uint64(bs), nil
}

func (b *Reader) ReadInt() (int32, error) {
	v, err := b.ReadUint32()
	return int32(v), err
}

func (b *Reader) ReadLong() (int64, error) {
	v, err := b.ReadUint64()
	return int64(v), err
}

func (b *Reader) ReadFloat() (float32, error) {
	v, err := b.ReadUint32()
	return math.Float32frombits(v), err
}

func (b *Reader) ReadDouble() (float64, error) {
	v, err := b.ReadUint64()
	return math.Float64frombits(v), err
}

func (b *Reader) ReadString(n int) (string, error) {
	bs, err := b.ReadBytes(n)
	if err != nil {
		return "", err
	}
	return string(bs), nil
}

// ReadCString reads bytes until a zero terminator, consuming it.
func (b *Reader) ReadCString() (string, error) {
	bs := make([]byte, 0, 16)
	for {
		v, err := b.ReadByte()
		if err != nil {
			return "", errors.Wrap(err, "ReadCString error: missing terminator")
		}
		if v == 0 {
			return string(bs), nil
		}
		bs = append(bs, v)
	}
}

// Align skips forward so that the position becomes divisible by m.
func (b *Reader) Align(m int) error {
	position := b.Position()
	padding := ds.NearestDivisibleByM(position, m) - position
	if padding == 0 {
		return nil
	}
	_, err := b.ReadBytes(padding)
	return errors.Wrapf(err, "Align error: skipping %d bytes", padding)
}
