package utex

import (
	"bytes"
	"image/png"
	"testing"

	"unity-peek/unityfs/etcdec"
	"github.com/stretchr/testify/assert"
)

// solid ETC1 individual-mode block: every channel expand4(nibble) + 2
func solidEtcBlock(nibble byte) []byte {
	v := nibble<<4 | nibble
	return []byte{v, v, v, 0x00, 0, 0, 0, 0}
}

func TestReadEtc_RowOrder(t *testing.T) {
	// 4x8 raster, two blocks: the first block in the stream lands in the
	// bottom half of the output, the second in the top half
	stream := append(solidEtcBlock(8), solidEtcBlock(4)...)

	raster, err := readEtc(4, 8, etcdec.Etc1Rgb, bytes.NewReader(stream))
	assert.NoError(t, err)
	assert.Len(t, raster, 4*8*4)

	// second block: expand4(4) + 2 = 70, first block: expand4(8) + 2 = 138
	assert.Equal(t, byte(70), raster[0])
	assert.Equal(t, byte(70), raster[3*4*4])
	assert.Equal(t, byte(138), raster[4*4*4])
	assert.Equal(t, byte(138), raster[7*4*4])
}

func TestReadEtc_ClipsPartialBlocks(t *testing.T) {
	raster, err := readEtc(2, 2, etcdec.Etc1Rgb, bytes.NewReader(solidEtcBlock(8)))
	assert.NoError(t, err)
	assert.Len(t, raster, 2*2*4)
	for i := 0; i < len(raster); i += 4 {
		assert.Equal(t, byte(138), raster[i])
		assert.Equal(t, byte(255), raster[i+3])
	}
}

func TestReadEtc_Underrun(t *testing.T) {
	stream := solidEtcBlock(8)
	_, err := readEtc(8, 4, etcdec.Etc1Rgb, bytes.NewReader(stream[:8]))
	assert.Error(t, err)
}

func TestFlipVertical(t *testing.T) {
	buf := []byte{
		1, 1, 1, 1,
		2, 2, 2, 2,
		3, 3, 3, 3,
	}
	flipVertical(buf, 1, 3)
	assert.Equal(t, []byte{
		3, 3, 3, 3,
		2, 2, 2, 2,
		1, 1, 1, 1,
	}, buf)
}

func TestEncodePNG(t *testing.T) {
	raw := bytes.Repeat([]byte{10, 20, 30, 255}, 4)
	encoded, err := encodePNG(raw, 2, 2)
	assert.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(encoded))
	assert.NoError(t, err)
	assert.Equal(t, 2, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())

	r, g, b, a := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(10*0x101), r)
	assert.Equal(t, uint32(20*0x101), g)
	assert.Equal(t, uint32(30*0x101), b)
	assert.Equal(t, uint32(0xFFFF), a)
}
