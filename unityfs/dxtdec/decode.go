package dxtdec

import (
	"io"

	"github.com/pkg/errors"
)

type (
	// Variant selects the block compression layout: DXT1 packs color
	// only (with an optional 1-bit color-key alpha), DXT5 prepends an
	// interpolated alpha block.
	Variant int
)

const (
	DXT1 Variant = iota
	DXT5
)

// BlockSize reports the compressed size of one 4x4 block.
func (v Variant) BlockSize() int {
	if v == DXT5 {
		return 16
	}
	return 8
}

// Decode reads ceil(width/4) x ceil(height/4) blocks in row-major order
// and returns a tightly packed RGBA raster of width x height. Input
// shorter than the block count requires is an error.
func Decode(r io.Reader, width, height uint32, variant Variant) ([]byte, error) {
	blockWidth := (width + 3) / 4
	blockHeight := (height + 3) / 4
	scanline := int(width) * 4
	out := make([]byte, scanline*int(height))
	raw := make([]byte, variant.BlockSize())

	for blockY := uint32(0); blockY < blockHeight; blockY++ {
		for blockX := uint32(0); blockX < blockWidth; blockX++ {
			if _, err := io.ReadFull(r, raw); err != nil {
				return nil, errors.Wrapf(
					err, "Decode error: read block (%d, %d)", blockX, blockY,
				)
			}
			var block [4][16]byte
			switch variant {
			case DXT1:
				decodeColorBlock(raw, true, &block)
			case DXT5:
				decodeAlphaBlock(raw[:8], &block)
				decodeColorBlock(raw[8:], false, &block)
			}
			// clip partial blocks at the right and bottom edges
			for y := 0; y < 4 && blockY*4+uint32(y) < height; y++ {
				row := out[(int(blockY)*4+y)*scanline:]
				for x := 0; x < 4 && blockX*4+uint32(x) < width; x++ {
					copy(row[(int(blockX)*4+x)*4:][:4], block[y][x*4:x*4+4])
				}
			}
		}
	}
	return out, nil
}

func expand565(v uint16) (int, int, int) {
	r := int(v >> 11)
	g := int(v >> 5 & 0x3F)
	b := int(v & 0x1F)
	return r<<3 | r>>2, g<<2 | g>>4, b<<3 | b>>2
}

// decodeColorBlock fills RGB (and, for DXT1, alpha) from an 8-byte
// color block. The endpoint ordering only matters under DXT1: c0 <= c1
// selects three-color mode with selector 3 transparent black via the
// color key. DXT5 color blocks always interpolate four colors.
func decodeColorBlock(d []byte, colorKey bool, block *[4][16]byte) {
	c0 := uint16(d[0]) | uint16(d[1])<<8
	c1 := uint16(d[2]) | uint16(d[3])<<8
	r0, g0, b0 := expand565(c0)
	r1, g1, b1 := expand565(c1)

	palette := [4][4]int{
		{r0, g0, b0, 255},
		{r1, g1, b1, 255},
	}
	if c0 > c1 || !colorKey {
		palette[2] = [4]int{(2*r0 + r1) / 3, (2*g0 + g1) / 3, (2*b0 + b1) / 3, 255}
		palette[3] = [4]int{(r0 + 2*r1) / 3, (g0 + 2*g1) / 3, (b0 + 2*b1) / 3, 255}
	} else {
		palette[2] = [4]int{(r0 + r1) / 2, (g0 + g1) / 2, (b0 + b1) / 2, 255}
		palette[3] = [4]int{0, 0, 0, 0}
	}

	for y := 0; y < 4; y++ {
		bits := d[4+y]
		for x := 0; x < 4; x++ {
			p := palette[bits>>(2*x)&3]
			block[y][x*4] = byte(p[0])
			block[y][x*4+1] = byte(p[1])
			block[y][x*4+2] = byte(p[2])
			if colorKey {
				block[y][x*4+3] = byte(p[3])
			}
		}
	}
}

// decodeAlphaBlock fills the alpha channel from an 8-byte DXT5 alpha
// block: two endpoint values and 16 3-bit selectors, least significant
// bits first.
func decodeAlphaBlock(d []byte, block *[4][16]byte) {
	a0 := int(d[0])
	a1 := int(d[1])

	var palette [8]int
	palette[0], palette[1] = a0, a1
	if a0 > a1 {
		for i := 1; i <= 6; i++ {
			palette[i+1] = ((7-i)*a0 + i*a1) / 7
		}
	} else {
		for i := 1; i <= 4; i++ {
			palette[i+1] = ((5-i)*a0 + i*a1) / 5
		}
		palette[6] = 0
		palette[7] = 255
	}

	var bits uint64
	for i := 7; i >= 2; i-- {
		bits = bits<<8 | uint64(d[i])
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			idx := bits >> (3 * uint(y*4+x)) & 7
			block[y][x*4+3] = byte(palette[idx])
		}
	}
}
