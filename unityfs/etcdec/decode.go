package etcdec

import (
	"io"

	"github.com/pkg/errors"
)

// Intensity modifier table for ETC1 individual/differential modes,
// indexed by table codeword then 2-bit pixel index.
var modifierTable = [8][4]int{
	{2, 8, -2, -8},
	{5, 17, -5, -17},
	{9, 29, -9, -29},
	{13, 42, -13, -42},
	{18, 60, -18, -60},
	{24, 80, -24, -80},
	{33, 106, -33, -106},
	{47, 183, -47, -183},
}

// Paint color distance table for ETC2 T and H modes.
var distanceTable = [8]int{3, 6, 11, 16, 23, 32, 41, 64}

// EAC alpha modifier table, indexed by table codeword then 3-bit index.
var alphaTable = [16][8]int{
	{-3, -6, -9, -15, 2, 5, 8, 14},
	{-3, -7, -10, -13, 2, 6, 9, 12},
	{-2, -5, -8, -13, 1, 4, 7, 12},
	{-2, -4, -6, -13, 1, 3, 5, 12},
	{-3, -6, -8, -12, 2, 5, 7, 11},
	{-3, -7, -9, -11, 2, 6, 8, 10},
	{-4, -7, -8, -11, 3, 6, 7, 10},
	{-3, -5, -8, -11, 2, 4, 7, 10},
	{-2, -6, -8, -10, 1, 5, 7, 9},
	{-2, -5, -8, -10, 1, 4, 7, 9},
	{-2, -4, -8, -10, 1, 3, 7, 9},
	{-2, -5, -7, -10, 1, 4, 6, 9},
	{-3, -4, -7, -10, 2, 3, 6, 9},
	{-1, -2, -3, -10, 0, 1, 2, 9},
	{-4, -6, -8, -9, 3, 5, 7, 8},
	{-3, -5, -7, -9, 2, 4, 6, 8},
}

// DecodeSingleBlock consumes exactly one compressed block from the
// stream and returns its 4x4 RGBA pixels. An underrun while reading the
// block is an error; the stream is left in an undefined position then.
func DecodeSingleBlock(r io.Reader, format Format) (Block, error) {
	block := Block{}
	raw := make([]byte, format.BlockSize())
	if _, err := io.ReadFull(r, raw); err != nil {
		return block, errors.Wrap(err, "DecodeSingleBlock error: read block")
	}

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			block[y][x*4+3] = 255
		}
	}

	colorPart := raw
	if format == Etc2Rgba8 {
		decodeAlphaBlock(raw[:8], &block)
		colorPart = raw[8:]
	}
	decodeColorBlock(colorPart, format, &block)
	return block, nil
}

func clamp255(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

func expand4(v byte) int { return int(v<<4 | v) }
func expand5(v int) int  { return v<<3 | v>>2 }
func expand6(v int) int  { return v<<2 | v>>4 }
func expand7(v int) int  { return v<<1 | v>>6 }

func signed3(v byte) int {
	if v >= 4 {
		return int(v) - 8
	}
	return int(v)
}

func setPixel(block *Block, x, y, r, g, b int) {
	block[y][x*4] = clamp255(r)
	block[y][x*4+1] = clamp255(g)
	block[y][x*4+2] = clamp255(b)
}

func setTransparent(block *Block, x, y int) {
	block[y][x*4] = 0
	block[y][x*4+1] = 0
	block[y][x*4+2] = 0
	block[y][x*4+3] = 0
}

// pixelIndex extracts the 2-bit selector for pixel (x, y). Selector bits
// are stored column-major: pixel i = x*4+y, MSB plane in bytes 4-5, LSB
// plane in bytes 6-7.
func pixelIndex(d []byte, x, y int) int {
	i := uint(x*4 + y)
	msb := uint16(d[4])<<8 | uint16(d[5])
	lsb := uint16(d[6])<<8 | uint16(d[7])
	return int((msb>>i)&1)<<1 | int((lsb>>i)&1)
}

func decodeColorBlock(d []byte, format Format, block *Block) {
	etc2 := format == Etc2Rgb || format == Etc2Rgba1 || format == Etc2Rgba8
	punch := format == Etc2Rgba1
	opaque := d[3]&2 != 0

	if !punch && !opaque {
		// ETC1 individual mode: two RGB444 base colors
		base1 := [3]int{expand4(d[0] >> 4), expand4(d[1] >> 4), expand4(d[2] >> 4)}
		base2 := [3]int{expand4(d[0] & 0xF), expand4(d[1] & 0xF), expand4(d[2] & 0xF)}
		decodeSubBlocks(d, base1, base2, false, false, block)
		return
	}

	r5 := int(d[0] >> 3)
	g5 := int(d[1] >> 3)
	b5 := int(d[2] >> 3)
	r := r5 + signed3(d[0]&7)
	g := g5 + signed3(d[1]&7)
	b := b5 + signed3(d[2]&7)

	switch {
	case etc2 && (r < 0 || r > 31):
		decodeTBlock(d, punch && !opaque, block)
	case etc2 && (g < 0 || g > 31):
		decodeHBlock(d, punch && !opaque, block)
	case etc2 && (b < 0 || b > 31):
		decodePlanarBlock(d, block)
	default:
		// differential mode, shared between ETC1 and ETC2
		base1 := [3]int{expand5(r5), expand5(g5), expand5(b5)}
		base2 := [3]int{expand5(r), expand5(g), expand5(b)}
		decodeSubBlocks(d, base1, base2, punch, !opaque, block)
	}
}

// decodeSubBlocks handles the two-subblock modes (individual and
// differential). With punchthrough and the opaque bit clear, selector 2
// is transparent black and selector 0 has a zero modifier.
func decodeSubBlocks(d []byte, base1, base2 [3]int, punch, transparent bool, block *Block) {
	table1 := modifierTable[d[3]>>5]
	table2 := modifierTable[(d[3]>>2)&7]
	flip := d[3]&1 != 0

	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			base, table := base1, table1
			if (!flip && x >= 2) || (flip && y >= 2) {
				base, table = base2, table2
			}
			idx := pixelIndex(d, x, y)
			if punch && transparent {
				if idx == 2 {
					setTransparent(block, x, y)
					continue
				}
				if idx == 0 {
					setPixel(block, x, y, base[0], base[1], base[2])
					continue
				}
			}
			m := table[idx]
			setPixel(block, x, y, base[0]+m, base[1]+m, base[2]+m)
		}
	}
}

func decodeTBlock(d []byte, transparent bool, block *Block) {
	r1 := expand4(d[0]&0x18>>1 | d[0]&3)
	g1 := expand4(d[1] >> 4)
	b1 := expand4(d[1] & 0xF)
	r2 := expand4(d[2] >> 4)
	g2 := expand4(d[2] & 0xF)
	b2 := expand4(d[3] >> 4)
	dist := distanceTable[(d[3]>>1)&6|d[3]&1]

	paints := [4][3]int{
		{r1, g1, b1},
		{r2 + dist, g2 + dist, b2 + dist},
		{r2, g2, b2},
		{r2 - dist, g2 - dist, b2 - dist},
	}
	paintPixels(d, paints, transparent, block)
}

func decodeHBlock(d []byte, transparent bool, block *Block) {
	r1 := expand4(d[0] >> 3 & 0xF)
	g1 := expand4(d[0]&7<<1 | d[1]>>4&1)
	b1 := expand4(d[1]&8 | d[1]&3<<1 | d[2]>>7)
	r2 := expand4(d[2] >> 3 & 0xF)
	g2 := expand4(d[2]&7<<1 | d[3]>>7)
	b2 := expand4(d[3] >> 3 & 0xF)

	di := int(d[3]&4 | d[3]&1<<1)
	if r1<<16|g1<<8|b1 >= r2<<16|g2<<8|b2 {
		di |= 1
	}
	dist := distanceTable[di]

	paints := [4][3]int{
		{r1 + dist, g1 + dist, b1 + dist},
		{r1 - dist, g1 - dist, b1 - dist},
		{r2 + dist, g2 + dist, b2 + dist},
		{r2 - dist, g2 - dist, b2 - dist},
	}
	paintPixels(d, paints, transparent, block)
}

func paintPixels(d []byte, paints [4][3]int, transparent bool, block *Block) {
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			idx := pixelIndex(d, x, y)
			if transparent && idx == 2 {
				setTransparent(block, x, y)
				continue
			}
			p := paints[idx]
			setPixel(block, x, y, p[0], p[1], p[2])
		}
	}
}

// decodePlanarBlock interpolates three RGB676 corner colors across the
// block. Planar blocks are always fully opaque.
func decodePlanarBlock(d []byte, block *Block) {
	ro := expand6(int(d[0] >> 1 & 0x3F))
	gv0 := expand7(int(d[0]&1)<<6 | int(d[1]>>1&0x3F))
	bo := expand6(int(d[1]&1)<<5 | int(d[2]&0x18) | int(d[2]&3)<<1 | int(d[3]>>7&1))
	rh := expand6(int(d[3]&0x7C)>>1 | int(d[3]&1))
	gh := expand7(int(d[4] >> 1 & 0x7F))
	bh := expand6(int(d[4]&1)<<5 | int(d[5]>>3&0x1F))
	rv := expand6(int(d[5]&7)<<3 | int(d[6]>>5&7))
	gv := expand7(int(d[6]&0x1F)<<2 | int(d[7]>>6&3))
	bv := expand6(int(d[7] & 0x3F))
	go_ := gv0

	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			r := (x*(rh-ro) + y*(rv-ro) + 4*ro + 2) >> 2
			g := (x*(gh-go_) + y*(gv-go_) + 4*go_ + 2) >> 2
			b := (x*(bh-bo) + y*(bv-bo) + 4*bo + 2) >> 2
			setPixel(block, x, y, r, g, b)
		}
	}
}

// decodeAlphaBlock decodes an 8-byte EAC alpha block into the alpha
// channel. Selector bits are packed 3 bits per pixel, column-major,
// most significant bits first.
func decodeAlphaBlock(d []byte, block *Block) {
	base := int(d[0])
	mult := int(d[1] >> 4)
	table := alphaTable[d[1]&0xF]

	var bits uint64
	for _, v := range d[2:8] {
		bits = bits<<8 | uint64(v)
	}
	for i := 0; i < 16; i++ {
		x, y := i/4, i%4
		idx := int(bits >> (45 - 3*i) & 7)
		block[y][x*4+3] = clamp255(base + table[idx]*mult)
	}
}
