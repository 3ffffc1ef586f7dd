package etcdec

type (
	// Format selects which flavor of the mobile block family a stream
	// carries. Etc2Rgba8 blocks are 16 bytes (8 alpha + 8 color); the
	// rest are 8 bytes.
	Format int
	// Block is one decoded 4x4 pixel block: 4 rows, each 4 RGBA pixels.
	Block [4][16]byte
)

const (
	Etc1Rgb Format = iota
	Etc2Rgb
	Etc2Rgba1
	Etc2Rgba8
)

// BlockSize reports the number of bytes one compressed block consumes
// from the input stream.
func (f Format) BlockSize() int {
	if f == Etc2Rgba8 {
		return 16
	}
	return 8
}
