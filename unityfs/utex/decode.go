package utex

import (
	"bytes"
	"image"
	"image/png"
	"io"

	"unity-peek/unityfs/dxtdec"
	"unity-peek/unityfs/etcdec"
	"github.com/pkg/errors"
)

// readEtc assembles an RGBA raster from a stream of 4x4 blocks. The
// stream is consumed in row-major block order, but each block lands in
// the output with the vertical flip already applied:
//
//	outputRow = height - 1 - blockY*4 - localRow
//
// so the finished raster is bottom-up relative to the stream without a
// separate flip pass.
func readEtc(width, height uint32, format etcdec.Format, r io.Reader) ([]byte, error) {
	blockWidth := int(width+3) / 4
	blockHeight := int(height+3) / 4
	scanline := int(width) * 4
	buf := make([]byte, scanline*int(height))

	for blockY := 0; blockY < blockHeight; blockY++ {
		for blockX := 0; blockX < blockWidth; blockX++ {
			block, err := etcdec.DecodeSingleBlock(r, format)
			if err != nil {
				return nil, errors.Wrapf(
					err, "readEtc error: block (%d, %d)", blockX, blockY,
				)
			}
			for localRow := 0; localRow < 4; localRow++ {
				outputRow := int(height) - 1 - blockY*4 - localRow
				if outputRow < 0 {
					continue
				}
				row := buf[outputRow*scanline:]
				for x := 0; x < 4 && blockX*4+x < int(width); x++ {
					copy(row[(blockX*4+x)*4:][:4], block[localRow][x*4:x*4+4])
				}
			}
		}
	}
	return buf, nil
}

// readDxt decodes the whole raster top-down, then flips it so both
// families converge on the same row order.
func readDxt(width, height uint32, variant dxtdec.Variant, r io.Reader) ([]byte, error) {
	buf, err := dxtdec.Decode(r, width, height, variant)
	if err != nil {
		return nil, errors.Wrap(err, "readDxt error")
	}
	flipVertical(buf, width, height)
	return buf, nil
}

func flipVertical(buf []byte, width, height uint32) {
	scanline := int(width) * 4
	tmp := make([]byte, scanline)
	for y := 0; y < int(height)/2; y++ {
		top := buf[y*scanline : (y+1)*scanline]
		bottom := buf[(int(height)-1-y)*scanline : (int(height)-y)*scanline]
		copy(tmp, top)
		copy(top, bottom)
		copy(bottom, tmp)
	}
}

// read runs the full reconstruction: block decompression, vertical
// flip, and lossless encoding of the resulting raster.
func read(width, height uint32, format DecodeFormat, r io.Reader) ([]byte, error) {
	var raw []byte
	var err error
	if format.desktop() {
		raw, err = readDxt(width, height, format.dxtVariant(), r)
	} else {
		raw, err = readEtc(width, height, format.etcFormat(), r)
	}
	if err != nil {
		return nil, err
	}
	return encodePNG(raw, width, height)
}

func encodePNG(raw []byte, width, height uint32) ([]byte, error) {
	img := &image.NRGBA{
		Pix:    raw,
		Stride: int(width) * 4,
		Rect:   image.Rect(0, 0, int(width), int(height)),
	}
	buf := bytes.Buffer{}
	encoder := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := encoder.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(err, "encodePNG error")
	}
	return buf.Bytes(), nil
}
