package utex

import (
	"unity-peek/unityfs/dxtdec"
	"unity-peek/unityfs/etcdec"
)

type (
	// DecodeFormat carries which decoder family and sub-variant a
	// texture's pixel data needs. FormatUnknown marks a format code
	// outside the supported set; that is a state, not an error.
	DecodeFormat int
)

const (
	FormatUnknown DecodeFormat = iota
	FormatDXT1
	FormatDXT5
	FormatEtc1Rgb
	FormatEtc2Rgb
	FormatEtc2Rgba1
	FormatEtc2Rgba8
)

// FormatFromCode maps the container's numeric texture format code onto
// a decoder. The mapping is exact; every other code is FormatUnknown.
func FormatFromCode(code int32) DecodeFormat {
	switch code {
	case 10:
		return FormatDXT1
	case 12:
		return FormatDXT5
	case 34:
		return FormatEtc1Rgb
	case 45:
		return FormatEtc2Rgb
	case 46:
		return FormatEtc2Rgba1
	case 47:
		return FormatEtc2Rgba8
	default:
		return FormatUnknown
	}
}

func (f DecodeFormat) desktop() bool {
	return f == FormatDXT1 || f == FormatDXT5
}

func (f DecodeFormat) dxtVariant() dxtdec.Variant {
	if f == FormatDXT5 {
		return dxtdec.DXT5
	}
	return dxtdec.DXT1
}

func (f DecodeFormat) etcFormat() etcdec.Format {
	switch f {
	case FormatEtc2Rgb:
		return etcdec.Etc2Rgb
	case FormatEtc2Rgba1:
		return etcdec.Etc2Rgba1
	case FormatEtc2Rgba8:
		return etcdec.Etc2Rgba8
	default:
		return etcdec.Etc1Rgb
	}
}

func (f DecodeFormat) String() string {
	switch f {
	case FormatDXT1:
		return "DXT1"
	case FormatDXT5:
		return "DXT5"
	case FormatEtc1Rgb:
		return "ETC1 RGB"
	case FormatEtc2Rgb:
		return "ETC2 RGB"
	case FormatEtc2Rgba1:
		return "ETC2 RGB A1"
	case FormatEtc2Rgba8:
		return "ETC2 RGBA8"
	default:
		return "unknown"
	}
}
