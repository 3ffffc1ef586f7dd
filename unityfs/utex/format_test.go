package utex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFromCode(t *testing.T) {
	assert.Equal(t, FormatDXT1, FormatFromCode(10))
	assert.Equal(t, FormatDXT5, FormatFromCode(12))
	assert.Equal(t, FormatEtc1Rgb, FormatFromCode(34))
	assert.Equal(t, FormatEtc2Rgb, FormatFromCode(45))
	assert.Equal(t, FormatEtc2Rgba1, FormatFromCode(46))
	assert.Equal(t, FormatEtc2Rgba8, FormatFromCode(47))

	// neighbors of supported codes stay unknown; there is no guessing
	assert.Equal(t, FormatUnknown, FormatFromCode(11))
	assert.Equal(t, FormatUnknown, FormatFromCode(33))
	assert.Equal(t, FormatUnknown, FormatFromCode(48))
	assert.Equal(t, FormatUnknown, FormatFromCode(0))
	assert.Equal(t, FormatUnknown, FormatFromCode(-1))
}

func TestDecodeFormat_String(t *testing.T) {
	assert.Equal(t, "DXT1", FormatDXT1.String())
	assert.Equal(t, "ETC2 RGBA8", FormatEtc2Rgba8.String())
	assert.Equal(t, "unknown", FormatUnknown.String())
}
