package utex

import (
	"bytes"
	"io"
	"strings"

	"unity-peek/unityfs/uvalue"
	"github.com/pkg/errors"
)

// Load decodes pixel data that is already at hand and returns a
// resolved texture.
func Load(name string, width, height uint32, format DecodeFormat, r io.Reader) (*Texture2D, error) {
	encoded, err := read(width, height, format, r)
	if err != nil {
		return nil, errors.Wrapf(err, `Load error: texture "%s"`, name)
	}
	return &Texture2D{
		Name:    name,
		Width:   width,
		Height:  height,
		state:   stateLoaded,
		encoded: encoded,
	}, nil
}

// Defer returns a texture whose compressed bytes live elsewhere,
// described by the streaming descriptor.
func Defer(name string, width, height uint32, format DecodeFormat, streaming StreamingInfo) *Texture2D {
	return &Texture2D{
		Name:      name,
		Width:     width,
		Height:    height,
		state:     stateStreaming,
		format:    format,
		streaming: streaming,
	}
}

// Unknown returns a texture whose format code is outside the supported
// set. Dimensions are still known; no pixel data will ever be available.
func Unknown(name string, width, height uint32) *Texture2D {
	return &Texture2D{
		Name:   name,
		Width:  width,
		Height: height,
		state:  stateUnknown,
	}
}

// FromData builds a texture entity from a generic struct tagged
// "Texture2D". A missing or wrong-kinded required field is a hard
// error naming that field.
func FromData(data uvalue.Data) (*Texture2D, error) {
	name, err := requireString(data, "m_Name")
	if err != nil {
		return nil, err
	}
	width, err := requireSInt32(data, "m_Width")
	if err != nil {
		return nil, err
	}
	height, err := requireSInt32(data, "m_Height")
	if err != nil {
		return nil, err
	}
	imageData, ok := data.FieldByName("image data")
	if !ok {
		return nil, SchemaMismatchError{Field: "image data", Reason: ReasonNotFound}
	}
	if imageData.Kind != uvalue.KindByteArray {
		return nil, SchemaMismatchError{Field: "image data", Reason: ReasonTypeMismatch}
	}
	formatCode, err := requireSInt32(data, "m_TextureFormat")
	if err != nil {
		return nil, err
	}

	format := FormatFromCode(formatCode)
	if format == FormatUnknown {
		return Unknown(name, uint32(width), uint32(height)), nil
	}

	streamData, ok := data.FieldByName("m_StreamData")
	if !ok {
		return nil, SchemaMismatchError{Field: "m_StreamData", Reason: ReasonNotFound}
	}
	streaming, err := StreamingInfoFromData(streamData)
	if err != nil {
		return nil, err
	}
	if streaming.Path == "" {
		return Load(name, uint32(width), uint32(height), format, bytes.NewReader(imageData.Bytes))
	}
	return Defer(name, uint32(width), uint32(height), format, streaming), nil
}

func requireString(data uvalue.Data, field string) (string, error) {
	value, ok := data.FieldByName(field)
	if !ok {
		return "", SchemaMismatchError{Field: field, Reason: ReasonNotFound}
	}
	if value.Kind != uvalue.KindString {
		return "", SchemaMismatchError{Field: field, Reason: ReasonTypeMismatch}
	}
	return string(value.Bytes), nil
}

func requireSInt32(data uvalue.Data, field string) (int32, error) {
	value, ok := data.FieldByName(field)
	if !ok {
		return 0, SchemaMismatchError{Field: field, Reason: ReasonNotFound}
	}
	if value.Kind != uvalue.KindSInt32 {
		return 0, SchemaMismatchError{Field: field, Reason: ReasonTypeMismatch}
	}
	return int32(value.SInt), nil
}

// EncodedPNG returns the encoded image payload. The second value is
// false until the texture is resolved.
func (t *Texture2D) EncodedPNG() ([]byte, bool) {
	if t.state != stateLoaded {
		return nil, false
	}
	return t.encoded, true
}

// AssetDependency returns the streaming path a deferred texture is
// waiting on.
func (t *Texture2D) AssetDependency() (string, bool) {
	if t.state != stateStreaming {
		return "", false
	}
	return t.streaming.Path, true
}

func (t *Texture2D) Resolved() bool     { return t.state == stateLoaded }
func (t *Texture2D) Deferred() bool     { return t.state == stateStreaming }
func (t *Texture2D) Unrecognized() bool { return t.state == stateUnknown }

// Resolve pulls a deferred texture's bytes out of the given container
// and finishes decoding. It succeeds as a no-op when there is nothing
// to do here: the texture is not deferred, the path scheme is foreign,
// the path names a sibling bundle, or the resource is absent. A
// descriptor that slices outside a positively matched resource is
// corruption and fails with ErrRange. On any error the texture is left
// unchanged; on success it transitions to resolved exactly once.
func (t *Texture2D) Resolve(c Container) error {
	if t.state != stateStreaming {
		return nil
	}
	rest, ok := strings.CutPrefix(t.streaming.Path, "archive:/")
	if !ok {
		return nil
	}
	segments := strings.Split(rest, "/")
	if len(segments) < 2 {
		return nil
	}
	bundleName, resourceName := segments[0], segments[1]
	if c.Name() != bundleName {
		return nil
	}
	resource, ok := c.Resource(resourceName)
	if !ok {
		return nil
	}
	if uint64(t.streaming.Offset)+uint64(t.streaming.Size) > uint64(len(resource)) {
		return errors.Wrapf(
			ErrRange,
			`Resolve error: texture "%s" wants [%d, %d) of %d-byte resource "%s"`,
			t.Name, t.streaming.Offset,
			uint64(t.streaming.Offset)+uint64(t.streaming.Size),
			len(resource), resourceName,
		)
	}
	buf := resource[t.streaming.Offset : t.streaming.Offset+t.streaming.Size]
	encoded, err := read(t.Width, t.Height, t.format, bytes.NewReader(buf))
	if err != nil {
		return errors.Wrapf(err, `Resolve error: texture "%s"`, t.Name)
	}
	t.state = stateLoaded
	t.encoded = encoded
	return nil
}
