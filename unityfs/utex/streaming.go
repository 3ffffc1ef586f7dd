package utex

import (
	"unity-peek/unityfs/uvalue"
)

// StreamingInfoFromData shape-checks a generic struct tagged
// "StreamingInfo" with exactly the fields path (string), offset
// (uint32) and size (uint32). Any mismatch is a hard error: a silently
// defaulted descriptor would point resolution at garbage.
func StreamingInfoFromData(data uvalue.Data) (StreamingInfo, error) {
	mismatch := SchemaMismatchError{Field: "StreamingInfo", Reason: ReasonTypeMismatch}
	if data.Kind != uvalue.KindStruct || data.TypeName != "StreamingInfo" {
		return StreamingInfo{}, mismatch
	}
	path, ok := data.FieldByName("path")
	if !ok || path.Kind != uvalue.KindString {
		return StreamingInfo{}, mismatch
	}
	offset, ok := data.FieldByName("offset")
	if !ok || offset.Kind != uvalue.KindUInt32 {
		return StreamingInfo{}, mismatch
	}
	size, ok := data.FieldByName("size")
	if !ok || size.Kind != uvalue.KindUInt32 {
		return StreamingInfo{}, mismatch
	}
	return StreamingInfo{
		Path:   string(path.Bytes),
		Offset: uint32(offset.UInt),
		Size:   uint32(size.UInt),
	}, nil
}
