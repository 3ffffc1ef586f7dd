package uproject

import (
	"unicode/utf8"

	"unity-peek/ds"
	"unity-peek/unityfs/utex"
	"unity-peek/unityfs/uvalue"
	"github.com/iancoleman/orderedmap"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// projectScalar handles the kinds whose projection is identical at
// every depth. All numeric kinds widen to float64, including the 64-bit
// ones: values at or above 2^53 lose precision, which is accepted on
// the grounds that large identifiers are inspected as approximate
// values only. Byte strings decode to text when they are valid UTF-8
// and stay raw bytes otherwise; same bytes always take the same branch.
func projectScalar(data uvalue.Data) (any, bool) {
	switch data.Kind {
	case uvalue.KindBool:
		return data.Bool, true
	case uvalue.KindUInt8, uvalue.KindUInt16, uvalue.KindUInt32, uvalue.KindUInt64:
		return float64(data.UInt), true
	case uvalue.KindSInt8, uvalue.KindSInt16, uvalue.KindSInt32, uvalue.KindSInt64:
		return float64(data.SInt), true
	case uvalue.KindFloat, uvalue.KindDouble:
		return data.Float, true
	case uvalue.KindString:
		if utf8.Valid(data.Bytes) {
			return string(data.Bytes), true
		}
		return data.Bytes, true
	default:
		return nil, false
	}
}

// ProjectShallow projects one level only: scalars and strings become
// host values, everything else becomes a Handle whose full structure
// stays reachable on demand. Array and struct members use this entry
// point so projecting a large tree stays cheap.
func ProjectShallow(data uvalue.Data) any {
	if value, ok := projectScalar(data); ok {
		return value
	}
	return NewHandle(data)
}

// ProjectDeep expands the value completely at this level: arrays and
// structs materialize with shallowly projected members, pairs become a
// two-handle slice, primitive blobs and byte arrays become raw bytes. A
// struct tagged Texture2D takes the texture path instead of becoming a
// generic record; its metadata errors are not recoverable here.
func ProjectDeep(data uvalue.Data) (any, error) {
	if value, ok := projectScalar(data); ok {
		return value, nil
	}
	switch data.Kind {
	case uvalue.KindByteArray, uvalue.KindPrimitive:
		return data.Bytes, nil
	case uvalue.KindPair:
		return []any{NewHandle(*data.First), NewHandle(*data.Second)}, nil
	case uvalue.KindArray:
		return lo.Map(
			data.Elements,
			func(element uvalue.Data, _ int) any {
				return ProjectShallow(element)
			},
		), nil
	case uvalue.KindStruct:
		if data.TypeName == "Texture2D" {
			texture, err := utex.FromData(data)
			if err != nil {
				return nil, errors.Wrap(err, "ProjectDeep error")
			}
			return texture, nil
		}
		record := orderedmap.New()
		for _, field := range data.Fields {
			record.Set(field.Name, ProjectShallow(field.Value))
		}
		return record, nil
	default:
		// the union is closed; a new kind here is a bug, not data
		return nil, errors.WithStack(ds.ErrUnreachableCode{Caller: "ProjectDeep"})
	}
}
