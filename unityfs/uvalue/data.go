package uvalue

import (
	"unity-peek/ds"
)

type (
	// Kind discriminates the closed set of value shapes that the
	// serialized-file reader can produce. There are no other shapes;
	// consumers are expected to switch over every kind and treat an
	// unknown one as a programming error.
	Kind string
	// Field is one named member of a generic struct. Order of fields
	// follows the type tree; lookup is by name.
	Field struct {
		Name  string
		Value Data
	}
	Data struct {
		Kind     Kind
		TypeName string // schema type name; set for KindStruct and KindPrimitive
		Bool     bool
		UInt     uint64 // KindUInt8/16/32/64
		SInt     int64  // KindSInt8/16/32/64
		Float    float64
		Bytes    []byte // KindString, KindByteArray, KindPrimitive
		First    *Data  // KindPair
		Second   *Data
		Elements []Data  // KindArray
		Fields   []Field // KindStruct
	}
)

const (
	KindBool      = Kind("bool")
	KindUInt8     = Kind("UInt8")
	KindUInt16    = Kind("UInt16")
	KindUInt32    = Kind("UInt32")
	KindUInt64    = Kind("UInt64")
	KindSInt8     = Kind("SInt8")
	KindSInt16    = Kind("SInt16")
	KindSInt32    = Kind("SInt32")
	KindSInt64    = Kind("SInt64")
	KindFloat     = Kind("float")
	KindDouble    = Kind("double")
	KindString    = Kind("string")
	KindByteArray = Kind("ByteArray")
	KindPair      = Kind("pair")
	KindArray     = Kind("Array")
	KindPrimitive = Kind("primitive")
	KindStruct    = Kind("struct")
)

// Name reports the name a host sees for the value: the schema type
// name for named variants, the union tag for everything else.
func (d Data) Name() string {
	switch d.Kind {
	case KindStruct, KindPrimitive:
		return d.TypeName
	default:
		return string(d.Kind)
	}
}

// FieldByName looks up a struct member. The second value is false when
// the field is absent or the value is not a generic struct.
func (d Data) FieldByName(name string) (Data, bool) {
	if d.Kind != KindStruct {
		return Data{}, false
	}
	for _, field := range d.Fields {
		if field.Name == name {
			return field.Value, true
		}
	}
	return Data{}, false
}

// CloneOwned returns a deep copy whose byte buffers no longer alias the
// decompressed bundle buffer, so a value can outlive its container.
func (d Data) CloneOwned() Data {
	out := d
	if d.Bytes != nil {
		out.Bytes = ds.ShallowCopy(d.Bytes)
	}
	if d.First != nil {
		first := d.First.CloneOwned()
		out.First = &first
	}
	if d.Second != nil {
		second := d.Second.CloneOwned()
		out.Second = &second
	}
	if d.Elements != nil {
		out.Elements = make([]Data, 0, len(d.Elements))
		for _, element := range d.Elements {
			out.Elements = append(out.Elements, element.CloneOwned())
		}
	}
	if d.Fields != nil {
		out.Fields = make([]Field, 0, len(d.Fields))
		for _, field := range d.Fields {
			out.Fields = append(
				out.Fields,
				Field{Name: field.Name, Value: field.Value.CloneOwned()},
			)
		}
	}
	return out
}
