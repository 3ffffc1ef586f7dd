package uvalue

// Constructors for every kind of the union. The serialized-file reader
// and the tests are the only producers of Data values.

func Bool(v bool) Data { return Data{Kind: KindBool, Bool: v} }

func UInt8(v uint8) Data   { return Data{Kind: KindUInt8, UInt: uint64(v)} }
func UInt16(v uint16) Data { return Data{Kind: KindUInt16, UInt: uint64(v)} }
func UInt32(v uint32) Data { return Data{Kind: KindUInt32, UInt: uint64(v)} }
func UInt64(v uint64) Data { return Data{Kind: KindUInt64, UInt: v} }

func SInt8(v int8) Data   { return Data{Kind: KindSInt8, SInt: int64(v)} }
func SInt16(v int16) Data { return Data{Kind: KindSInt16, SInt: int64(v)} }
func SInt32(v int32) Data { return Data{Kind: KindSInt32, SInt: int64(v)} }
func SInt64(v int64) Data { return Data{Kind: KindSInt64, SInt: v} }

func Float(v float32) Data  { return Data{Kind: KindFloat, Float: float64(v)} }
func Double(v float64) Data { return Data{Kind: KindDouble, Float: v} }

// String wraps a byte string. The bytes are not required to be valid
// UTF-8; the projector decides how to expose them.
func String(bs []byte) Data { return Data{Kind: KindString, Bytes: bs} }

func ByteArray(bs []byte) Data { return Data{Kind: KindByteArray, Bytes: bs} }

func Pair(first Data, second Data) Data {
	return Data{Kind: KindPair, First: &first, Second: &second}
}

func Array(elements []Data) Data {
	return Data{Kind: KindArray, Elements: elements}
}

func Primitive(typeName string, bs []byte) Data {
	return Data{Kind: KindPrimitive, TypeName: typeName, Bytes: bs}
}

func Struct(typeName string, fields []Field) Data {
	return Data{Kind: KindStruct, TypeName: typeName, Fields: fields}
}
