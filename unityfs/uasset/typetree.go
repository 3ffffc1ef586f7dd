package uasset

import (
	"encoding/binary"

	"unity-peek/unityfs/lbytes"
	"unity-peek/unityfs/uvalue"
	"github.com/pkg/errors"
)

type treeNode struct {
	TypeTreeNode
	children []*treeNode
}

// buildTree folds the flat blob rows back into a tree using the level
// column. Row 0 is the root ("Base"); each row's parent is the nearest
// preceding row one level up.
func buildTree(nodes []TypeTreeNode) (*treeNode, error) {
	if len(nodes) == 0 {
		return nil, errors.New("buildTree error: empty type tree")
	}
	if nodes[0].Level != 0 {
		return nil, errors.Errorf(
			"buildTree error: root node at level %d", nodes[0].Level,
		)
	}
	root := &treeNode{TypeTreeNode: nodes[0]}
	stack := []*treeNode{root}
	for _, node := range nodes[1:] {
		// every later row needs a parent on the stack: level 0 would be
		// a second root, deeper than the stack skips levels
		if node.Level == 0 || int(node.Level) > len(stack) {
			return nil, errors.Errorf(
				`buildTree error: node "%s" at level %d has no parent`,
				node.Name, node.Level,
			)
		}
		stack = stack[:node.Level]
		parent := stack[len(stack)-1]
		child := &treeNode{TypeTreeNode: node}
		parent.children = append(parent.children, child)
		stack = append(stack, child)
	}
	return root, nil
}

// ReadObject interprets one object's payload through its type tree and
// returns the resulting value. The root always becomes a generic
// struct named after the object's class type.
func (f *File) ReadObject(info ObjectInfo) (uvalue.Data, error) {
	serializedType := f.Types[info.TypeID]
	root, err := buildTree(serializedType.Nodes)
	if err != nil {
		return uvalue.Data{}, errors.Wrapf(err, "ReadObject error: path id %d", info.PathID)
	}

	start := int(f.Header.DataOffset) + int(info.ByteStart)
	end := start + int(info.ByteSize)
	if start > end || end > len(f.input) {
		return uvalue.Data{}, errors.Errorf(
			"ReadObject error: path id %d wants [%d, %d) of %d-byte input",
			info.PathID, start, end, len(f.input),
		)
	}
	reader := lbytes.NewBytesReader(f.input[start:end])
	if f.Header.BigEndian {
		reader.SetOrder(binary.BigEndian)
	}

	value, err := readNode(root, reader)
	if err != nil {
		return uvalue.Data{}, errors.Wrapf(err, "ReadObject error: path id %d", info.PathID)
	}
	return value, nil
}

// ReadObjects reads every object in table order.
func (f *File) ReadObjects() ([]uvalue.Data, error) {
	values := make([]uvalue.Data, 0, len(f.Objects))
	for _, info := range f.Objects {
		value, err := f.ReadObject(info)
		if err != nil {
			return nil, errors.Wrap(err, "ReadObjects error")
		}
		values = append(values, value)
	}
	return values, nil
}

func readNode(node *treeNode, reader *lbytes.Reader) (uvalue.Data, error) {
	value, err := readNodeValue(node, reader)
	if err != nil {
		return uvalue.Data{}, err
	}
	if node.MetaFlags&metaFlagAlignBytes != 0 {
		if err := reader.Align(4); err != nil {
			return uvalue.Data{}, errors.Wrapf(err, `readNode error: field "%s"`, node.Name)
		}
	}
	return value, nil
}

func readNodeValue(node *treeNode, reader *lbytes.Reader) (uvalue.Data, error) {
	wrap := func(v uvalue.Data, err error) (uvalue.Data, error) {
		return v, errors.Wrapf(err, `readNodeValue error: field "%s" of type "%s"`, node.Name, node.Type)
	}

	switch node.Type {
	case "bool":
		v, err := reader.ReadBool()
		return wrap(uvalue.Bool(v), err)
	case "UInt8", "char":
		v, err := reader.ReadByte()
		return wrap(uvalue.UInt8(v), err)
	case "SInt8":
		v, err := reader.ReadByte()
		return wrap(uvalue.SInt8(int8(v)), err)
	case "UInt16", "unsigned short":
		v, err := reader.ReadUint16()
		return wrap(uvalue.UInt16(v), err)
	case "SInt16", "short":
		v, err := reader.ReadUint16()
		return wrap(uvalue.SInt16(int16(v)), err)
	case "UInt32", "unsigned int", "Type*":
		v, err := reader.ReadUint32()
		return wrap(uvalue.UInt32(v), err)
	case "SInt32", "int":
		v, err := reader.ReadInt()
		return wrap(uvalue.SInt32(v), err)
	case "UInt64", "unsigned long long", "FileSize":
		v, err := reader.ReadUint64()
		return wrap(uvalue.UInt64(v), err)
	case "SInt64", "long long":
		v, err := reader.ReadLong()
		return wrap(uvalue.SInt64(v), err)
	case "float":
		v, err := reader.ReadFloat()
		return wrap(uvalue.Float(v), err)
	case "double":
		v, err := reader.ReadDouble()
		return wrap(uvalue.Double(v), err)
	case "string":
		bs, err := readSized(reader)
		if err != nil {
			return wrap(uvalue.Data{}, err)
		}
		// strings are always aligned after their character data
		return wrap(uvalue.String(bs), reader.Align(4))
	case "TypelessData":
		bs, err := readSized(reader)
		return wrap(uvalue.ByteArray(bs), err)
	case "pair":
		if len(node.children) != 2 {
			return wrap(uvalue.Data{}, errors.Errorf(
				"pair with %d children", len(node.children),
			))
		}
		first, err := readNode(node.children[0], reader)
		if err != nil {
			return uvalue.Data{}, err
		}
		second, err := readNode(node.children[1], reader)
		if err != nil {
			return uvalue.Data{}, err
		}
		return uvalue.Pair(first, second), nil
	}

	// vector/map/staticvector wrap a single Array header node whose
	// children are the size field and the element template
	if len(node.children) == 1 && node.children[0].TypeFlags&typeFlagArray != 0 {
		return readArray(node.children[0], reader)
	}
	if node.TypeFlags&typeFlagArray != 0 {
		return readArray(node, reader)
	}

	if len(node.children) > 0 {
		fields := make([]uvalue.Field, 0, len(node.children))
		for _, child := range node.children {
			value, err := readNode(child, reader)
			if err != nil {
				return uvalue.Data{}, err
			}
			fields = append(fields, uvalue.Field{Name: child.Name, Value: value})
		}
		return uvalue.Struct(node.Type, fields), nil
	}

	// unknown leaf: keep the bytes as an opaque primitive
	if node.ByteSize < 0 {
		return wrap(uvalue.Data{}, errors.New("leaf node with unknown size"))
	}
	bs, err := reader.ReadBytes(int(node.ByteSize))
	return wrap(uvalue.Primitive(node.Type, bs), err)
}

func readArray(arrayNode *treeNode, reader *lbytes.Reader) (uvalue.Data, error) {
	if len(arrayNode.children) != 2 {
		return uvalue.Data{}, errors.Errorf(
			"readArray error: array header with %d children", len(arrayNode.children),
		)
	}
	size, err := reader.ReadInt()
	if err != nil {
		return uvalue.Data{}, errors.Wrap(err, "readArray error: read size")
	}
	if size < 0 {
		return uvalue.Data{}, errors.Errorf("readArray error: negative size %d", size)
	}
	template := arrayNode.children[1]

	// byte arrays collapse to a raw buffer instead of 1-element values
	if len(template.children) == 0 && (template.Type == "UInt8" || template.Type == "char") {
		bs, err := reader.ReadBytes(int(size))
		if err != nil {
			return uvalue.Data{}, errors.Wrap(err, "readArray error: read bytes")
		}
		value := uvalue.ByteArray(bs)
		if arrayNode.MetaFlags&metaFlagAlignBytes != 0 {
			err = reader.Align(4)
		}
		return value, errors.Wrap(err, "readArray error")
	}

	elements := make([]uvalue.Data, 0, size)
	for i := int32(0); i < size; i++ {
		element, err := readNode(template, reader)
		if err != nil {
			return uvalue.Data{}, errors.Wrapf(err, "readArray error: element %d", i)
		}
		elements = append(elements, element)
	}
	value := uvalue.Array(elements)
	if arrayNode.MetaFlags&metaFlagAlignBytes != 0 {
		if err := reader.Align(4); err != nil {
			return uvalue.Data{}, errors.Wrap(err, "readArray error")
		}
	}
	return value, nil
}

func readSized(reader *lbytes.Reader) ([]byte, error) {
	size, err := reader.ReadInt()
	if err != nil {
		return nil, errors.Wrap(err, "readSized error: read size")
	}
	if size < 0 {
		return nil, errors.Errorf("readSized error: negative size %d", size)
	}
	return reader.ReadBytes(int(size))
}
