package uasset

import (
	"fmt"
)

// commonStringList is the fixed string table that blob type trees
// reference with the high offset bit set, in its canonical order. The
// byte offset of each entry (previous lengths plus terminators) is the
// lookup key.
var commonStringList = []string{
	"AABB", "AnimationClip", "AnimationCurve", "AnimationState", "Array",
	"Base", "BitField", "bitset", "bool", "char", "ColorRGBA", "Component",
	"data", "deque", "double", "dynamic_array", "FastPropertyName", "first",
	"float", "Font", "GameObject", "Generic Mono", "GradientNEW", "GUID",
	"GUIStyle", "int", "list", "long long", "map", "Matrix4x4f", "MdFour",
	"MonoBehaviour", "MonoScript", "m_Bits", "m_BitSize", "m_BitsPerPixel",
	"m_ColorSpace", "m_Curve", "m_EditorClassIdentifier", "m_EditorHideFlags",
	"m_Enabled", "m_ExtensionPtr", "m_GameObject", "m_Index", "m_IsArray",
	"m_IsStatic", "m_MetaFlag", "m_Name", "m_ObjectHideFlags",
	"m_PrefabInternal", "m_PrefabParentObject", "m_Script",
	"m_StaticEditorFlags", "m_Type", "m_Version", "Object", "pair",
	"PPtr<Component>", "PPtr<GameObject>", "PPtr<Material>",
	"PPtr<MonoBehaviour>", "PPtr<MonoScript>", "PPtr<Object>",
	"PPtr<Prefab>", "PPtr<Sprite>", "PPtr<TextAsset>", "PPtr<Texture>",
	"PPtr<Texture2D>", "PPtr<Transform>", "Prefab", "Quaternionf", "Rectf",
	"RectInt", "RectOffset", "second", "set", "short", "size", "SInt16",
	"SInt32", "SInt64", "SInt8", "staticvector", "string", "TextAsset",
	"TextMesh", "Texture", "Texture2D", "Transform", "TypelessData",
	"UInt16", "UInt32", "UInt64", "UInt8", "unsigned int",
	"unsigned long long", "unsigned short", "vector", "Vector2f",
	"Vector3f", "Vector4f", "m_ScriptingClassIdentifier", "Gradient",
	"Type*", "int2_storage", "int3_storage", "BoundsInt",
	"m_CorrespondingSourceObject", "m_PrefabInstance", "m_PrefabAsset",
	"FileSize", "Hash128",
}

var commonStringsByOffset = func() map[uint32]string {
	byOffset := make(map[uint32]string, len(commonStringList))
	offset := uint32(0)
	for _, s := range commonStringList {
		byOffset[offset] = s
		offset += uint32(len(s)) + 1
	}
	return byOffset
}()

// CommonString resolves an offset into the shared string table. Unknown
// offsets produce a stable placeholder instead of failing: the table
// has grown across engine releases and an unknown name should not make
// the whole file unreadable.
func CommonString(offset uint32) string {
	if s, ok := commonStringsByOffset[offset]; ok {
		return s
	}
	return fmt.Sprintf("unknown_%d", offset)
}
