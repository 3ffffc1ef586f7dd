package unityfs

import (
	"unity-peek/unityfs/ubundle"
	"unity-peek/unityfs/uproject"
	"unity-peek/unityfs/utex"
)

// a loaded bundle doubles as the resource container that texture
// resolution draws from
var _ utex.Container = (*Bundle)(nil)

type (
	// Meta is a parsed but not yet decompressed bundle.
	Meta struct {
		meta *ubundle.Meta
	}
	// Bundle is a fully loaded container: named resources plus the
	// main asset's object tree. All accessors are read-only and
	// repeatable.
	Bundle struct {
		name      string
		archive   *ubundle.Bundle
		mainAsset *Asset
	}
	// Asset is the primary serialized file of a bundle, exposed as a
	// name and a sequence of projectable objects.
	Asset struct {
		Name    string
		objects []*uproject.Handle
	}
)

func (a *Asset) Objects() []*uproject.Handle {
	return a.objects
}
