// Package unityfs exposes a parsed UnityFS asset bundle to a host
// application: the archive directory, the main asset's typed object
// tree, and texture entities that can be materialized into images.
package unityfs

import (
	"strings"

	"unity-peek/unityfs/uasset"
	"unity-peek/unityfs/ubundle"
	"unity-peek/unityfs/uproject"
	"unity-peek/unityfs/uvalue"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Parse validates the archive header and directory without touching
// the payload.
func Parse(bs []byte) (*Meta, error) {
	meta, err := ubundle.Parse(bs)
	if err != nil {
		return nil, errors.Wrap(err, "unityfs.Parse error")
	}
	return &Meta{meta: meta}, nil
}

// Nodes lists the archive directory.
func (m *Meta) Nodes() []ubundle.Node {
	return m.meta.Nodes
}

// Header returns the archive header.
func (m *Meta) Header() ubundle.Header {
	return m.meta.Header
}

// Read decompresses the payload and reads the main asset's objects.
// The main asset is the first directory node that is not a streamed
// resource file; its path doubles as the bundle's own name for
// `archive:/` resolution.
func (m *Meta) Read() (*Bundle, error) {
	archive, err := m.meta.Read()
	if err != nil {
		return nil, errors.Wrap(err, "Read error")
	}

	mainNode, ok := lo.Find(
		archive.Nodes(),
		func(node ubundle.Node) bool {
			return !strings.HasSuffix(node.Path, ".resS")
		},
	)
	if !ok {
		return nil, errors.New("Read error: bundle has no serialized file node")
	}
	mainBytes, _ := archive.Node(mainNode.Path)

	file, err := uasset.Parse(mainBytes)
	if err != nil {
		return nil, errors.Wrapf(err, `Read error: node "%s"`, mainNode.Path)
	}
	values, err := file.ReadObjects()
	if err != nil {
		return nil, errors.Wrapf(err, `Read error: node "%s"`, mainNode.Path)
	}
	objects := lo.Map(
		values,
		func(value uvalue.Data, _ int) *uproject.Handle {
			return uproject.NewHandle(value.CloneOwned())
		},
	)

	return &Bundle{
		name:    mainNode.Path,
		archive: archive,
		mainAsset: &Asset{
			Name:    mainNode.Path,
			objects: objects,
		},
	}, nil
}

// Name reports the bundle's own name, matched against the
// `archive:/<bundle>/<resource>` streaming paths.
func (b *Bundle) Name() string {
	return b.name
}

// Resource looks up a directory node by exact path.
func (b *Bundle) Resource(name string) ([]byte, bool) {
	return b.archive.Node(name)
}

func (b *Bundle) MainAsset() *Asset {
	return b.mainAsset
}
