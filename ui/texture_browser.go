package ui

import (
	"fmt"
	"os"
	"path/filepath"

	"unity-peek/unityfs"
	"unity-peek/unityfs/uproject"
	"unity-peek/unityfs/utex"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
)

type TextureBrowser struct {
	bundle   *unityfs.Bundle
	textures []*utex.Texture2D
	cursor   int
	status   string
}

// CollectTextures projects every main-asset object and keeps the ones
// that came out as texture entities.
func CollectTextures(bundle *unityfs.Bundle) []*utex.Texture2D {
	projected := lo.Map(
		bundle.MainAsset().Objects(),
		func(object *uproject.Handle, _ int) any {
			data, err := object.Data()
			if err != nil {
				return nil
			}
			return data
		},
	)
	return lo.FilterMap(
		projected,
		func(data any, _ int) (*utex.Texture2D, bool) {
			texture, ok := data.(*utex.Texture2D)
			return texture, ok
		},
	)
}

func CreateTextureBrowser(bundle *unityfs.Bundle) TextureBrowser {
	return TextureBrowser{
		bundle:   bundle,
		textures: CollectTextures(bundle),
		status:   "enter extracts the selected texture; q quits",
	}
}

func stateLabel(texture *utex.Texture2D) string {
	switch {
	case texture.Resolved():
		return "resolved"
	case texture.Deferred():
		dependency, _ := texture.AssetDependency()
		return "deferred -> " + dependency
	default:
		return "unrecognized format"
	}
}

func (s TextureBrowser) View() string {
	output := "UNITY PEEK\n\n"
	output += "Bundle: " + s.bundle.Name() + "\n\n"

	if len(s.textures) == 0 {
		output += "No Texture2D objects in the main asset.\n"
		return output
	}
	for i, texture := range s.textures {
		marker := "  "
		if i == s.cursor {
			marker = "> "
		}
		output += fmt.Sprintf(
			"%s%s (%dx%d, %s)\n",
			marker, texture.Name, texture.Width, texture.Height, stateLabel(texture),
		)
	}
	output += "\n" + s.status + "\n"
	return output
}

func (s TextureBrowser) extract() TextureBrowser {
	texture := s.textures[s.cursor]
	if err := texture.Resolve(s.bundle); err != nil {
		s.status = "resolve failed: " + err.Error()
		return s
	}
	encoded, ok := texture.EncodedPNG()
	if !ok {
		s.status = "no pixel data available for " + texture.Name
		return s
	}
	target := filepath.Join(".", texture.Name+".png")
	if err := os.WriteFile(target, encoded, 0644); err != nil {
		s.status = "write failed: " + err.Error()
		return s
	}
	s.status = "wrote " + target
	return s
}

func (s TextureBrowser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch keyMsg.String() {
	case "q", "ctrl+c":
		return s, tea.Quit
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.textures)-1 {
			s.cursor++
		}
	case "enter":
		if len(s.textures) > 0 {
			return s.extract(), nil
		}
	}
	return s, nil
}

func (s TextureBrowser) Init() tea.Cmd {
	return nil
}
