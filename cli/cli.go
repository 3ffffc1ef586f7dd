package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"unity-peek/ds"
	"unity-peek/ui"
	"unity-peek/unityfs"
	"unity-peek/unityfs/utex"
	"github.com/alexflint/go-arg"
	"github.com/iancoleman/orderedmap"
	"github.com/pkg/errors"
)

type (
	Args struct {
		Info        *InfoCmd        `arg:"subcommand:info"`
		Inspect     *InspectCmd     `arg:"subcommand:inspect"`
		Extract     *ExtractCmd     `arg:"subcommand:extract"`
		Interactive *InteractiveCmd `arg:"subcommand:interactive"`
	}
	InfoCmd struct {
		Bundle string `arg:"positional,required" help:"path to a UnityFS bundle" placeholder:"file.unity3d"`
	}
	InspectCmd struct {
		Bundle string `arg:"positional,required" help:"path to a UnityFS bundle" placeholder:"file.unity3d"`
	}
	ExtractCmd struct {
		Bundle string `arg:"positional,required" help:"path to a UnityFS bundle" placeholder:"file.unity3d"`
		Out    string `help:"output directory for PNG files" default:"."`
	}
	InteractiveCmd struct {
		Bundle string `arg:"positional,required" help:"path to a UnityFS bundle" placeholder:"file.unity3d"`
	}
)

func (Args) Description() string {
	des := strings.Join(
		[]string{
			"Peek inside UnityFS asset bundles from the command line.\n",
			"Lists a bundle's contents, dumps the main asset's object tree as JSON,",
			"and reconstructs Texture2D objects into PNG files.",
		},
		"\n",
	)
	des += "\n"
	return des
}

func LoadBundle(path string) (*unityfs.Bundle, error) {
	fileBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "LoadBundle error: read file")
	}
	meta, err := unityfs.Parse(fileBytes)
	if err != nil {
		return nil, errors.Wrap(err, "LoadBundle error")
	}
	bundle, err := meta.Read()
	if err != nil {
		return nil, errors.Wrap(err, "LoadBundle error")
	}
	return bundle, nil
}

func StartInfo(path string) {
	fileBytes, err := os.ReadFile(path)
	if err != nil {
		println("Error happened reading file at: " + path)
		return
	}
	meta, err := unityfs.Parse(fileBytes)
	if err != nil {
		println("Error happened parsing bundle: " + err.Error())
		return
	}
	println(ds.DumpJSON(meta.Header()))
	for _, node := range meta.Nodes() {
		fmt.Printf("%12d  %s\n", node.Size, node.Path)
	}
}

func StartInspecting(path string) {
	bundle, err := LoadBundle(path)
	if err != nil {
		println("Error happened loading bundle: " + err.Error())
		return
	}
	asset := bundle.MainAsset()

	objects := make([]*orderedmap.OrderedMap, 0, len(asset.Objects()))
	for _, object := range asset.Objects() {
		entry := orderedmap.New()
		entry.Set("type", object.Type())
		data, err := object.Data()
		if err != nil {
			entry.Set("error", err.Error())
		} else {
			entry.Set("data", data)
		}
		objects = append(objects, entry)
	}
	dump := orderedmap.New()
	dump.Set("name", asset.Name)
	dump.Set("objects", objects)

	dumpBytes, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		println("Error happened dumping objects: " + err.Error())
		return
	}
	println(string(dumpBytes))
}

func StartExtracting(path string, out string) {
	bundle, err := LoadBundle(path)
	if err != nil {
		println("Error happened loading bundle: " + err.Error())
		return
	}
	count := 0
	for _, object := range bundle.MainAsset().Objects() {
		if object.Type() != "Texture2D" {
			continue
		}
		data, err := object.Data()
		if err != nil {
			println("Error happened projecting Texture2D: " + err.Error())
			continue
		}
		texture, ok := data.(*utex.Texture2D)
		if !ok {
			continue
		}
		if err := texture.Resolve(bundle); err != nil {
			println("Error happened resolving texture " + texture.Name + ": " + err.Error())
			continue
		}
		encoded, ok := texture.EncodedPNG()
		if !ok {
			if dependency, pending := texture.AssetDependency(); pending {
				println("Skipping " + texture.Name + ": pixel data lives in " + dependency)
			} else {
				println("Skipping " + texture.Name + ": unrecognized texture format")
			}
			continue
		}
		target := filepath.Join(out, texture.Name+".png")
		if err := os.WriteFile(target, encoded, 0644); err != nil {
			println("Error happened writing to file at: " + target)
			continue
		}
		count++
	}
	fmt.Printf("Done extracting %d texture(s) to: %s\n", count, out)
}

func StartInteractive(path string) {
	ui.Start(path)
}

func Start() {
	args := Args{}
	arg.MustParse(&args)

	switch {
	case args.Info != nil:
		StartInfo(args.Info.Bundle)
	case args.Inspect != nil:
		StartInspecting(args.Inspect.Bundle)
	case args.Extract != nil:
		StartExtracting(args.Extract.Bundle, args.Extract.Out)
	case args.Interactive != nil:
		StartInteractive(args.Interactive.Bundle)
	default:
		println("Please choose a subcommand. Run with --help for usage.")
	}
}
