package ui

import (
	"log"
	"os"

	"unity-peek/unityfs"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
)

func Start(path string) {
	fileBytes, err := os.ReadFile(path)
	if err != nil {
		log.Fatal(errors.Wrap(err, "ui.Start error: read bundle file"))
	}
	meta, err := unityfs.Parse(fileBytes)
	if err != nil {
		log.Fatal(errors.Wrap(err, "ui.Start error"))
	}
	bundle, err := meta.Read()
	if err != nil {
		log.Fatal(errors.Wrap(err, "ui.Start error"))
	}

	browser := CreateTextureBrowser(bundle)
	if err := tea.NewProgram(&browser).Start(); err != nil {
		panic(err)
	}
}
