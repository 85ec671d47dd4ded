package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"codesnap/editor"
	"codesnap/library"
	"codesnap/render"
	"codesnap/snapfile"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runEditor starts the terminal editor, optionally on a project file.
func runEditor(a *app, path string) error {
	var store library.Store
	if db, err := a.openLibrary(); err != nil {
		a.log.Warn("library unavailable, using a session library", "err", err)
		store = library.NewMemory(a.cfg.AssetPolicy())
	} else {
		defer db.Close()
		store = db
	}

	m, err := initialModel(a, store, editor.NewSystemClipboard(), path)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}

func initialModel(a *app, store library.Store, clip editor.Clipboard, path string) (model, error) {
	m := model{
		cfg:               a.cfg,
		log:               a.log,
		store:             store,
		clipboard:         clip,
		renderer:          render.New(render.Options{Scale: a.cfg.ExportScale, Logger: a.log}),
		mode:              ModeStartup,
		selectedFileIndex: -1,
	}
	m.addNewBuffer(m.newEditor(nil), "")
	m.fitView()
	if path == "" {
		return m, nil
	}

	m.mode = ModeNormal
	err := m.openSnap(path, false)
	if errors.Is(err, fs.ErrNotExist) {
		// A new file: it is created on the first save.
		target := path
		if filepath.Ext(target) == "" {
			target += snapfile.Ext
		}
		m.getCurrentBuffer().filename = target
		m.successMessage = "New file " + baseName(target)
		return m, nil
	}
	return m, err
}
