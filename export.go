package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"codesnap/snapfile"
)

const libraryTimeout = 5 * time.Second

// saveSnap writes the current document as a project file.
func (m *model) saveSnap(filename string) error {
	buf := m.getCurrentBuffer()
	if buf == nil {
		return fmt.Errorf("no document open")
	}
	path, err := snapfile.WriteFile(m.cfg.GetSavePath(filename), buf.ed.Snap())
	if err != nil {
		return err
	}
	buf.filename = path
	buf.markSaved()
	m.log.Info("snap saved", "path", path)
	m.successMessage = "Saved " + baseName(path)
	return nil
}

// exportPNG rasterizes the current document at the configured scale.
func (m *model) exportPNG(filename string) error {
	ed := m.getEditor()
	if ed == nil {
		return fmt.Errorf("no document open")
	}
	if !strings.EqualFold(filepath.Ext(filename), ".png") {
		filename += ".png"
	}
	path := m.cfg.GetSavePath(filename)
	if err := m.renderer.ExportPNG(path, ed.Snap()); err != nil {
		return err
	}
	m.successMessage = "Exported " + baseName(path)
	return nil
}

// openSnap loads a project file into the current or a new buffer.
func (m *model) openSnap(filename string, newBuffer bool) error {
	path := filename
	if filepath.Ext(path) == "" {
		path += snapfile.Ext
	}
	if _, err := os.Stat(path); err != nil {
		path = m.cfg.GetSavePath(path)
	}
	s, rep, err := snapfile.ReadFile(path)
	if err != nil {
		m.log.Warn("open failed", "path", path, "err", err)
		return err
	}
	for _, w := range rep.Warnings {
		m.log.Warn("open", "path", path, "version", rep.SourceVersion, "warning", w)
	}
	ed := m.newEditor(s)
	if newBuffer {
		m.addNewBuffer(ed, path)
	} else {
		m.replaceBuffer(ed, path)
	}
	m.fitView()
	m.successMessage = "Opened " + baseName(path)
	if len(rep.Warnings) > 0 {
		m.successMessage += fmt.Sprintf(" (%d warnings)", len(rep.Warnings))
	}
	return nil
}

// saveToLibrary stores the current document in the project library.
func (m *model) saveToLibrary() error {
	buf := m.getCurrentBuffer()
	if buf == nil || m.store == nil {
		return fmt.Errorf("library unavailable")
	}
	ctx, cancel := context.WithTimeout(context.Background(), libraryTimeout)
	defer cancel()
	id, err := m.store.Save(ctx, buf.libraryID, buf.ed.Snap())
	if err != nil {
		return err
	}
	buf.libraryID = id
	m.successMessage = "Saved to library"
	return nil
}

func (m *model) loadLibraryEntries() error {
	if m.store == nil {
		return fmt.Errorf("library unavailable")
	}
	ctx, cancel := context.WithTimeout(context.Background(), libraryTimeout)
	defer cancel()
	entries, err := m.store.List(ctx)
	if err != nil {
		return err
	}
	m.entries = entries
	m.selectedEntry = 0
	return nil
}

func (m *model) openFromLibrary(id string) error {
	if m.store == nil {
		return fmt.Errorf("library unavailable")
	}
	ctx, cancel := context.WithTimeout(context.Background(), libraryTimeout)
	defer cancel()
	s, err := m.store.Load(ctx, id)
	if err != nil {
		return err
	}
	if m.fromStartup {
		m.replaceBuffer(m.newEditor(s), "")
	} else {
		m.addNewBuffer(m.newEditor(s), "")
	}
	m.getCurrentBuffer().libraryID = id
	m.fitView()
	m.successMessage = "Opened " + s.Meta.Title
	return nil
}

func (m *model) deleteFromLibrary(id string) error {
	if m.store == nil {
		return fmt.Errorf("library unavailable")
	}
	ctx, cancel := context.WithTimeout(context.Background(), libraryTimeout)
	defer cancel()
	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}
	for i := range m.buffers {
		if m.buffers[i].libraryID == id {
			m.buffers[i].libraryID = ""
		}
	}
	return m.loadLibraryEntries()
}

// scanSnapFiles lists the project files in the working and save directories.
func (m *model) scanSnapFiles() {
	m.fileList = m.fileList[:0]
	seen := make(map[string]bool)
	dirs := []string{"."}
	if m.cfg.SaveDirectory != "" {
		dirs = append(dirs, m.cfg.SaveDirectory)
	}
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(name), snapfile.Ext) || seen[name] {
				continue
			}
			seen[name] = true
			m.fileList = append(m.fileList, name)
		}
	}
	sort.Strings(m.fileList)

	m.selectedFileIndex = -1
	if len(m.fileList) > 0 {
		m.selectedFileIndex = 0
		m.filename = trimExt(m.fileList[0])
	}
}
