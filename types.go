package main

import (
	"log/slog"

	"codesnap/editor"
	"codesnap/library"
	"codesnap/render"
	"codesnap/snap"
)

// Buffer is one open document.
type Buffer struct {
	ed        *editor.Editor
	filename  string
	libraryID string
	fitted    bool

	// rev counts document edits; it is shared by copies of the Buffer.
	rev      *uint64
	savedRev uint64
	unsub    func()
}

// newBuffer wraps ed and starts counting its edits. Selection, tool and
// viewport changes do not touch the document.
func newBuffer(ed *editor.Editor, filename string) Buffer {
	rev := new(uint64)
	unsub := ed.Subscribe(func(ev editor.Event) {
		switch ev.Op {
		case "select", "tool", "viewport", "draw", "commit":
		default:
			*rev++
		}
	})
	return Buffer{ed: ed, filename: filename, rev: rev, unsub: unsub}
}

func (b *Buffer) release() {
	if b.unsub != nil {
		b.unsub()
	}
}

type model struct {
	cfg       *Config
	log       *slog.Logger
	store     library.Store
	renderer  *render.Renderer
	clipboard editor.Clipboard

	width   int
	height  int
	cursorX int
	cursorY int
	panMode bool

	buffers            []Buffer
	currentBufferIndex int

	mode       Mode
	help       bool
	helpScroll int
	showLayers bool

	// ModeEditing
	editID        string
	editText      string
	editCursorPos int

	// ModeFileInput
	fileOp            FileOperation
	filename          string
	fileList          []string
	selectedFileIndex int
	openInNewBuffer   bool

	// ModeLibrary
	entries       []library.Summary
	selectedEntry int

	confirmAction   ConfirmAction
	createNewBuffer bool
	fromStartup     bool

	errorMessage   string
	successMessage string
}

// newEditor builds an editor configured from the model's settings.
func (m *model) newEditor(s *snap.Snap) *editor.Editor {
	opts := []editor.Option{
		editor.WithLogger(m.log),
		editor.WithClipboard(m.clipboard),
		editor.WithHistoryLimit(m.cfg.HistoryLimit),
	}
	if s != nil {
		opts = append(opts, editor.WithSnap(s))
	}
	return editor.New(opts...)
}

func (m *model) getCurrentBuffer() *Buffer {
	if len(m.buffers) == 0 {
		return nil
	}
	return &m.buffers[m.currentBufferIndex]
}

func (m *model) getEditor() *editor.Editor {
	buf := m.getCurrentBuffer()
	if buf == nil {
		return nil
	}
	return buf.ed
}

// addNewBuffer opens ed in a new buffer and makes it current.
func (m *model) addNewBuffer(ed *editor.Editor, filename string) {
	buf := newBuffer(ed, filename)
	m.buffers = append(m.buffers, buf)
	m.currentBufferIndex = len(m.buffers) - 1
}

// replaceBuffer swaps the current buffer's document for ed.
func (m *model) replaceBuffer(ed *editor.Editor, filename string) {
	buf := m.getCurrentBuffer()
	if buf == nil {
		m.addNewBuffer(ed, filename)
		return
	}
	buf.release()
	*buf = newBuffer(ed, filename)
}

func (m *model) closeBuffer() {
	if len(m.buffers) <= 1 {
		for i := range m.buffers {
			m.buffers[i].release()
		}
		m.buffers = m.buffers[:0]
		m.addNewBuffer(m.newEditor(nil), "")
		return
	}
	i := m.currentBufferIndex
	m.buffers[i].release()
	m.buffers = append(m.buffers[:i], m.buffers[i+1:]...)
	if m.currentBufferIndex >= len(m.buffers) {
		m.currentBufferIndex = len(m.buffers) - 1
	}
}

func (b *Buffer) markSaved() {
	b.savedRev = *b.rev
}

// dirty reports whether the document was edited since it was last saved or
// opened. Undoing back to the saved state still counts as an edit.
func (b *Buffer) dirty() bool {
	return *b.rev != b.savedRev
}

func (b *Buffer) title() string {
	if t := b.ed.Meta().Title; t != "" && t != "Untitled" {
		return t
	}
	if b.filename != "" {
		return trimExt(baseName(b.filename))
	}
	return "Untitled"
}
