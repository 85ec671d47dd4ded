package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"codesnap/snap"
)

var (
	accentColor = lipgloss.Color("#7c3aed")
	mutedColor  = lipgloss.Color("#6c7086")
	errorColor  = lipgloss.Color("#ef4444")
	okColor     = lipgloss.Color("#10b981")

	cellStyles = map[cellStyle]lipgloss.Style{
		styleFrame:    lipgloss.NewStyle().Foreground(mutedColor),
		styleCode:     lipgloss.NewStyle().Foreground(lipgloss.Color("#f8f8f2")),
		styleText:     lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true),
		styleArrow:    lipgloss.NewStyle().Foreground(lipgloss.Color("#89b4fa")),
		styleShape:    lipgloss.NewStyle().Foreground(accentColor),
		styleImage:    lipgloss.NewStyle().Foreground(lipgloss.Color("#f9e2af")),
		styleGroup:    lipgloss.NewStyle().Foreground(mutedColor),
		styleSelected: lipgloss.NewStyle().Foreground(lipgloss.Color("#f5c2e7")).Bold(true),
		styleCursor:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")),
	}

	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#cdd6f4"))
	errorStyle    = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	successStyle  = lipgloss.NewStyle().Foreground(okColor)
	selectedStyle = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(mutedColor)
	titleStyle    = lipgloss.NewStyle().Foreground(accentColor).Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)
)

// lines renders the grid row by row, styling runs of equal cells together.
func (g *grid) lines() []string {
	out := make([]string, g.h)
	for y := 0; y < g.h; y++ {
		var b strings.Builder
		start := 0
		for x := 1; x <= g.w; x++ {
			if x < g.w && g.style[y][x] == g.style[y][start] {
				continue
			}
			run := string(g.runes[y][start:x])
			if st, ok := cellStyles[g.style[y][start]]; ok {
				run = st.Render(run)
			}
			b.WriteString(run)
			start = x
		}
		out[y] = b.String()
	}
	return out
}

func (m model) View() string {
	if m.help && m.mode != ModeStartup {
		return m.helpView()
	}
	if m.mode == ModeStartup {
		return m.startupView()
	}

	var result strings.Builder
	if m.showBufferBar() {
		result.WriteString(m.renderBufferBar(m.width))
		result.WriteString("\n")
	}

	switch {
	case m.mode == ModeFileInput && m.fileOp == FileOpOpen:
		result.WriteString(m.fileListView())
	case m.mode == ModeLibrary:
		result.WriteString(m.libraryView())
	default:
		result.WriteString(m.canvasView())
	}

	result.WriteString("\n")
	result.WriteString(m.statusLine())
	return result.String()
}

func (m model) canvasView() string {
	ed := m.getEditor()
	cols, rows := m.canvasCols(), m.canvasRows()
	g := renderCanvas(ed, cols, rows)
	if m.mode != ModeFileInput {
		g.set(m.cursorX, m.cursorY, '█', styleCursor)
	}
	canvas := strings.Join(g.lines(), "\n")
	if !m.showLayers {
		return canvas
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, canvas, m.layersView(rows))
}

// layersView lists elements top-most first.
func (m model) layersView(rows int) string {
	ed := m.getEditor()
	inner := layersPanelWidth - 4
	lines := []string{titleStyle.Render("Layers")}
	for _, l := range ed.Layers() {
		flags := ""
		if !l.Visible {
			flags += "◌"
		}
		if l.Locked {
			flags += "⊘"
		}
		label := strings.Repeat("  ", l.Depth) + snap.DisplayName(&snap.Element{Name: l.Name, Type: l.Type})
		if flags != "" {
			label += " " + flags
		}
		label = padRight(truncate(label, inner-2), inner-2)
		if l.Selected {
			lines = append(lines, selectedStyle.Render("▸ "+label))
		} else {
			lines = append(lines, "  "+label)
		}
	}
	if len(lines) == 1 {
		lines = append(lines, mutedStyle.Render("(empty)"))
	}
	if limit := rows - 2; len(lines) > limit && limit > 0 {
		lines = lines[:limit]
	}
	return panelStyle.Width(layersPanelWidth - 2).Height(max(rows-2, 1)).Render(strings.Join(lines, "\n"))
}

func (m *model) showBufferBar() bool {
	return m.mode != ModeStartup && len(m.buffers) > 1
}

func (m *model) renderBufferBar(width int) string {
	var bar strings.Builder
	bar.WriteString("Open snaps: ")
	for i := range m.buffers {
		if i > 0 {
			bar.WriteString(" | ")
		}
		name := m.buffers[i].title()
		if m.buffers[i].dirty() {
			name += "*"
		}
		if i == m.currentBufferIndex {
			bar.WriteString(selectedStyle.Render("[" + name + "]"))
		} else {
			bar.WriteString(name)
		}
	}
	return bar.String()
}

func (m model) startupView() string {
	lines := []string{
		titleStyle.Render("codesnap"),
		"",
		"  n  New snap",
		"  o  Open a .snap file",
		"  L  Open from library",
		"  q  Quit",
	}
	if m.errorMessage != "" {
		lines = append(lines, "", errorStyle.Render("ERROR: "+m.errorMessage))
	}
	box := panelStyle.Render(strings.Join(lines, "\n"))
	if m.width <= 0 || m.height <= 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m model) fileListView() string {
	var result strings.Builder
	width := max(m.width, 1)
	result.WriteString("Select a snap file:\n")
	result.WriteString(strings.Repeat("─", width))
	result.WriteString("\n")

	if len(m.fileList) == 0 {
		result.WriteString(mutedStyle.Render("(No .snap files found)"))
		result.WriteString("\n")
	} else {
		maxFiles := max(m.canvasRows()-4, 1)
		startIdx := 0
		if m.selectedFileIndex >= maxFiles {
			startIdx = m.selectedFileIndex - maxFiles + 1
		}
		endIdx := min(startIdx+maxFiles, len(m.fileList))
		for i := startIdx; i < endIdx; i++ {
			name := trimExt(m.fileList[i])
			if i == m.selectedFileIndex {
				result.WriteString(selectedStyle.Render("> " + name))
			} else {
				result.WriteString("  " + name)
			}
			result.WriteString("\n")
		}
	}

	result.WriteString(strings.Repeat("─", width))
	result.WriteString("\n")
	result.WriteString("Filename: " + m.filename + "█")
	return result.String()
}

func (m model) libraryView() string {
	var result strings.Builder
	width := max(m.width, 1)
	result.WriteString("Library:\n")
	result.WriteString(strings.Repeat("─", width))
	result.WriteString("\n")
	if len(m.entries) == 0 {
		result.WriteString(mutedStyle.Render("(The library is empty)"))
		return result.String()
	}
	rows := max(m.canvasRows()-2, 1)
	start := 0
	if m.selectedEntry >= rows {
		start = m.selectedEntry - rows + 1
	}
	for i := start; i < min(start+rows, len(m.entries)); i++ {
		e := m.entries[i]
		line := fmt.Sprintf("%-32s %-12s %3d elements  %s",
			truncate(e.Title, 32), e.Aspect, e.Elements, e.UpdatedAt.Format("2006-01-02 15:04"))
		if i == m.selectedEntry {
			result.WriteString(selectedStyle.Render("> " + line))
		} else {
			result.WriteString("  " + line)
		}
		if i < min(start+rows, len(m.entries))-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

func (m model) statusLine() string {
	var status string
	switch m.mode {
	case ModeEditing:
		text := []rune(strings.ReplaceAll(m.editText, "\n", "⏎"))
		pos := min(m.editCursorPos, len(text))
		display := string(text[:pos]) + "█" + string(text[pos:])
		status = fmt.Sprintf("Mode: EDIT | %s | Enter=newline, Ctrl+S=save, Esc=cancel", display)
	case ModeResize:
		status = "Mode: RESIZE | hjkl/arrows=resize, Enter=finish, Esc=cancel"
	case ModeMove:
		status = "Mode: MOVE | hjkl/arrows=move, Enter=finish, Esc=cancel"
	case ModeArrow:
		status = "Mode: ARROW | hjkl/arrows=drag end, Enter/a=finish, Esc=cancel"
	case ModeFileInput:
		op := map[FileOperation]string{FileOpSave: "Save", FileOpOpen: "Open", FileOpExportPNG: "Export PNG"}[m.fileOp]
		status = fmt.Sprintf("Mode: FILE | %s filename: %s", op, m.filename)
		if m.fileOp == FileOpOpen {
			status += " | ↑/↓=navigate, Enter=confirm, Esc=cancel"
		} else {
			status += "█ | Enter=confirm, Esc=cancel"
		}
	case ModeLibrary:
		status = "Mode: LIBRARY | ↑/↓=navigate, Enter=open, d=delete, Esc=close"
	case ModeConfirm:
		status = "Mode: CONFIRM | " + m.confirmMessage()
	default:
		mode := "NORMAL"
		if m.panMode {
			mode = "PAN"
		}
		p := m.cursorCanvas()
		status = fmt.Sprintf("Mode: %s | (%.0f, %.0f)", mode, p.X, p.Y)
		if ed := m.getEditor(); ed != nil {
			status += fmt.Sprintf(" | %.0f%%", ed.Viewport().Scale*100)
			if n := len(ed.SelectedIDs()); n == 1 {
				if el, ok := ed.Element(ed.SelectedID()); ok {
					status += " | Selected: " + snap.DisplayName(&el)
				}
			} else if n > 1 {
				status += fmt.Sprintf(" | Selected: %d elements", n)
			}
		}
		if m.successMessage == "" && m.errorMessage == "" {
			status += " | ? for help | q to quit"
		}
	}
	if m.errorMessage != "" {
		status += " | " + errorStyle.Render("ERROR: "+m.errorMessage)
	} else if m.successMessage != "" {
		status += " | " + successStyle.Render(m.successMessage)
	}
	return statusStyle.Render(status)
}

func (m model) confirmMessage() string {
	switch m.confirmAction {
	case ConfirmDelete:
		return "Delete selection? (y/n)"
	case ConfirmQuit:
		return "Quit codesnap? Unsaved changes will be lost. (y/n)"
	case ConfirmNewSnap:
		return "Start a new snap? Unsaved changes will be lost. (y/n)"
	case ConfirmCloseBuffer:
		return "Close this snap? Unsaved changes will be lost. (y/n)"
	case ConfirmOverwriteFile:
		return fmt.Sprintf("File %s already exists. Overwrite? (y/n)", m.filename)
	case ConfirmLibraryDelete:
		return "Delete this snap from the library? (y/n)"
	}
	return "(y/n)"
}

var helpLines = []string{
	"codesnap help",
	"=============",
	"",
	"Navigation:",
	"  h/j/k/l, arrows   Move cursor (Shift moves faster)",
	"  z                 Toggle pan mode (movement keys pan the canvas)",
	"  +/-               Zoom in/out at the cursor",
	"  0                 Fit the canvas to the window",
	"",
	"Selection:",
	"  Enter/Space       Select the element under the cursor",
	"  v                 Add/remove the element under the cursor",
	"  ctrl+a            Select all",
	"  Esc               Clear selection",
	"",
	"Elements:",
	"  c / t / s         Add code / text / shape at the cursor",
	"  a                 Draw an arrow from the cursor",
	"  x                 Cycle shape kind or arrow style",
	"  e                 Edit code or text content",
	"  m                 Move selection",
	"  r                 Resize selection",
	"  d                 Delete selection",
	"  y                 Duplicate selection",
	"  i / I             Toggle visible / locked",
	"  [ / ]             Move backward / forward",
	"  < / >             Send to back / bring to front",
	"  g / G             Group / ungroup",
	"",
	"Clipboard:",
	"  C / X / p         Copy / cut / paste (text pastes as a code block)",
	"",
	"Files:",
	"  w                 Save .snap",
	"  E                 Export PNG",
	"  o / O             Open .snap here / in a new buffer",
	"  W                 Save to library",
	"  L                 Browse library",
	"",
	"Buffers:",
	"  { / }             Previous / next buffer",
	"  n / N             New snap here / in a new buffer",
	"  Q                 Close buffer",
	"",
	"General:",
	"  u / U             Undo / redo",
	"  Tab               Toggle layers panel",
	"  ?                 Toggle this help screen",
	"  q/Ctrl+C          Quit",
}

func (m model) helpView() string {
	visibleHeight := max(m.height-1, 1)
	start := min(m.helpScroll, max(len(helpLines)-visibleHeight, 0))
	end := min(start+visibleHeight, len(helpLines))
	result := strings.Join(helpLines[start:end], "\n")
	result += "\n" + mutedStyle.Render(fmt.Sprintf("Help (%d-%d of %d lines) | j/k to scroll, Esc to close",
		start+1, end, len(helpLines)))
	return result
}
