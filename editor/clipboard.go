package editor

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"codesnap/snap"
)

// Clipboard is a text clipboard. Copied elements travel as a JSON payload so
// they can be pasted into another editor instance.
type Clipboard interface {
	WriteText(text string) error
	ReadText() (string, error)
}

// MemoryClipboard keeps the clipboard in process.
type MemoryClipboard struct {
	text string
}

func (c *MemoryClipboard) WriteText(text string) error {
	c.text = text
	return nil
}

func (c *MemoryClipboard) ReadText() (string, error) {
	return c.text, nil
}

// SystemClipboard is the operating system clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteText(text string) error {
	return clipboard.WriteAll(text)
}

func (SystemClipboard) ReadText() (string, error) {
	if runtime.GOOS == "darwin" {
		if out, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(out), nil
		}
	}
	return clipboard.ReadAll()
}

// NewSystemClipboard returns the OS clipboard, or an in-memory one where no
// clipboard utility is available (headless sessions, CI).
func NewSystemClipboard() Clipboard {
	if clipboard.Unsupported {
		return &MemoryClipboard{}
	}
	return SystemClipboard{}
}

// PayloadKind tags clipboard payloads produced by CopyToClipboard.
const PayloadKind = "codesnap/elements"

type payload struct {
	Kind     string         `json:"kind"`
	Elements []snap.Element `json:"elements"`
}

// CopyToClipboard writes the selected top-level elements to the clipboard
// and returns how many were copied.
func (e *Editor) CopyToClipboard() (int, error) {
	idx := e.targets("")
	if len(idx) == 0 {
		return 0, nil
	}
	p := payload{Kind: PayloadKind, Elements: make([]snap.Element, 0, len(idx))}
	for _, i := range idx {
		p.Elements = append(p.Elements, e.doc.Elements[i].Clone())
	}
	data, err := json.Marshal(p)
	if err != nil {
		return 0, fmt.Errorf("encode clipboard: %w", err)
	}
	if err := e.clipboard.WriteText(string(data)); err != nil {
		return 0, fmt.Errorf("write clipboard: %w", err)
	}
	e.pastes = 0
	return len(idx), nil
}

// CutToClipboard copies the selection and then deletes it.
func (e *Editor) CutToClipboard() (int, error) {
	n, err := e.CopyToClipboard()
	if err != nil || n == 0 {
		return n, err
	}
	e.DeleteElement("")
	return n, nil
}

// PasteFromClipboard inserts the clipboard contents on top of the document.
// Element payloads are cloned with fresh ids and shifted a little further on
// each consecutive paste. Any other non-blank text becomes a code block. The
// pasted elements are selected and their ids returned.
func (e *Editor) PasteFromClipboard() ([]string, error) {
	text, err := e.clipboard.ReadText()
	if err != nil {
		return nil, fmt.Errorf("read clipboard: %w", err)
	}
	els, ok := decodePayload(text)
	if !ok {
		code := cleanClipboardText(text)
		if strings.TrimSpace(code) == "" {
			return nil, nil
		}
		el := snap.NewCodeElement(e.pasteAnchor())
		el.ID = e.newID()
		el.Code.Code = code
		return []string{e.AddElement(el)}, nil
	}
	if len(els) == 0 {
		return nil, nil
	}

	e.pastes++
	offset := float64(DuplicateOffset * e.pastes)
	e.commit()
	ids := make([]string, 0, len(els))
	for _, el := range els {
		snap.NormalizeElement(&el)
		snap.Reassign(&el, e.newID)
		snap.Translate(&el, offset, offset)
		e.doc.Elements = append(e.doc.Elements, el)
		ids = append(ids, el.ID)
	}
	e.selected = append([]string(nil), ids...)
	e.tool = ToolSelect
	e.log.Debug("pasted", "count", len(ids), "offset", offset)
	e.emit("paste", ids...)
	return ids, nil
}

func decodePayload(text string) ([]snap.Element, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}
	var p payload
	if err := json.Unmarshal([]byte(trimmed), &p); err != nil || p.Kind != PayloadKind {
		return nil, false
	}
	return p.Elements, true
}

// pasteAnchor places pasted text in the middle of the visible canvas area,
// or at the canvas center when the view is unknown.
func (e *Editor) pasteAnchor() (float64, float64) {
	m := e.doc.Meta
	x := float64(m.Width)/2 - snap.DefaultCodeWidth/2
	y := float64(m.Height)/2 - snap.DefaultCodeHeight/2
	return max(0, x), max(0, y)
}

func isRTF(text string) bool {
	return strings.HasPrefix(text, "{\\rtf") || strings.Contains(text, "\\rtf1")
}

func isHTML(text string) bool {
	t := strings.TrimSpace(text)
	return strings.HasPrefix(t, "<") &&
		(strings.Contains(t, "<html") || strings.Contains(t, "<body") ||
			strings.Contains(t, "<div") || strings.Contains(t, "<pre"))
}

// cleanClipboardText turns rich clipboard text into plain source code with
// unix line endings and no control characters other than tab.
func cleanClipboardText(text string) string {
	switch {
	case isRTF(text):
		text = textFromRTF(text)
	case isHTML(text):
		text = textFromHTML(text)
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\t' || r >= 32 {
			b.WriteRune(r)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// textFromRTF drops groups' braces and control words, keeping escaped
// characters, \par/\line as newlines and \tab as a tab. Header groups
// (fonttbl, colortbl, stylesheet, info) are skipped entirely.
func textFromRTF(rtf string) string {
	var b strings.Builder
	b.Grow(len(rtf))
	depth, skipUntil := 0, -1
	for i := 0; i < len(rtf); i++ {
		c := rtf[i]
		switch c {
		case '{':
			depth++
			continue
		case '}':
			if depth == skipUntil {
				skipUntil = -1
			}
			depth--
			continue
		case '\r', '\n':
			continue
		}
		if c != '\\' {
			if skipUntil < 0 {
				b.WriteByte(c)
			}
			continue
		}
		if i+1 >= len(rtf) {
			break
		}
		next := rtf[i+1]
		switch {
		case next == '\\' || next == '{' || next == '}':
			if skipUntil < 0 {
				b.WriteByte(next)
			}
			i++
		case next == '\'' && i+3 < len(rtf):
			if v, err := strconv.ParseUint(rtf[i+2:i+4], 16, 8); err == nil && skipUntil < 0 {
				b.WriteByte(byte(v))
			}
			i += 3
		case next == '*':
			if skipUntil < 0 {
				skipUntil = depth
			}
			i++
		case next == '~':
			if skipUntil < 0 {
				b.WriteByte(' ')
			}
			i++
		case isLetter(next):
			j := i + 1
			for j < len(rtf) && isLetter(rtf[j]) {
				j++
			}
			word := rtf[i+1 : j]
			for j < len(rtf) && (rtf[j] == '-' || (rtf[j] >= '0' && rtf[j] <= '9')) {
				j++
			}
			if j < len(rtf) && rtf[j] == ' ' {
				j++
			}
			i = j - 1
			switch word {
			case "fonttbl", "colortbl", "stylesheet", "info", "expandedcolortbl":
				if skipUntil < 0 {
					skipUntil = depth
				}
			case "par", "line":
				if skipUntil < 0 {
					b.WriteByte('\n')
				}
			case "tab":
				if skipUntil < 0 {
					b.WriteByte('\t')
				}
			}
		default:
			i++
		}
	}
	return b.String()
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// textFromHTML extracts the text of an HTML fragment. <br> and the end of a
// block that is not already on a fresh line become newlines, so copied editor
// markup keeps its lines. Script and style bodies are dropped.
func textFromHTML(src string) string {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return src
	}
	var b strings.Builder
	collectHTMLText(doc, &b)
	return strings.ReplaceAll(b.String(), "\u00a0", " ")
}

func collectHTMLText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Title, atom.Noscript:
			return
		case atom.Br:
			b.WriteByte('\n')
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectHTMLText(c, b)
	}
	if n.Type == html.ElementNode && htmlBlocks[n.DataAtom] && !strings.HasSuffix(b.String(), "\n") {
		b.WriteByte('\n')
	}
}

var htmlBlocks = map[atom.Atom]bool{
	atom.Div: true, atom.P: true, atom.Li: true, atom.Tr: true, atom.Pre: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
}
