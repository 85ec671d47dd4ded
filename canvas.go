package main

import (
	"strings"

	"codesnap/editor"
	"codesnap/geometry"
	"codesnap/snap"
)

type cellStyle int

const (
	styleNone cellStyle = iota
	styleFrame
	styleCode
	styleText
	styleArrow
	styleShape
	styleImage
	styleGroup
	styleSelected
	styleCursor
)

type border struct {
	tl, tr, bl, br, h, v rune
}

var (
	borderRound  = border{'╭', '╮', '╰', '╯', '─', '│'}
	borderSquare = border{'┌', '┐', '└', '┘', '─', '│'}
	borderDashed = border{'┌', '┐', '└', '┘', '╌', '╎'}
	borderHeavy  = border{'┏', '┓', '┗', '┛', '━', '┃'}
	borderDouble = border{'╔', '╗', '╚', '╝', '═', '║'}
	borderFrame  = border{'+', '+', '+', '+', '┈', '┊'}
)

// grid is a character raster of the canvas viewport.
type grid struct {
	w, h  int
	runes [][]rune
	style [][]cellStyle
}

func newGrid(w, h int) *grid {
	w, h = max(w, 1), max(h, 1)
	g := &grid{w: w, h: h, runes: make([][]rune, h), style: make([][]cellStyle, h)}
	for y := range g.runes {
		g.runes[y] = []rune(strings.Repeat(" ", w))
		g.style[y] = make([]cellStyle, w)
	}
	return g
}

func (g *grid) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.w && y < g.h
}

func (g *grid) set(x, y int, r rune, st cellStyle) {
	if g.inside(x, y) {
		g.runes[y][x] = r
		g.style[y][x] = st
	}
}

// text writes s starting at (x, y), clipped to limit columns.
func (g *grid) text(x, y int, s string, limit int, st cellStyle) {
	i := 0
	for _, r := range s {
		if i >= limit {
			return
		}
		if r == '\t' {
			r = ' '
		}
		g.set(x+i, y, r, st)
		i++
	}
}

func (g *grid) fill(x0, y0, x1, y1 int) {
	for y := max(y0, 0); y <= min(y1, g.h-1); y++ {
		for x := max(x0, 0); x <= min(x1, g.w-1); x++ {
			g.runes[y][x] = ' '
			g.style[y][x] = styleNone
		}
	}
}

func (g *grid) rect(x0, y0, x1, y1 int, b border, st cellStyle) {
	if x1 <= x0 || y1 <= y0 {
		g.line(x0, y0, x1, y1, b.h, st)
		return
	}
	for x := x0 + 1; x < x1; x++ {
		g.set(x, y0, b.h, st)
		g.set(x, y1, b.h, st)
	}
	for y := y0 + 1; y < y1; y++ {
		g.set(x0, y, b.v, st)
		g.set(x1, y, b.v, st)
	}
	g.set(x0, y0, b.tl, st)
	g.set(x1, y0, b.tr, st)
	g.set(x0, y1, b.bl, st)
	g.set(x1, y1, b.br, st)
}

// line draws a Bresenham line between two cells.
func (g *grid) line(x0, y0, x1, y1 int, r rune, st cellStyle) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	for {
		g.set(x0, y0, r, st)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// canvasPainter draws a document into a grid through the editor viewport.
// Rotation is not shown.
type canvasPainter struct {
	ed       *editor.Editor
	g        *grid
	selected map[string]bool
}

func renderCanvas(ed *editor.Editor, w, h int) *grid {
	p := &canvasPainter{ed: ed, g: newGrid(w, h), selected: make(map[string]bool)}
	for _, id := range ed.SelectedIDs() {
		p.selected[id] = true
	}
	meta := ed.Meta()
	x0, y0 := p.cell(geometry.Pt(0, 0))
	x1, y1 := p.cell(geometry.Pt(float64(meta.Width), float64(meta.Height)))
	p.g.rect(x0, y0, x1-1, y1-1, borderFrame, styleFrame)

	p.elements(ed.Elements(), geometry.Point{}, false)
	return p.g
}

func (p *canvasPainter) cell(c geometry.Point) (int, int) {
	return screenToCell(p.ed.CanvasToScreen(c))
}

func (p *canvasPainter) elements(els []snap.Element, origin geometry.Point, inSelected bool) {
	for i := range els {
		el := &els[i]
		if !el.Visible {
			continue
		}
		sel := inSelected || p.selected[el.ID]
		if el.UsesPoints() {
			p.path(el, origin, sel)
			continue
		}
		p.box(el, origin, sel)
		if el.Type == snap.TypeGroup {
			p.elements(el.Elements, origin.Add(geometry.Pt(el.X, el.Y)), sel)
		}
	}
}

func (p *canvasPainter) box(el *snap.Element, origin geometry.Point, sel bool) {
	x0, y0 := p.cell(origin.Add(geometry.Pt(el.X, el.Y)))
	x1, y1 := p.cell(origin.Add(geometry.Pt(el.X+el.Width, el.Y+el.Height)))
	x1, y1 = max(x1-1, x0), max(y1-1, y0)

	st, b := styleShape, borderSquare
	switch el.Type {
	case snap.TypeCode:
		st, b = styleCode, borderRound
	case snap.TypeText:
		st, b = styleText, border{' ', ' ', ' ', ' ', ' ', ' '}
	case snap.TypeImage:
		st, b = styleImage, borderHeavy
	case snap.TypeGroup:
		st, b = styleGroup, borderDashed
	case snap.TypeShape:
		if el.Shape != nil && el.Shape.Kind != snap.ShapeRectangle {
			b = borderRound
		}
	}
	if el.Type != snap.TypeGroup {
		p.g.fill(x0, y0, x1, y1)
	}
	if sel {
		st, b = styleSelected, borderDouble
	}
	p.g.rect(x0, y0, x1, y1, b, st)

	inner := x1 - x0 - 1
	var lines []string
	switch el.Type {
	case snap.TypeCode:
		if el.Code != nil {
			head := "● ● ●"
			if el.Code.Title != "" {
				head += " " + el.Code.Title
			}
			lines = append([]string{head}, strings.Split(el.Code.Code, "\n")...)
		}
	case snap.TypeText:
		if el.Text != nil {
			lines = strings.Split(el.Text.Text, "\n")
		}
	case snap.TypeImage:
		lines = []string{"[image]"}
	case snap.TypeShape, snap.TypeGroup:
		lines = []string{snap.DisplayName(el)}
	}
	if el.Type == snap.TypeText {
		x0, inner = x0-1, inner+2
	}
	textStyle := st
	if el.Type == snap.TypeGroup && !sel {
		textStyle = styleGroup
	}
	top, bottom := y0+1, y1-1
	if el.Type == snap.TypeText {
		top, bottom = y0, y1
	}
	for i, line := range lines {
		if top+i > bottom {
			break
		}
		p.g.text(x0+1, top+i, line, inner, textStyle)
	}
}

func (p *canvasPainter) path(el *snap.Element, origin geometry.Point, sel bool) {
	if len(el.Points) == 0 {
		return
	}
	pts := make([]geometry.Point, len(el.Points))
	for i, pt := range el.Points {
		pts[i] = pt.Add(origin)
	}
	var controls []geometry.Point
	curved := false
	st := styleShape
	if el.Arrow != nil {
		st = styleArrow
		curved = el.Arrow.Curved()
		for _, c := range el.Arrow.ControlPoints {
			controls = append(controls, c.Add(origin))
		}
	}
	if sel {
		st = styleSelected
	}

	route := geometry.ArrowPath(pts, controls, curved, 24)
	dot := '•'
	if el.Arrow != nil && el.Arrow.Dashed {
		dot = '·'
	}
	cells := make([][2]int, len(route))
	for i, pt := range route {
		x, y := p.cell(pt)
		cells[i] = [2]int{x, y}
		if i > 0 {
			p.g.line(cells[i-1][0], cells[i-1][1], x, y, dot, st)
		}
	}
	if len(cells) == 1 {
		p.g.set(cells[0][0], cells[0][1], dot, st)
		return
	}
	if el.Arrow == nil {
		return
	}

	n := len(cells)
	if el.Arrow.Head != snap.HeadNone {
		p.head(distinct(cells, n-1, -1), cells[n-1], st)
	}
	if el.Arrow.Tail != snap.HeadNone {
		p.head(distinct(cells, 0, 1), cells[0], st)
	}
	if el.Arrow.Label != "" {
		mid := geometry.PointAt(pts[0], pts[len(pts)-1], geometry.ControlPointsFor(pts[0], pts[len(pts)-1], controls, curved), 0.5)
		x, y := p.cell(mid)
		label := " " + el.Arrow.Label + " "
		p.g.text(x-len([]rune(label))/2, y, label, len([]rune(label)), st)
	}
}

// distinct walks from cells[i] in step direction to the first different cell.
func distinct(cells [][2]int, i, step int) [2]int {
	for j := i + step; j >= 0 && j < len(cells); j += step {
		if cells[j] != cells[i] {
			return cells[j]
		}
	}
	return cells[i]
}

// head marks the arrow tip at b, pointing away from a.
func (p *canvasPainter) head(a, b [2]int, st cellStyle) {
	dx, dy := b[0]-a[0], b[1]-a[1]
	r := '•'
	switch {
	case dx == 0 && dy == 0:
	case abs(dx) >= abs(dy) && dx > 0:
		r = '▶'
	case abs(dx) >= abs(dy):
		r = '◀'
	case dy > 0:
		r = '▼'
	default:
		r = '▲'
	}
	p.g.set(b[0], b[1], r, st)
}
