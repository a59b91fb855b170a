package ember

import (
	"fmt"
	"strings"
	"time"
)

// The renderer projects the buffer to the terminal: gutter, text area with
// soft wrap and overlays, status bar, message bar. A frame is composed into
// one string and flushed with a single write.

// visualRow is one screen row of text: a buffer row and which wrap segment
// of it this row shows.
type visualRow struct {
	bufRow int
	seg    int
}

// gutterWidth returns the digits of the highest line number (minimum two)
// plus one space.
func (e *Editor) gutterWidth() int {
	digits := 0
	for n := e.buf.LineCount(); n > 0; n /= 10 {
		digits++
	}
	if digits < 2 {
		digits = 2
	}
	return digits + 1
}

// textWidth returns the columns available to cell content.
func (e *Editor) textWidth() int {
	w := e.screenCols - e.gutterWidth()
	if w < 1 {
		w = 1
	}
	return w
}

// textTop returns the screen row where the text area starts.
func (e *Editor) textTop() int {
	if e.cfg.BarAtTop {
		return 1
	}
	return 0
}

// visualRows enumerates the screen rows for the current viewport.
func (e *Editor) visualRows() []visualRow {
	rows := make([]visualRow, 0, e.screenRows)
	width := e.textWidth()
	for bufRow := e.rowOff; bufRow < e.buf.LineCount(); bufRow++ {
		e.buf.WarmLine(bufRow)
		l := e.buf.Line(bufRow)
		segs := l.WrapSegments(width, e.wrapMode, e.cfg.TabWidth)
		for seg := range segs {
			rows = append(rows, visualRow{bufRow: bufRow, seg: seg})
			if len(rows) == e.screenRows {
				return rows
			}
		}
	}
	return rows
}

// scrollToCursor adjusts the scroll offsets so the primary cursor is
// visible, then queues viewport pre-warming.
func (e *Editor) scrollToCursor() {
	p := e.cursors.Primary()
	if p.Row < e.rowOff {
		e.rowOff = p.Row
	}
	if p.Row >= e.rowOff+e.screenRows {
		e.rowOff = p.Row - e.screenRows + 1
	}
	if e.wrapMode == WrapNone {
		l := e.buf.Line(p.Row)
		if l != nil {
			e.buf.WarmLine(p.Row)
			rx := l.RenderedCol(p.Col, e.cfg.TabWidth)
			if rx < e.colOff {
				e.colOff = rx
			}
			if width := e.textWidth(); rx >= e.colOff+width {
				e.colOff = rx - width + 1
			}
		}
	} else {
		e.colOff = 0
	}
	e.prewarmViewport()
}

// screenToBuffer converts a screen position to a buffer position.
func (e *Editor) screenToBuffer(screenRow, screenCol int) (row, col int) {
	vr := e.visualRows()
	i := screenRow - e.textTop()
	if i < 0 {
		i = 0
	}
	if len(vr) == 0 {
		return 0, 0
	}
	if i >= len(vr) {
		i = len(vr) - 1
	}
	v := vr[i]
	l := e.buf.Line(v.bufRow)
	if l == nil {
		return v.bufRow, 0
	}
	segs := l.WrapSegments(e.textWidth(), e.wrapMode, e.cfg.TabWidth)
	segStart := segs[v.seg]
	x := screenCol - e.gutterWidth() + e.colOff
	if x < 0 {
		x = 0
	}
	base := l.RenderedCol(segStart, e.cfg.TabWidth)
	return v.bufRow, l.CellColForRendered(base+x, e.cfg.TabWidth)
}

// inSelection reports whether (row, col) falls inside any cursor's
// normalized selection.
func (e *Editor) inSelection(row, col int) bool {
	for _, c := range e.cursors.All() {
		sr, sc, er, ec, ok := c.Selection()
		if !ok {
			continue
		}
		if row < sr || row > er {
			continue
		}
		if row == sr && col < sc {
			continue
		}
		if row == er && col >= ec {
			continue
		}
		return true
	}
	return false
}

// matchAt reports whether (row, col) is covered by a search match and
// whether the primary cursor sits on that match, from its start column
// through its end column (the emphasized one).
func (e *Editor) matchAt(row, col int, matches []Match) (bool, bool) {
	p := e.cursors.Primary()
	for _, m := range matches {
		if m.Row != row || col < m.StartCol || col >= m.EndCol {
			continue
		}
		current := m.Row == p.Row && p.Col >= m.StartCol && p.Col <= m.EndCol
		return true, current
	}
	return false, false
}

// hiddenCell reports whether a hideable Markdown cell should collapse:
// hybrid rendering is on and the primary cursor is outside the cell's
// enclosing element on that row.
func (e *Editor) hiddenCell(row, col int, cell *Cell) bool {
	if !e.hybridMD || !cell.HasFlag(FlagHideable) {
		return false
	}
	md, ok := e.buf.hl.(*MarkdownHighlighter)
	if !ok {
		return false
	}
	p := e.cursors.Primary()
	if p.Row != row {
		return true
	}
	el, found := md.ElementAt(row, col)
	if !found {
		return true
	}
	return p.Col < el.StartCol || p.Col > el.EndCol
}

// cellStyle composes the final style for one cell from the theme and the
// selection, search, and cursor-line overlays.
func (e *Editor) cellStyle(row, col int, cell *Cell, matches []Match) Style {
	style := e.theme.Syntax[cell.Syntax]
	if l := e.buf.Line(row); l != nil && l.IsTrailingWhitespace(col) {
		style.Attr |= AttrReverse
	}
	if row == e.cursors.Primary().Row {
		style.Bg = e.theme.CursorLine
	}
	if hit, current := e.matchAt(row, col, matches); hit {
		if current {
			style.Bg = e.theme.SearchCurrent
		} else {
			style.Bg = e.theme.SearchMatch
		}
	}
	if e.inSelection(row, col) {
		style.Bg = e.theme.Selection
	}
	for _, c := range e.cursors.All() {
		if c.Row == row && c.Col == col && e.cursors.Count() > 1 {
			style.Attr |= AttrReverse
		}
	}
	return style
}

// RenderFrame composes the full screen into one string: hide cursor, home,
// text rows, status and message bars, cursor placement, show cursor.
func (e *Editor) RenderFrame() string {
	var sb strings.Builder
	sw := newStyleWriter(&sb)
	sb.WriteString("\x1b[?25l\x1b[H")

	if e.cfg.BarAtTop {
		e.renderStatusBar(&sb, sw)
		sb.WriteString("\r\n")
	}
	matches, pattern, _ := e.matches.View()
	if pattern == "" {
		matches = nil
	}
	vr := e.visualRows()
	for i := 0; i < e.screenRows; i++ {
		e.renderTextRow(&sb, sw, vr, i, matches)
		sb.WriteString("\r\n")
	}
	if !e.cfg.BarAtTop {
		e.renderStatusBar(&sb, sw)
		sb.WriteString("\r\n")
	}
	e.renderMessageBar(&sb, sw)

	row, col := e.cursorScreenPos(vr)
	fmt.Fprintf(&sb, "\x1b[%d;%dH\x1b[?25h", row+1, col+1)
	return sb.String()
}

// renderTextRow draws one visual row: gutter then visible cells.
func (e *Editor) renderTextRow(sb *strings.Builder, sw *styleWriter, vr []visualRow, i int, matches []Match) {
	normal := Style{Fg: e.theme.Foreground, Bg: e.theme.Background}
	sw.Set(normal)
	sb.WriteString("\x1b[2K")

	if i >= len(vr) {
		sw.Set(e.theme.Gutter)
		sb.WriteString(strings.Repeat(" ", e.gutterWidth()-1))
		sw.Set(normal)
		sb.WriteString("~")
		return
	}
	v := vr[i]
	l := e.buf.Line(v.bufRow)
	p := e.cursors.Primary()

	gw := e.gutterWidth()
	gutter := e.theme.Gutter
	if v.bufRow == p.Row {
		gutter = e.theme.GutterActv
	}
	sw.Set(gutter)
	if v.seg == 0 {
		fmt.Fprintf(sb, "%*d ", gw-1, v.bufRow+1)
	} else {
		indicator := string(e.theme.WrapIndicator)
		if e.theme.WrapIndicator == 0 {
			indicator = " "
		}
		fmt.Fprintf(sb, "%*s ", gw-1, indicator)
	}

	segs := l.WrapSegments(e.textWidth(), e.wrapMode, e.cfg.TabWidth)
	segStart := segs[v.seg]
	segEnd := l.Len()
	if v.seg+1 < len(segs) {
		segEnd = segs[v.seg+1]
	}

	width := e.textWidth()
	x := 0
	skip := e.colOff
	startX := l.RenderedCol(segStart, e.cfg.TabWidth)
	for col := segStart; col < segEnd; col++ {
		cell := &l.cells[col]
		if e.hiddenCell(v.bufRow, col, cell) {
			continue
		}
		w := cellAdvance(cell.Code, startX+x+skip, e.cfg.TabWidth)
		if skip > 0 {
			// Horizontal scrolling clips whole cells from the left.
			skip -= w
			continue
		}
		if x+w > width {
			break
		}
		sw.Set(e.cellStyle(v.bufRow, col, cell, matches))
		switch {
		case cell.Code == '\t':
			sb.WriteString(strings.Repeat(" ", w))
		case cell.Code < 0x20:
			sb.WriteString("?")
		default:
			sb.WriteRune(cell.Code)
		}
		x += w
	}
}

// renderStatusBar draws the inverted status line: filename, modification
// marker, mode, cursor position.
func (e *Editor) renderStatusBar(sb *strings.Builder, sw *styleWriter) {
	sw.Set(e.theme.StatusBar)
	sb.WriteString("\x1b[2K")
	name := e.buf.Filename()
	if name == "" {
		name = "[no name]"
	}
	mod := ""
	if e.buf.Modified() {
		mod = " [+]"
	}
	modeName := [...]string{"", "search", "goto", "save as", "quit?", "reload?", "leader"}[e.mode]
	if modeName != "" {
		modeName = " | " + modeName
	}
	p := e.cursors.Primary()
	left := fmt.Sprintf(" %s%s%s", name, mod, modeName)
	right := fmt.Sprintf("%d:%d | %d lines ", p.Row+1, p.Col+1, e.buf.LineCount())
	pad := e.screenCols - len([]rune(left)) - len([]rune(right))
	if pad < 1 {
		pad = 1
	}
	sb.WriteString(left)
	sb.WriteString(strings.Repeat(" ", pad))
	sb.WriteString(right)
	sw.Reset()
}

// renderMessageBar draws the transient status message or the active prompt.
func (e *Editor) renderMessageBar(sb *strings.Builder, sw *styleWriter) {
	sw.Set(e.theme.MessageBar)
	sb.WriteString("\x1b[2K")
	switch e.mode {
	case ModeSearch:
		if e.replacePrompt {
			fmt.Fprintf(sb, "replace %q with: %s", string(e.prompt), string(e.replaceText))
		} else {
			fmt.Fprintf(sb, "search: %s", string(e.prompt))
		}
	case ModeGotoLine:
		fmt.Fprintf(sb, "goto line: %s", string(e.prompt))
	case ModeSaveAs:
		fmt.Fprintf(sb, "save as: %s", string(e.prompt))
	default:
		if time.Since(e.statusTime) < statusDuration {
			sb.WriteString(e.statusMsg)
		}
	}
	sw.Reset()
}

// cursorScreenPos maps the primary cursor to its screen coordinates.
func (e *Editor) cursorScreenPos(vr []visualRow) (row, col int) {
	p := e.cursors.Primary()
	l := e.buf.Line(p.Row)
	if l == nil {
		return e.textTop(), e.gutterWidth()
	}
	segs := l.WrapSegments(e.textWidth(), e.wrapMode, e.cfg.TabWidth)
	seg := SegmentFor(segs, p.Col)
	screenRow := e.textTop()
	for i, v := range vr {
		if v.bufRow == p.Row && v.seg == seg {
			screenRow = e.textTop() + i
			break
		}
	}
	rx := l.RenderedCol(p.Col, e.cfg.TabWidth)
	segX := l.RenderedCol(segs[seg], e.cfg.TabWidth)
	return screenRow, e.gutterWidth() + (rx - segX) - e.colOff
}
