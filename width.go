package ember

import "github.com/unilibs/uniwidth"

// runeWidth returns the display width of one codepoint outside tab
// handling: 2 for wide characters (CJK, fullwidth forms), 0 for combining
// marks, and 1 for everything else including control characters, which the
// renderer shows as single-width placeholders.
func runeWidth(r rune) int {
	if r == '\t' {
		return 1
	}
	if isCombining(r) {
		return 0
	}
	w := uniwidth.RuneWidth(r)
	if w <= 0 {
		return 1
	}
	return w
}

// cellAdvance returns how many columns the cell at visual position col
// consumes: tabs expand to the next tab stop, everything else uses
// runeWidth.
func cellAdvance(r rune, col, tabWidth int) int {
	if r == '\t' {
		return tabWidth - col%tabWidth
	}
	return runeWidth(r)
}

// RenderedCol returns the visual column of cell index col on l: the sum of
// the widths of every cell before it.
func (l *Line) RenderedCol(col, tabWidth int) int {
	x := 0
	for i := 0; i < col && i < len(l.cells); i++ {
		x += cellAdvance(l.cells[i].Code, x, tabWidth)
	}
	return x
}

// CellColForRendered inverts RenderedCol: it returns the cell index whose
// span covers visual column x.
func (l *Line) CellColForRendered(x, tabWidth int) int {
	cur := 0
	for i := range l.cells {
		w := cellAdvance(l.cells[i].Code, cur, tabWidth)
		if cur+w > x {
			return i
		}
		cur += w
	}
	return len(l.cells)
}

// RenderedWidth returns the total visual width of the line.
func (l *Line) RenderedWidth(tabWidth int) int {
	return l.RenderedCol(len(l.cells), tabWidth)
}
