package ember

import "sort"

// MaxCursors bounds multi-cursor mode.
const MaxCursors = 100

// Cursor is a (row, column) position with an optional selection anchor.
// Column is a cell index into the row. The selection range is normalized at
// query time; anchor equal to cursor means an empty selection.
type Cursor struct {
	Row, Col             int
	AnchorRow, AnchorCol int
	HasSelection         bool
}

// Selection returns the normalized selection range [start, end) in document
// order. ok is false when there is no selection or it is empty.
func (c *Cursor) Selection() (startRow, startCol, endRow, endCol int, ok bool) {
	if !c.HasSelection {
		return 0, 0, 0, 0, false
	}
	if c.AnchorRow == c.Row && c.AnchorCol == c.Col {
		return 0, 0, 0, 0, false
	}
	if c.AnchorRow < c.Row || (c.AnchorRow == c.Row && c.AnchorCol < c.Col) {
		return c.AnchorRow, c.AnchorCol, c.Row, c.Col, true
	}
	return c.Row, c.Col, c.AnchorRow, c.AnchorCol, true
}

// StartSelection anchors a selection at the current position.
func (c *Cursor) StartSelection() {
	c.AnchorRow, c.AnchorCol = c.Row, c.Col
	c.HasSelection = true
}

// ClearSelection drops the selection.
func (c *Cursor) ClearSelection() {
	c.HasSelection = false
}

// clampTo snaps the cursor into the valid range of b.
func (c *Cursor) clampTo(b *Buffer) {
	if c.Row < 0 {
		c.Row = 0
	}
	if n := b.LineCount(); c.Row >= n {
		if n == 0 {
			c.Row, c.Col = 0, 0
			return
		}
		c.Row = n - 1
	}
	l := b.Line(c.Row)
	if l == nil {
		c.Col = 0
		return
	}
	b.WarmLine(c.Row)
	if c.Col > l.Len() {
		c.Col = l.Len()
	}
	if c.Col < 0 {
		c.Col = 0
	}
}

// MoveLeft moves one grapheme left, wrapping to the previous line end.
func (c *Cursor) MoveLeft(b *Buffer) {
	if c.Col > 0 {
		l := b.Line(c.Row)
		c.Col = l.PrevGrapheme(c.Col)
		return
	}
	if c.Row > 0 {
		c.Row--
		b.WarmLine(c.Row)
		c.Col = b.Line(c.Row).Len()
	}
}

// MoveRight moves one grapheme right, wrapping to the next line start.
func (c *Cursor) MoveRight(b *Buffer) {
	l := b.Line(c.Row)
	if l != nil && c.Col < l.Len() {
		c.Col = l.NextGrapheme(c.Col)
		return
	}
	if c.Row+1 < b.LineCount() {
		c.Row++
		c.Col = 0
	}
}

// MoveUp moves one line up, preserving the column and clamping to the
// target line's length.
func (c *Cursor) MoveUp(b *Buffer) {
	if c.Row > 0 {
		c.Row--
		c.clampTo(b)
	}
}

// MoveDown moves one line down.
func (c *Cursor) MoveDown(b *Buffer) {
	if c.Row+1 < b.LineCount() {
		c.Row++
		c.clampTo(b)
	}
}

// MovePage advances by screenRows lines in the given direction.
func (c *Cursor) MovePage(b *Buffer, screenRows, dir int) {
	c.Row += dir * screenRows
	c.clampTo(b)
}

// MoveHome snaps to column zero.
func (c *Cursor) MoveHome() {
	c.Col = 0
}

// MoveEnd snaps to the line length.
func (c *Cursor) MoveEnd(b *Buffer) {
	if l := b.Line(c.Row); l != nil {
		b.WarmLine(c.Row)
		c.Col = l.Len()
	}
}

// MoveWordLeft moves to the previous word start, crossing line boundaries.
func (c *Cursor) MoveWordLeft(b *Buffer) {
	l := b.Line(c.Row)
	if l == nil {
		return
	}
	if c.Col == 0 {
		c.MoveLeft(b)
		return
	}
	c.Col = l.PrevWordStart(c.Col)
}

// MoveWordRight moves to the next word start, crossing line boundaries.
func (c *Cursor) MoveWordRight(b *Buffer) {
	l := b.Line(c.Row)
	if l == nil {
		return
	}
	if c.Col >= l.Len() {
		c.MoveRight(b)
		return
	}
	c.Col = l.NextWordStart(c.Col)
}

// CursorSet is the editor's cursor collection: always at least one cursor,
// one of which is primary and drives scrolling.
type CursorSet struct {
	cursors []Cursor
	primary int
}

// NewCursorSet creates a set holding a single cursor at (0, 0).
func NewCursorSet() *CursorSet {
	return &CursorSet{cursors: make([]Cursor, 1)}
}

// Primary returns the primary cursor.
func (cs *CursorSet) Primary() *Cursor {
	return &cs.cursors[cs.primary]
}

// All returns the cursors in storage order.
func (cs *CursorSet) All() []Cursor {
	return cs.cursors
}

// Count returns the number of cursors.
func (cs *CursorSet) Count() int {
	return len(cs.cursors)
}

// Add places an additional cursor at (row, col); it becomes primary. The
// set is capped at MaxCursors, and a duplicate position is ignored.
func (cs *CursorSet) Add(row, col int) bool {
	if len(cs.cursors) >= MaxCursors {
		return false
	}
	for _, c := range cs.cursors {
		if c.Row == row && c.Col == col {
			return false
		}
	}
	cs.cursors = append(cs.cursors, Cursor{Row: row, Col: col})
	cs.primary = len(cs.cursors) - 1
	return true
}

// Collapse drops every cursor but the primary.
func (cs *CursorSet) Collapse() {
	p := cs.cursors[cs.primary]
	cs.cursors = cs.cursors[:1]
	cs.cursors[0] = p
	cs.primary = 0
}

// Sorted returns the cursor indices ordered by document position. Edits in
// multi-cursor mode apply in this order, with later positions adjusted by
// earlier edits' shifts.
func (cs *CursorSet) Sorted() []int {
	idx := make([]int, len(cs.cursors))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		ca, cb := cs.cursors[idx[a]], cs.cursors[idx[b]]
		if ca.Row != cb.Row {
			return ca.Row < cb.Row
		}
		return ca.Col < cb.Col
	})
	return idx
}

// ForEachSorted runs fn over the cursors in document order, letting fn
// mutate each cursor in place.
func (cs *CursorSet) ForEachSorted(fn func(*Cursor)) {
	for _, i := range cs.Sorted() {
		fn(&cs.cursors[i])
	}
}

// shiftAfterInsert adjusts every cursor after an insertion of n cells at
// (row, col).
func (cs *CursorSet) shiftAfterInsert(row, col, n int) {
	for i := range cs.cursors {
		c := &cs.cursors[i]
		if c.Row == row && c.Col >= col {
			c.Col += n
		}
	}
}

// shiftAfterNewline adjusts cursors after a line split at (row, col).
func (cs *CursorSet) shiftAfterNewline(row, col int) {
	for i := range cs.cursors {
		c := &cs.cursors[i]
		switch {
		case c.Row > row:
			c.Row++
		case c.Row == row && c.Col >= col:
			c.Row++
			c.Col -= col
		}
	}
}
