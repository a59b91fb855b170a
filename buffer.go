package ember

import (
	"bufio"
	"fmt"
	"os"
	"unicode/utf8"
)

// Buffer owns an ordered, dense sequence of lines plus the file backing they
// were loaded from. Lines warm lazily out of the memory map; edits promote
// them to hot and flip the modification flag. Apart from line temperatures
// (see Line.Warm), every field is owned by the main thread.
type Buffer struct {
	lines      []*Line
	filename   string
	modified   bool
	mm         *fileMap
	nextPairID uint32
	hl         Highlighter
	history    *History
}

// NewBuffer creates an empty buffer with zero lines and no file backing.
func NewBuffer() *Buffer {
	return &Buffer{
		lines:   make([]*Line, 0, initialLineCap),
		hl:      plainHighlighter{},
		history: NewHistory(),
	}
}

// Load opens path, maps it read-only, and indexes its lines cold. The
// buffer-wide pair scan then warms every line, and each line gets its
// neighbor and syntax annotations. A missing file yields an empty buffer
// with the filename preset.
func Load(path string) (*Buffer, error) {
	b := NewBuffer()
	b.filename = path
	b.hl = HighlighterFor(path)
	mm, err := openFileMap(path)
	if os.IsNotExist(err) {
		return b, nil
	}
	if err != nil {
		return nil, err
	}
	b.mm = mm
	b.lines = indexLines(mm.data)
	b.annotateAll()
	return b, nil
}

// LoadBytes builds a buffer from an in-memory byte slice. All lines are
// created hot; no map backing ever exists. The filename drives highlighter
// dispatch only.
func LoadBytes(data []byte, filename string) *Buffer {
	b := NewBuffer()
	b.filename = filename
	b.hl = HighlighterFor(filename)
	for _, cold := range indexLines(data) {
		l := NewLine()
		raw := data[cold.mapOff : cold.mapOff+int64(cold.mapLen)]
		l.cells = make([]Cell, 0, cellCapFor(utf8.RuneCount(raw)))
		for len(raw) > 0 {
			r, size := utf8.DecodeRune(raw)
			l.cells = append(l.cells, NewCell(r))
			raw = raw[size:]
		}
		b.lines = append(b.lines, l)
	}
	b.annotateAll()
	return b
}

// annotateAll runs the full annotation pipeline: pair contexts buffer-wide
// (which warms every line), then neighbors and syntax per line.
func (b *Buffer) annotateAll() {
	b.ComputePairs()
	for row := range b.lines {
		computeNeighbors(b.lines[row])
		b.hl.HighlightLine(b, row)
	}
}

// Filename returns the file this buffer was loaded from, or "".
func (b *Buffer) Filename() string {
	return b.filename
}

// SetFilename renames the buffer and re-dispatches the highlighter.
func (b *Buffer) SetFilename(path string) {
	b.filename = path
	b.hl = HighlighterFor(path)
	for row := range b.lines {
		b.hl.HighlightLine(b, row)
	}
}

// Modified reports whether the buffer has unsaved edits.
func (b *Buffer) Modified() bool {
	return b.modified
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// Line returns the line at row, or nil when out of range.
func (b *Buffer) Line(row int) *Line {
	if row < 0 || row >= len(b.lines) {
		return nil
	}
	return b.lines[row]
}

// History returns the buffer's undo history.
func (b *Buffer) History() *History {
	return b.history
}

// mapData exposes the mapped bytes cold lines decode from.
func (b *Buffer) mapData() []byte {
	if b.mm == nil {
		return nil
	}
	return b.mm.data
}

// WarmLine materializes the line at row if it is cold. It reports whether
// this call performed the warming.
func (b *Buffer) WarmLine(row int) bool {
	l := b.Line(row)
	if l == nil {
		return false
	}
	return l.Warm(b.mapData())
}

// warmAll warms every cold line so the map can be released.
func (b *Buffer) warmAll() {
	for _, l := range b.lines {
		l.Warm(b.mapData())
	}
}

// allocPairID hands out the next pair id. Ids restart from 1 on every pair
// recomputation pass.
func (b *Buffer) allocPairID() uint32 {
	b.nextPairID++
	return b.nextPairID
}

// Save writes the buffer to its filename: every line as UTF-8 followed by a
// newline. Cold lines are warmed first so the map can be released before
// the file is truncated. On success the modification flag clears; the map
// is not re-established.
func (b *Buffer) Save() (int64, error) {
	if b.filename == "" {
		return 0, fmt.Errorf("save: %w", ErrInvalidArgument)
	}
	return b.SaveAs(b.filename)
}

// SaveAs writes the buffer to path and adopts it as the buffer's filename.
func (b *Buffer) SaveAs(path string) (int64, error) {
	b.warmAll()
	if b.mm != nil {
		if err := b.mm.Close(); err != nil {
			return 0, fmt.Errorf("release map: %w", err)
		}
		b.mm = nil
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	w := bufio.NewWriter(f)
	var written int64
	for _, l := range b.lines {
		n, err := w.WriteString(l.String())
		written += int64(n)
		if err == nil {
			err = w.WriteByte('\n')
			written++
		}
		if err != nil {
			f.Close()
			return written, err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return written, err
	}
	if err := f.Close(); err != nil {
		return written, err
	}
	if path != b.filename {
		b.SetFilename(path)
	}
	b.modified = false
	return written, nil
}

// structuralRune reports whether inserting or deleting r can shift the
// buffer's delimiter structure.
func structuralRune(r rune) bool {
	switch r {
	case '(', ')', '[', ']', '{', '}', '/', '*':
		return true
	}
	return false
}

// recomputeLine refreshes the per-line annotation layers after a local edit.
func (b *Buffer) recomputeLine(row int) {
	l := b.Line(row)
	if l == nil {
		return
	}
	computeNeighbors(l)
	b.hl.HighlightLine(b, row)
}

// recomputeStructural reruns the buffer-wide pair scan and re-highlights
// every line. Comment state can shift arbitrarily far, so there is no
// cheaper safe set of affected lines.
func (b *Buffer) recomputeStructural() {
	b.ComputePairs()
	for row := range b.lines {
		computeNeighbors(b.lines[row])
		b.hl.HighlightLine(b, row)
	}
}

// InsertCell inserts codepoint r at (row, col). Columns beyond the line end
// clamp to append. Inserting at row 0 of an empty buffer creates line zero.
func (b *Buffer) InsertCell(row, col int, r rune) {
	if len(b.lines) == 0 && row == 0 {
		b.lines = append(b.lines, NewLine())
	}
	l := b.Line(row)
	if l == nil {
		return
	}
	l.Warm(b.mapData())
	if col > l.Len() {
		col = l.Len()
	}
	l.InsertCell(col, NewCell(r))
	b.modified = true
	b.history.recordInsert(row, col, string(r))
	if structuralRune(r) {
		b.recomputeStructural()
	} else {
		b.recomputeLine(row)
	}
}

// InsertNewline splits the line at (row, col): the line truncates to col
// cells and a new line with the remainder appears below. In an empty buffer
// it creates line zero.
func (b *Buffer) InsertNewline(row, col int) {
	if len(b.lines) == 0 {
		b.lines = append(b.lines, NewLine())
		row = 0
	}
	l := b.Line(row)
	if l == nil {
		return
	}
	l.Warm(b.mapData())
	if col > l.Len() {
		col = l.Len()
	}
	rest := l.split(col)
	b.insertLineAt(row+1, rest)
	b.modified = true
	b.history.recordSplit(row, col)
	b.recomputeStructural()
}

// DeleteGrapheme removes the grapheme cluster starting at (row, col). At or
// past the end of the line it joins the following line instead; at the end
// of the last line it is a no-op.
func (b *Buffer) DeleteGrapheme(row, col int) {
	l := b.Line(row)
	if l == nil {
		return
	}
	l.Warm(b.mapData())
	if col >= l.Len() {
		next := b.Line(row + 1)
		if next == nil {
			return
		}
		next.Warm(b.mapData())
		b.history.recordJoin(row, l.Len())
		l.AppendCellsFrom(next)
		b.removeLineAt(row + 1)
		b.modified = true
		b.recomputeStructural()
		return
	}
	end := l.NextGrapheme(col)
	deleted := cellString(l.cells[col:end])
	structural := false
	for _, c := range l.cells[col:end] {
		if structuralRune(c.Code) {
			structural = true
		}
	}
	l.DeleteRange(col, end)
	b.modified = true
	b.history.recordDelete(row, col, deleted)
	if structural {
		b.recomputeStructural()
	} else {
		b.recomputeLine(row)
	}
}

// DeleteRange removes cells [startCol, endCol) on one row. Used by
// selection deletion and replace application; always treated as structural.
func (b *Buffer) DeleteRange(row, startCol, endCol int) {
	l := b.Line(row)
	if l == nil {
		return
	}
	l.Warm(b.mapData())
	if endCol > l.Len() {
		endCol = l.Len()
	}
	if startCol < 0 {
		startCol = 0
	}
	if startCol >= endCol {
		return
	}
	b.history.recordDelete(row, startCol, cellString(l.cells[startCol:endCol]))
	l.DeleteRange(startCol, endCol)
	b.modified = true
	b.recomputeStructural()
}

// InsertText inserts a string at (row, col), splitting on newlines. Returns
// the cursor position after the inserted text.
func (b *Buffer) InsertText(row, col int, text string) (int, int) {
	for _, r := range text {
		if r == '\n' {
			b.InsertNewline(row, col)
			row++
			col = 0
			continue
		}
		b.InsertCell(row, col, r)
		col++
	}
	return row, col
}

// SwapLines exchanges the lines at r1 and r2. Cell content is untouched but
// comment and bracket structure may shift, so the pair scan reruns.
func (b *Buffer) SwapLines(r1, r2 int) {
	if b.Line(r1) == nil || b.Line(r2) == nil || r1 == r2 {
		return
	}
	b.lines[r1], b.lines[r2] = b.lines[r2], b.lines[r1]
	b.modified = true
	b.history.recordSwap(r1, r2)
	b.recomputeStructural()
}

// insertLineAt places l at row, shifting later lines down.
func (b *Buffer) insertLineAt(row int, l *Line) {
	if row < 0 {
		row = 0
	}
	if row > len(b.lines) {
		row = len(b.lines)
	}
	b.lines = append(b.lines, nil)
	copy(b.lines[row+1:], b.lines[row:])
	b.lines[row] = l
}

// removeLineAt deletes the line at row, shifting later lines up.
func (b *Buffer) removeLineAt(row int) {
	if row < 0 || row >= len(b.lines) {
		return
	}
	b.lines = append(b.lines[:row], b.lines[row+1:]...)
}

// DeleteSpan removes the text between (startRow, startCol) and
// (endRow, endCol) in document order, joining the boundary lines when the
// span crosses rows.
func (b *Buffer) DeleteSpan(startRow, startCol, endRow, endCol int) {
	if startRow == endRow {
		b.DeleteRange(startRow, startCol, endCol)
		return
	}
	start := b.Line(startRow)
	end := b.Line(endRow)
	if start == nil || end == nil {
		return
	}
	start.Warm(b.mapData())
	end.Warm(b.mapData())
	b.history.recordDelete(startRow, startCol, b.SpanString(startRow, startCol, endRow, endCol))
	if startCol < start.Len() {
		start.DeleteRange(startCol, start.Len())
	}
	end.DeleteRange(0, endCol)
	start.AppendCellsFrom(end)
	for row := endRow; row > startRow; row-- {
		b.removeLineAt(row)
	}
	b.modified = true
	b.recomputeStructural()
}

// SpanString returns the text between two positions in document order,
// with newlines between rows.
func (b *Buffer) SpanString(startRow, startCol, endRow, endCol int) string {
	if startRow == endRow {
		l := b.Line(startRow)
		if l == nil {
			return ""
		}
		l.Warm(b.mapData())
		if endCol > l.Len() {
			endCol = l.Len()
		}
		if startCol < 0 || startCol >= endCol {
			return ""
		}
		return cellString(l.cells[startCol:endCol])
	}
	var out []byte
	for row := startRow; row <= endRow; row++ {
		l := b.Line(row)
		if l == nil {
			continue
		}
		l.Warm(b.mapData())
		switch row {
		case startRow:
			if startCol < l.Len() {
				out = append(out, cellString(l.cells[startCol:])...)
			}
		case endRow:
			out = append(out, '\n')
			c := endCol
			if c > l.Len() {
				c = l.Len()
			}
			out = append(out, cellString(l.cells[:c])...)
		default:
			out = append(out, '\n')
			out = append(out, l.String()...)
		}
	}
	return string(out)
}

// LineString returns the content of row as UTF-8, warming it if needed.
func (b *Buffer) LineString(row int) string {
	l := b.Line(row)
	if l == nil {
		return ""
	}
	l.Warm(b.mapData())
	return l.String()
}

// cellString renders a cell slice as UTF-8.
func cellString(cells []Cell) string {
	var buf []byte
	for i := range cells {
		buf = utf8.AppendRune(buf, cells[i].Code)
	}
	return string(buf)
}

// Close releases the file map, if any.
func (b *Buffer) Close() error {
	if b.mm == nil {
		return nil
	}
	b.warmAll()
	err := b.mm.Close()
	b.mm = nil
	return err
}
