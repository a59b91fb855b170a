package ember

// Soft wrap. A line's wrap cache records the cell column at which each
// visual segment begins, valid for exactly one text-area width and wrap
// mode. Edits invalidate the cache by zeroing its width.

// WrapSegments returns the segment start columns for l at the given width
// and mode, recomputing only when the cache is invalid. Segment zero always
// starts at column zero. Under WrapNone the result is the single segment
// [0].
func (l *Line) WrapSegments(width int, mode WrapMode, tabWidth int) []int {
	if width <= 0 || mode == WrapNone {
		return []int{0}
	}
	if l.wrap.width == width && l.wrap.mode == mode {
		return l.wrap.starts
	}
	l.wrap.starts = computeWrap(l.cells, width, mode, tabWidth)
	l.wrap.width = width
	l.wrap.mode = mode
	return l.wrap.starts
}

// WrapValid reports whether the cached segmentation matches width and mode.
func (l *Line) WrapValid(width int, mode WrapMode) bool {
	return l.wrap.width != 0 && l.wrap.width == width && l.wrap.mode == mode
}

// computeWrap partitions cells into segments of visual width at most width.
// Word wrap breaks at the last whitespace cell at or before the right edge,
// falling back to a hard character break when a segment has none.
func computeWrap(cells []Cell, width int, mode WrapMode, tabWidth int) []int {
	starts := []int{0}
	if len(cells) == 0 {
		return starts
	}
	segStart := 0
	x := 0
	lastSpace := -1
	for i := 0; i < len(cells); i++ {
		w := cellAdvance(cells[i].Code, x, tabWidth)
		if x+w > width && i > segStart {
			brk := i
			if mode == WrapWord && lastSpace > segStart {
				// Break after the last whitespace so the space stays on
				// the earlier segment.
				brk = lastSpace + 1
			}
			starts = append(starts, brk)
			segStart = brk
			lastSpace = -1
			// Re-measure from the segment start.
			x = 0
			for j := brk; j < i; j++ {
				x += cellAdvance(cells[j].Code, x, tabWidth)
			}
			w = cellAdvance(cells[i].Code, x, tabWidth)
		}
		if cells[i].Code == ' ' || cells[i].Code == '\t' {
			lastSpace = i
		}
		x += w
	}
	return starts
}

// SegmentFor returns the index of the wrap segment containing cell column
// col, given the segment starts.
func SegmentFor(starts []int, col int) int {
	seg := 0
	for i := 1; i < len(starts); i++ {
		if starts[i] <= col {
			seg = i
		}
	}
	return seg
}
