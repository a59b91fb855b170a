package ember

import (
	"strings"
	"testing"
)

func TestWordWrapBreaksOnWhitespace(t *testing.T) {
	// 199 characters of repeated words in an 80-column text area.
	text := strings.TrimSuffix(strings.Repeat("sensible words here ", 10), " ")
	l := lineOf(text)

	starts := l.WrapSegments(80, WrapWord, 4)
	if len(starts) < 2 {
		t.Fatal("expected the line to wrap")
	}
	if starts[0] != 0 {
		t.Error("segment zero must start at column zero")
	}
	for i := 1; i < len(starts); i++ {
		width := starts[i] - starts[i-1]
		if width > 80 {
			t.Errorf("segment %d is %d columns wide", i-1, width)
		}
		// Word wrap breaks directly after a whitespace cell.
		if l.cells[starts[i]-1].Code != ' ' {
			t.Errorf("segment %d does not break on whitespace", i)
		}
	}
	if tail := l.Len() - starts[len(starts)-1]; tail > 80 {
		t.Errorf("final segment is %d columns wide", tail)
	}
}

func TestWrapCacheReuse(t *testing.T) {
	l := lineOf(strings.Repeat("x ", 100))

	first := l.WrapSegments(80, WrapWord, 4)
	second := l.WrapSegments(80, WrapWord, 4)
	if &first[0] != &second[0] {
		t.Error("expected the cached segments returned without recompute")
	}
	if !l.WrapValid(80, WrapWord) {
		t.Error("expected a valid cache")
	}

	// A different width must recompute.
	if l.WrapValid(60, WrapWord) {
		t.Error("cache must not claim validity for another width")
	}
	third := l.WrapSegments(60, WrapWord, 4)
	if !l.WrapValid(60, WrapWord) || len(third) == len(first) {
		t.Error("expected recompute at the new width")
	}
}

func TestWrapModeInvalidatesCache(t *testing.T) {
	l := lineOf(strings.Repeat("y", 100))
	l.WrapSegments(40, WrapChar, 4)
	if l.WrapValid(40, WrapWord) {
		t.Error("cache must not claim validity for another mode")
	}
}

func TestCharWrapHardBreaks(t *testing.T) {
	l := lineOf(strings.Repeat("a", 100))
	starts := l.WrapSegments(40, WrapChar, 4)
	want := []int{0, 40, 80}
	if len(starts) != len(want) {
		t.Fatalf("expected %v, got %v", want, starts)
	}
	for i := range want {
		if starts[i] != want[i] {
			t.Errorf("segment %d: expected %d, got %d", i, want[i], starts[i])
		}
	}
}

func TestWordWrapWithoutWhitespaceFallsBack(t *testing.T) {
	l := lineOf(strings.Repeat("z", 90))
	starts := l.WrapSegments(40, WrapWord, 4)
	if len(starts) != 3 || starts[1] != 40 || starts[2] != 80 {
		t.Errorf("expected hard breaks without whitespace, got %v", starts)
	}
}

func TestWrapNoneSingleSegment(t *testing.T) {
	l := lineOf(strings.Repeat("w", 300))
	starts := l.WrapSegments(80, WrapNone, 4)
	if len(starts) != 1 || starts[0] != 0 {
		t.Errorf("expected one segment, got %v", starts)
	}
}

func TestWideRunesCountDouble(t *testing.T) {
	l := lineOf(strings.Repeat("中", 30))
	starts := l.WrapSegments(20, WrapChar, 4)
	// Each rune is two columns wide, so ten runes fit per segment.
	if len(starts) != 3 || starts[1] != 10 || starts[2] != 20 {
		t.Errorf("expected breaks every 10 cells, got %v", starts)
	}
}

func TestSegmentFor(t *testing.T) {
	starts := []int{0, 40, 80}
	tests := []struct{ col, want int }{
		{0, 0}, {39, 0}, {40, 1}, {79, 1}, {80, 2}, {200, 2},
	}
	for _, tt := range tests {
		if got := SegmentFor(starts, tt.col); got != tt.want {
			t.Errorf("col %d: expected segment %d, got %d", tt.col, tt.want, got)
		}
	}
}
