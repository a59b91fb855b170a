package ember

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadIndexesLines(t *testing.T) {
	path := writeTemp(t, "a.txt", "one\ntwo\nthree\n")
	b, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if b.LineCount() != 3 {
		t.Fatalf("expected 3 lines, got %d", b.LineCount())
	}
	for i, want := range []string{"one", "two", "three"} {
		if got := b.LineString(i); got != want {
			t.Errorf("line %d: expected %q, got %q", i, want, got)
		}
	}
}

func TestLoadCRLF(t *testing.T) {
	path := writeTemp(t, "a.txt", "one\r\ntwo\r\n")
	b, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if got := b.LineString(0); got != "one" {
		t.Errorf("expected carriage return stripped, got %q", got)
	}
	if got := b.LineString(1); got != "two" {
		t.Errorf("expected carriage return stripped, got %q", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.txt")
	b, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if b.LineCount() != 0 {
		t.Errorf("expected empty buffer, got %d lines", b.LineCount())
	}
	if b.Filename() != path {
		t.Errorf("expected filename preset, got %q", b.Filename())
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeTemp(t, "empty.txt", "")
	b, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if b.LineCount() != 0 {
		t.Errorf("expected zero lines, got %d", b.LineCount())
	}
	b.InsertCell(0, 0, 'a')
	if b.LineCount() != 1 || b.LineString(0) != "a" {
		t.Error("insert at row 0 of an empty buffer must create line zero")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	content := "int main(void) {\n\treturn 0;\n}\n"
	path := writeTemp(t, "a.c", content)
	b, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(t.TempDir(), "out.c")
	if _, err := b.SaveAs(out); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != content {
		t.Errorf("round trip mismatch: %q", got)
	}

	b2, err := Load(out)
	if err != nil {
		t.Fatal(err)
	}
	defer b2.Close()
	if b2.LineCount() != b.LineCount() {
		t.Fatal("line count changed across round trip")
	}
	for i := 0; i < b.LineCount(); i++ {
		if b.LineString(i) != b2.LineString(i) {
			t.Errorf("line %d differs after round trip", i)
		}
	}
}

func TestSaveClearsModified(t *testing.T) {
	b := LoadBytes([]byte("hello\n"), "a.txt")
	b.InsertCell(0, 5, '!')
	if !b.Modified() {
		t.Fatal("expected modified after edit")
	}
	out := filepath.Join(t.TempDir(), "a.txt")
	if _, err := b.SaveAs(out); err != nil {
		t.Fatal(err)
	}
	if b.Modified() {
		t.Error("expected modification flag cleared after save")
	}
}

func TestSaveWithoutFilename(t *testing.T) {
	b := NewBuffer()
	if _, err := b.Save(); err == nil {
		t.Error("expected error saving a buffer with no filename")
	}
}

func TestLoadBytesCreatesHotLines(t *testing.T) {
	b := LoadBytes([]byte("one\ntwo"), "a.txt")
	if b.LineCount() != 2 {
		t.Fatalf("expected 2 lines, got %d", b.LineCount())
	}
	for i := 0; i < 2; i++ {
		if b.Line(i).Temp() != TempHot {
			t.Errorf("line %d: expected hot, got %d", i, b.Line(i).Temp())
		}
	}
}

func TestInsertDeleteRoundTrip(t *testing.T) {
	b := LoadBytes([]byte("hello\n"), "a.txt")
	before := b.LineString(0)

	b.InsertCell(0, 2, 'x')
	if got := b.LineString(0); got != "hexllo" {
		t.Fatalf("expected %q, got %q", "hexllo", got)
	}
	b.DeleteGrapheme(0, 2)
	if got := b.LineString(0); got != before {
		t.Errorf("expected %q restored, got %q", before, got)
	}
}

func TestInsertClampsColumn(t *testing.T) {
	b := LoadBytes([]byte("ab\n"), "a.txt")
	b.InsertCell(0, 99, 'c')
	if got := b.LineString(0); got != "abc" {
		t.Errorf("expected clamp to append, got %q", got)
	}
}

func TestNewlineSplitAndJoin(t *testing.T) {
	b := LoadBytes([]byte("hello\n"), "a.txt")

	b.InsertNewline(0, 2)
	if b.LineCount() != 2 {
		t.Fatalf("expected 2 lines after split, got %d", b.LineCount())
	}
	if b.LineString(0) != "he" || b.LineString(1) != "llo" {
		t.Fatalf("bad split: %q / %q", b.LineString(0), b.LineString(1))
	}

	// Deleting at the end of line zero joins the lines again.
	b.DeleteGrapheme(0, 2)
	if b.LineCount() != 1 || b.LineString(0) != "hello" {
		t.Errorf("expected join to restore the line, got %q", b.LineString(0))
	}
}

func TestDeleteAtEndOfLastLine(t *testing.T) {
	b := LoadBytes([]byte("ab\n"), "a.txt")
	b.DeleteGrapheme(0, 2)
	if b.LineCount() != 1 || b.LineString(0) != "ab" {
		t.Error("delete at the end of the last line must be a no-op")
	}
}

func TestSwapLines(t *testing.T) {
	b := LoadBytes([]byte("one\ntwo\nthree\n"), "a.txt")
	b.SwapLines(0, 2)
	if b.LineString(0) != "three" || b.LineString(2) != "one" {
		t.Error("expected lines swapped")
	}
	if !b.Modified() {
		t.Error("swap must mark the buffer modified")
	}
}

func TestInsertText(t *testing.T) {
	b := LoadBytes([]byte("ad\n"), "a.txt")
	row, col := b.InsertText(0, 1, "b\nc")
	if b.LineCount() != 2 {
		t.Fatalf("expected 2 lines, got %d", b.LineCount())
	}
	if b.LineString(0) != "ab" || b.LineString(1) != "cd" {
		t.Errorf("bad multi-line insert: %q / %q", b.LineString(0), b.LineString(1))
	}
	if row != 1 || col != 1 {
		t.Errorf("expected cursor at (1,1), got (%d,%d)", row, col)
	}
}

func TestDeleteSpanAcrossLines(t *testing.T) {
	b := LoadBytes([]byte("hello\nworld\nagain\n"), "a.txt")
	b.DeleteSpan(0, 2, 2, 2)
	if b.LineCount() != 1 {
		t.Fatalf("expected 1 line, got %d", b.LineCount())
	}
	if got := b.LineString(0); got != "heain" {
		t.Errorf("expected %q, got %q", "heain", got)
	}
}

func TestSpanString(t *testing.T) {
	b := LoadBytes([]byte("hello\nworld\n"), "a.txt")
	if got := b.SpanString(0, 1, 1, 3); got != "ello\nwor" {
		t.Errorf("expected %q, got %q", "ello\nwor", got)
	}
	if got := b.SpanString(0, 1, 0, 3); got != "el" {
		t.Errorf("expected %q, got %q", "el", got)
	}
}
