package ember

import (
	"os"
	"path/filepath"
)

// Snapshot is a point-in-time copy of a buffer's contents: one UTF-8 string
// per line plus the swap path it is destined for. The main thread builds it
// and hands it to the autosave task; from then on the worker owns it.
type Snapshot struct {
	Lines    []string
	SwapPath string
}

// SwapPath returns the sibling swap path for a file: ".<name>.swp" in the
// same directory.
func SwapPath(path string) string {
	dir, name := filepath.Split(path)
	return filepath.Join(dir, "."+name+".swp")
}

// TakeSnapshot copies the buffer's contents, warming any cold lines first.
// Must run on the main thread.
func (b *Buffer) TakeSnapshot(swapPath string) *Snapshot {
	b.warmAll()
	s := &Snapshot{
		Lines:    make([]string, 0, len(b.lines)),
		SwapPath: swapPath,
	}
	for _, l := range b.lines {
		s.Lines = append(s.Lines, l.String())
	}
	return s
}

// Write stores the snapshot at its swap path, atomically: the content lands
// in a temp file in the same directory which is then renamed into place.
// Returns the bytes written.
func (s *Snapshot) Write() (int64, error) {
	dir := filepath.Dir(s.SwapPath)
	tmp, err := os.CreateTemp(dir, ".ember-swap-*")
	if err != nil {
		return 0, err
	}
	var written int64
	for _, line := range s.Lines {
		n, err := tmp.WriteString(line)
		written += int64(n)
		if err == nil {
			var m int
			m, err = tmp.Write([]byte{'\n'})
			written += int64(m)
		}
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return written, err
		}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return written, err
	}
	if err := os.Rename(tmp.Name(), s.SwapPath); err != nil {
		os.Remove(tmp.Name())
		return written, err
	}
	return written, nil
}

// RemoveSwap deletes the swap file for path, if present. Called on clean
// save and clean exit.
func RemoveSwap(path string) {
	if path == "" {
		return
	}
	_ = os.Remove(SwapPath(path))
}
