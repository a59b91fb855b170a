package ember

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// fileMap is a read-only private mapping of a file on disk. Cold lines hold
// byte ranges into data; releasing the map is only legal once every cold
// line has been warmed.
type fileMap struct {
	f    *os.File
	data []byte
}

// openFileMap opens path and maps it read-only with random-access advice.
// An empty file yields a map with nil data (mmap of zero bytes is invalid).
func openFileMap(path string) (*fileMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	var st unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &st); err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if st.Size == 0 {
		return &fileMap{f: f}, nil
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(st.Size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	// Line warming touches scattered offsets, not a linear sweep.
	_ = unix.Madvise(data, unix.MADV_RANDOM)
	return &fileMap{f: f, data: data}, nil
}

// Close unmaps the region and closes the descriptor.
func (m *fileMap) Close() error {
	var first error
	if m.data != nil {
		if err := unix.Munmap(m.data); err != nil {
			first = err
		}
		m.data = nil
	}
	if m.f != nil {
		if err := m.f.Close(); err != nil && first == nil {
			first = err
		}
		m.f = nil
	}
	return first
}

// indexLines scans data for newline bytes and returns one cold line per
// text line. A carriage return before the newline is stripped from the
// line's length; a final line without a trailing newline is kept.
func indexLines(data []byte) []*Line {
	lines := make([]*Line, 0, initialLineCap)
	start := 0
	for i := 0; i < len(data); i++ {
		if data[i] != '\n' {
			continue
		}
		end := i
		if end > start && data[end-1] == '\r' {
			end--
		}
		lines = append(lines, newColdLine(int64(start), end-start))
		start = i + 1
	}
	if start < len(data) {
		lines = append(lines, newColdLine(int64(start), len(data)-start))
	}
	return lines
}
