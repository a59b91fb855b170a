package ember

import (
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"
)

// SearchFlags modify how a pattern matches.
type SearchFlags uint8

const (
	// SearchCaseSensitive disables case folding.
	SearchCaseSensitive SearchFlags = 1 << iota
	// SearchWholeWord requires non-word characters (or line edges) on both
	// sides of a match.
	SearchWholeWord
	// SearchRegex compiles the pattern as a regular expression.
	SearchRegex
)

// maxSearchMatches bounds a single search pass.
const maxSearchMatches = 100000

// Match is one search hit; columns are cell indices on the row.
type Match struct {
	Row      int
	StartCol int
	EndCol   int
}

// SearchResults is the match set shared between the worker and the main
// thread. The worker appends under the mutex while scanning; the main
// thread reads under the same mutex to render in-progress highlights. The
// pattern records what the matches were computed for, so a stale set can be
// discarded when the user keeps typing.
type SearchResults struct {
	mu       sync.Mutex
	pattern  string
	matches  []Match
	complete bool
}

// NewSearchResults creates an empty shared match set.
func NewSearchResults() *SearchResults {
	return &SearchResults{}
}

// Reset clears the set and stamps the pattern a new scan is running for.
func (s *SearchResults) Reset(pattern string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pattern = pattern
	s.matches = s.matches[:0]
	s.complete = false
}

func (s *SearchResults) add(m Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches = append(s.matches, m)
}

func (s *SearchResults) setComplete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.complete = true
}

// View returns a copy of the current matches along with the pattern they
// belong to and whether the scan finished.
func (s *SearchResults) View() (matches []Match, pattern string, complete bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Match(nil), s.matches...), s.pattern, s.complete
}

// Len returns the current match count.
func (s *SearchResults) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.matches)
}

// matcher finds every match on one line, returning rune-index ranges.
type matcher func(line string) [][2]int

// compileMatcher builds a line matcher for the pattern and flags. The empty
// pattern matches nothing.
func compileMatcher(pattern string, flags SearchFlags) (matcher, error) {
	if pattern == "" {
		return func(string) [][2]int { return nil }, nil
	}
	if flags&SearchRegex != 0 {
		expr := pattern
		if flags&SearchCaseSensitive == 0 {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, err
		}
		return func(line string) [][2]int {
			var out [][2]int
			for _, loc := range re.FindAllStringIndex(line, -1) {
				if loc[1] == loc[0] {
					continue
				}
				start := utf8.RuneCountInString(line[:loc[0]])
				end := start + utf8.RuneCountInString(line[loc[0]:loc[1]])
				if flags&SearchWholeWord != 0 && !wholeWordAt(line, loc[0], loc[1]) {
					continue
				}
				out = append(out, [2]int{start, end})
			}
			return out
		}, nil
	}

	needle := pattern
	fold := flags&SearchCaseSensitive == 0
	if fold {
		needle = strings.ToLower(needle)
	}
	nRunes := utf8.RuneCountInString(needle)
	return func(line string) [][2]int {
		hay := line
		if fold {
			hay = strings.ToLower(hay)
		}
		var out [][2]int
		off := 0
		for {
			i := strings.Index(hay[off:], needle)
			if i < 0 {
				return out
			}
			byteStart := off + i
			byteEnd := byteStart + len(needle)
			if flags&SearchWholeWord == 0 || wholeWordAt(hay, byteStart, byteEnd) {
				start := utf8.RuneCountInString(hay[:byteStart])
				out = append(out, [2]int{start, start + nRunes})
			}
			off = byteStart + len(needle)
		}
	}, nil
}

// wholeWordAt reports whether the byte span [start, end) has no word
// character directly on either side.
func wholeWordAt(line string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(line[:start])
		if wordClass(classify(r)) {
			return false
		}
	}
	if end < len(line) {
		r, _ := utf8.DecodeRuneInString(line[end:])
		if wordClass(classify(r)) {
			return false
		}
	}
	return true
}

// runSearch scans [StartRow, EndRow) for the task's pattern, streaming
// matches into the shared set. A zero end row means the whole buffer.
func (w *Worker) runSearch(t *Task) Result {
	res := Result{ID: t.ID, Kind: TaskSearch}
	find, err := compileMatcher(t.Pattern, t.Flags)
	if err != nil {
		res.Err = err
		return res
	}
	w.matches.Reset(t.Pattern)
	end := t.EndRow
	if end == 0 || end > w.buf.LineCount() {
		end = w.buf.LineCount()
	}
	data := w.buf.mapData()
	for row := t.StartRow; row < end; row++ {
		if t.Cancelled() {
			res.Matches = w.matches.Len()
			res.Err = ErrCancelled
			return res
		}
		l := w.buf.Line(row)
		if l == nil {
			continue
		}
		l.Warm(data)
		for _, span := range find(l.String()) {
			if res.Matches >= maxSearchMatches {
				res.Complete = true
				return res
			}
			w.matches.add(Match{Row: row, StartCol: span[0], EndCol: span[1]})
			res.Matches++
		}
	}
	res.Complete = true
	w.matches.setComplete()
	return res
}

// Replacement is one planned substitution produced by the replace-all scan
// phase. Old is the text the span held when the plan was made; the apply
// phase on the main thread rechecks it before touching the buffer.
type Replacement struct {
	Row      int
	StartCol int
	EndCol   int
	Old      string
	Text     string
}

// runReplaceAll runs the search phase of replace-all: it produces the
// replacement plan but mutates nothing. Applying runs on the main thread to
// stay serial with rendering and the undo log.
func (w *Worker) runReplaceAll(t *Task) Result {
	res := Result{ID: t.ID, Kind: TaskReplaceAll}
	find, err := compileMatcher(t.Pattern, t.Flags)
	if err != nil {
		res.Err = err
		return res
	}
	var re *regexp.Regexp
	if t.Flags&SearchRegex != 0 {
		expr := t.Pattern
		if t.Flags&SearchCaseSensitive == 0 {
			expr = "(?i)" + expr
		}
		re = regexp.MustCompile(expr)
	}
	end := t.EndRow
	if end == 0 || end > w.buf.LineCount() {
		end = w.buf.LineCount()
	}
	data := w.buf.mapData()
	for row := t.StartRow; row < end; row++ {
		if t.Cancelled() {
			res.Err = ErrCancelled
			return res
		}
		l := w.buf.Line(row)
		if l == nil {
			continue
		}
		l.Warm(data)
		line := l.String()
		runes := []rune(line)
		for _, span := range find(line) {
			if t.Cancelled() {
				res.Err = ErrCancelled
				return res
			}
			old := string(runes[span[0]:span[1]])
			text := t.Replacement
			if re != nil {
				// Expand capture-group references ($1, ${name}) against
				// this specific match.
				text = re.ReplaceAllString(old, t.Replacement)
			}
			res.Replacements = append(res.Replacements, Replacement{
				Row:      row,
				StartCol: span[0],
				EndCol:   span[1],
				Old:      old,
				Text:     text,
			})
		}
	}
	res.Complete = true
	return res
}

// ApplyReplacements executes a replacement plan on the main thread. Each
// span is re-verified against the buffer before it is touched; spans that
// no longer hold their expected text are skipped. Returns how many were
// applied. Later columns on a row are applied first so earlier spans stay
// valid.
func (b *Buffer) ApplyReplacements(reps []Replacement) int {
	applied := 0
	for i := len(reps) - 1; i >= 0; i-- {
		rep := reps[i]
		l := b.Line(rep.Row)
		if l == nil {
			continue
		}
		l.Warm(b.mapData())
		if rep.StartCol < 0 || rep.EndCol > l.Len() || rep.StartCol >= rep.EndCol {
			continue
		}
		if cellString(l.cells[rep.StartCol:rep.EndCol]) != rep.Old {
			continue
		}
		b.history.recordDelete(rep.Row, rep.StartCol, rep.Old)
		l.DeleteRange(rep.StartCol, rep.EndCol)
		col := rep.StartCol
		for _, r := range rep.Text {
			l.InsertCell(col, NewCell(r))
			col++
		}
		if rep.Text != "" {
			b.history.recordInsert(rep.Row, rep.StartCol, rep.Text)
		}
		applied++
	}
	if applied > 0 {
		b.modified = true
		b.recomputeStructural()
	}
	return applied
}
