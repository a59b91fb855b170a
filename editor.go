package ember

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Mode is the editor's observable top-level state.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeGotoLine
	ModeSaveAs
	ModeQuitConfirm
	ModeReloadConfirm
	ModeLeader
)

// LeaderMenu is the active submenu while in leader mode.
type LeaderMenu int

const (
	LeaderTop LeaderMenu = iota
	LeaderFile
	LeaderView
	LeaderSearch
)

// Action is what a key event resolves to before it takes effect. Unused
// transitions resolve to ActionNone.
type Action int

const (
	ActionNone Action = iota
	ActionInsertRune
	ActionNewline
	ActionBackspace
	ActionDelete
	ActionMoveLeft
	ActionMoveRight
	ActionMoveUp
	ActionMoveDown
	ActionWordLeft
	ActionWordRight
	ActionHome
	ActionEnd
	ActionPageUp
	ActionPageDown
	ActionSave
	ActionQuit
	ActionSearch
	ActionGotoLine
	ActionUndo
	ActionRedo
	ActionCopy
	ActionCut
	ActionPaste
	ActionLeader
	ActionCursorBelow
	ActionCursorAbove
	ActionCollapse
)

// statusDuration is how long a status message stays visible.
const statusDuration = 5 * time.Second

// autosaveInterval paces background swap-file snapshots.
const autosaveInterval = 30 * time.Second

// Editor wires the buffer substrate to input and rendering: cursors,
// scroll state, modal prompts, the background worker, and the status line.
type Editor struct {
	buf     *Buffer
	cursors *CursorSet
	cfg     *Config
	theme   *Theme
	worker  *Worker
	matches *SearchResults
	clip    *Clipboard

	screenRows int
	screenCols int
	rowOff     int
	colOff     int
	wrapMode   WrapMode
	hybridMD   bool

	mode           Mode
	prompt         []rune
	searchBackward bool
	searchReplace  bool
	replacePrompt  bool
	replaceText    []rune
	savedRow       int
	savedCol       int
	leaderMenu     LeaderMenu

	statusMsg  string
	statusTime time.Time

	scroll scrollState

	watcher       *fsnotify.Watcher
	reloadPending atomic.Bool

	lastAutosave time.Time
	quit         bool
}

// NewEditor builds an editor around a loaded buffer.
func NewEditor(buf *Buffer, cfg *Config, theme *Theme) *Editor {
	matches := NewSearchResults()
	e := &Editor{
		buf:      buf,
		cursors:  NewCursorSet(),
		cfg:      cfg,
		theme:    theme,
		matches:  matches,
		clip:     NewClipboard(),
		worker:   NewWorker(buf, matches),
		wrapMode: WrapWord,
		hybridMD: true,
	}
	e.lastAutosave = time.Now()
	e.startWatch()
	return e
}

// Close shuts down the worker and the file watcher and removes the swap
// file on a clean exit.
func (e *Editor) Close() {
	if e.watcher != nil {
		e.watcher.Close()
	}
	e.worker.Shutdown()
	if !e.buf.Modified() {
		RemoveSwap(e.buf.Filename())
	}
	e.buf.Close()
}

// Buffer returns the edited buffer.
func (e *Editor) Buffer() *Buffer {
	return e.buf
}

// Mode returns the current modal state.
func (e *Editor) Mode() Mode {
	return e.mode
}

// ShouldQuit reports whether the main loop should exit.
func (e *Editor) ShouldQuit() bool {
	return e.quit
}

// SetSize records the terminal dimensions; two rows are reserved for the
// status and message bars.
func (e *Editor) SetSize(rows, cols int) {
	e.screenRows = rows - 2
	if e.screenRows < 1 {
		e.screenRows = 1
	}
	e.screenCols = cols
}

// SetStatus formats a transient status message.
func (e *Editor) SetStatus(format string, args ...interface{}) {
	e.statusMsg = fmt.Sprintf(format, args...)
	e.statusTime = time.Now()
}

// startWatch arms an fsnotify watcher on the buffer's file so external
// modifications raise the reload prompt.
func (e *Editor) startWatch() {
	name := e.buf.Filename()
	if name == "" {
		return
	}
	if _, err := os.Stat(name); err != nil {
		return
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("file watcher unavailable", zap.Error(err))
		return
	}
	if err := w.Add(name); err != nil {
		w.Close()
		return
	}
	e.watcher = w
	go func() {
		for ev := range w.Events {
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				e.reloadPending.Store(true)
			}
		}
	}()
}

// Tick runs the per-iteration housekeeping: drains worker results, arms the
// reload prompt, and paces autosave. Called once per main-loop pass.
func (e *Editor) Tick() {
	e.drainResults()
	if e.reloadPending.Swap(false) && e.mode == ModeNormal {
		e.mode = ModeReloadConfirm
		e.SetStatus("file changed on disk, reload? (y/n)")
	}
	if e.buf.Modified() && e.buf.Filename() != "" &&
		time.Since(e.lastAutosave) >= autosaveInterval {
		e.lastAutosave = time.Now()
		snap := e.buf.TakeSnapshot(SwapPath(e.buf.Filename()))
		if err := e.worker.Submit(&Task{Kind: TaskAutosave, Snapshot: snap}); err != nil {
			logger.Debug("autosave submit failed", zap.Error(err))
		}
	}
}

// drainResults pops at most one result per call per spec; results are
// idempotent hints, so each is cross-checked before it changes anything.
func (e *Editor) drainResults() {
	res, ok := e.worker.PopResult()
	if !ok {
		return
	}
	switch res.Kind {
	case TaskSearch:
		if res.Err == ErrCancelled {
			return
		}
		if res.Err != nil {
			e.SetStatus("search: %v", res.Err)
			return
		}
		e.SetStatus("%d matches", res.Matches)
	case TaskReplaceAll:
		if res.Err != nil {
			if res.Err != ErrCancelled {
				e.SetStatus("replace: %v", res.Err)
			}
			return
		}
		n := e.buf.ApplyReplacements(res.Replacements)
		e.cursors.Primary().clampTo(e.buf)
		e.SetStatus("replaced %d occurrences", n)
	case TaskAutosave:
		if res.Err != nil {
			e.SetStatus("autosave failed: %v", res.Err)
		}
	case TaskWarm:
		logger.Debug("warm done", zap.Int("warmed", res.Warmed), zap.Int("skipped", res.Skipped))
	}
}

// prewarmViewport queues eager warming for the lines around the viewport:
// one screen above the scroll offset through three screens below it.
func (e *Editor) prewarmViewport() {
	start := e.rowOff - e.screenRows
	if start < 0 {
		start = 0
	}
	end := e.rowOff + 3*e.screenRows
	if end > e.buf.LineCount() {
		end = e.buf.LineCount()
	}
	if start >= end {
		return
	}
	_ = e.worker.Submit(&Task{Kind: TaskWarm, StartRow: start, EndRow: end})
}

// HandleEvent is the top-level dispatch: modal prompts first, then normal
// key handling, then mouse.
func (e *Editor) HandleEvent(ev Event) {
	switch ev.Kind {
	case EventKey:
		e.handleKey(ev.Key)
	case EventMouse:
		e.handleMouse(ev.Mouse)
	}
}

func (e *Editor) handleKey(k KeyEvent) {
	switch e.mode {
	case ModeNormal:
		e.applyAction(e.actionFor(k), k)
	case ModeSearch:
		e.handleSearchKey(k)
	case ModeGotoLine, ModeSaveAs:
		e.handlePromptKey(k)
	case ModeQuitConfirm:
		e.handleQuitConfirm(k)
	case ModeReloadConfirm:
		e.handleReloadConfirm(k)
	case ModeLeader:
		e.handleLeaderKey(k)
	}
}

// actionFor maps a key event to an action in normal mode.
func (e *Editor) actionFor(k KeyEvent) Action {
	switch k.Key {
	case KeyArrowLeft:
		if k.Mod&ModCtrl != 0 {
			return ActionWordLeft
		}
		return ActionMoveLeft
	case KeyArrowRight:
		if k.Mod&ModCtrl != 0 {
			return ActionWordRight
		}
		return ActionMoveRight
	case KeyArrowUp:
		if k.Mod&ModAlt != 0 {
			return ActionCursorAbove
		}
		return ActionMoveUp
	case KeyArrowDown:
		if k.Mod&ModAlt != 0 {
			return ActionCursorBelow
		}
		return ActionMoveDown
	case KeyHome:
		return ActionHome
	case KeyEnd:
		return ActionEnd
	case KeyPageUp:
		return ActionPageUp
	case KeyPageDown:
		return ActionPageDown
	case KeyDelete:
		return ActionDelete
	case KeyBackspace:
		return ActionBackspace
	case KeyEnter:
		return ActionNewline
	case KeyTab:
		return ActionInsertRune
	case KeyEscape:
		return ActionCollapse
	case KeyRune:
		if k.Mod&ModCtrl != 0 {
			switch k.Rune {
			case 'q':
				return ActionQuit
			case 's':
				return ActionSave
			case 'f':
				return ActionSearch
			case 'g':
				return ActionGotoLine
			case 'z':
				return ActionUndo
			case 'y':
				return ActionRedo
			case 'c':
				return ActionCopy
			case 'x':
				return ActionCut
			case 'v':
				return ActionPaste
			case 'k':
				return ActionLeader
			}
			return ActionNone
		}
		return ActionInsertRune
	}
	return ActionNone
}

// applyAction turns an action into a concrete effect.
func (e *Editor) applyAction(a Action, k KeyEvent) {
	shift := k.Mod&ModShift != 0
	switch a {
	case ActionMoveLeft, ActionMoveRight, ActionMoveUp, ActionMoveDown,
		ActionWordLeft, ActionWordRight, ActionHome, ActionEnd,
		ActionPageUp, ActionPageDown:
		e.moveCursors(a, shift)
	case ActionInsertRune:
		r := k.Rune
		if k.Key == KeyTab {
			r = '\t'
		}
		e.insertRune(r)
	case ActionNewline:
		e.insertNewline()
	case ActionBackspace:
		e.backspace()
	case ActionDelete:
		e.deleteForward()
	case ActionSave:
		e.save()
	case ActionQuit:
		if e.buf.Modified() {
			e.mode = ModeQuitConfirm
			e.SetStatus("unsaved changes, quit anyway? (y/n)")
			return
		}
		e.quit = true
	case ActionSearch:
		e.beginSearch(false)
	case ActionGotoLine:
		e.mode = ModeGotoLine
		e.prompt = e.prompt[:0]
		e.SetStatus("goto line:")
	case ActionUndo:
		if row, col, ok := e.buf.Undo(); ok {
			e.cursors.Collapse()
			p := e.cursors.Primary()
			p.Row, p.Col = row, col
			p.clampTo(e.buf)
			e.SetStatus("undo")
		}
	case ActionRedo:
		if row, col, ok := e.buf.Redo(); ok {
			e.cursors.Collapse()
			p := e.cursors.Primary()
			p.Row, p.Col = row, col
			p.clampTo(e.buf)
			e.SetStatus("redo")
		}
	case ActionCopy:
		e.copySelection(false)
	case ActionCut:
		e.copySelection(true)
	case ActionPaste:
		e.paste()
	case ActionLeader:
		e.mode = ModeLeader
		e.leaderMenu = LeaderTop
		e.SetStatus("leader: [f]ile [v]iew [s]earch [q]uit")
	case ActionCursorBelow:
		p := e.cursors.Primary()
		if p.Row+1 < e.buf.LineCount() {
			e.cursors.Add(p.Row+1, p.Col)
		}
	case ActionCursorAbove:
		p := e.cursors.Primary()
		if p.Row > 0 {
			e.cursors.Add(p.Row-1, p.Col)
		}
	case ActionCollapse:
		e.cursors.Collapse()
		e.cursors.Primary().ClearSelection()
	}
	e.scrollToCursor()
}

// moveCursors applies one motion to every cursor. Without shift any
// selection clears; with shift a selection starts at the pre-move position.
func (e *Editor) moveCursors(a Action, shift bool) {
	e.cursors.ForEachSorted(func(c *Cursor) {
		if shift && !c.HasSelection {
			c.StartSelection()
		}
		if !shift {
			c.ClearSelection()
		}
		switch a {
		case ActionMoveLeft:
			c.MoveLeft(e.buf)
		case ActionMoveRight:
			c.MoveRight(e.buf)
		case ActionMoveUp:
			c.MoveUp(e.buf)
		case ActionMoveDown:
			c.MoveDown(e.buf)
		case ActionWordLeft:
			c.MoveWordLeft(e.buf)
		case ActionWordRight:
			c.MoveWordRight(e.buf)
		case ActionHome:
			c.MoveHome()
		case ActionEnd:
			c.MoveEnd(e.buf)
		case ActionPageUp:
			c.MovePage(e.buf, e.screenRows, -1)
		case ActionPageDown:
			c.MovePage(e.buf, e.screenRows, +1)
		}
	})
}

// insertRune types one rune at every cursor, deleting selections first.
func (e *Editor) insertRune(r rune) {
	e.deleteSelections()
	e.cursors.ForEachSorted(func(c *Cursor) {
		row, col := c.Row, c.Col
		e.buf.InsertCell(row, col, r)
		// Shifts this cursor past the inserted cell along with any later
		// cursors on the row.
		e.cursors.shiftAfterInsert(row, col, 1)
	})
}

func (e *Editor) insertNewline() {
	e.deleteSelections()
	e.cursors.ForEachSorted(func(c *Cursor) {
		row, col := c.Row, c.Col
		e.buf.InsertNewline(row, col)
		e.cursors.shiftAfterNewline(row, col)
	})
}

func (e *Editor) backspace() {
	if e.anySelection() {
		e.deleteSelections()
		return
	}
	e.cursors.ForEachSorted(func(c *Cursor) {
		if c.Col == 0 && c.Row == 0 {
			return
		}
		if c.Col > 0 {
			l := e.buf.Line(c.Row)
			prev := l.PrevGrapheme(c.Col)
			e.buf.DeleteGrapheme(c.Row, prev)
			c.Col = prev
			return
		}
		prevLen := e.buf.Line(c.Row - 1).Len()
		e.buf.DeleteGrapheme(c.Row-1, prevLen)
		c.Row--
		c.Col = prevLen
	})
}

func (e *Editor) deleteForward() {
	if e.anySelection() {
		e.deleteSelections()
		return
	}
	e.cursors.ForEachSorted(func(c *Cursor) {
		e.buf.DeleteGrapheme(c.Row, c.Col)
	})
}

func (e *Editor) anySelection() bool {
	for _, c := range e.cursors.All() {
		if _, _, _, _, ok := c.Selection(); ok {
			return true
		}
	}
	return false
}

// deleteSelections removes every cursor's selected span, later spans first
// so earlier positions stay valid.
func (e *Editor) deleteSelections() {
	idx := e.cursors.Sorted()
	for i := len(idx) - 1; i >= 0; i-- {
		c := &e.cursors.All()[idx[i]]
		sr, sc, er, ec, ok := c.Selection()
		if !ok {
			continue
		}
		e.buf.DeleteSpan(sr, sc, er, ec)
		c.Row, c.Col = sr, sc
		c.ClearSelection()
	}
}

func (e *Editor) save() {
	if e.buf.Filename() == "" {
		e.mode = ModeSaveAs
		e.prompt = e.prompt[:0]
		e.SetStatus("save as:")
		return
	}
	n, err := e.buf.Save()
	if err != nil {
		e.SetStatus("save failed: %v", err)
		return
	}
	RemoveSwap(e.buf.Filename())
	e.SetStatus("%d bytes written", n)
}

func (e *Editor) copySelection(cut bool) {
	p := e.cursors.Primary()
	sr, sc, er, ec, ok := p.Selection()
	if !ok {
		return
	}
	text := e.buf.SpanString(sr, sc, er, ec)
	e.clip.Copy(text)
	if cut {
		e.buf.DeleteSpan(sr, sc, er, ec)
		p.Row, p.Col = sr, sc
		p.ClearSelection()
	}
	e.SetStatus("%d chars %s", len([]rune(text)), map[bool]string{true: "cut", false: "copied"}[cut])
}

func (e *Editor) paste() {
	text := e.clip.Paste()
	if text == "" {
		return
	}
	e.deleteSelections()
	p := e.cursors.Primary()
	p.Row, p.Col = e.buf.InsertText(p.Row, p.Col, text)
}

// beginSearch enters incremental search mode.
func (e *Editor) beginSearch(backward bool) {
	e.mode = ModeSearch
	e.searchBackward = backward
	e.searchReplace = false
	e.replacePrompt = false
	e.prompt = e.prompt[:0]
	e.replaceText = e.replaceText[:0]
	p := e.cursors.Primary()
	e.savedRow, e.savedCol = p.Row, p.Col
	e.matches.Reset("")
	e.SetStatus("search:")
}

// submitSearch cancels any running scan and launches one for the current
// prompt text.
func (e *Editor) submitSearch() {
	e.worker.CancelAllOf(TaskSearch)
	pattern := string(e.prompt)
	e.matches.Reset(pattern)
	if pattern == "" {
		return
	}
	err := e.worker.Submit(&Task{Kind: TaskSearch, Pattern: pattern})
	if err != nil {
		e.SetStatus("search: %v", err)
	}
}

func (e *Editor) handleSearchKey(k KeyEvent) {
	switch k.Key {
	case KeyEscape:
		e.worker.CancelAllOf(TaskSearch)
		e.matches.Reset("")
		p := e.cursors.Primary()
		p.Row, p.Col = e.savedRow, e.savedCol
		e.mode = ModeNormal
		e.SetStatus("")
	case KeyEnter:
		if e.searchReplace && !e.replacePrompt {
			e.replacePrompt = true
			e.SetStatus("replace with:")
			return
		}
		if e.searchReplace {
			err := e.worker.Submit(&Task{
				Kind:        TaskReplaceAll,
				Pattern:     string(e.prompt),
				Replacement: string(e.replaceText),
			})
			if err != nil {
				e.SetStatus("replace: %v", err)
			}
			e.mode = ModeNormal
			return
		}
		e.jumpToMatch(+1)
		e.mode = ModeNormal
	case KeyArrowDown, KeyArrowRight:
		e.jumpToMatch(+1)
	case KeyArrowUp, KeyArrowLeft:
		e.jumpToMatch(-1)
	case KeyBackspace:
		if e.replacePrompt {
			if n := len(e.replaceText); n > 0 {
				e.replaceText = e.replaceText[:n-1]
			}
			return
		}
		if n := len(e.prompt); n > 0 {
			e.prompt = e.prompt[:n-1]
		}
		e.submitSearch()
	case KeyRune:
		if k.Mod&ModCtrl != 0 {
			if k.Rune == 'r' {
				e.searchReplace = !e.searchReplace
				e.SetStatus("replace mode: %v", e.searchReplace)
			}
			return
		}
		if e.replacePrompt {
			e.replaceText = append(e.replaceText, k.Rune)
			return
		}
		e.prompt = append(e.prompt, k.Rune)
		e.submitSearch()
	}
	e.scrollToCursor()
}

// jumpToMatch moves the primary cursor to the next or previous match in
// document order relative to the cursor.
func (e *Editor) jumpToMatch(dir int) {
	matches, _, _ := e.matches.View()
	if len(matches) == 0 {
		return
	}
	if e.searchBackward {
		dir = -dir
	}
	p := e.cursors.Primary()
	if dir > 0 {
		for _, m := range matches {
			if m.Row > p.Row || (m.Row == p.Row && m.StartCol > p.Col) {
				p.Row, p.Col = m.Row, m.StartCol
				return
			}
		}
		p.Row, p.Col = matches[0].Row, matches[0].StartCol
		return
	}
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		if m.Row < p.Row || (m.Row == p.Row && m.StartCol < p.Col) {
			p.Row, p.Col = m.Row, m.StartCol
			return
		}
	}
	last := matches[len(matches)-1]
	p.Row, p.Col = last.Row, last.StartCol
}

func (e *Editor) handlePromptKey(k KeyEvent) {
	switch k.Key {
	case KeyEscape:
		e.mode = ModeNormal
		e.SetStatus("")
	case KeyBackspace:
		if n := len(e.prompt); n > 0 {
			e.prompt = e.prompt[:n-1]
		}
	case KeyRune:
		if k.Mod&ModCtrl == 0 {
			e.prompt = append(e.prompt, k.Rune)
		}
	case KeyEnter:
		text := string(e.prompt)
		switch e.mode {
		case ModeGotoLine:
			var n int
			if _, err := fmt.Sscanf(text, "%d", &n); err == nil && n >= 1 {
				p := e.cursors.Primary()
				p.Row = n - 1
				p.Col = 0
				p.clampTo(e.buf)
			}
		case ModeSaveAs:
			if text != "" {
				if n, err := e.buf.SaveAs(text); err != nil {
					e.SetStatus("save failed: %v", err)
				} else {
					e.SetStatus("%d bytes written", n)
				}
			}
		}
		e.mode = ModeNormal
		e.scrollToCursor()
	}
}

func (e *Editor) handleQuitConfirm(k KeyEvent) {
	if k.Key != KeyRune {
		return
	}
	switch k.Rune {
	case 'y', 'Y':
		e.quit = true
	case 'n', 'N':
		e.mode = ModeNormal
		e.SetStatus("")
	}
}

func (e *Editor) handleReloadConfirm(k KeyEvent) {
	if k.Key != KeyRune {
		return
	}
	switch k.Rune {
	case 'y', 'Y':
		e.reload()
		e.mode = ModeNormal
	case 'n', 'N':
		e.mode = ModeNormal
		e.SetStatus("")
	}
}

// reload replaces the buffer with a fresh load from disk. The worker is
// restarted so it never sees the discarded buffer.
func (e *Editor) reload() {
	name := e.buf.Filename()
	fresh, err := Load(name)
	if err != nil {
		e.SetStatus("reload failed: %v", err)
		return
	}
	e.worker.Shutdown()
	e.buf.Close()
	e.buf = fresh
	e.worker = NewWorker(fresh, e.matches)
	e.cursors.Collapse()
	e.cursors.Primary().clampTo(e.buf)
	e.SetStatus("reloaded %s", name)
}

// handleLeaderKey drives the leader command mode: a key selects a terminal
// action, enters a submenu, or reports unknown and stays.
func (e *Editor) handleLeaderKey(k KeyEvent) {
	if k.Key == KeyEscape {
		e.mode = ModeNormal
		e.SetStatus("")
		return
	}
	if k.Key != KeyRune {
		return
	}
	switch e.leaderMenu {
	case LeaderTop:
		switch k.Rune {
		case 'f':
			e.leaderMenu = LeaderFile
			e.SetStatus("file: [s]ave save-[a]s [r]eload")
		case 'v':
			e.leaderMenu = LeaderView
			e.SetStatus("view: [w]rap [h]ybrid [b]ar")
		case 's':
			e.leaderMenu = LeaderSearch
			e.SetStatus("search: [s]earch [r]eplace [g]oto")
		case 'q':
			e.mode = ModeNormal
			e.applyAction(ActionQuit, KeyEvent{})
		default:
			e.SetStatus("unknown key %q", k.Rune)
		}
	case LeaderFile:
		switch k.Rune {
		case 's':
			e.mode = ModeNormal
			e.save()
		case 'a':
			e.mode = ModeSaveAs
			e.prompt = e.prompt[:0]
			e.SetStatus("save as:")
		case 'r':
			e.mode = ModeReloadConfirm
			e.SetStatus("reload from disk? (y/n)")
		default:
			e.SetStatus("unknown key %q", k.Rune)
		}
	case LeaderView:
		switch k.Rune {
		case 'w':
			e.wrapMode = (e.wrapMode + 1) % 3
			e.invalidateWraps()
			e.mode = ModeNormal
			e.SetStatus("wrap: %s", [...]string{"none", "word", "char"}[e.wrapMode])
		case 'h':
			e.hybridMD = !e.hybridMD
			e.mode = ModeNormal
			e.SetStatus("hybrid markdown: %v", e.hybridMD)
		case 'b':
			e.cfg.BarAtTop = !e.cfg.BarAtTop
			e.mode = ModeNormal
		default:
			e.SetStatus("unknown key %q", k.Rune)
		}
	case LeaderSearch:
		switch k.Rune {
		case 's':
			e.mode = ModeNormal
			e.beginSearch(false)
		case 'r':
			e.mode = ModeNormal
			e.beginSearch(false)
			e.searchReplace = true
		case 'g':
			e.mode = ModeGotoLine
			e.prompt = e.prompt[:0]
			e.SetStatus("goto line:")
		default:
			e.SetStatus("unknown key %q", k.Rune)
		}
	}
}

// invalidateWraps drops every line's wrap cache after a mode change.
func (e *Editor) invalidateWraps() {
	for row := 0; row < e.buf.LineCount(); row++ {
		e.buf.Line(row).InvalidateWrap()
	}
}

func (e *Editor) handleMouse(m MouseEvent) {
	switch m.Button {
	case MouseWheelUp, MouseWheelDown:
		dir := -1
		if m.Button == MouseWheelDown {
			dir = 1
		}
		step := e.scroll.step(dir, time.Now())
		e.rowOff += dir * step
		if e.rowOff < 0 {
			e.rowOff = 0
		}
		if max := e.buf.LineCount() - 1; e.rowOff > max && max >= 0 {
			e.rowOff = max
		}
		e.prewarmViewport()
	case MouseLeft:
		if !m.Press {
			return
		}
		row, col := e.screenToBuffer(m.Row, m.Col)
		if m.Mod&ModCtrl != 0 {
			e.cursors.Add(row, col)
			return
		}
		if m.Motion {
			p := e.cursors.Primary()
			if !p.HasSelection {
				p.StartSelection()
			}
			p.Row, p.Col = row, col
			p.clampTo(e.buf)
			return
		}
		e.cursors.Collapse()
		p := e.cursors.Primary()
		p.ClearSelection()
		p.Row, p.Col = row, col
		p.clampTo(e.buf)
	}
}

// DoubleClick selects the word at (row, col) using the neighbor layer.
func (e *Editor) DoubleClick(row, col int) {
	l := e.buf.Line(row)
	if l == nil {
		return
	}
	e.buf.WarmLine(row)
	start, end := l.WordRangeAt(col)
	p := e.cursors.Primary()
	p.Row, p.Col = row, start
	p.StartSelection()
	p.Col = end
}

// scrollState implements adaptive wheel scrolling: the per-event line delta
// follows an exponentially smoothed event rate.
type scrollState struct {
	velocity float64 // events per second, smoothed
	last     time.Time
	lastDir  int
}

const (
	scrollDecay   = 0.85
	scrollTimeout = 400 * time.Millisecond
	scrollSlowEPS = 4.0
	scrollFastEPS = 18.0
	scrollMaxStep = 20
)

// step records one wheel event and returns how many lines it scrolls.
func (s *scrollState) step(dir int, now time.Time) int {
	dt := now.Sub(s.last)
	if s.last.IsZero() || dt > scrollTimeout || dir != s.lastDir {
		s.velocity = 0
	} else if dt > 0 {
		inst := float64(time.Second) / float64(dt)
		s.velocity = scrollDecay*s.velocity + (1-scrollDecay)*inst
	}
	s.last = now
	s.lastDir = dir
	v := s.velocity
	switch {
	case v <= scrollSlowEPS:
		return 1
	case v >= scrollFastEPS:
		return scrollMaxStep
	}
	// Smoothstep between the two rates.
	t := (v - scrollSlowEPS) / (scrollFastEPS - scrollSlowEPS)
	t = t * t * (3 - 2*t)
	return 1 + int(t*float64(scrollMaxStep-1))
}
