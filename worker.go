package ember

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// TaskKind tags the payload of a work item.
type TaskKind int

const (
	TaskWarm TaskKind = iota
	TaskSearch
	TaskReplaceAll
	TaskAutosave
	TaskShutdown
)

const (
	taskQueueCap   = 32
	resultQueueCap = 64
	workerPollWait = 100 * time.Millisecond
)

// taskIDCounter hands out task ids process-wide. Ids start at 1 and never
// repeat, so a requeued id always denotes a fresh task.
var taskIDCounter atomic.Int64

// NextTaskID allocates a fresh task id.
func NextTaskID() int64 {
	return taskIDCounter.Add(1)
}

// Task is a unit of work for the background worker. The cancellation flag
// is advisory: handlers poll it at least once per scanned row.
type Task struct {
	ID   int64
	Kind TaskKind

	// Warm payload.
	StartRow int
	EndRow   int
	Priority int

	// Search and replace payload.
	Pattern     string
	Flags       SearchFlags
	Replacement string

	// Autosave payload.
	Snapshot *Snapshot

	cancelled atomic.Bool
}

// Cancel sets the advisory cancellation flag.
func (t *Task) Cancel() {
	t.cancelled.Store(true)
}

// Cancelled reports whether the task has been cancelled.
func (t *Task) Cancelled() bool {
	return t.cancelled.Load()
}

// Result reports the outcome of one task. Err is nil on success; a
// cancelled task still produces a result so the main thread can clean up
// associated state.
type Result struct {
	ID   int64
	Kind TaskKind
	Err  error

	Warmed       int
	Skipped      int
	Matches      int
	Complete     bool
	Replacements []Replacement
	BytesWritten int64
}

// Worker runs tasks on one dedicated goroutine. Tasks flow through a
// bounded ring (FIFO, capacity 32); results come back through a second ring
// (capacity 64) the main thread drains with non-blocking pops. When the
// result ring overflows the oldest result is dropped with a logged warning.
type Worker struct {
	buf     *Buffer
	matches *SearchResults

	mu      sync.Mutex
	tasks   [taskQueueCap]*Task
	head    int
	count   int
	current *Task

	rmu     sync.Mutex
	results [resultQueueCap]Result
	rhead   int
	rcount  int

	wake     chan struct{}
	done     chan struct{}
	shutdown atomic.Bool
}

// NewWorker starts the worker goroutine against buf. Search matches land in
// the shared results set.
func NewWorker(buf *Buffer, matches *SearchResults) *Worker {
	w := &Worker{
		buf:     buf,
		matches: matches,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w
}

// Submit enqueues a task. A zero task id is assigned here. The call fails
// with ErrQueueFull when the ring has no room and ErrShutdown after
// Shutdown.
func (w *Worker) Submit(t *Task) error {
	if w.shutdown.Load() && t.Kind != TaskShutdown {
		return ErrShutdown
	}
	w.mu.Lock()
	if w.count == taskQueueCap {
		w.mu.Unlock()
		return ErrQueueFull
	}
	if t.ID == 0 {
		t.ID = NextTaskID()
	}
	w.tasks[(w.head+w.count)%taskQueueCap] = t
	w.count++
	w.mu.Unlock()
	select {
	case w.wake <- struct{}{}:
	default:
	}
	return nil
}

// Cancel flags the queued or currently executing task with the given id.
func (w *Worker) Cancel(id int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := 0; i < w.count; i++ {
		t := w.tasks[(w.head+i)%taskQueueCap]
		if t.ID == id {
			t.Cancel()
		}
	}
	if w.current != nil && w.current.ID == id {
		w.current.Cancel()
	}
}

// CancelAllOf flags every queued task of the given kind, plus the current
// task if it matches.
func (w *Worker) CancelAllOf(kind TaskKind) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := 0; i < w.count; i++ {
		t := w.tasks[(w.head+i)%taskQueueCap]
		if t.Kind == kind {
			t.Cancel()
		}
	}
	if w.current != nil && w.current.Kind == kind {
		w.current.Cancel()
	}
}

// Shutdown stops the worker: it sets the shutdown flag, wakes the loop with
// a sentinel task, and joins. Calling it twice is a no-op.
func (w *Worker) Shutdown() {
	if !w.shutdown.CompareAndSwap(false, true) {
		return
	}
	w.mu.Lock()
	if w.count < taskQueueCap {
		w.tasks[(w.head+w.count)%taskQueueCap] = &Task{ID: NextTaskID(), Kind: TaskShutdown}
		w.count++
	}
	w.mu.Unlock()
	select {
	case w.wake <- struct{}{}:
	default:
	}
	<-w.done
}

// PopResult returns the oldest undelivered result, if any. It never blocks.
func (w *Worker) PopResult() (Result, bool) {
	w.rmu.Lock()
	defer w.rmu.Unlock()
	if w.rcount == 0 {
		return Result{}, false
	}
	r := w.results[w.rhead]
	w.rhead = (w.rhead + 1) % resultQueueCap
	w.rcount--
	return r, true
}

func (w *Worker) pushResult(r Result) {
	w.rmu.Lock()
	defer w.rmu.Unlock()
	if w.rcount == resultQueueCap {
		dropped := w.results[w.rhead]
		w.rhead = (w.rhead + 1) % resultQueueCap
		w.rcount--
		logger.Warn("result queue overflow, dropping oldest",
			zap.Int64("task", dropped.ID))
	}
	w.results[(w.rhead+w.rcount)%resultQueueCap] = r
	w.rcount++
}

func (w *Worker) pop() *Task {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.count == 0 {
		return nil
	}
	t := w.tasks[w.head]
	w.tasks[w.head] = nil
	w.head = (w.head + 1) % taskQueueCap
	w.count--
	return t
}

func (w *Worker) loop() {
	defer close(w.done)
	for {
		t := w.pop()
		if t == nil {
			select {
			case <-w.wake:
			case <-time.After(workerPollWait):
			}
			if w.shutdown.Load() {
				return
			}
			continue
		}
		if t.Kind == TaskShutdown {
			return
		}
		if t.Cancelled() {
			w.pushResult(Result{ID: t.ID, Kind: t.Kind, Err: ErrCancelled})
			continue
		}
		w.mu.Lock()
		w.current = t
		w.mu.Unlock()
		res := w.execute(t)
		w.mu.Lock()
		w.current = nil
		w.mu.Unlock()
		w.pushResult(res)
	}
}

func (w *Worker) execute(t *Task) Result {
	logger.Debug("task start", zap.Int64("id", t.ID), zap.Int("kind", int(t.Kind)))
	switch t.Kind {
	case TaskWarm:
		return w.runWarm(t)
	case TaskSearch:
		return w.runSearch(t)
	case TaskReplaceAll:
		return w.runReplaceAll(t)
	case TaskAutosave:
		return w.runAutosave(t)
	}
	return Result{ID: t.ID, Kind: t.Kind, Err: ErrInvalidArgument}
}

// runWarm warms every line in [StartRow, EndRow), skipping lines that are
// already warm or hot.
func (w *Worker) runWarm(t *Task) Result {
	res := Result{ID: t.ID, Kind: TaskWarm, Complete: true}
	end := t.EndRow
	if end > w.buf.LineCount() {
		end = w.buf.LineCount()
	}
	data := w.buf.mapData()
	for row := t.StartRow; row < end; row++ {
		if t.Cancelled() {
			res.Err = ErrCancelled
			res.Complete = false
			return res
		}
		l := w.buf.Line(row)
		if l == nil {
			continue
		}
		if l.Warm(data) {
			res.Warmed++
		} else {
			res.Skipped++
		}
	}
	return res
}

func (w *Worker) runAutosave(t *Task) Result {
	res := Result{ID: t.ID, Kind: TaskAutosave, Complete: true}
	if t.Snapshot == nil {
		res.Err = ErrInvalidArgument
		return res
	}
	n, err := t.Snapshot.Write()
	res.BytesWritten = n
	res.Err = err
	if err != nil {
		logger.Warn("autosave failed", zap.String("path", t.Snapshot.SwapPath), zap.Error(err))
	}
	return res
}
