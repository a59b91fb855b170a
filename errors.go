package ember

import "errors"

// Sentinel errors shared across the package. I/O and regex errors pass
// through wrapped; these cover the conditions the editor itself raises.
var (
	// ErrQueueFull is returned when the worker's task ring has no room.
	ErrQueueFull = errors.New("task queue full")
	// ErrCancelled is carried in the result of a cancelled task.
	ErrCancelled = errors.New("task cancelled")
	// ErrInvalidArgument is returned for calls that cannot be clamped into
	// a valid form, such as saving a buffer with no filename.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrShutdown is returned when submitting to a worker that has stopped.
	ErrShutdown = errors.New("worker shut down")
)
