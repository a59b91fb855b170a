package ember

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Terminal owns the raw-mode state of the controlling terminal. Raw mode is
// acquired once at startup. Restore runs from the caller's deferred cleanup
// and from the handler for SIGHUP, SIGINT and SIGTERM, so the terminal comes
// back on normal exit, on a panic that unwinds through the caller, and on
// those signals.
type Terminal struct {
	fd       int
	saved    *unix.Termios
	restored atomic.Bool
	resized  atomic.Bool
	sigs     chan os.Signal
}

// OpenTerminal puts the terminal into raw mode with a 100 ms read timeout
// (VMIN=0, VTIME=1), enables SGR mouse tracking, and installs the signal
// handler: SIGWINCH sets the resize flag; SIGHUP, SIGINT and SIGTERM restore
// the terminal and exit with status 1.
func OpenTerminal() (*Terminal, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("stdin is not a terminal: %w", ErrInvalidArgument)
	}
	saved, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, fmt.Errorf("tcgetattr: %w", err)
	}
	raw := *saved
	raw.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	raw.Oflag &^= unix.OPOST
	raw.Cflag |= unix.CS8
	raw.Lflag &^= unix.ECHO | unix.ICANON | unix.IEXTEN | unix.ISIG
	raw.Cc[unix.VMIN] = 0
	raw.Cc[unix.VTIME] = 1
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &raw); err != nil {
		return nil, fmt.Errorf("tcsetattr: %w", err)
	}

	t := &Terminal{fd: fd, saved: saved, sigs: make(chan os.Signal, 1)}
	os.Stdout.WriteString("\x1b[?1006h\x1b[?1000h\x1b[?1002h") // SGR mouse
	signal.Notify(t.sigs, syscall.SIGWINCH, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		for s := range t.sigs {
			if s != syscall.SIGWINCH {
				t.Restore()
				os.Exit(1)
			}
			t.resized.Store(true)
		}
	}()
	return t, nil
}

// Restore leaves raw mode and disables mouse tracking. Safe to call more
// than once and from deferred cleanup.
func (t *Terminal) Restore() {
	if !t.restored.CompareAndSwap(false, true) {
		return
	}
	signal.Stop(t.sigs)
	close(t.sigs)
	os.Stdout.WriteString("\x1b[?1002l\x1b[?1000l\x1b[?1006l")
	os.Stdout.WriteString("\x1b[2J\x1b[H\x1b[?25h")
	_ = unix.IoctlSetTermios(t.fd, unix.TCSETS, t.saved)
}

// Resized reports and clears the pending SIGWINCH flag.
func (t *Terminal) Resized() bool {
	return t.resized.Swap(false)
}

// Size returns the terminal dimensions as (rows, cols).
func (t *Terminal) Size() (int, int, error) {
	cols, rows, err := term.GetSize(t.fd)
	if err != nil {
		return 0, 0, err
	}
	return rows, cols, nil
}

// Read performs one bounded terminal read; VTIME makes it return empty
// after the timeout so the caller can poll results and the resize flag.
func (t *Terminal) Read(buf []byte) (int, error) {
	n, err := os.Stdin.Read(buf)
	if errors.Is(err, io.EOF) {
		return 0, nil
	}
	return n, err
}
