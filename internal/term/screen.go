// Package term implements the split-screen terminal controller and line
// editor described by SPEC_FULL.md §4.E/§4.F: a pinned scrolling region
// for program output with the bottom row reserved for a live input bar.
package term

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Controller owns the terminal's raw-mode state and the ANSI escape
// sequences that carve out the scrolling region and input bar.
type Controller struct {
	out  io.Writer
	fd   int
	rows int
	cols int

	posix *posixState
}

// NewController prepares (but does not yet apply) a controller for the
// given output stream and input file descriptor.
func NewController(out io.Writer, fd int) *Controller {
	return &Controller{out: out, fd: fd}
}

// Init runs the init sequence from spec.md §4.E steps 2-5. The caller is
// responsible for step 1 (installing the Ctrl-C signal handler) since
// that belongs to process-level bootstrap, not the terminal controller.
func (c *Controller) Init() error {
	cols, rows, err := term.GetSize(c.fd)
	if err != nil {
		return fmt.Errorf("query terminal size: %w", err)
	}
	c.cols, c.rows = cols, rows

	state, err := enterNonCanonical(c.fd)
	if err != nil {
		return err
	}
	c.posix = state

	c.writeInitSequence()
	return nil
}

// writeInitSequence emits the init sequence's ANSI escapes (spec.md §4.E
// steps 3-5) against whatever c.rows already holds — split out from Init
// so it's testable without the real term.GetSize/termios syscalls Init
// depends on.
func (c *Controller) writeInitSequence() {
	fmt.Fprint(c.out, "\x1b[?25l")            // hide cursor
	fmt.Fprint(c.out, "\n\n\n")               // pad prior output
	fmt.Fprintf(c.out, "\x1b[0;%dr", c.rows-2) // scrolling region rows 0..rows-2
	fmt.Fprintf(c.out, "\x1b[%d;0H", c.rows-2) // 1-based ANSI row for 0-based cursor row rows-3
}

// Teardown runs the teardown sequence from spec.md §4.E, restoring the
// terminal to its pre-Init state. Safe to call more than once.
func (c *Controller) Teardown() {
	fmt.Fprint(c.out, "\x1b[r")            // reset scrolling region
	fmt.Fprint(c.out, "\x1b[0m")           // reset style
	fmt.Fprintf(c.out, "\x1b[%d;0H", c.rows) // move to last row
	fmt.Fprint(c.out, "\x1b[2K")           // clear it
	fmt.Fprint(c.out, "\x1b[?25h")          // show cursor
	if c.posix != nil {
		_ = c.posix.restore()
		c.posix = nil
	}
}

// Write sends output through to the scrolling region. Callers must
// follow it with PaintInputBar within the same loop iteration (spec.md
// §4.G's invariant against the bar being overwritten by scrolled output).
func (c *Controller) Write(b []byte) {
	c.out.Write(b)
}

// PaintInputBar implements spec.md §4.E's input bar paint: save cursor,
// move to the last row, clear it, write status, move up two rows,
// restore cursor — all in a single flushed write.
func (c *Controller) PaintInputBar(status string) {
	fmt.Fprintf(c.out, "\x1b7\x1b[%d;0H\x1b[2K%s\x1b[2A\x1b8", c.rows, status)
}

// Rows and Cols report the terminal dimensions captured at Init.
func (c *Controller) Rows() int { return c.rows }
func (c *Controller) Cols() int { return c.cols }

// StdinFD is the file descriptor the foreground loop should hand to
// newKeyReader; broken out so callers and tests don't need to import
// golang.org/x/sys/unix directly to find os.Stdin's fd.
func StdinFD() int { return int(os.Stdin.Fd()) }
