//go:build unix

package term

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// posixState holds the terminal attributes to restore on teardown.
type posixState struct {
	fd       int
	original unix.Termios
}

// enterNonCanonical disables ICANON and ECHO on fd, preserving every other
// attribute (including ISIG, so the kernel still raises SIGINT on Ctrl-C),
// and sets VMIN=1/VTIME=0. The non-blocking drain spec.md §4.F asks for
// comes from polling the fd for readability before each read (keys_unix.go),
// not from the termios settings — mirrors
// original_source/src/stdio_helper.rs's stdout_init exactly, where
// crossterm's event::poll(0) performs that same readability check ahead of
// a blocking read. This is deliberately narrower than
// golang.org/x/term.MakeRaw, which also clears ISIG/IEXTEN/ICRNL and more
// than spec.md's terminal controller wants.
func enterNonCanonical(fd int) (*posixState, error) {
	orig, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, fmt.Errorf("get terminal attributes: %w", err)
	}

	raw := *orig
	raw.Lflag &^= unix.ICANON | unix.ECHO
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &raw); err != nil {
		return nil, fmt.Errorf("set terminal attributes: %w", err)
	}

	return &posixState{fd: fd, original: *orig}, nil
}

// restore puts the terminal attributes back exactly as they were. Safe to
// call more than once (idempotent), and safe to call on a nil state.
func (s *posixState) restore() error {
	if s == nil {
		return nil
	}
	if err := unix.IoctlSetTermios(s.fd, ioctlSetTermios, &s.original); err != nil {
		return fmt.Errorf("restore terminal attributes: %w", err)
	}
	return nil
}
