//go:build unix

package term

import "golang.org/x/sys/unix"

// keyReader polls stdin for pending key events without blocking. It
// checks fd for readability with a zero-timeout poll(2) before each read
// — the same readability check crossterm's event::poll(Duration::ZERO)
// performs ahead of the blocking read in
// original_source/src/stdio_helper.rs's read_stdin_input — so the
// VMIN=1 blocking read set up by enterNonCanonical never actually blocks
// the caller.
type keyReader struct {
	fd      int
	decoder keyDecoder
	buf     [64]byte
}

func newKeyReader(fd int) *keyReader {
	return &keyReader{fd: fd}
}

// poll returns every complete key event currently available without
// blocking the caller.
func (r *keyReader) poll() []Key {
	var keys []Key
	for {
		ready, err := r.readable()
		if err != nil || !ready {
			break
		}
		n, err := unix.Read(r.fd, r.buf[:])
		if err != nil || n <= 0 {
			break
		}
		keys = append(keys, r.decoder.feed(r.buf[:n])...)
		if n < len(r.buf) {
			break
		}
	}
	return keys
}

// readable reports whether a read on fd would return immediately.
func (r *keyReader) readable() (bool, error) {
	fds := []unix.PollFd{{Fd: int32(r.fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, 0)
	if err != nil {
		return false, err
	}
	return n > 0 && fds[0].Revents&unix.POLLIN != 0, nil
}
