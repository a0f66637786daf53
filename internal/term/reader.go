package term

// Reader is the platform-independent facade the foreground loop polls
// each tick for newly available key events.
type Reader struct {
	kr *keyReader
}

// NewReader builds a Reader over the given raw file descriptor (typically
// StdinFD()), which must already be in non-canonical mode (see
// Controller.Init).
func NewReader(fd int) *Reader {
	return &Reader{kr: newKeyReader(fd)}
}

// Poll drains every key event currently available without blocking.
func (r *Reader) Poll() []Key {
	return r.kr.poll()
}
