package term

// Editor holds an in-progress input line plus its history and scroll
// cursor. It replaces the reference implementation's module-global
// history/scroll state (spec.md §9's called-out redesign) with a plain
// struct the foreground loop owns and passes into Drain.
type Editor struct {
	buf     []rune
	history []string
	scroll  int

	quit bool // set when Ctrl-C was seen; caller must tear down and exit
}

// NewEditor returns an empty editor.
func NewEditor() *Editor {
	return &Editor{}
}

// Buffer returns the current line contents, including a trailing '\n' if
// a line was just committed.
func (e *Editor) Buffer() string {
	return string(e.buf)
}

// Quit reports whether the last Drain saw Ctrl-C; the caller must tear
// down the terminal and exit the process per spec.md §4.F.
func (e *Editor) Quit() bool {
	return e.quit
}

// Drain applies every key in keys to the editor's buffer and history per
// the event table in spec.md §4.F. It only acts on key-press events,
// which is exactly the set keyDecoder ever produces — there is no
// repeat/release layer underneath it.
func (e *Editor) Drain(keys []Key) {
	for _, k := range keys {
		switch k.Kind {
		case KeyCtrlC:
			e.quit = true
			return
		case KeyEnter:
			line := string(e.buf)
			if line != "" && (len(e.history) == 0 || e.history[0] != line) {
				e.history = append([]string{line}, e.history...)
			}
			e.scroll = 0
			e.buf = append(e.buf, '\n')
		case KeyBackspace:
			if len(e.buf) > 0 {
				e.buf = e.buf[:len(e.buf)-1]
			}
		case KeyCtrlU:
			e.buf = e.buf[:0]
			e.scroll = 0
		case KeyUp:
			if e.scroll < len(e.history) {
				e.buf = []rune(e.history[e.scroll])
				e.scroll++
			}
		case KeyDown:
			if e.scroll <= 1 {
				e.buf = e.buf[:0]
				e.scroll = 0
			} else {
				e.scroll--
				e.buf = []rune(e.history[e.scroll-1])
			}
		case KeyEsc:
			e.buf = e.buf[:0]
			e.scroll = 0
		case KeyRune:
			e.buf = append(e.buf, k.Rune)
		case KeyOther:
			// ignored
		}
	}
}

// Reset clears the buffer after the foreground loop has committed and
// forwarded a line (spec.md §4.G step 3).
func (e *Editor) Reset() {
	e.buf = e.buf[:0]
}
