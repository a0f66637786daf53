package term

import "unicode/utf8"

// Key identifies one parsed key-press event from the raw input stream.
type Key struct {
	Kind KeyKind
	Rune rune // valid when Kind == KeyRune
}

type KeyKind int

const (
	KeyRune KeyKind = iota
	KeyEnter
	KeyBackspace
	KeyCtrlC
	KeyCtrlU
	KeyUp
	KeyDown
	KeyEsc
	KeyOther
)

// keyDecoder turns a stream of raw bytes into Key events, buffering
// partial escape sequences across reads the way
// other_examples/d09fc19a_dshills-gokeys__input-backend_unix.go's
// SequenceParser does, scaled down to the handful of keys spec.md §4.F
// names: bare ESC, and the two arrow sequences ESC [ A / ESC [ B.
type keyDecoder struct {
	pending []byte
}

// feed appends newly read bytes and drains as many complete Key events
// as the buffer currently contains. A trailing, still-ambiguous ESC
// prefix is kept in pending for the next feed call.
func (d *keyDecoder) feed(b []byte) []Key {
	d.pending = append(d.pending, b...)

	var keys []Key
	for len(d.pending) > 0 {
		k, n, ambiguous := decodeOne(d.pending)
		if ambiguous {
			break
		}
		d.pending = d.pending[n:]
		keys = append(keys, k)
	}
	return keys
}

// decodeOne decodes a single key from the front of buf. ambiguous is
// true when buf is a strict prefix of a longer escape sequence and the
// caller should wait for more bytes before deciding.
func decodeOne(buf []byte) (k Key, n int, ambiguous bool) {
	b0 := buf[0]

	switch b0 {
	case 0x03:
		return Key{Kind: KeyCtrlC}, 1, false
	case '\r', '\n':
		return Key{Kind: KeyEnter}, 1, false
	case 0x7F, 0x08:
		return Key{Kind: KeyBackspace}, 1, false
	case 0x15:
		return Key{Kind: KeyCtrlU}, 1, false
	case 0x1B:
		if len(buf) == 1 {
			return Key{}, 0, true
		}
		if buf[1] != '[' {
			return Key{Kind: KeyEsc}, 1, false
		}
		if len(buf) == 2 {
			return Key{}, 0, true
		}
		switch buf[2] {
		case 'A':
			return Key{Kind: KeyUp}, 3, false
		case 'B':
			return Key{Kind: KeyDown}, 3, false
		default:
			// Unrecognized CSI sequence: consume the three bytes we have
			// and surface it as an ignorable "other" key rather than
			// stalling the decoder on input spec.md §4.F doesn't name.
			return Key{Kind: KeyOther}, 3, false
		}
	}

	if !utf8.FullRune(buf) && b0 >= 0x80 {
		return Key{}, 0, true
	}
	r, size := utf8.DecodeRune(buf)
	return Key{Kind: KeyRune, Rune: r}, size, false
}
