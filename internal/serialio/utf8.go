package serialio

import "unicode/utf8"

// toUTF8 renders b in the manner of Rust's String::from_utf8_lossy: valid
// runs decode as-is, and each byte that does not start a valid UTF-8
// encoding is replaced by its own U+FFFD (a truncated multi-byte prefix
// therefore yields one U+FFFD per byte, not a single one). Serial debug
// streams are not guaranteed to be valid UTF-8
// (or even text at all, outside direct mode), so this never fails.
func toUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}

	out := make([]rune, 0, len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		out = append(out, r)
		b = b[size:]
	}
	return string(out)
}
