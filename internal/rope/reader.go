package rope

import (
	"io"
	"unicode/utf16"
	"unicode/utf8"
)

// Reader streams a Text as UTF-8. Unpaired surrogates decode to
// utf8.RuneError.
type Reader struct {
	cur     *Cursor
	pos     int
	pending [utf8.UTFMax]byte
	npend   int
	ppos    int
}

// NewReader returns a Reader positioned at the start of t.
func (t *Text) NewReader() *Reader {
	return &Reader{cur: t.Cursor()}
}

// Offset returns the unit offset of the next rune to be read.
func (r *Reader) Offset() int {
	return r.pos
}

// ReadRune implements io.RuneReader. size is the UTF-8 length of the rune.
func (r *Reader) ReadRune() (ch rune, size int, err error) {
	if r.pos >= r.cur.Len() {
		return 0, 0, io.EOF
	}
	u := r.cur.CharAt(r.pos)
	r.pos++
	ch = rune(u)
	if utf16.IsSurrogate(ch) {
		ch = utf8.RuneError
		if u < 0xDC00 && r.pos < r.cur.Len() {
			if dec := utf16.DecodeRune(rune(u), rune(r.cur.CharAt(r.pos))); dec != utf8.RuneError {
				ch = dec
				r.pos++
			}
		}
	}
	return ch, utf8.RuneLen(ch), nil
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if r.ppos < r.npend {
			c := copy(p[n:], r.pending[r.ppos:r.npend])
			r.ppos += c
			n += c
			continue
		}
		ch, _, err := r.ReadRune()
		if err != nil {
			if n > 0 {
				return n, nil
			}
			return 0, err
		}
		if ch < utf8.RuneSelf {
			p[n] = byte(ch)
			n++
			continue
		}
		r.npend = utf8.EncodeRune(r.pending[:], ch)
		r.ppos = 0
	}
	return n, nil
}
