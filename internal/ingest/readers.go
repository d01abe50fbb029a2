package ingest

// readers.go holds the io.Reader wrappers applied to uploads before parsing:
//
//   - bomSkipper drops a leading UTF-8 byte order mark written by Excel on Windows
//   - utf8Sanitizer replaces invalid UTF-8 bytes with '?'
//   - limitReader fails once an upload exceeds the configured size
//
// The wrappers stream; none of them buffers more than a few bytes.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// bomSkipper removes a UTF-8 BOM from the start of the stream.
type bomSkipper struct {
	br      *bufio.Reader
	checked bool
}

func newBOMSkipper(r io.Reader) *bomSkipper {
	return &bomSkipper{br: bufio.NewReader(r)}
}

func (b *bomSkipper) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		head, _ := b.br.Peek(len(utf8BOM))
		if bytes.Equal(head, utf8BOM) {
			if _, err := b.br.Discard(len(utf8BOM)); err != nil {
				return 0, err
			}
		}
	}
	return b.br.Read(p)
}

// utf8Sanitizer rewrites invalid UTF-8 in place. A multi-byte rune split
// across two reads is carried over to the next call instead of being
// treated as invalid.
type utf8Sanitizer struct {
	r       io.Reader
	pending []byte
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{r: r, pending: make([]byte, 0, utf8.UTFMax)}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	off := copy(p, s.pending)
	s.pending = s.pending[:0]

	n, err := s.r.Read(p[off:])
	n += off
	if n == 0 {
		return 0, err
	}

	return s.sanitize(p[:n], err == io.EOF), err
}

// sanitize fixes data in place and returns how many bytes are ready.
// Unless atEOF, an incomplete rune at the end is held back in pending.
func (s *utf8Sanitizer) sanitize(data []byte, atEOF bool) int {
	end := len(data)
	if !atEOF {
		if k := incompleteTail(data); k > 0 {
			s.pending = append(s.pending, data[end-k:]...)
			end -= k
		}
	}
	if utf8.Valid(data[:end]) {
		return end
	}

	w := 0
	for r := 0; r < end; {
		c, size := utf8.DecodeRune(data[r:end])
		if c == utf8.RuneError && size == 1 {
			data[w] = '?'
			w++
			r++
			continue
		}
		w += copy(data[w:], data[r:r+size])
		r += size
	}
	return w
}

// incompleteTail returns the length of a rune prefix at the end of data
// that still needs continuation bytes, or 0.
func incompleteTail(data []byte) int {
	for i := 1; i <= utf8.UTFMax-1 && i <= len(data); i++ {
		b := data[len(data)-i]
		if b < 0x80 {
			return 0
		}
		if b >= 0xC0 {
			if i < leadLen(b) {
				return i
			}
			return 0
		}
	}
	return 0
}

// leadLen returns the encoded length announced by a UTF-8 lead byte.
func leadLen(b byte) int {
	switch {
	case b >= 0xF0:
		return 4
	case b >= 0xE0:
		return 3
	case b >= 0xC0:
		return 2
	default:
		return 1
	}
}

// limitReader returns a "file too large" error once more than limit bytes
// have been read. A limit of zero disables the check.
type limitReader struct {
	r     io.Reader
	limit int64
	read  int64
}

func newLimitReader(r io.Reader, limit int64) *limitReader {
	return &limitReader{r: r, limit: limit}
}

func (l *limitReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.read += int64(n)
	if l.limit > 0 && l.read > l.limit {
		return n, fileTooLarge(l.limit)
	}
	return n, err
}

// wrapText applies BOM removal and UTF-8 repair to a text upload.
func wrapText(r io.Reader) io.Reader {
	return newUTF8Sanitizer(newBOMSkipper(r))
}
