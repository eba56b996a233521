package skyb

import (
	"fmt"
	"io"
)

// memBuffer is an in-memory stream with a single shared read/write
// cursor. Writes past the current end grow the buffer; a write after a
// seek beyond the end zero-fills the gap first.
type memBuffer struct {
	data []byte
	off  int64
}

var _ io.ReadWriteSeeker = (*memBuffer)(nil)

func newMemBuffer(data []byte) *memBuffer {
	b := &memBuffer{}
	if len(data) > 0 {
		b.data = append([]byte(nil), data...)
	}
	return b
}

func (b *memBuffer) Read(p []byte) (int, error) {
	if b.off >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.off:])
	b.off += int64(n)
	return n, nil
}

func (b *memBuffer) Write(p []byte) (int, error) {
	if gap := b.off - int64(len(b.data)); gap > 0 {
		b.data = append(b.data, make([]byte, gap)...)
	}
	n := copy(b.data[b.off:], p)
	if n < len(p) {
		b.data = append(b.data, p[n:]...)
	}
	b.off += int64(len(p))
	return len(p), nil
}

func (b *memBuffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = b.off + offset
	case io.SeekEnd:
		abs = int64(len(b.data)) + offset
	default:
		return 0, fmt.Errorf("skyb: invalid seek whence %d", whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("skyb: negative seek offset %d", abs)
	}
	b.off = abs
	return abs, nil
}

// Bytes returns a copy of the full buffer contents, independent of the
// cursor position.
func (b *memBuffer) Bytes() []byte {
	return append([]byte(nil), b.data...)
}
