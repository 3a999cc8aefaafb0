package pdfpages

import (
	"bytes"
	"fmt"
	"io"
)

// Reader is a cursor over an immutable byte buffer. It never copies nor
// modifies the underlying bytes.
type Reader struct {
	buf []byte
	ptr int
}

func NewReader(b []byte) *Reader {
	return &Reader{
		buf: b,
		ptr: 0,
	}
}

// Window returns a reader over at most size bytes starting at offset. The
// window is clamped to the buffer.
func (r *Reader) Window(offset, size int64) *Reader {
	if offset < 0 {
		offset = 0
	}
	if offset > r.Size() {
		offset = r.Size()
	}
	end := offset + size
	if end > r.Size() || end < offset {
		end = r.Size()
	}
	return NewReader(r.buf[offset:end])
}

func (r *Reader) AtEOF() bool {
	return r.ptr >= len(r.buf)
}

func (r *Reader) Size() int64 {
	return int64(len(r.buf))
}

func (r *Reader) Len() int {
	if r.ptr >= len(r.buf) {
		return 0
	}
	return len(r.buf) - r.ptr
}

func (r *Reader) Index(b []byte) int {
	if r.ptr > len(r.buf) {
		return -1
	}
	return bytes.Index(r.buf[r.ptr:], b)
}

func (r *Reader) LastIndex(b []byte) int {
	if r.ptr > len(r.buf) {
		return -1
	}
	return bytes.LastIndex(r.buf[r.ptr:], b)
}

func (r *Reader) Bytes() []byte {
	if r.ptr >= len(r.buf) {
		return nil
	}
	return r.buf[r.ptr:]
}

// ReadLine returns the next non empty line, trimmed.
func (r *Reader) ReadLine() ([]byte, error) {
	var (
		line []byte
		err  error
	)
	for {
		line, err = r.readLine()
		if err != nil || len(line) > 0 {
			break
		}
	}
	return line, err
}

func (r *Reader) Skip() {
	skipBlank(r)
}

func (r *Reader) StartsWith(b []byte) bool {
	if r.ptr >= len(r.buf) {
		return false
	}
	return bytes.HasPrefix(r.buf[r.ptr:], b)
}

func (r *Reader) Discard(n int) (int, error) {
	if r.ptr >= len(r.buf) {
		return 0, io.EOF
	}
	r.ptr += n
	if r.ptr > len(r.buf) {
		n -= r.ptr - len(r.buf)
		r.ptr = len(r.buf)
	}
	return n, nil
}

func (r *Reader) Read(b []byte) (int, error) {
	if r.ptr >= len(r.buf) {
		return 0, io.EOF
	}
	n := copy(b, r.buf[r.ptr:])
	r.ptr += n
	return n, nil
}

// Slice returns the next n bytes without copying them. It fails when less
// than n bytes remain.
func (r *Reader) Slice(n int64) ([]byte, error) {
	if n < 0 || n > int64(r.Len()) {
		return nil, fmt.Errorf("slice: %d bytes requested, %d available: %w", n, r.Len(), io.ErrUnexpectedEOF)
	}
	b := r.buf[r.ptr : r.ptr+int(n)]
	r.ptr += int(n)
	return b, nil
}

func (r *Reader) Tell() int64 {
	return int64(r.ptr)
}

func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	var ptr int64
	switch whence {
	case io.SeekStart:
		ptr = offset
	case io.SeekCurrent:
		ptr = int64(r.ptr) + offset
	case io.SeekEnd:
		ptr = int64(len(r.buf)) + offset
	default:
		return 0, fmt.Errorf("seek: invalid whence")
	}
	if ptr < 0 {
		return 0, fmt.Errorf("seek: negative position")
	}
	if ptr > int64(len(r.buf)) {
		ptr = int64(len(r.buf))
	}
	r.ptr = int(ptr)
	return ptr, nil
}

// ReadInt reads a big-endian unsigned integer of n bytes.
func (r *Reader) ReadInt(n int) (int64, error) {
	if n > r.Len() {
		return 0, io.ErrUnexpectedEOF
	}
	var z int64
	for i := n - 1; i >= 0; i-- {
		b, _ := r.ReadByte()
		z |= int64(b) << (uint(i) * 8)
	}
	return z, nil
}

func (r *Reader) ReadValue() (Value, error) {
	return parseValue(r)
}

func (r *Reader) ReadByte() (byte, error) {
	if r.ptr >= len(r.buf) {
		return 0, io.EOF
	}
	b := r.buf[r.ptr]
	r.ptr++
	return b, nil
}

func (r *Reader) PeekByte() (byte, error) {
	if r.ptr >= len(r.buf) {
		return 0, io.EOF
	}
	return r.buf[r.ptr], nil
}

func (r *Reader) UnreadByte() error {
	if r.ptr <= 0 {
		return nil
	}
	r.ptr--
	return nil
}

func (r *Reader) readLine() ([]byte, error) {
	if r.ptr >= len(r.buf) {
		return nil, io.EOF
	}
	offset := indexNL(r.buf[r.ptr:]) + 1
	if offset <= 0 {
		offset = len(r.buf) - r.ptr
	}
	line := r.buf[r.ptr : r.ptr+offset]
	r.ptr += offset
	return bytes.TrimSpace(line), nil
}

// indexNL returns the index of the last byte of the first end of line
// marker (CR, LF or CRLF) in buf, or -1.
func indexNL(buf []byte) int {
	for i, b := range buf {
		switch b {
		case nl:
			return i
		case cr:
			if i+1 < len(buf) && buf[i+1] == nl {
				return i + 1
			}
			return i
		}
	}
	return -1
}
