package ggml

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"unicode/utf8"
)

// Reader wraps a byte stream with the exact-length primitives the legacy
// containers are parsed with. Every read either fully succeeds or returns a
// terminal error; partial results are never handed back. A running offset is
// kept so callers can align the cursor against absolute file positions.
type Reader struct {
	br  *bufio.Reader
	off int64
}

// NewReader starts a reader whose cursor sits at absolute offset off in the
// underlying file. The offset only matters for Align; pass 0 when alignment
// is not in play.
func NewReader(r io.Reader, off int64) *Reader {
	return &Reader{br: bufio.NewReader(r), off: off}
}

// Offset returns the absolute position of the next unread byte.
func (r *Reader) Offset() int64 { return r.off }

// More reports whether at least one byte remains before EOF.
func (r *Reader) More() (bool, error) {
	if _, err := r.br.Peek(1); err != nil {
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ReadInto fills p completely or fails with ErrShortRead.
func (r *Reader) ReadInto(p []byte) error {
	n, err := io.ReadFull(r.br, p)
	r.off += int64(n)
	if err != nil {
		return ErrShortRead{Want: len(p), Err: err}
	}
	return nil
}

// ReadBytes reads exactly n bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	p := make([]byte, n)
	if err := r.ReadInto(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Reader) ReadU32() (uint32, error) {
	var b [4]byte
	if err := r.ReadInto(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

func (r *Reader) ReadF32() (float32, error) {
	v, err := r.ReadU32()
	return math.Float32frombits(v), err
}

// ReadString reads n raw bytes and validates them as UTF-8. The length is
// carried separately in every record layout, so it is the caller's input
// here rather than part of the read.
func (r *Reader) ReadString(n int) (string, error) {
	p, err := r.ReadBytes(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(p) {
		return "", ErrInvalidString{Len: n}
	}
	return string(p), nil
}

// Skip discards n bytes without copying them out.
func (r *Reader) Skip(n int64) error {
	for n > 0 {
		chunk := n
		if chunk > math.MaxInt32 {
			chunk = math.MaxInt32
		}
		d, err := r.br.Discard(int(chunk))
		r.off += int64(d)
		if err != nil {
			return ErrShortRead{Want: int(chunk), Err: err}
		}
		n -= int64(d)
	}
	return nil
}

// Align advances the cursor to the next multiple of boundary, which must be
// a power of two.
func (r *Reader) Align(boundary int64) error {
	next := (r.off + boundary - 1) &^ (boundary - 1)
	return r.Skip(next - r.off)
}
