package ggml

import (
	"encoding/binary"
	"io"
	"math"
)

// Write-side primitives, the inverse of Reader. Container serialization, the
// adapter encoder and the fixture generator are built on these.

func WriteU32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func WriteI32(w io.Writer, v int32) error {
	return WriteU32(w, uint32(v))
}

func WriteF32(w io.Writer, v float32) error {
	return WriteU32(w, math.Float32bits(v))
}

// WritePadding emits zero bytes until off reaches the next multiple of
// boundary and returns the new offset. boundary must be a power of two.
func WritePadding(w io.Writer, off, boundary int64) (int64, error) {
	next := (off + boundary - 1) &^ (boundary - 1)
	if next == off {
		return off, nil
	}
	if _, err := w.Write(make([]byte, next-off)); err != nil {
		return off, err
	}
	return next, nil
}
