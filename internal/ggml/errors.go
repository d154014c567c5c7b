package ggml

import "fmt"

// Error types
type ErrInvalidMagic struct{ Magic uint32 }

func (e ErrInvalidMagic) Error() string {
	return fmt.Sprintf("invalid model file magic: %#08x", e.Magic)
}

type ErrUnsupportedVersion struct{ Version uint32 }

func (e ErrUnsupportedVersion) Error() string {
	return fmt.Sprintf("unsupported container version: %d", e.Version)
}

// ErrShortRead reports a stream that ended before the requested byte count
// was available. Want is the full length the caller asked for.
type ErrShortRead struct {
	Want int
	Err  error
}

func (e ErrShortRead) Error() string {
	return fmt.Sprintf("short read: wanted %d bytes: %v", e.Want, e.Err)
}

func (e ErrShortRead) Unwrap() error { return e.Err }

// ErrInvalidString reports name bytes that are not valid UTF-8.
type ErrInvalidString struct{ Len int }

func (e ErrInvalidString) Error() string {
	return fmt.Sprintf("invalid utf-8 in string of %d bytes", e.Len)
}
