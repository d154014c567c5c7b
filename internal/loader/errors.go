package loader

import "fmt"

// Error types

type ErrUnknownTensor struct {
	Name string
	Path string
}

func (e ErrUnknownTensor) Error() string {
	return fmt.Sprintf("unknown tensor '%s' in %s", e.Name, e.Path)
}

type ErrTensorWrongSize struct {
	Name string
	Path string
}

func (e ErrTensorWrongSize) Error() string {
	return fmt.Sprintf("tensor '%s' has the wrong size in %s", e.Name, e.Path)
}

type ErrInvalidFtype struct {
	Name  string
	Ftype uint32
	Path  string
}

func (e ErrInvalidFtype) Error() string {
	return fmt.Sprintf("invalid ftype %d for tensor '%s' in %s", e.Ftype, e.Name, e.Path)
}

type ErrBadRecordField struct {
	Field string
	Value int64
	Path  string
}

func (e ErrBadRecordField) Error() string {
	return fmt.Sprintf("invalid tensor record field %s = %d in %s", e.Field, e.Value, e.Path)
}
