package ggml

import "fmt"

// TensorType is the on-disk element encoding of a tensor record (the ftype
// field). The legacy containers only ever shipped these four.
type TensorType uint32

const (
	TypeF32  TensorType = 0
	TypeF16  TensorType = 1
	TypeQ4_0 TensorType = 2
	TypeQ4_1 TensorType = 3
)

// TensorTypeFromFtype maps a record's ftype code, rejecting codes outside
// the defined range.
func TensorTypeFromFtype(ftype uint32) (TensorType, bool) {
	switch TensorType(ftype) {
	case TypeF32, TypeF16, TypeQ4_0, TypeQ4_1:
		return TensorType(ftype), true
	}
	return 0, false
}

// TypeSize returns the byte size of one storage block.
func (t TensorType) TypeSize() int64 {
	switch t {
	case TypeF32:
		return 4
	case TypeF16:
		return 2
	case TypeQ4_0:
		return 20 // f32 scale + 16 packed nibble bytes
	case TypeQ4_1:
		return 24 // f32 scale + f32 min + 16 packed nibble bytes
	}
	return 0
}

// BlockSize returns how many elements one storage block encodes.
func (t TensorType) BlockSize() int64 {
	switch t {
	case TypeQ4_0, TypeQ4_1:
		return 32
	}
	return 1
}

func (t TensorType) Quantized() bool { return t.BlockSize() > 1 }

// RowBytes returns the on-disk byte length of ne0 contiguous elements.
func (t TensorType) RowBytes(ne0 int64) int64 {
	return ne0 / t.BlockSize() * t.TypeSize()
}

func (t TensorType) String() string {
	switch t {
	case TypeF32:
		return "F32"
	case TypeF16:
		return "F16"
	case TypeQ4_0:
		return "Q4_0"
	case TypeQ4_1:
		return "Q4_1"
	default:
		return fmt.Sprintf("UNKNOWN_TYPE_%d", uint32(t))
	}
}
