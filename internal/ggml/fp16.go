package ggml

import "github.com/x448/float16"

// F16ToF32 widens a raw IEEE 754 half-precision bit pattern as stored by F16
// tensors.
func F16ToF32(bits uint16) float32 {
	return float16.Frombits(bits).Float32()
}

// F32ToF16 narrows a float32 to the half-precision bit pattern written to
// disk.
func F32ToF16(v float32) uint16 {
	return float16.Fromfloat32(v).Bits()
}
