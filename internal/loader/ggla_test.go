package loader

import (
	"bytes"
	"encoding/binary"
	"errors"
	"path/filepath"
	"testing"

	"github.com/23skdu/longbow-bodkin/internal/ggml"
)

func TestAdapterRoundTrip(t *testing.T) {
	a := &Adapter{
		Version: 1,
		R:       4,
		Alpha:   8,
		Tensors: []AdapterTensor{
			{Name: "layers.0.attention.wq.weight.loraA", NE: [2]int64{8, 2}, Dims: 2, Type: ggml.TypeF32, Data: seqBytes(0, 64)},
			{Name: "layers.0.attention.wq.weight.loraB", NE: [2]int64{16, 1}, Dims: 1, Type: ggml.TypeF16, Data: seqBytes(64, 32)},
		},
	}

	var buf bytes.Buffer
	if err := EncodeAdapter(&buf, a); err != nil {
		t.Fatalf("EncodeAdapter() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "adapter.bin")
	writeFixture(t, path, buf.Bytes())

	got, err := DecodeAdapter(path)
	if err != nil {
		t.Fatalf("DecodeAdapter() error = %v", err)
	}

	if got.R != 4 || got.Alpha != 8 {
		t.Errorf("r/alpha = %d/%d, want 4/8", got.R, got.Alpha)
	}
	if len(got.Tensors) != len(a.Tensors) {
		t.Fatalf("decoded %d tensors, want %d", len(got.Tensors), len(a.Tensors))
	}
	for i := range a.Tensors {
		want := &a.Tensors[i]
		tensor := &got.Tensors[i]
		if tensor.Name != want.Name {
			t.Errorf("tensor %d name = %q, want %q", i, tensor.Name, want.Name)
		}
		if tensor.NE != want.NE {
			t.Errorf("tensor %d NE = %v, want %v", i, tensor.NE, want.NE)
		}
		if tensor.Dims != want.Dims {
			t.Errorf("tensor %d dims = %d, want %d", i, tensor.Dims, want.Dims)
		}
		if tensor.Type != want.Type {
			t.Errorf("tensor %d type = %v, want %v", i, tensor.Type, want.Type)
		}
		if tensor.Offset%dataAlign != 0 {
			t.Errorf("tensor %d data offset %d not 32-byte aligned", i, tensor.Offset)
		}
		if !bytes.Equal(tensor.Data, want.Data) {
			t.Errorf("tensor %d data does not round-trip", i)
		}
	}
}

func TestAdapterShapeWordOrder(t *testing.T) {
	a := &Adapter{
		Version: 1,
		R:       1,
		Alpha:   1,
		Tensors: []AdapterTensor{
			{Name: "w", NE: [2]int64{4, 2}, Dims: 2, Type: ggml.TypeF32, Data: seqBytes(0, 32)},
		},
	}
	var buf bytes.Buffer
	if err := EncodeAdapter(&buf, a); err != nil {
		t.Fatalf("EncodeAdapter() error = %v", err)
	}

	// magic, version, r, alpha, then dims, name_len, ftype at fixed
	// offsets; the two shape words follow at 28 and 32 and must run
	// outermost dimension first.
	raw := buf.Bytes()
	shape0 := binary.LittleEndian.Uint32(raw[28:])
	shape1 := binary.LittleEndian.Uint32(raw[32:])
	if shape0 != 2 || shape1 != 4 {
		t.Errorf("shape words = [%d %d], want [2 4]", shape0, shape1)
	}
}

func TestDecodeAdapterBadVersion(t *testing.T) {
	a := &Adapter{Version: 2, R: 1, Alpha: 1}
	var buf bytes.Buffer
	if err := EncodeAdapter(&buf, a); err != nil {
		t.Fatalf("EncodeAdapter() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "adapter.bin")
	writeFixture(t, path, buf.Bytes())

	_, err := DecodeAdapter(path)
	var badVersion ggml.ErrUnsupportedVersion
	if !errors.As(err, &badVersion) {
		t.Fatalf("DecodeAdapter() error = %v, want ErrUnsupportedVersion", err)
	}
	if badVersion.Version != 2 {
		t.Errorf("ErrUnsupportedVersion.Version = %d, want 2", badVersion.Version)
	}
}

func TestDecodeAdapterWrongContainer(t *testing.T) {
	path, _, _ := ggjtFixture(t, t.TempDir(), 1)
	if _, err := DecodeAdapter(path); err == nil {
		t.Error("expected error decoding a model file as an adapter")
	}
}

func TestDecodeAdapterInvalidFtype(t *testing.T) {
	var buf bytes.Buffer
	ggml.EncodeContainer(&buf, ggml.Container{Kind: ggml.KindGGLA, Version: 1})
	ggml.WriteU32(&buf, 2) // r
	ggml.WriteU32(&buf, 4) // alpha
	ggml.WriteU32(&buf, 1) // dims
	ggml.WriteU32(&buf, 1) // name length
	ggml.WriteU32(&buf, 9) // ftype
	ggml.WriteU32(&buf, 8) // shape
	buf.WriteString("w")

	path := filepath.Join(t.TempDir(), "adapter.bin")
	writeFixture(t, path, buf.Bytes())

	_, err := DecodeAdapter(path)
	var badFtype ErrInvalidFtype
	if !errors.As(err, &badFtype) {
		t.Fatalf("DecodeAdapter() error = %v, want ErrInvalidFtype", err)
	}
	if badFtype.Ftype != 9 || badFtype.Name != "w" {
		t.Errorf("ErrInvalidFtype = %+v, want ftype 9 for tensor w", badFtype)
	}
}

func TestDecodeAdapterBadRank(t *testing.T) {
	var buf bytes.Buffer
	ggml.EncodeContainer(&buf, ggml.Container{Kind: ggml.KindGGLA, Version: 1})
	ggml.WriteU32(&buf, 2) // r
	ggml.WriteU32(&buf, 4) // alpha
	ggml.WriteU32(&buf, 3) // dims out of range

	path := filepath.Join(t.TempDir(), "adapter.bin")
	writeFixture(t, path, buf.Bytes())

	_, err := DecodeAdapter(path)
	var badField ErrBadRecordField
	if !errors.As(err, &badField) {
		t.Fatalf("DecodeAdapter() error = %v, want ErrBadRecordField", err)
	}
	if badField.Field != "n_dims" || badField.Value != 3 {
		t.Errorf("ErrBadRecordField = %+v, want n_dims = 3", badField)
	}
}
