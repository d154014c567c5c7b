package loader

import (
	"fmt"
	"io"
	"os"

	"github.com/23skdu/longbow-bodkin/internal/ggml"
)

// Adapter is a decoded LoRA delta file. R and Alpha come from the adapter
// header; scaling is Alpha/R when the deltas are applied.
type Adapter struct {
	Version uint32
	R       uint32
	Alpha   uint32
	Tensors []AdapterTensor
}

// AdapterTensor is one delta tensor with its data read inline. Offset is the
// absolute file position of the data, after alignment padding.
type AdapterTensor struct {
	Name   string
	NE     [2]int64
	Dims   int
	Type   ggml.TensorType
	Offset int64
	Data   []byte
}

// SizeBytes returns the byte length of the tensor data.
func (t *AdapterTensor) SizeBytes() int64 {
	return t.Type.RowBytes(t.NE[0]) * t.NE[1]
}

// DecodeAdapter reads a LoRA adapter file. Unlike model loading there is no
// registry; adapters describe their own tensor set and the caller applies
// the deltas.
func DecodeAdapter(path string) (*Adapter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open adapter file: %w", err)
	}
	defer f.Close()

	r := ggml.NewReader(f, 0)
	c, err := ggml.DecodeContainer(r)
	if err != nil {
		return nil, err
	}
	if c.Kind != ggml.KindGGLA {
		return nil, fmt.Errorf("%s is not a lora adapter (container %s)", path, c)
	}
	if c.Version != 1 {
		return nil, ggml.ErrUnsupportedVersion{Version: c.Version}
	}

	a := &Adapter{Version: c.Version}
	if a.R, err = r.ReadU32(); err != nil {
		return nil, fmt.Errorf("read adapter r: %w", err)
	}
	if a.Alpha, err = r.ReadU32(); err != nil {
		return nil, fmt.Errorf("read adapter alpha: %w", err)
	}

	for {
		more, err := r.More()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if !more {
			break
		}

		t, err := decodeAdapterTensor(r, path)
		if err != nil {
			return nil, err
		}
		a.Tensors = append(a.Tensors, t)
	}
	return a, nil
}

func decodeAdapterTensor(r *ggml.Reader, path string) (AdapterTensor, error) {
	var t AdapterTensor

	dims, err := r.ReadU32()
	if err != nil {
		return t, fmt.Errorf("read n_dims: %w", err)
	}
	if dims < 1 || dims > 2 {
		return t, ErrBadRecordField{Field: "n_dims", Value: int64(dims), Path: path}
	}
	t.Dims = int(dims)

	nameLen, err := r.ReadU32()
	if err != nil {
		return t, fmt.Errorf("read name length: %w", err)
	}
	ftype, err := r.ReadU32()
	if err != nil {
		return t, fmt.Errorf("read ftype: %w", err)
	}

	// Shape words are stored outermost dimension first, the reverse of the
	// model record layout.
	t.NE = [2]int64{1, 1}
	for i := 0; i < t.Dims; i++ {
		v, err := r.ReadU32()
		if err != nil {
			return t, fmt.Errorf("read shape[%d]: %w", i, err)
		}
		t.NE[t.Dims-1-i] = int64(v)
	}

	if t.Name, err = r.ReadString(int(nameLen)); err != nil {
		return t, fmt.Errorf("read tensor name: %w", err)
	}

	recType, ok := ggml.TensorTypeFromFtype(ftype)
	if !ok {
		return t, ErrInvalidFtype{Name: t.Name, Ftype: ftype, Path: path}
	}
	t.Type = recType

	if err := r.Align(dataAlign); err != nil {
		return t, fmt.Errorf("align tensor '%s' data: %w", t.Name, err)
	}
	t.Offset = r.Offset()

	t.Data, err = r.ReadBytes(int(t.SizeBytes()))
	if err != nil {
		return t, fmt.Errorf("read tensor '%s': %w", t.Name, err)
	}
	return t, nil
}

// EncodeAdapter writes a LoRA adapter stream, the inverse of DecodeAdapter.
// The version is taken from the adapter so fixtures can produce rejected
// versions on purpose.
func EncodeAdapter(w io.Writer, a *Adapter) error {
	c := ggml.Container{Kind: ggml.KindGGLA, Version: a.Version}
	if err := ggml.EncodeContainer(w, c); err != nil {
		return fmt.Errorf("write container: %w", err)
	}
	if err := ggml.WriteU32(w, a.R); err != nil {
		return fmt.Errorf("write adapter r: %w", err)
	}
	if err := ggml.WriteU32(w, a.Alpha); err != nil {
		return fmt.Errorf("write adapter alpha: %w", err)
	}

	off := int64(16)
	for i := range a.Tensors {
		t := &a.Tensors[i]
		if err := ggml.WriteU32(w, uint32(t.Dims)); err != nil {
			return fmt.Errorf("write n_dims: %w", err)
		}
		if err := ggml.WriteU32(w, uint32(len(t.Name))); err != nil {
			return fmt.Errorf("write name length: %w", err)
		}
		if err := ggml.WriteU32(w, uint32(t.Type)); err != nil {
			return fmt.Errorf("write ftype: %w", err)
		}
		for d := t.Dims - 1; d >= 0; d-- {
			if err := ggml.WriteU32(w, uint32(t.NE[d])); err != nil {
				return fmt.Errorf("write shape: %w", err)
			}
		}
		if _, err := io.WriteString(w, t.Name); err != nil {
			return fmt.Errorf("write tensor name: %w", err)
		}
		off += int64(12 + 4*t.Dims + len(t.Name))

		var err error
		if off, err = ggml.WritePadding(w, off, dataAlign); err != nil {
			return fmt.Errorf("write padding: %w", err)
		}
		if _, err := w.Write(t.Data); err != nil {
			return fmt.Errorf("write tensor '%s': %w", t.Name, err)
		}
		off += int64(len(t.Data))
	}
	return nil
}
