package loader

import (
	"fmt"
	"io"
	"os"

	"github.com/23skdu/longbow-bodkin/internal/ggml"
)

// RecordInfo describes one tensor record encountered during a scan.
type RecordInfo struct {
	Name   string
	NE     [2]int64
	Dims   int
	Type   ggml.TensorType
	Offset int64 // absolute file position of the tensor data
	Size   int64 // byte length of the tensor data in this part
}

// ScanPart walks every tensor record of one part without a registry,
// calling fn for each. When withData is true the tensor bytes are read and
// handed to fn, otherwise they are skipped and fn receives nil. The shapes
// reported for multi-part models are per-part shard shapes, not the
// assembled extents.
func ScanPart(path string, offset int64, c ggml.Container, withData bool, fn func(RecordInfo, []byte) error) error {
	if c.Kind == ggml.KindGGLA {
		return fmt.Errorf("%s is a lora adapter, use DecodeAdapter", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open part: %w", err)
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("seek to tensor data: %w", err)
	}

	r := ggml.NewReader(f, offset)
	for {
		more, err := r.More()
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if !more {
			return nil
		}

		h, err := readRecordHeader(r, path)
		if err != nil {
			return err
		}
		recType, ok := ggml.TensorTypeFromFtype(h.ftype)
		if !ok {
			return ErrInvalidFtype{Name: h.name, Ftype: h.ftype, Path: path}
		}

		if c.Kind == ggml.KindGGJT {
			if err := r.Align(dataAlign); err != nil {
				return fmt.Errorf("align tensor '%s' data: %w", h.name, err)
			}
		}

		info := RecordInfo{
			Name:   h.name,
			NE:     h.ne,
			Dims:   h.dims,
			Type:   recType,
			Offset: r.Offset(),
			Size:   recType.RowBytes(h.ne[0]) * h.ne[1],
		}

		var data []byte
		if withData {
			if data, err = r.ReadBytes(int(info.Size)); err != nil {
				return fmt.Errorf("read tensor '%s': %w", h.name, err)
			}
		} else {
			if err := r.Skip(info.Size); err != nil {
				return fmt.Errorf("skip tensor '%s': %w", h.name, err)
			}
		}

		if err := fn(info, data); err != nil {
			return err
		}
	}
}
