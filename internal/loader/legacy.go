package loader

import (
	"fmt"
	"io"
	"os"

	"github.com/23skdu/longbow-bodkin/internal/ggml"
	"github.com/23skdu/longbow-bodkin/internal/logger"
	"github.com/23skdu/longbow-bodkin/internal/metrics"
)

// loadParts streams the GGML and GGMF layouts, where each file part repeats
// every tensor record and 2-D tensors are sharded across parts.
func loadParts(p Params, reg Registry, progress Progress) (*Stats, error) {
	if p.Container.Kind == ggml.KindGGMF && p.Container.Version != 1 {
		return nil, ggml.ErrUnsupportedVersion{Version: p.Container.Version}
	}

	nParts := int64(len(p.Paths))
	stats := &Stats{Parts: len(p.Paths)}
	for i, path := range p.Paths {
		progress.emit(PartLoading{Path: path, Part: i, Total: len(p.Paths)})
		logger.Info("loading part", "path", path, "part", i+1, "parts", len(p.Paths))

		bytes, tensors, err := loadPart(path, p.DataOffset, int64(i), nParts, reg, progress)
		if err != nil {
			return nil, err
		}
		stats.Bytes += bytes
		stats.Tensors += tensors
	}
	return stats, nil
}

func loadPart(path string, dataOffset, partID, nParts int64, reg Registry, progress Progress) (int64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open part: %w", err)
	}
	defer f.Close()

	if _, err := f.Seek(dataOffset, io.SeekStart); err != nil {
		return 0, 0, fmt.Errorf("seek to tensor data: %w", err)
	}

	r := ggml.NewReader(f, dataOffset)
	var totalSize int64
	nTensors := 0
	for {
		more, err := r.More()
		if err != nil {
			return 0, 0, fmt.Errorf("read part %s: %w", path, err)
		}
		if !more {
			break
		}

		accounted, err := loadRecord(r, path, partID, nParts, reg)
		if err != nil {
			return 0, 0, err
		}
		totalSize += accounted
		nTensors++
		progress.emit(PartTensorLoaded{Path: path, Current: nTensors, Total: reg.Count()})
	}

	metrics.RecordPartLoaded(totalSize, nTensors)
	progress.emit(PartLoaded{Path: path, ByteSize: totalSize, TensorCount: nTensors})
	logger.Debug("part loaded", "path", path, "tensors", nTensors, "bytes", totalSize)
	return totalSize, nTensors, nil
}

// loadRecord reads one tensor record and copies this part's shard into the
// destination buffer. The returned byte count attributes an equal share of
// sharded tensors to each part, so part totals sum to the model size.
func loadRecord(r *ggml.Reader, path string, partID, nParts int64, reg Registry) (int64, error) {
	h, err := readRecordHeader(r, path)
	if err != nil {
		return 0, err
	}

	tensor, ok := reg.Lookup(h.name)
	if !ok {
		return 0, ErrUnknownTensor{Name: h.name, Path: path}
	}
	if int64(len(tensor.Bytes())) != tensor.SizeBytes() {
		return 0, fmt.Errorf("tensor '%s' buffer is %d bytes, want %d",
			h.name, len(tensor.Bytes()), tensor.SizeBytes())
	}

	axis := SplitFor(h.name)

	if h.dims == 1 {
		if tensor.Elements() != h.nelements {
			return 0, ErrTensorWrongSize{Name: h.name, Path: path}
		}
	} else {
		if tensor.Elements()/nParts != h.nelements {
			return 0, ErrTensorWrongSize{Name: h.name, Path: path}
		}
	}

	if h.dims == 1 {
		if tensor.NE[0] != h.ne[0] || tensor.NE[1] != h.ne[1] {
			return 0, ErrTensorWrongSize{Name: h.name, Path: path}
		}
	} else if axis == SplitByColumns {
		if tensor.NE[0]/nParts != h.ne[0] || tensor.NE[1] != h.ne[1] {
			return 0, ErrTensorWrongSize{Name: h.name, Path: path}
		}
	} else {
		if tensor.NE[0] != h.ne[0] || tensor.NE[1]/nParts != h.ne[1] {
			return 0, ErrTensorWrongSize{Name: h.name, Path: path}
		}
	}

	recType, ok := ggml.TensorTypeFromFtype(h.ftype)
	if !ok {
		return 0, ErrInvalidFtype{Name: h.name, Ftype: h.ftype, Path: path}
	}
	if recType.Quantized() && h.ne[0]%64 != 0 {
		return 0, ErrTensorWrongSize{Name: h.name, Path: path}
	}

	var accounted int64
	if h.dims == 1 || nParts == 1 {
		if h.nelements*recType.TypeSize()/tensor.Type.BlockSize() != tensor.SizeBytes() {
			return 0, ErrTensorWrongSize{Name: h.name, Path: path}
		}

		// The record is replicated in every part; only the first part's
		// copy lands in the buffer, the rest are skipped.
		if partID == 0 {
			if err := r.ReadInto(tensor.Bytes()); err != nil {
				return 0, fmt.Errorf("read tensor '%s': %w", h.name, err)
			}
		} else {
			if err := r.Skip(tensor.SizeBytes()); err != nil {
				return 0, fmt.Errorf("skip tensor '%s': %w", h.name, err)
			}
		}
		accounted = tensor.SizeBytes()
	} else {
		if h.nelements*recType.TypeSize()/tensor.Type.BlockSize() != tensor.SizeBytes()/nParts {
			return 0, ErrTensorWrongSize{Name: h.name, Path: path}
		}

		rowSize := tensor.RowStride()
		buf := tensor.Bytes()
		if axis == SplitByColumns {
			colBytes := rowSize / nParts
			for i1 := int64(0); i1 < h.ne[1]; i1++ {
				offset := i1*rowSize + partID*h.ne[0]/tensor.Type.BlockSize()*tensor.Type.TypeSize()
				if err := r.ReadInto(buf[offset : offset+colBytes]); err != nil {
					return 0, fmt.Errorf("read tensor '%s' row %d: %w", h.name, i1, err)
				}
			}
		} else {
			for i1 := int64(0); i1 < h.ne[1]; i1++ {
				offset := (i1 + partID*h.ne[1]) * rowSize
				if err := r.ReadInto(buf[offset : offset+rowSize]); err != nil {
					return 0, fmt.Errorf("read tensor '%s' row %d: %w", h.name, i1, err)
				}
			}
		}
		accounted = tensor.SizeBytes() / nParts
	}

	metrics.RecordTensorLoaded(recType.String(), accounted)
	return accounted, nil
}
