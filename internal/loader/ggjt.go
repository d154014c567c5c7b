package loader

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/23skdu/longbow-bodkin/internal/ggml"
	"github.com/23skdu/longbow-bodkin/internal/logger"
	"github.com/23skdu/longbow-bodkin/internal/metrics"
)

// dataAlign is the boundary tensor data is padded to in the aligned
// container layouts.
const dataAlign = 32

// loadGGJT loads the single-file aligned layout. Record headers match the
// multi-part layouts but extents must equal the destination exactly, and
// tensor bytes start at the next 32-byte boundary after the name.
func loadGGJT(p Params, reg Registry, progress Progress) (*Stats, error) {
	if len(p.Paths) != 1 {
		return nil, fmt.Errorf("ggjt models are a single file, got %d parts", len(p.Paths))
	}
	if p.Container.Version < 1 || p.Container.Version > 3 {
		return nil, ggml.ErrUnsupportedVersion{Version: p.Container.Version}
	}

	path := p.Paths[0]
	progress.emit(PartLoading{Path: path, Part: 0, Total: 1})
	logger.Info("loading part", "path", path, "part", 1, "parts", 1)

	if p.Mmap {
		data, release, err := mmapOpen(path)
		if err != nil {
			logger.Warn("mmap failed, falling back to buffered reads", "path", path, "error", err)
		} else {
			defer release()
			metrics.RecordMmapLoad()

			sr := bytes.NewReader(data)
			if _, err := sr.Seek(p.DataOffset, io.SeekStart); err != nil {
				return nil, fmt.Errorf("seek to tensor data: %w", err)
			}
			return ggjtRecords(ggml.NewReader(sr, p.DataOffset), path, reg, progress)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer f.Close()

	if _, err := f.Seek(p.DataOffset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to tensor data: %w", err)
	}
	return ggjtRecords(ggml.NewReader(f, p.DataOffset), path, reg, progress)
}

func ggjtRecords(r *ggml.Reader, path string, reg Registry, progress Progress) (*Stats, error) {
	stats := &Stats{Parts: 1}
	for {
		more, err := r.More()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if !more {
			break
		}

		n, err := ggjtRecord(r, path, reg)
		if err != nil {
			return nil, err
		}
		stats.Bytes += n
		stats.Tensors++
		progress.emit(PartTensorLoaded{Path: path, Current: stats.Tensors, Total: reg.Count()})
	}

	metrics.RecordPartLoaded(stats.Bytes, stats.Tensors)
	progress.emit(PartLoaded{Path: path, ByteSize: stats.Bytes, TensorCount: stats.Tensors})
	logger.Debug("part loaded", "path", path, "tensors", stats.Tensors, "bytes", stats.Bytes)
	return stats, nil
}

func ggjtRecord(r *ggml.Reader, path string, reg Registry) (int64, error) {
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
	if tensor.Elements() != h.nelements {
		return 0, ErrTensorWrongSize{Name: h.name, Path: path}
	}
	if tensor.NE[0] != h.ne[0] || tensor.NE[1] != h.ne[1] {
		return 0, ErrTensorWrongSize{Name: h.name, Path: path}
	}

	recType, ok := ggml.TensorTypeFromFtype(h.ftype)
	if !ok {
		return 0, ErrInvalidFtype{Name: h.name, Ftype: h.ftype, Path: path}
	}
	if recType.Quantized() && h.ne[0]%64 != 0 {
		return 0, ErrTensorWrongSize{Name: h.name, Path: path}
	}
	if h.nelements*recType.TypeSize()/tensor.Type.BlockSize() != tensor.SizeBytes() {
		return 0, ErrTensorWrongSize{Name: h.name, Path: path}
	}

	if err := r.Align(dataAlign); err != nil {
		return 0, fmt.Errorf("align tensor '%s' data: %w", h.name, err)
	}
	if err := r.ReadInto(tensor.Bytes()); err != nil {
		return 0, fmt.Errorf("read tensor '%s': %w", h.name, err)
	}

	metrics.RecordTensorLoaded(recType.String(), tensor.SizeBytes())
	return tensor.SizeBytes(), nil
}

// mmapOpen maps path read-only. The returned release function unmaps; the
// file descriptor is closed before returning since the mapping keeps its own
// reference.
func mmapOpen(path string) ([]byte, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open model file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("stat model file: %w", err)
	}
	if info.Size() == 0 {
		return nil, nil, fmt.Errorf("model file %s is empty", path)
	}

	data, err := syscall.Mmap(int(f.Fd()), 0, int(info.Size()), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		return nil, nil, fmt.Errorf("mmap %s: %w", path, err)
	}

	release := func() {
		if err := syscall.Munmap(data); err != nil {
			logger.Warn("munmap failed", "path", path, "error", err)
		}
	}
	return data, release, nil
}
