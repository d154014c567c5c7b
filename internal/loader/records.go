package loader

import (
	"fmt"

	"github.com/23skdu/longbow-bodkin/internal/ggml"
)

// recordHeader is the per-tensor header shared by every container kind:
// rank, name length, ftype, extents, then the name itself.
type recordHeader struct {
	ne        [2]int64
	dims      int
	nelements int64
	ftype     uint32
	name      string
}

func readRecordHeader(r *ggml.Reader, path string) (recordHeader, error) {
	var h recordHeader

	nDims, err := r.ReadI32()
	if err != nil {
		return h, fmt.Errorf("read n_dims: %w", err)
	}
	if nDims < 1 || nDims > 2 {
		return h, ErrBadRecordField{Field: "n_dims", Value: int64(nDims), Path: path}
	}
	h.dims = int(nDims)

	nameLen, err := r.ReadI32()
	if err != nil {
		return h, fmt.Errorf("read name length: %w", err)
	}
	if nameLen < 0 {
		return h, ErrBadRecordField{Field: "name_len", Value: int64(nameLen), Path: path}
	}

	h.ftype, err = r.ReadU32()
	if err != nil {
		return h, fmt.Errorf("read ftype: %w", err)
	}

	h.ne = [2]int64{1, 1}
	h.nelements = 1
	for i := 0; i < h.dims; i++ {
		dim, err := r.ReadI32()
		if err != nil {
			return h, fmt.Errorf("read ne[%d]: %w", i, err)
		}
		if dim < 0 {
			return h, ErrBadRecordField{Field: fmt.Sprintf("ne[%d]", i), Value: int64(dim), Path: path}
		}
		h.ne[i] = int64(dim)
		h.nelements *= int64(dim)
	}

	h.name, err = r.ReadString(int(nameLen))
	if err != nil {
		return h, fmt.Errorf("read tensor name: %w", err)
	}

	return h, nil
}
