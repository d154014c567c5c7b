package loader

import (
	"fmt"

	"github.com/23skdu/longbow-bodkin/internal/ggml"
)

// Tensor is a named destination buffer for model weights. NE holds the
// element extents with NE[1] fixed to 1 for vectors, matching the row-major
// layout the file format uses: NE[0] columns per row, NE[1] rows.
type Tensor struct {
	Name string
	NE   [2]int64
	Type ggml.TensorType

	data []byte
}

// NewTensor allocates a destination tensor sized for the given type and
// extents. One or two extents are accepted.
func NewTensor(name string, typ ggml.TensorType, ne ...int64) *Tensor {
	t := &Tensor{Name: name, NE: [2]int64{1, 1}, Type: typ}
	copy(t.NE[:], ne)
	t.data = make([]byte, t.SizeBytes())
	return t
}

// WrapTensor builds a tensor over a caller-owned buffer. The buffer length
// must match SizeBytes for the given type and extents; loading validates
// this before any data is read.
func WrapTensor(name string, typ ggml.TensorType, data []byte, ne ...int64) *Tensor {
	t := &Tensor{Name: name, NE: [2]int64{1, 1}, Type: typ, data: data}
	copy(t.NE[:], ne)
	return t
}

// Elements returns the total element count.
func (t *Tensor) Elements() int64 {
	return t.NE[0] * t.NE[1]
}

// RowStride returns the byte length of one row.
func (t *Tensor) RowStride() int64 {
	return t.Type.RowBytes(t.NE[0])
}

// SizeBytes returns the total byte length of the tensor data.
func (t *Tensor) SizeBytes() int64 {
	return t.RowStride() * t.NE[1]
}

// Bytes returns the backing buffer.
func (t *Tensor) Bytes() []byte {
	return t.data
}

// Registry resolves tensor names found in model files to destination
// buffers. Lookup misses abort the load.
type Registry interface {
	Lookup(name string) (*Tensor, bool)
	Count() int
}

// MapRegistry is a Registry backed by a map, preserving insertion order
// for enumeration.
type MapRegistry struct {
	tensors map[string]*Tensor
	names   []string
}

func NewMapRegistry() *MapRegistry {
	return &MapRegistry{tensors: make(map[string]*Tensor)}
}

// Add registers a tensor under its name. Re-adding a name is an error so
// registries built from manifests surface duplicates early.
func (r *MapRegistry) Add(t *Tensor) error {
	if _, ok := r.tensors[t.Name]; ok {
		return fmt.Errorf("duplicate tensor name '%s'", t.Name)
	}
	r.tensors[t.Name] = t
	r.names = append(r.names, t.Name)
	return nil
}

func (r *MapRegistry) Lookup(name string) (*Tensor, bool) {
	t, ok := r.tensors[name]
	return t, ok
}

func (r *MapRegistry) Count() int {
	return len(r.tensors)
}

// Names returns the registered names in insertion order.
func (r *MapRegistry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}
