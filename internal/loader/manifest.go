package loader

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/23skdu/longbow-bodkin/internal/ggml"
)

// ManifestEntry is one tensor in a JSON tensor manifest. Manifests carry
// the full assembled extents, not per-part shard shapes.
type ManifestEntry struct {
	Name string  `json:"name"`
	NE   []int64 `json:"ne"`
	Type string  `json:"type"`
}

// ReadManifest builds a registry from a JSON manifest file, allocating a
// destination buffer for every entry.
func ReadManifest(path string) (*MapRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var entries []ManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	reg := NewMapRegistry()
	for _, e := range entries {
		typ, ok := tensorTypeByName(e.Type)
		if !ok {
			return nil, fmt.Errorf("manifest entry '%s': unknown tensor type %q", e.Name, e.Type)
		}
		if len(e.NE) < 1 || len(e.NE) > 2 {
			return nil, fmt.Errorf("manifest entry '%s': rank %d not supported", e.Name, len(e.NE))
		}
		for i, dim := range e.NE {
			if dim < 1 {
				return nil, fmt.Errorf("manifest entry '%s': ne[%d] = %d", e.Name, i, dim)
			}
		}
		if err := reg.Add(NewTensor(e.Name, typ, e.NE...)); err != nil {
			return nil, fmt.Errorf("manifest: %w", err)
		}
	}
	return reg, nil
}

// WriteManifest serializes a registry to JSON in insertion order.
func WriteManifest(path string, reg *MapRegistry) error {
	entries := make([]ManifestEntry, 0, reg.Count())
	for _, name := range reg.Names() {
		t, _ := reg.Lookup(name)
		ne := []int64{t.NE[0]}
		if t.NE[1] > 1 {
			ne = append(ne, t.NE[1])
		}
		entries = append(entries, ManifestEntry{Name: name, NE: ne, Type: t.Type.String()})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

func tensorTypeByName(s string) (ggml.TensorType, bool) {
	switch s {
	case "F32":
		return ggml.TypeF32, true
	case "F16":
		return ggml.TypeF16, true
	case "Q4_0":
		return ggml.TypeQ4_0, true
	case "Q4_1":
		return ggml.TypeQ4_1, true
	}
	return 0, false
}
