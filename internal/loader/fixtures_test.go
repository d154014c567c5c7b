package loader

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"testing"

	"github.com/23skdu/longbow-bodkin/internal/ggml"
)

// Fixture helpers shared by the loader tests. Fixture parts mimic real
// model files: container header, a filler block standing in for the
// hyperparameters, then tensor records.

const fixtureHeaderLen = 28

// fixtureRecord is one tensor record to place in a fixture part. ne holds
// the shard extents exactly as stored on disk.
type fixtureRecord struct {
	name string
	typ  ggml.TensorType
	ne   []int64
	data []byte
}

// buildPart assembles a part file image in memory. GGJT images pad each
// record's data to the 32-byte boundary.
func buildPart(c ggml.Container, recs []fixtureRecord) []byte {
	var buf bytes.Buffer
	ggml.EncodeContainer(&buf, c)
	buf.Write(make([]byte, fixtureHeaderLen))
	for _, rec := range recs {
		ggml.WriteI32(&buf, int32(len(rec.ne)))
		ggml.WriteI32(&buf, int32(len(rec.name)))
		ggml.WriteU32(&buf, uint32(rec.typ))
		for _, d := range rec.ne {
			ggml.WriteI32(&buf, int32(d))
		}
		buf.WriteString(rec.name)
		if c.Kind == ggml.KindGGJT {
			ggml.WritePadding(&buf, int64(buf.Len()), dataAlign)
		}
		buf.Write(rec.data)
	}
	return buf.Bytes()
}

// fixtureOffset returns the data offset of a buildPart image.
func fixtureOffset(c ggml.Container) int64 {
	if c.Kind == ggml.KindGGML {
		return 4 + fixtureHeaderLen
	}
	return 8 + fixtureHeaderLen
}

func writeFixture(t *testing.T, path string, image []byte) {
	t.Helper()
	if err := os.WriteFile(path, image, 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

func mustAdd(t *testing.T, reg *MapRegistry, tensor *Tensor) {
	t.Helper()
	if err := reg.Add(tensor); err != nil {
		t.Fatalf("Add(%q) error = %v", tensor.Name, err)
	}
}

func f32Bytes(vals ...float32) []byte {
	b := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

// seqBytes returns n bytes counting up from start, wrapping at 256.
func seqBytes(start, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(start + i)
	}
	return b
}
