package main

import (
	"bytes"
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/23skdu/longbow-bodkin/internal/ggml"
	"github.com/23skdu/longbow-bodkin/internal/loader"
)

// Generates tiny fixture models in every container layout, plus the JSON
// manifest describing their tensors. The multi-part GGMF fixture shards its
// 2-D tensors with the same split rules the loader applies, so loading it
// reassembles the exact bytes written here.

var outDir = flag.String("dir", "testdata", "Directory to write the fixture files into")

const headerLen = 28 // stand-in for the hyperparameter block

type tensorSpec struct {
	name string
	typ  ggml.TensorType
	ne   [2]int64
	dims int
}

var specs = []tensorSpec{
	{"tok_embeddings.weight", ggml.TypeF32, [2]int64{8, 4}, 2},
	{"layers.0.attention.wq.weight", ggml.TypeF32, [2]int64{4, 16}, 2},
	{"layers.0.attention.wo.weight", ggml.TypeF32, [2]int64{8, 4}, 2},
	{"layers.0.ffn_norm.weight", ggml.TypeF16, [2]int64{8, 1}, 1},
	{"norm.weight", ggml.TypeF32, [2]int64{8, 1}, 1},
	{"output.weight", ggml.TypeQ4_0, [2]int64{64, 2}, 2},
}

func main() {
	flag.Parse()
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("Failed to create %s: %v", *outDir, err)
	}

	fulls := make(map[string][]byte, len(specs))
	for _, s := range specs {
		fulls[s.name] = fillData(s)
	}

	writeModel(filepath.Join(*outDir, "model-ggml.bin"), ggml.Container{Kind: ggml.KindGGML}, 1, fulls)
	writeModel(filepath.Join(*outDir, "model-ggmf.bin"), ggml.Container{Kind: ggml.KindGGMF, Version: 1}, 2, fulls)
	writeModel(filepath.Join(*outDir, "model-ggjt.bin"), ggml.Container{Kind: ggml.KindGGJT, Version: 1}, 1, fulls)
	writeAdapter(filepath.Join(*outDir, "adapter-ggla.bin"))
	writeManifestFile(filepath.Join(*outDir, "manifest.json"))
}

func writeModel(path string, c ggml.Container, parts int, fulls map[string][]byte) {
	for p := 0; p < parts; p++ {
		partPath := path
		if p > 0 {
			partPath = fmt.Sprintf("%s.%d", path, p)
		}

		var buf bytes.Buffer
		ggml.EncodeContainer(&buf, c)
		buf.Write(make([]byte, headerLen))
		for _, s := range specs {
			writeShard(&buf, c, s, fulls[s.name], p, parts)
		}

		if err := os.WriteFile(partPath, buf.Bytes(), 0644); err != nil {
			log.Fatalf("Failed to write %s: %v", partPath, err)
		}
		fmt.Printf("%s: %s, data offset %d\n", partPath, c, dataOffset(c))
	}
}

func dataOffset(c ggml.Container) int64 {
	if c.Kind == ggml.KindGGML {
		return 4 + headerLen
	}
	return 8 + headerLen
}

// writeShard appends one record holding this part's slice of the tensor.
// 1-D tensors are replicated into every part.
func writeShard(buf *bytes.Buffer, c ggml.Container, s tensorSpec, full []byte, part, parts int) {
	ne := s.ne
	data := full
	if s.dims == 2 && parts > 1 {
		rowBytes := int(s.typ.RowBytes(s.ne[0]))
		if loader.SplitFor(s.name) == loader.SplitByColumns {
			ne[0] /= int64(parts)
			colBytes := rowBytes / parts
			shard := make([]byte, 0, colBytes*int(s.ne[1]))
			for i1 := 0; i1 < int(s.ne[1]); i1++ {
				row := full[i1*rowBytes : (i1+1)*rowBytes]
				shard = append(shard, row[part*colBytes:(part+1)*colBytes]...)
			}
			data = shard
		} else {
			ne[1] /= int64(parts)
			shardBytes := int(ne[1]) * rowBytes
			data = full[part*shardBytes : (part+1)*shardBytes]
		}
	}

	ggml.WriteI32(buf, int32(s.dims))
	ggml.WriteI32(buf, int32(len(s.name)))
	ggml.WriteU32(buf, uint32(s.typ))
	for i := 0; i < s.dims; i++ {
		ggml.WriteI32(buf, int32(ne[i]))
	}
	buf.WriteString(s.name)
	if c.Kind == ggml.KindGGJT {
		ggml.WritePadding(buf, int64(buf.Len()), 32)
	}
	buf.Write(data)
}

func fillData(s tensorSpec) []byte {
	b := make([]byte, s.typ.RowBytes(s.ne[0])*s.ne[1])
	switch s.typ {
	case ggml.TypeF32:
		for i := 0; i < len(b)/4; i++ {
			binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(float32(i)*0.25))
		}
	case ggml.TypeF16:
		for i := 0; i < len(b)/2; i++ {
			binary.LittleEndian.PutUint16(b[i*2:], ggml.F32ToF16(float32(i)*0.5))
		}
	default:
		for i := range b {
			b[i] = byte(i*7 + 3)
		}
	}
	return b
}

func writeAdapter(path string) {
	a := &loader.Adapter{
		Version: 1,
		R:       4,
		Alpha:   8,
		Tensors: []loader.AdapterTensor{
			{Name: "layers.0.attention.wq.weight.loraA", NE: [2]int64{4, 4}, Dims: 2, Type: ggml.TypeF32, Data: loraData(16)},
			{Name: "layers.0.attention.wq.weight.loraB", NE: [2]int64{4, 16}, Dims: 2, Type: ggml.TypeF32, Data: loraData(64)},
		},
	}

	var buf bytes.Buffer
	if err := loader.EncodeAdapter(&buf, a); err != nil {
		log.Fatalf("Failed to encode adapter: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", path, err)
	}
	fmt.Printf("%s: ggla v1, r=%d alpha=%d\n", path, a.R, a.Alpha)
}

func loraData(n int) []byte {
	b := make([]byte, 4*n)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(0.01*float32(i)))
	}
	return b
}

func writeManifestFile(path string) {
	reg := loader.NewMapRegistry()
	for _, s := range specs {
		if err := reg.Add(loader.NewTensor(s.name, s.typ, s.ne[:s.dims]...)); err != nil {
			log.Fatalf("Failed to build manifest registry: %v", err)
		}
	}
	if err := loader.WriteManifest(path, reg); err != nil {
		log.Fatalf("Failed to write manifest: %v", err)
	}
	fmt.Printf("%s: %d tensors\n", path, reg.Count())
}
