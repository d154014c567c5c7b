package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/23skdu/longbow-bodkin/internal/ggml"
	"github.com/23skdu/longbow-bodkin/internal/loader"
	"github.com/dustin/go-humanize"
)

var (
	modelPath  = flag.String("model", "", "Path to the model file (first part)")
	dataOffset = flag.Int64("offset", 0, "Byte offset of the first tensor record in each part")
	limit      = flag.Int("limit", 0, "Stop after this many records per part (0 = all)")
	preview    = flag.Int("preview", 0, "Print the first N elements of float tensors")
)

func main() {
	flag.Parse()

	if *modelPath == "" {
		fmt.Println("Error: --model flag is required")
		flag.Usage()
		os.Exit(1)
	}

	paths, err := loader.FindParts(*modelPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	container, err := readContainer(paths[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Container: %s, %d part(s)\n", container, len(paths))

	for _, path := range paths {
		fmt.Printf("\n=== %s ===\n", path)
		count := 0
		var total int64
		err := loader.ScanPart(path, *dataOffset, container, *preview > 0, func(info loader.RecordInfo, data []byte) error {
			if *limit > 0 && count >= *limit {
				return nil
			}
			count++
			total += info.Size
			fmt.Printf("%-40s %-5s ne=%v  %s @ %d\n",
				info.Name, info.Type, shape(info), humanize.Bytes(uint64(info.Size)), info.Offset)
			if *preview > 0 {
				printPreview(info, data, *preview)
			}
			return nil
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%d records, %s\n", count, humanize.Bytes(uint64(total)))
	}
}

func readContainer(path string) (ggml.Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return ggml.Container{}, err
	}
	defer f.Close()
	return ggml.DecodeContainer(ggml.NewReader(f, 0))
}

func shape(info loader.RecordInfo) []int64 {
	return info.NE[:info.Dims]
}

// printPreview prints the leading elements of f32/f16 tensors. Quantized
// blocks have no per-element layout worth printing.
func printPreview(info loader.RecordInfo, data []byte, n int) {
	switch info.Type {
	case ggml.TypeF32:
		for i := 0; i < n && (i+1)*4 <= len(data); i++ {
			v := math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
			fmt.Printf("  [%d] %g\n", i, v)
		}
	case ggml.TypeF16:
		for i := 0; i < n && (i+1)*2 <= len(data); i++ {
			v := ggml.F16ToF32(binary.LittleEndian.Uint16(data[i*2:]))
			fmt.Printf("  [%d] %g\n", i, v)
		}
	}
}
