package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/23skdu/longbow-bodkin/internal/ggml"
	"github.com/23skdu/longbow-bodkin/internal/loader"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

var (
	modelPath  = flag.String("model", "", "Path to the model file (first part)")
	dataOffset = flag.Int64("offset", 0, "Byte offset of the first tensor record in each part")
	outPath    = flag.String("out", "tensors.arrow", "Output Arrow IPC file")
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
		log.Fatalf("Failed to find model parts: %v", err)
	}

	container, err := readContainer(paths[0])
	if err != nil {
		log.Fatalf("Failed to read container: %v", err)
	}

	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "name", Type: arrow.BinaryTypes.String},
		{Name: "type", Type: arrow.BinaryTypes.String},
		{Name: "ne0", Type: arrow.PrimitiveTypes.Int64},
		{Name: "ne1", Type: arrow.PrimitiveTypes.Int64},
		{Name: "data", Type: arrow.BinaryTypes.Binary},
	}, nil)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for _, path := range paths {
		err := loader.ScanPart(path, *dataOffset, container, true, func(info loader.RecordInfo, data []byte) error {
			b.Field(0).(*array.StringBuilder).Append(info.Name)
			b.Field(1).(*array.StringBuilder).Append(info.Type.String())
			b.Field(2).(*array.Int64Builder).Append(info.NE[0])
			b.Field(3).(*array.Int64Builder).Append(info.NE[1])
			b.Field(4).(*array.BinaryBuilder).Append(data)
			return nil
		})
		if err != nil {
			log.Fatalf("Failed to scan %s: %v", path, err)
		}
	}

	rec := b.NewRecord()
	defer rec.Release()

	f, err := os.Create(*outPath)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer f.Close()

	w, err := ipc.NewFileWriter(f, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err != nil {
		log.Fatalf("Failed to open Arrow writer: %v", err)
	}
	if err := w.Write(rec); err != nil {
		log.Fatalf("Failed to write Arrow record: %v", err)
	}
	if err := w.Close(); err != nil {
		log.Fatalf("Failed to finish Arrow file: %v", err)
	}

	fmt.Printf("Wrote %d tensor records to %s\n", rec.NumRows(), *outPath)
}

func readContainer(path string) (ggml.Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return ggml.Container{}, err
	}
	defer f.Close()
	return ggml.DecodeContainer(ggml.NewReader(f, 0))
}
