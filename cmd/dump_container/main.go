package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/23skdu/longbow-bodkin/internal/ggml"
	"github.com/23skdu/longbow-bodkin/internal/loader"
	"github.com/dustin/go-humanize"
)

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Println("usage: dump_container <file> [file ...]")
		os.Exit(1)
	}

	exit := 0
	for _, path := range flag.Args() {
		if err := describe(path); err != nil {
			fmt.Printf("%s: %v\n", path, err)
			exit = 1
		}
	}
	os.Exit(exit)
}

func describe(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	c, err := ggml.DecodeContainer(ggml.NewReader(f, 0))
	f.Close()
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s, %s, mmap=%v\n", path, c, humanize.Bytes(uint64(info.Size())), c.SupportsMmap())

	if c.Kind == ggml.KindGGLA {
		a, err := loader.DecodeAdapter(path)
		if err != nil {
			return err
		}
		fmt.Printf("  lora r=%d alpha=%d, %d delta tensors\n", a.R, a.Alpha, len(a.Tensors))
	}
	return nil
}
