package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/23skdu/longbow-bodkin/internal/config"
	"github.com/23skdu/longbow-bodkin/internal/ggml"
	"github.com/23skdu/longbow-bodkin/internal/loader"
	"github.com/23skdu/longbow-bodkin/internal/logger"
	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/schollz/progressbar/v3"
)

var (
	modelPath    = flag.String("model", "", "Path to the model file (first part)")
	manifestPath = flag.String("manifest", "", "Path to the JSON tensor manifest")
	dataOffset   = flag.Int64("offset", 0, "Byte offset of the first tensor record in each part")
	parts        = flag.Int("parts", 0, "Number of parts to load (0 = discover from the filesystem)")
	useMmap      = flag.Bool("mmap", true, "Memory-map single-file models when the layout allows it")
	metricsAddr  = flag.String("metrics", ":9090", "Address to serve Prometheus metrics")
	logLevel     = flag.String("log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	logFormat    = flag.String("log-format", "console", "Log format (console, json)")
	quiet        = flag.Bool("quiet", false, "Suppress the progress bar")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	cfg.ModelPath = *modelPath
	cfg.Manifest = *manifestPath
	cfg.Parts = *parts
	cfg.DataOffset = *dataOffset
	cfg.PreferMmap = *useMmap
	cfg.MetricsAddr = *metricsAddr
	cfg.LogLevel = *logLevel
	cfg.LogFormat = *logFormat

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Error: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}
	if cfg.Manifest == "" {
		fmt.Println("Error: --manifest flag is required")
		flag.Usage()
		os.Exit(1)
	}

	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	// Start Metrics Server
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		log.Printf("Metrics serving on %s/metrics", cfg.MetricsAddr)
		if err := http.ListenAndServe(cfg.MetricsAddr, nil); err != nil {
			log.Printf("Metrics server error: %v", err)
		}
	}()

	container, paths, err := detectModel(cfg)
	if err != nil {
		log.Fatalf("Failed to detect model container: %v", err)
	}

	reg, err := loader.ReadManifest(cfg.Manifest)
	if err != nil {
		log.Fatalf("Failed to read tensor manifest: %v", err)
	}

	logger.Info("model detected",
		"container", container.String(),
		"parts", len(paths),
		"tensors", reg.Count(),
		"mmap", container.SupportsMmap())

	var progress loader.Progress
	if !*quiet {
		bar := progressbar.Default(int64(reg.Count()*len(paths)), "loading")
		progress = func(ev loader.Event) {
			if _, ok := ev.(loader.PartTensorLoaded); ok {
				bar.Add(1)
			}
		}
	}

	stats, err := loader.Load(loader.Params{
		Paths:      paths,
		DataOffset: cfg.DataOffset,
		Container:  container,
		Mmap:       cfg.PreferMmap && container.SupportsMmap(),
	}, reg, progress)
	if err != nil {
		log.Fatalf("Failed to load weights: %v", err)
	}

	fmt.Printf("Loaded %d tensor records from %d part(s), %s\n",
		stats.Tensors, stats.Parts, humanize.Bytes(uint64(stats.Bytes)))
}

// detectModel enumerates the part files and reads the container header from
// the first one. An explicit part count trims the discovered set; asking for
// more parts than exist is an error rather than a silent short load.
func detectModel(cfg config.Config) (ggml.Container, []string, error) {
	paths, err := loader.FindParts(cfg.ModelPath)
	if err != nil {
		return ggml.Container{}, nil, err
	}
	if cfg.Parts > 0 {
		if cfg.Parts > len(paths) {
			return ggml.Container{}, nil, fmt.Errorf("requested %d parts but only %d exist", cfg.Parts, len(paths))
		}
		paths = paths[:cfg.Parts]
	}

	f, err := os.Open(paths[0])
	if err != nil {
		return ggml.Container{}, nil, err
	}
	defer f.Close()

	container, err := ggml.DecodeContainer(ggml.NewReader(f, 0))
	if err != nil {
		return ggml.Container{}, nil, err
	}
	return container, paths, nil
}
