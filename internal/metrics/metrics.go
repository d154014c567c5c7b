package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PartsLoadedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weights_parts_loaded_total",
		Help: "The total number of model file parts loaded",
	})

	TensorsLoadedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weights_tensors_loaded_total",
		Help: "The total number of tensor records loaded",
	})

	BytesLoadedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weights_bytes_loaded_total",
		Help: "The total number of tensor data bytes loaded",
	})

	TensorBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "weights_tensor_bytes",
		Help:    "Distribution of per-tensor byte sizes",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
	}, []string{"type"})

	LoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "weights_load_duration_seconds",
		Help:    "Duration of full model weight loads",
		Buckets: prometheus.DefBuckets,
	})

	LoadErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "weights_load_errors_total",
		Help: "Total number of failed loads by error kind",
	}, []string{"kind"})

	MmapLoadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weights_mmap_loads_total",
		Help: "Total number of loads served from a memory mapping",
	})
)

func RecordPartLoaded(bytes int64, tensors int) {
	PartsLoadedTotal.Inc()
	TensorsLoadedTotal.Add(float64(tensors))
	BytesLoadedTotal.Add(float64(bytes))
}

func RecordTensorLoaded(tensorType string, bytes int64) {
	TensorBytes.WithLabelValues(tensorType).Observe(float64(bytes))
}

func RecordLoadDuration(duration time.Duration) {
	LoadDuration.Observe(duration.Seconds())
}

func RecordLoadError(kind string) {
	LoadErrorsTotal.WithLabelValues(kind).Inc()
}

func RecordMmapLoad() {
	MmapLoadsTotal.Inc()
}
