package loader

import (
	"errors"
	"fmt"
	"time"

	"github.com/23skdu/longbow-bodkin/internal/ggml"
	"github.com/23skdu/longbow-bodkin/internal/logger"
	"github.com/23skdu/longbow-bodkin/internal/metrics"
)

// Params describes one load: the ordered part paths, the shared offset of
// the first tensor record within each part, the detected container, and
// whether the mmap path may be used where the layout supports it.
type Params struct {
	Paths      []string
	DataOffset int64
	Container  ggml.Container
	Mmap       bool
}

// Stats summarizes a completed load. Tensors counts tensor records across
// all parts; a sharded tensor contributes one record per part.
type Stats struct {
	Parts   int
	Tensors int
	Bytes   int64
}

// Load reads model weights into the registry's buffers, dispatching on the
// container kind. Any validation or read failure aborts the whole load;
// there is no partial success.
func Load(p Params, reg Registry, progress Progress) (*Stats, error) {
	if len(p.Paths) == 0 {
		return nil, errors.New("no model parts to load")
	}

	start := time.Now()
	var stats *Stats
	var err error
	switch p.Container.Kind {
	case ggml.KindGGML, ggml.KindGGMF:
		stats, err = loadParts(p, reg, progress)
	case ggml.KindGGJT:
		stats, err = loadGGJT(p, reg, progress)
	case ggml.KindGGLA:
		err = fmt.Errorf("%s is a lora adapter, use DecodeAdapter", p.Paths[0])
	default:
		err = fmt.Errorf("unknown container kind %d", uint32(p.Container.Kind))
	}
	if err != nil {
		metrics.RecordLoadError(errorKind(err))
		return nil, err
	}

	elapsed := time.Since(start)
	metrics.RecordLoadDuration(elapsed)
	logger.Info("weights loaded",
		"container", p.Container.String(),
		"parts", stats.Parts,
		"tensors", stats.Tensors,
		"bytes", stats.Bytes,
		"duration", elapsed)
	return stats, nil
}

// errorKind maps an error chain to its metrics label.
func errorKind(err error) string {
	var (
		unknownTensor ErrUnknownTensor
		wrongSize     ErrTensorWrongSize
		invalidFtype  ErrInvalidFtype
		badRecord     ErrBadRecordField
		invalidMagic  ggml.ErrInvalidMagic
		shortRead     ggml.ErrShortRead
		invalidString ggml.ErrInvalidString
		badVersion    ggml.ErrUnsupportedVersion
	)
	switch {
	case errors.As(err, &unknownTensor):
		return "unknown_tensor"
	case errors.As(err, &wrongSize):
		return "wrong_size"
	case errors.As(err, &invalidFtype):
		return "invalid_ftype"
	case errors.As(err, &badRecord):
		return "bad_record"
	case errors.As(err, &invalidMagic):
		return "invalid_magic"
	case errors.As(err, &invalidString):
		return "invalid_string"
	case errors.As(err, &shortRead):
		return "short_read"
	case errors.As(err, &badVersion):
		return "unsupported_version"
	default:
		return "other"
	}
}
