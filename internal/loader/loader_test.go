package loader

import (
	"errors"
	"fmt"
	"testing"

	"github.com/23skdu/longbow-bodkin/internal/ggml"
)

func TestLoadNoPaths(t *testing.T) {
	if _, err := Load(Params{}, NewMapRegistry(), nil); err == nil {
		t.Error("expected error for empty part list")
	}
}

func TestLoadAdapterKindRejected(t *testing.T) {
	_, err := Load(Params{
		Paths:     []string{"adapter.bin"},
		Container: ggml.Container{Kind: ggml.KindGGLA, Version: 1},
	}, NewMapRegistry(), nil)
	if err == nil {
		t.Error("expected error loading a lora adapter as model weights")
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unknown tensor", ErrUnknownTensor{Name: "w", Path: "p"}, "unknown_tensor"},
		{"wrapped unknown tensor", fmt.Errorf("load: %w", ErrUnknownTensor{Name: "w"}), "unknown_tensor"},
		{"wrong size", ErrTensorWrongSize{Name: "w", Path: "p"}, "wrong_size"},
		{"invalid ftype", ErrInvalidFtype{Name: "w", Ftype: 4}, "invalid_ftype"},
		{"bad record field", ErrBadRecordField{Field: "n_dims", Value: 3}, "bad_record"},
		{"invalid magic", ggml.ErrInvalidMagic{Magic: 0x12345678}, "invalid_magic"},
		{"invalid string", ggml.ErrInvalidString{Len: 4}, "invalid_string"},
		{"short read", ggml.ErrShortRead{Want: 4}, "short_read"},
		{"wrapped short read", fmt.Errorf("read tensor: %w", ggml.ErrShortRead{Want: 8}), "short_read"},
		{"unsupported version", ggml.ErrUnsupportedVersion{Version: 9}, "unsupported_version"},
		{"other", errors.New("boom"), "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorKind(tt.err); got != tt.want {
				t.Errorf("errorKind() = %q, want %q", got, tt.want)
			}
		})
	}
}
