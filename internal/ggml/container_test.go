package ggml

import (
	"bytes"
	"errors"
	"testing"
)

func TestContainerMagics(t *testing.T) {
	tests := []struct {
		name string
		got  uint32
		want uint32
	}{
		{"MagicGGML", MagicGGML, 0x67676d6c},
		{"MagicGGMF", MagicGGMF, 0x67676d66},
		{"MagicGGJT", MagicGGJT, 0x67676a74},
		{"MagicGGLA", MagicGGLA, 0x67676c61},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %#x, want %#x", tt.name, tt.got, tt.want)
		}
	}
}

func TestContainerRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		c    Container
	}{
		{"ggml", Container{Kind: KindGGML}},
		{"ggmf v1", Container{Kind: KindGGMF, Version: 1}},
		{"ggmf v0", Container{Kind: KindGGMF, Version: 0}},
		{"ggjt v1", Container{Kind: KindGGJT, Version: 1}},
		{"ggjt v3", Container{Kind: KindGGJT, Version: 3}},
		{"ggjt huge version", Container{Kind: KindGGJT, Version: 0xdeadbeef}},
		{"ggla v1", Container{Kind: KindGGLA, Version: 1}},
		{"ggla v7", Container{Kind: KindGGLA, Version: 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := EncodeContainer(&buf, tt.c); err != nil {
				t.Fatalf("encode: %v", err)
			}
			wantLen := 8
			if tt.c.Kind == KindGGML {
				wantLen = 4
			}
			if buf.Len() != wantLen {
				t.Errorf("encoded length = %d, want %d", buf.Len(), wantLen)
			}
			got, err := DecodeContainer(NewReader(&buf, 0))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got != tt.c {
				t.Errorf("round trip = %+v, want %+v", got, tt.c)
			}
		})
	}
}

func TestDecodeContainerInvalidMagic(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteU32(&buf, 0x12345678); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := DecodeContainer(NewReader(&buf, 0))
	var invalid ErrInvalidMagic
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidMagic, got %v", err)
	}
	if invalid.Magic != 0x12345678 {
		t.Errorf("carried magic = %#x, want 0x12345678", invalid.Magic)
	}
}

func TestDecodeContainerTruncated(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"partial magic", []byte{0x6c, 0x6d}},
		{"missing version", []byte{0x66, 0x6d, 0x67, 0x67}}, // "fmgg" with no version word
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeContainer(NewReader(bytes.NewReader(tt.data), 0))
			var short ErrShortRead
			if !errors.As(err, &short) {
				t.Errorf("expected ErrShortRead, got %v", err)
			}
		})
	}
}

func TestSupportsMmap(t *testing.T) {
	tests := []struct {
		c    Container
		want bool
	}{
		{Container{Kind: KindGGML}, false},
		{Container{Kind: KindGGMF, Version: 1}, false},
		{Container{Kind: KindGGJT, Version: 1}, true},
		{Container{Kind: KindGGJT, Version: 3}, true},
		{Container{Kind: KindGGLA, Version: 1}, false},
	}
	for _, tt := range tests {
		if got := tt.c.SupportsMmap(); got != tt.want {
			t.Errorf("%s SupportsMmap = %v, want %v", tt.c, got, tt.want)
		}
	}
}

func TestContainerString(t *testing.T) {
	tests := []struct {
		c    Container
		want string
	}{
		{Container{Kind: KindGGML}, "ggml"},
		{Container{Kind: KindGGMF, Version: 1}, "ggmf v1"},
		{Container{Kind: KindGGJT, Version: 2}, "ggjt v2"},
		{Container{Kind: KindGGLA, Version: 1}, "ggla v1"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
