package ggml

import (
	"fmt"
	"io"
)

// Magic values of the pre-GGUF container family. The constants spell the
// format name when the word is viewed big-endian; files store the word
// little-endian, so the on-disk bytes run backwards ("lmgg", "fmgg", "tjgg",
// "algg").
const (
	MagicGGML uint32 = 0x67676d6c
	MagicGGMF uint32 = 0x67676d66
	MagicGGJT uint32 = 0x67676a74
	MagicGGLA uint32 = 0x67676c61
)

type ContainerKind uint32

const (
	KindGGML ContainerKind = iota // unversioned original layout
	KindGGMF                      // versioned, still multi-part
	KindGGJT                      // versioned, single file, aligned tensor data
	KindGGLA                      // LoRA adapter deltas
)

// Container identifies which format variant a file uses. It is decoded once
// from the first 4 or 8 bytes of the file and never changes afterwards.
type Container struct {
	Kind    ContainerKind
	Version uint32 // always 0 for GGML
}

// SupportsMmap reports whether this variant lays tensor data out so the file
// can be memory-mapped. Static per variant: only GGJT pads tensor data to an
// alignment boundary.
func (c Container) SupportsMmap() bool { return c.Kind == KindGGJT }

func (c Container) String() string {
	switch c.Kind {
	case KindGGML:
		return "ggml"
	case KindGGMF:
		return fmt.Sprintf("ggmf v%d", c.Version)
	case KindGGJT:
		return fmt.Sprintf("ggjt v%d", c.Version)
	case KindGGLA:
		return fmt.Sprintf("ggla v%d", c.Version)
	default:
		return fmt.Sprintf("unknown container kind %d", uint32(c.Kind))
	}
}

// DecodeContainer reads the magic and, for every variant but GGML, the
// version word that follows it. An unrecognized magic returns
// ErrInvalidMagic carrying the raw value.
func DecodeContainer(r *Reader) (Container, error) {
	magic, err := r.ReadU32()
	if err != nil {
		return Container{}, fmt.Errorf("read magic: %w", err)
	}
	var c Container
	switch magic {
	case MagicGGML:
		return Container{Kind: KindGGML}, nil
	case MagicGGMF:
		c.Kind = KindGGMF
	case MagicGGJT:
		c.Kind = KindGGJT
	case MagicGGLA:
		c.Kind = KindGGLA
	default:
		return Container{}, ErrInvalidMagic{Magic: magic}
	}
	if c.Version, err = r.ReadU32(); err != nil {
		return Container{}, fmt.Errorf("read container version: %w", err)
	}
	return c, nil
}

// EncodeContainer is the inverse of DecodeContainer.
func EncodeContainer(w io.Writer, c Container) error {
	var magic uint32
	switch c.Kind {
	case KindGGML:
		return WriteU32(w, MagicGGML)
	case KindGGMF:
		magic = MagicGGMF
	case KindGGJT:
		magic = MagicGGJT
	case KindGGLA:
		magic = MagicGGLA
	default:
		return fmt.Errorf("unknown container kind %d", uint32(c.Kind))
	}
	if err := WriteU32(w, magic); err != nil {
		return err
	}
	return WriteU32(w, c.Version)
}
