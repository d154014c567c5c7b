package loader

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindParts(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "model.bin")
	for _, p := range []string{base, base + ".1", base + ".2"} {
		if err := os.WriteFile(p, []byte{0}, 0644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}

	paths, err := FindParts(base)
	if err != nil {
		t.Fatalf("FindParts() error = %v", err)
	}
	want := []string{base, base + ".1", base + ".2"}
	if len(paths) != len(want) {
		t.Fatalf("FindParts() returned %d paths, want %d", len(paths), len(want))
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestFindPartsStopsAtGap(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "model.bin")
	for _, p := range []string{base, base + ".2"} {
		if err := os.WriteFile(p, []byte{0}, 0644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}

	paths, err := FindParts(base)
	if err != nil {
		t.Fatalf("FindParts() error = %v", err)
	}
	if len(paths) != 1 || paths[0] != base {
		t.Errorf("FindParts() = %v, want just the base path", paths)
	}
}

func TestFindPartsMissingBase(t *testing.T) {
	dir := t.TempDir()
	if _, err := FindParts(filepath.Join(dir, "nope.bin")); err == nil {
		t.Error("expected error for missing base file")
	}
}
