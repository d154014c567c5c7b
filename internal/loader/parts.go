package loader

import (
	"fmt"
	"os"
)

// FindParts enumerates the file parts of a model. The base path must
// exist; additional parts follow the "<path>.1", "<path>.2" convention
// and are collected until the first gap.
func FindParts(path string) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat model file: %w", err)
	}
	paths := []string{path}
	for i := 1; ; i++ {
		next := fmt.Sprintf("%s.%d", path, i)
		if _, err := os.Stat(next); err != nil {
			break
		}
		paths = append(paths, next)
	}
	return paths, nil
}
