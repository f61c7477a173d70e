package core

import (
	"fmt"
	"os"
)

// WithTempFile creates a uniquely named file under dir (the OS default when
// dir is empty), hands its path to fn, and removes the file on every exit
// path, including an error return or a panic inside fn.
func WithTempFile(dir, pattern string, fn func(path string) error) error {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	defer os.Remove(path)

	return fn(path)
}
