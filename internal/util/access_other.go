//go:build !unix

package util

import (
	"fmt"
	"os"
)

// CheckWritableDir verifies the current user can create files in dir.
func CheckWritableDir(dir string) error {
	f, err := os.CreateTemp(dir, ".mixit_write_*")
	if err != nil {
		return fmt.Errorf("directory %q is not writable: %w", dir, err)
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return nil
}
