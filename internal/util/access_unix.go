//go:build unix

package util

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// CheckWritableDir verifies the current user can create files in dir.
func CheckWritableDir(dir string) error {
	if err := unix.Access(dir, unix.W_OK|unix.X_OK); err != nil {
		return fmt.Errorf("directory %q is not writable: %w", dir, err)
	}
	return nil
}
