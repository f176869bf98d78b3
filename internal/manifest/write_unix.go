//go:build !windows

package manifest

import (
	"fmt"

	"github.com/google/renameio/v2"
)

// writeFile replaces path atomically, so ffmpeg never reads a half-written
// list.
func writeFile(path string, paths []string) error {
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending manifest: %w", err)
	}
	defer func() { _ = pending.Cleanup() }()

	if err := Encode(pending, paths); err != nil {
		return err
	}
	return pending.CloseAtomicallyReplace()
}
