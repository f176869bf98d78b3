//go:build windows

package manifest

import "os"

func writeFile(path string, paths []string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := Encode(f, paths); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
