package util

import (
	"os"
	"path/filepath"
	"strings"
)

// VideoExtensions is the list of supported video file extensions.
var VideoExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
	".avi": true,
	".mkv": true,
}

// AudioExtensions is the list of supported audio file extensions.
var AudioExtensions = map[string]bool{
	".mp3": true,
	".wav": true,
	".aac": true,
	".m4a": true,
}

// HasVideoExtension reports whether path has a supported video extension.
// The comparison is case-insensitive.
func HasVideoExtension(path string) bool {
	return VideoExtensions[strings.ToLower(filepath.Ext(path))]
}

// HasAudioExtension reports whether path has a supported audio extension.
func HasAudioExtension(path string) bool {
	return AudioExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsHidden reports whether the base name starts with a dot.
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// GetFilename returns the filename from a path.
func GetFilename(path string) string {
	return filepath.Base(path)
}

// GetFileStem returns the filename without extension.
func GetFileStem(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext)
}

// GetFileSize returns the size of a file in bytes.
func GetFileSize(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return uint64(info.Size()), nil
}

// EnsureDirectory creates a directory if it doesn't exist.
func EnsureDirectory(path string) error {
	return os.MkdirAll(path, 0755)
}

// DirectoryExists checks if a directory exists.
func DirectoryExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ReplaceExtension swaps the extension of path for ext (without the dot).
func ReplaceExtension(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + ext
}

// ResolveMixOutput determines the output path for a mix.
//
// An empty outputDir falls back to videoDir. An empty name falls back to
// defaultName. Whatever extension the name carries is replaced by container.
func ResolveMixOutput(outputDir, name, defaultName, container, videoDir string) string {
	if outputDir == "" {
		outputDir = videoDir
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultName
	}
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".mp4", ".mkv", ".mov", ".webm":
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return filepath.Join(outputDir, name+"."+container)
}
