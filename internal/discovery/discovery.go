// Package discovery lists candidate media files in a source directory.
package discovery

import (
	"os"
	"path/filepath"

	"github.com/five82/mixit/internal/media"
	"github.com/five82/mixit/internal/util"
)

// DiscoveryLogger defines the interface for discovery logging.
type DiscoveryLogger interface {
	Info(format string, args ...any)
	Debug(format string, args ...any)
}

// DiscoveryResult contains the results of file discovery with metadata.
type DiscoveryResult struct {
	Files        []string
	SkippedCount int
}

// FindMediaFiles lists the direct children of dir whose extension matches
// kind. Paths are absolute. A missing or unreadable directory yields an empty
// result rather than an error; callers decide whether an empty pool is fatal.
func FindMediaFiles(dir string, kind media.Kind) []string {
	return scan(dir, kind).Files
}

// FindMediaFilesWithLogging is FindMediaFiles plus a skipped-entry count and
// a log of the first 5 files found.
func FindMediaFilesWithLogging(dir string, kind media.Kind, logger DiscoveryLogger) *DiscoveryResult {
	result := scan(dir, kind)
	if logger != nil {
		logDiscoveredFiles(result.Files, kind, logger)
	}
	return result
}

func scan(dir string, kind media.Kind) *DiscoveryResult {
	result := &DiscoveryResult{}
	if dir == "" {
		return result
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return result
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return result
	}

	match := util.HasVideoExtension
	if kind == media.Audio {
		match = util.HasAudioExtension
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		// Skip hidden files
		if util.IsHidden(name) {
			continue
		}

		fullPath := filepath.Join(absDir, name)
		if entry.Type()&os.ModeSymlink != 0 && !util.FileExists(fullPath) {
			result.SkippedCount++
			continue
		}

		if match(name) {
			result.Files = append(result.Files, fullPath)
		} else {
			result.SkippedCount++
		}
	}

	return result
}

// logDiscoveredFiles logs the first 5 discovered files plus a count.
func logDiscoveredFiles(files []string, kind media.Kind, logger DiscoveryLogger) {
	if len(files) == 0 {
		logger.Info("No %s files found", kind)
		return
	}

	logger.Info("Found %d %s file(s)", len(files), kind)

	// Log first 5 files
	maxToLog := min(5, len(files))

	for i := range maxToLog {
		logger.Debug("  %s", filepath.Base(files[i]))
	}

	if len(files) > 5 {
		logger.Debug("  ... and %d more", len(files)-5)
	}
}
