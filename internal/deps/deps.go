// Package deps locates the external ffmpeg and ffprobe binaries.
package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/five82/mixit/internal/errors"
)

// Tools holds resolved binary paths.
type Tools struct {
	FFmpeg  string
	FFprobe string
}

// Status reports where a tool was found.
type Status struct {
	Name      string
	Command   string
	Source    string
	Available bool
	Detail    string
}

const (
	SourceConfig  = "config"
	SourceBundled = "bundled"
	SourcePath    = "PATH"
)

// executable is swapped in tests.
var executable = os.Executable

// ResolveTool finds name. An explicit override wins, then a bin/ directory
// next to the mixit executable, then PATH.
func ResolveTool(name, override string) (string, error) {
	status := Check(name, override)
	if !status.Available {
		return "", errors.NewToolNotFoundError(name, fmt.Errorf("%s", status.Detail))
	}
	return status.Command, nil
}

// Check evaluates a tool without failing.
func Check(name, override string) Status {
	status := Status{Name: name}

	if cmd := strings.TrimSpace(override); cmd != "" {
		status.Source = SourceConfig
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Command = cmd
			status.Detail = fmt.Sprintf("configured binary %q not found", cmd)
			return status
		}
		status.Command = resolved
		status.Available = true
		return status
	}

	if candidate, ok := bundledCandidate(name); ok {
		if info, err := os.Stat(candidate); err == nil && isExecutable(info) {
			status.Command = candidate
			status.Source = SourceBundled
			status.Available = true
			return status
		}
	}

	if resolved, err := exec.LookPath(name); err == nil {
		status.Command = resolved
		status.Source = SourcePath
		status.Available = true
		return status
	}

	status.Command = name
	status.Detail = fmt.Sprintf("binary %q not found", name)
	return status
}

// ResolveTools resolves ffmpeg and ffprobe, failing on the first one missing.
func ResolveTools(ffmpegOverride, ffprobeOverride string) (Tools, error) {
	ffmpeg, err := ResolveTool("ffmpeg", ffmpegOverride)
	if err != nil {
		return Tools{}, err
	}
	ffprobe, err := ResolveTool("ffprobe", ffprobeOverride)
	if err != nil {
		return Tools{}, err
	}
	return Tools{FFmpeg: ffmpeg, FFprobe: ffprobe}, nil
}

// CheckAll reports the status of both tools.
func CheckAll(ffmpegOverride, ffprobeOverride string) []Status {
	return []Status{
		Check("ffmpeg", ffmpegOverride),
		Check("ffprobe", ffprobeOverride),
	}
}

func bundledCandidate(name string) (string, bool) {
	exe, err := executable()
	if err != nil || exe == "" {
		return "", false
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), "bin", executableName(name)), true
}

func executableName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
