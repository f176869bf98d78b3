package util

import (
	"os"
	"runtime"
)

// SystemInfo contains information about the host system.
type SystemInfo struct {
	Hostname string
	NumCPU   int
	OS       string
	Arch     string
}

// GetSystemInfo collects system information.
func GetSystemInfo() SystemInfo {
	hostname, _ := os.Hostname()
	return SystemInfo{
		Hostname: hostname,
		NumCPU:   runtime.NumCPU(),
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
	}
}

// ProbeWorkers bounds the number of concurrent ffprobe processes. A
// non-positive request resolves to the logical core count, capped at 8.
func ProbeWorkers(requested int) int {
	if requested > 0 {
		return requested
	}
	return min(max(runtime.NumCPU(), 1), 8)
}
