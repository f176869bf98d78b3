package util

import (
	"runtime"
	"testing"
)

func TestGetSystemInfo(t *testing.T) {
	info := GetSystemInfo()
	if info.NumCPU != runtime.NumCPU() {
		t.Errorf("NumCPU = %d, want %d", info.NumCPU, runtime.NumCPU())
	}
	if info.OS != runtime.GOOS {
		t.Errorf("OS = %q, want %q", info.OS, runtime.GOOS)
	}
	if info.Arch != runtime.GOARCH {
		t.Errorf("Arch = %q, want %q", info.Arch, runtime.GOARCH)
	}
}

func TestProbeWorkers(t *testing.T) {
	if got := ProbeWorkers(3); got != 3 {
		t.Errorf("ProbeWorkers(3) = %d, want 3", got)
	}
	got := ProbeWorkers(0)
	if got < 1 || got > 8 {
		t.Errorf("ProbeWorkers(0) = %d, want within [1, 8]", got)
	}
	if got := ProbeWorkers(-1); got < 1 {
		t.Errorf("ProbeWorkers(-1) = %d, want >= 1", got)
	}
}
