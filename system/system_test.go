package system

import (
	"runtime"
	"testing"
)

func TestGetSystemInformation(t *testing.T) {
	info, err := GetSystemInformation()
	if err != nil {
		t.Skipf("host information unavailable: %v", err)
	}
	if info.Version != Version {
		t.Fatalf("expected version %s, got %s", Version, info.Version)
	}
	if info.System.OSType != runtime.GOOS || info.System.Architecture != runtime.GOARCH {
		t.Fatalf("unexpected platform %+v", info.System)
	}
	if info.System.CPUThreads < 1 {
		t.Fatalf("expected at least one cpu thread, got %d", info.System.CPUThreads)
	}
}

func TestGetSystemUtilization(t *testing.T) {
	u, err := GetSystemUtilization(t.TempDir())
	if err != nil {
		t.Skipf("host utilization unavailable: %v", err)
	}
	if u.DiskTotal == 0 {
		t.Fatalf("expected disk total to be reported")
	}
	if u.MemoryTotal < u.MemoryUsed {
		t.Fatalf("memory used %d exceeds total %d", u.MemoryUsed, u.MemoryTotal)
	}
}
