package system

import (
	"runtime"

	"emperror.dev/errors"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// Version is the current version of the daemon, set at build time.
var Version = "develop"

type Information struct {
	Version string `json:"version"`
	System  System `json:"system"`
}

type System struct {
	Architecture  string `json:"architecture"`
	CPUThreads    int    `json:"cpu_threads"`
	MemoryBytes   uint64 `json:"memory_bytes"`
	KernelVersion string `json:"kernel_version"`
	OS            string `json:"os"`
	OSType        string `json:"os_type"`
	GoVersion     string `json:"go_version"`
}

type Utilization struct {
	MemoryTotal uint64  `json:"memory_total"`
	MemoryUsed  uint64  `json:"memory_used"`
	SwapTotal   uint64  `json:"swap_total"`
	SwapUsed    uint64  `json:"swap_used"`
	LoadAvg1    float64 `json:"load_average1"`
	LoadAvg5    float64 `json:"load_average5"`
	LoadAvg15   float64 `json:"load_average15"`
	CpuPercent  float64 `json:"cpu_percent"`
	DiskTotal   uint64  `json:"disk_total"`
	DiskUsed    uint64  `json:"disk_used"`
}

func GetSystemInformation() (*Information, error) {
	kernelVersion, err := host.KernelVersion()
	if err != nil {
		return nil, errors.Wrap(err, "system: failed to read kernel version")
	}
	platform, _, platformVersion, err := host.PlatformInformation()
	if err != nil {
		return nil, errors.Wrap(err, "system: failed to read platform information")
	}
	m, err := mem.VirtualMemory()
	if err != nil {
		return nil, errors.Wrap(err, "system: failed to read memory")
	}

	osName := runtime.GOOS
	if platform != "" {
		osName = platform
		if platformVersion != "" {
			osName += " " + platformVersion
		}
	}

	return &Information{
		Version: Version,
		System: System{
			Architecture:  runtime.GOARCH,
			CPUThreads:    runtime.NumCPU(),
			MemoryBytes:   m.Total,
			KernelVersion: kernelVersion,
			OS:            osName,
			OSType:        runtime.GOOS,
			GoVersion:     runtime.Version(),
		},
	}, nil
}

// GetSystemUtilization reports the current load of the host. Disk usage is
// that of the filesystem holding root, where the module database lives.
func GetSystemUtilization(root string) (*Utilization, error) {
	c, err := cpu.Percent(0, false)
	if err != nil {
		return nil, errors.Wrap(err, "system: failed to read cpu usage")
	}
	m, err := mem.VirtualMemory()
	if err != nil {
		return nil, errors.Wrap(err, "system: failed to read memory")
	}
	s, err := mem.SwapMemory()
	if err != nil {
		return nil, errors.Wrap(err, "system: failed to read swap")
	}
	l, err := load.Avg()
	if err != nil {
		return nil, errors.Wrap(err, "system: failed to read load average")
	}
	d, err := disk.Usage(root)
	if err != nil {
		return nil, errors.Wrapf(err, "system: failed to read disk usage of %s", root)
	}

	u := &Utilization{
		MemoryTotal: m.Total,
		MemoryUsed:  m.Used,
		SwapTotal:   s.Total,
		SwapUsed:    s.Used,
		LoadAvg1:    l.Load1,
		LoadAvg5:    l.Load5,
		LoadAvg15:   l.Load15,
		DiskTotal:   d.Total,
		DiskUsed:    d.Used,
	}
	if len(c) > 0 {
		u.CpuPercent = c[0]
	}
	return u, nil
}
