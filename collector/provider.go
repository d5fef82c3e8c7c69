package collector

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrProviderUnavailable means the metrics source cannot be reached at all.
	ErrProviderUnavailable = errors.New("metrics provider unavailable")
	// ErrPermissionDenied means a single reading was refused by the OS.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotSupported means the host lacks the requested capability.
	ErrNotSupported = errors.New("not supported on this host")
)

// Provider supplies raw point-in-time OS readings.
type Provider interface {
	// CPUPercent blocks for window and returns overall utilization.
	CPUPercent(ctx context.Context, window time.Duration) (float64, error)
	// LoadAverage returns the raw 1, 5 and 15 minute load figures.
	LoadAverage(ctx context.Context) (LoadAvg, error)
	// CPUCoreCount returns the number of logical cores.
	CPUCoreCount(ctx context.Context) (int, error)
	VirtualMemory(ctx context.Context) (VirtualMemoryStat, error)
	DiskPartitions(ctx context.Context) ([]PartitionStat, error)
	// DiskUsage may fail with an error wrapping ErrPermissionDenied.
	DiskUsage(ctx context.Context, mountPoint string) (DiskUsageStat, error)
	NetIOCounters(ctx context.Context) (NetIOStat, error)
	Processes(ctx context.Context) ([]ProcessStat, error)
	// SensorsTemperatures returns ErrNotSupported when the host has no sensors API.
	SensorsTemperatures(ctx context.Context) ([]TemperatureStat, error)
	BootTime(ctx context.Context) (time.Time, error)
}

// LoadAvg holds raw load averages.
type LoadAvg struct {
	Load1  float64
	Load5  float64
	Load15 float64
}

// VirtualMemoryStat holds raw virtual memory figures.
type VirtualMemoryStat struct {
	Percent float64
	Used    uint64
	Total   uint64
}

// PartitionStat identifies a mounted partition.
type PartitionStat struct {
	Device     string
	MountPoint string
}

// DiskUsageStat holds raw usage of one mount point.
type DiskUsageStat struct {
	Used    uint64
	Total   uint64
	Free    uint64
	Percent float64
}

// NetIOStat holds host-wide network counters.
type NetIOStat struct {
	Sent    uint64
	Recv    uint64
	ErrIn   uint64
	ErrOut  uint64
	DropIn  uint64
	DropOut uint64
}

// ProcessStat is one enumerated process. MemoryPercent is nil when the
// reading could not be obtained.
type ProcessStat struct {
	PID           int32
	Name          string
	MemoryPercent *float64
}

// TemperatureStat is one sensor reading.
type TemperatureStat struct {
	Sensor  string
	Label   string
	Current float64
}
