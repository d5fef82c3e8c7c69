// Package models defines data structures for system metrics.
package models

import "time"

// Snapshot represents a complete, point-in-time capture of host metrics.
// A Snapshot is built once per cycle and must be treated as read-only by
// every consumer.
type Snapshot struct {
	// TakenAt is when the capture started.
	TakenAt time.Time `json:"taken_at"`
	// CPUUsagePercent is the utilization over the sampling window (0-100).
	CPUUsagePercent float64 `json:"cpu_usage_percent"`
	// CPULoadAverage holds the 1/5/15 minute load normalized by core count,
	// expressed as a percentage of total capacity.
	CPULoadAverage []float64 `json:"cpu_load_average"`
	// Memory contains virtual memory usage.
	Memory MemoryUsage `json:"memory"`
	// Disks contains one entry per queryable partition in discovery order.
	Disks []DiskUsage `json:"disks"`
	// Network contains cumulative interface counters since boot.
	Network NetworkCounters `json:"network"`
	// Temperatures maps a sensor label to its reading in Celsius.
	// Empty when the host exposes no sensors.
	Temperatures map[string]float64 `json:"temperatures"`
	// TopProcesses holds at most five processes sorted by memory usage.
	TopProcesses []ProcessInfo `json:"top_processes"`
	// BootTime is when the host last booted.
	BootTime time.Time `json:"boot_time"`
	// Warnings lists categories that degraded during this capture.
	Warnings []string `json:"warnings,omitempty"`
}

// MemoryUsage contains RAM-related metrics.
type MemoryUsage struct {
	// Percent is the percentage of RAM used (0-100).
	Percent float64 `json:"percent"`
	// UsedBytes is the amount of RAM in use.
	UsedBytes uint64 `json:"used_bytes"`
	// TotalBytes is the total amount of RAM.
	TotalBytes uint64 `json:"total_bytes"`
}

// DiskUsage contains usage of a single partition.
type DiskUsage struct {
	// Device is the block device identifier (e.g., "/dev/nvme0n1p2").
	Device string `json:"device"`
	// MountPoint is where the device is mounted.
	MountPoint string `json:"mount_point"`
	// Percent is the percentage of space used.
	Percent float64 `json:"percent"`
	// UsedBytes is the used space.
	UsedBytes uint64 `json:"used_bytes"`
	// TotalBytes is the partition size.
	TotalBytes uint64 `json:"total_bytes"`
	// FreeBytes is the space available.
	FreeBytes uint64 `json:"free_bytes"`
}

// NetworkCounters contains cumulative network I/O counters.
type NetworkCounters struct {
	BytesSent     uint64 `json:"bytes_sent"`
	BytesReceived uint64 `json:"bytes_received"`
	ErrorsIn      uint64 `json:"errors_in"`
	ErrorsOut     uint64 `json:"errors_out"`
	DropsIn       uint64 `json:"drops_in"`
	DropsOut      uint64 `json:"drops_out"`
}

// ProcessInfo contains information about a running process.
type ProcessInfo struct {
	// PID is the process ID.
	PID int32 `json:"pid"`
	// Name is the process name.
	Name string `json:"name"`
	// MemoryPercent is the share of physical memory used by the process.
	MemoryPercent float64 `json:"memory_percent"`
}

// Disk returns the entry for the given device, if present.
func (s Snapshot) Disk(device string) (DiskUsage, bool) {
	for _, d := range s.Disks {
		if d.Device == device {
			return d, true
		}
	}
	return DiskUsage{}, false
}

// AlertKind represents the category of a threshold breach.
type AlertKind string

const (
	AlertKindCPU    AlertKind = "CPU"
	AlertKindMemory AlertKind = "MEMORY"
	AlertKindDisk   AlertKind = "DISK"
)

// Alert represents a metric value that exceeded its configured limit.
// Alerts are produced per cycle and never retained.
type Alert struct {
	// Kind is the alert category.
	Kind AlertKind `json:"kind"`
	// Subject names the resource, e.g. a disk device. Empty for CPU and memory.
	Subject string `json:"subject,omitempty"`
	// Observed is the value that triggered the alert.
	Observed float64 `json:"observed"`
	// Threshold is the limit that was exceeded.
	Threshold float64 `json:"threshold"`
	// At is the capture time of the snapshot the alert was derived from.
	At time.Time `json:"at"`
	// Message is a human-readable description.
	Message string `json:"message"`
}

// HostInfo contains static host information logged at startup.
type HostInfo struct {
	Hostname string `json:"hostname"`
	OS       string `json:"os"`
	Platform string `json:"platform"`
	Kernel   string `json:"kernel"`
	CPUCores int    `json:"cpu_cores"`
}
