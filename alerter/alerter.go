// Package alerter evaluates metric snapshots against configured thresholds.
package alerter

import (
	"fmt"

	"github.com/NaveLIL/sysmond/models"
)

// Thresholds holds the alert limits, all percentages in [0,100].
type Thresholds struct {
	// CPUPercent is the CPU usage percentage threshold for alerts.
	CPUPercent float64 `mapstructure:"cpu_percent"`
	// MemoryPercent is the RAM usage percentage threshold for alerts.
	MemoryPercent float64 `mapstructure:"memory_percent"`
	// DiskPercent is the per-partition usage percentage threshold for alerts.
	DiskPercent float64 `mapstructure:"disk_percent"`
}

// DefaultThresholds returns the built-in limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CPUPercent:    85.0,
		MemoryPercent: 80.0,
		DiskPercent:   90.0,
	}
}

// Validate validates the thresholds and returns any errors.
func (t Thresholds) Validate() []error {
	var errs []error

	if t.CPUPercent < 0 || t.CPUPercent > 100 {
		errs = append(errs, fmt.Errorf("cpu_percent must be between 0 and 100"))
	}
	if t.MemoryPercent < 0 || t.MemoryPercent > 100 {
		errs = append(errs, fmt.Errorf("memory_percent must be between 0 and 100"))
	}
	if t.DiskPercent < 0 || t.DiskPercent > 100 {
		errs = append(errs, fmt.Errorf("disk_percent must be between 0 and 100"))
	}

	return errs
}

// Evaluate compares the snapshot against the thresholds and returns one
// alert per strictly exceeded limit: CPU first, then memory, then disks in
// snapshot order. It has no side effects.
func Evaluate(snap models.Snapshot, t Thresholds) []models.Alert {
	var alerts []models.Alert

	// Check CPU threshold
	if snap.CPUUsagePercent > t.CPUPercent {
		alerts = append(alerts, models.Alert{
			Kind:      models.AlertKindCPU,
			Observed:  snap.CPUUsagePercent,
			Threshold: t.CPUPercent,
			At:        snap.TakenAt,
			Message: fmt.Sprintf("CPU usage (%.1f%%) exceeds threshold of %.1f%%",
				snap.CPUUsagePercent, t.CPUPercent),
		})
	}

	// Check RAM threshold
	if snap.Memory.Percent > t.MemoryPercent {
		alerts = append(alerts, models.Alert{
			Kind:      models.AlertKindMemory,
			Observed:  snap.Memory.Percent,
			Threshold: t.MemoryPercent,
			At:        snap.TakenAt,
			Message: fmt.Sprintf("Memory usage (%.1f%%) exceeds threshold of %.1f%%",
				snap.Memory.Percent, t.MemoryPercent),
		})
	}

	// Check disk thresholds
	for _, disk := range snap.Disks {
		if disk.Percent > t.DiskPercent {
			alerts = append(alerts, models.Alert{
				Kind:      models.AlertKindDisk,
				Subject:   disk.Device,
				Observed:  disk.Percent,
				Threshold: t.DiskPercent,
				At:        snap.TakenAt,
				Message: fmt.Sprintf("Disk %s (%s) usage (%.1f%%) exceeds threshold of %.1f%%",
					disk.Device, disk.MountPoint, disk.Percent, t.DiskPercent),
			})
		}
	}

	return alerts
}
