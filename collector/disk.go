package collector

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/shirou/gopsutil/v3/disk"
)

// DiskPartitions returns mounted physical partitions.
func (p *PsutilProvider) DiskPartitions(ctx context.Context) ([]PartitionStat, error) {
	partitions, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, classify("disk partitions", err)
	}

	result := make([]PartitionStat, 0, len(partitions))
	for _, partition := range partitions {
		// Skip pseudo entries without a filesystem type
		if partition.Fstype == "" {
			continue
		}
		result = append(result, PartitionStat{
			Device:     partition.Device,
			MountPoint: partition.Mountpoint,
		})
	}
	return result, nil
}

// DiskUsage returns disk usage for a specific mount point.
func (p *PsutilProvider) DiskUsage(ctx context.Context, mountPoint string) (DiskUsageStat, error) {
	usage, err := disk.UsageWithContext(ctx, mountPoint)
	if err != nil {
		// A mount that disappeared since enumeration only affects itself
		if errors.Is(err, fs.ErrNotExist) {
			return DiskUsageStat{}, fmt.Errorf("disk usage %s: %w", mountPoint, err)
		}
		return DiskUsageStat{}, classify("disk usage "+mountPoint, err)
	}
	return DiskUsageStat{
		Used:    usage.Used,
		Total:   usage.Total,
		Free:    usage.Free,
		Percent: usage.UsedPercent,
	}, nil
}
