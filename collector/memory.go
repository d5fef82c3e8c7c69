package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/mem"
)

// VirtualMemory returns virtual memory statistics.
func (p *PsutilProvider) VirtualMemory(ctx context.Context) (VirtualMemoryStat, error) {
	vmStat, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return VirtualMemoryStat{}, classify("virtual memory", err)
	}
	return VirtualMemoryStat{
		Percent: vmStat.UsedPercent,
		Used:    vmStat.Used,
		Total:   vmStat.Total,
	}, nil
}
