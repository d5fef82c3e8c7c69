package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/process"
)

// Processes enumerates live processes.
// Processes that vanish or deny access mid-enumeration are still reported,
// with a nil MemoryPercent.
func (p *PsutilProvider) Processes(ctx context.Context) ([]ProcessStat, error) {
	processes, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, classify("processes", err)
	}

	result := make([]ProcessStat, 0, len(processes))
	for _, proc := range processes {
		stat := ProcessStat{PID: proc.Pid}

		if name, err := proc.NameWithContext(ctx); err == nil {
			stat.Name = name
		}

		if memPercent, err := proc.MemoryPercentWithContext(ctx); err == nil {
			v := float64(memPercent)
			stat.MemoryPercent = &v
		}

		result = append(result, stat)
	}
	return result, nil
}
