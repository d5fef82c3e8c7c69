package collector

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
)

// CPUPercent gets CPU usage over the given window.
// This is a blocking call that waits for the window unless ctx is cancelled.
func (p *PsutilProvider) CPUPercent(ctx context.Context, window time.Duration) (float64, error) {
	percentages, err := cpu.PercentWithContext(ctx, window, false)
	if err != nil {
		return 0, classify("cpu percent", err)
	}
	if len(percentages) > 0 {
		return percentages[0], nil
	}
	return 0, nil
}

// LoadAverage returns the system load averages.
func (p *PsutilProvider) LoadAverage(ctx context.Context) (LoadAvg, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return LoadAvg{}, classify("load average", err)
	}
	return LoadAvg{Load1: avg.Load1, Load5: avg.Load5, Load15: avg.Load15}, nil
}

// CPUCoreCount returns the number of logical CPUs.
func (p *PsutilProvider) CPUCoreCount(ctx context.Context) (int, error) {
	n, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return 0, classify("cpu count", err)
	}
	return n, nil
}
