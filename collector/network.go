package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/net"
)

// NetIOCounters returns host-wide network counters since boot.
func (p *PsutilProvider) NetIOCounters(ctx context.Context) (NetIOStat, error) {
	counters, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return NetIOStat{}, classify("net io counters", err)
	}
	if len(counters) == 0 {
		return NetIOStat{}, nil
	}

	// With pernic=false gopsutil returns a single "all" entry
	all := counters[0]
	return NetIOStat{
		Sent:    all.BytesSent,
		Recv:    all.BytesRecv,
		ErrIn:   all.Errin,
		ErrOut:  all.Errout,
		DropIn:  all.Dropin,
		DropOut: all.Dropout,
	}, nil
}
