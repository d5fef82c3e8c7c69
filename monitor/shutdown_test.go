package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/NaveLIL/sysmond/alerter"
	"github.com/NaveLIL/sysmond/collector"
	"github.com/NaveLIL/sysmond/models"
	"github.com/NaveLIL/sysmond/worker"
)

// samplingProvider blocks in CPUPercent for the window, honouring ctx the
// way gopsutil does.
type samplingProvider struct {
	sampling chan struct{}
	once     sync.Once
}

func (p *samplingProvider) CPUPercent(ctx context.Context, window time.Duration) (float64, error) {
	p.once.Do(func() { close(p.sampling) })
	select {
	case <-time.After(window):
		return 37.5, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (p *samplingProvider) LoadAverage(context.Context) (collector.LoadAvg, error) {
	return collector.LoadAvg{Load1: 1, Load5: 1, Load15: 1}, nil
}

func (p *samplingProvider) CPUCoreCount(context.Context) (int, error) { return 2, nil }

func (p *samplingProvider) VirtualMemory(context.Context) (collector.VirtualMemoryStat, error) {
	return collector.VirtualMemoryStat{Percent: 30, Used: 3, Total: 10}, nil
}

func (p *samplingProvider) DiskPartitions(context.Context) ([]collector.PartitionStat, error) {
	return []collector.PartitionStat{{Device: "/dev/sda1", MountPoint: "/"}}, nil
}

func (p *samplingProvider) DiskUsage(context.Context, string) (collector.DiskUsageStat, error) {
	return collector.DiskUsageStat{Used: 1, Total: 2, Free: 1, Percent: 50}, nil
}

func (p *samplingProvider) NetIOCounters(context.Context) (collector.NetIOStat, error) {
	return collector.NetIOStat{Sent: 1, Recv: 1}, nil
}

func (p *samplingProvider) Processes(context.Context) ([]collector.ProcessStat, error) {
	return nil, nil
}

func (p *samplingProvider) SensorsTemperatures(context.Context) ([]collector.TemperatureStat, error) {
	return []collector.TemperatureStat{{Sensor: "acpitz", Current: 40}}, nil
}

func (p *samplingProvider) BootTime(context.Context) (time.Time, error) {
	return time.Unix(1700000000, 0), nil
}

type lockedSink struct {
	mu        sync.Mutex
	snapshots []models.Snapshot
}

func (s *lockedSink) WriteSnapshot(snap models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, snap)
	return nil
}

func (s *lockedSink) WriteAlert(models.Alert) error { return nil }
func (s *lockedSink) WriteMessage(string) error     { return nil }

func TestStopDuringSampleRecordsNoDegradedSnapshot(t *testing.T) {
	log, _ := test.NewNullLogger()
	entry := logrus.NewEntry(log)

	provider := &samplingProvider{sampling: make(chan struct{})}
	builder := collector.NewBuilder(provider, entry, collector.WithSampleWindow(200*time.Millisecond))
	sink := &lockedSink{}
	m := New(builder, alerter.DefaultThresholds(), sink, entry)

	d := worker.New("test", time.Hour, m.Run, entry)
	d.Start()
	<-provider.sampling
	time.Sleep(20 * time.Millisecond)
	d.Stop()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	for _, snap := range sink.snapshots {
		if snap.CPUUsagePercent != 37.5 {
			t.Errorf("Expected full CPU sample 37.5, got %.2f", snap.CPUUsagePercent)
		}
		if len(snap.Warnings) != 0 {
			t.Errorf("Expected no warnings, got %v", snap.Warnings)
		}
	}
	if len(sink.snapshots) != 1 {
		t.Errorf("Expected the in-flight cycle to record 1 snapshot, got %d", len(sink.snapshots))
	}
}
