package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/NaveLIL/sysmond/alerter"
	"github.com/NaveLIL/sysmond/collector"
	"github.com/NaveLIL/sysmond/models"
)

type fakeCapturer struct {
	snap models.Snapshot
	err  error
}

func (f *fakeCapturer) Capture(context.Context) (models.Snapshot, error) {
	return f.snap, f.err
}

type fakeSink struct {
	snapshots []models.Snapshot
	alerts    []models.Alert
	messages  []string
	err       error
}

func (f *fakeSink) WriteSnapshot(snap models.Snapshot) error {
	f.snapshots = append(f.snapshots, snap)
	return f.err
}

func (f *fakeSink) WriteAlert(alert models.Alert) error {
	f.alerts = append(f.alerts, alert)
	return f.err
}

func (f *fakeSink) WriteMessage(msg string) error {
	f.messages = append(f.messages, msg)
	return f.err
}

func newTestMonitor(c Capturer, sink RecordSink) (*Monitor, *test.Hook) {
	log, hook := test.NewNullLogger()
	return New(c, alerter.DefaultThresholds(), sink, logrus.NewEntry(log)), hook
}

func hotSnapshot() models.Snapshot {
	return models.Snapshot{
		TakenAt:         time.Unix(1700000000, 0),
		CPUUsagePercent: 95,
		Memory:          models.MemoryUsage{Percent: 50},
		Disks: []models.DiskUsage{
			{Device: "/dev/sda1", MountPoint: "/", Percent: 95},
			{Device: "/dev/sdb1", MountPoint: "/data", Percent: 10},
		},
	}
}

func TestNewWritesBanner(t *testing.T) {
	sink := &fakeSink{}
	newTestMonitor(&fakeCapturer{}, sink)

	if len(sink.messages) != 1 || sink.messages[0] != StartBanner {
		t.Errorf("Expected start banner, got %v", sink.messages)
	}
}

func TestRunRecordsSnapshotAndAlerts(t *testing.T) {
	sink := &fakeSink{}
	m, _ := newTestMonitor(&fakeCapturer{snap: hotSnapshot()}, sink)

	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(sink.snapshots) != 1 {
		t.Fatalf("Expected 1 snapshot, got %d", len(sink.snapshots))
	}
	if len(sink.alerts) != 2 {
		t.Fatalf("Expected 2 alerts, got %d", len(sink.alerts))
	}
	if sink.alerts[0].Kind != models.AlertKindCPU {
		t.Errorf("Expected CPU alert first, got %s", sink.alerts[0].Kind)
	}
	if sink.alerts[1].Kind != models.AlertKindDisk || sink.alerts[1].Subject != "/dev/sda1" {
		t.Errorf("Expected disk alert for /dev/sda1, got %+v", sink.alerts[1])
	}
}

func TestRunNoAlertsBelowThresholds(t *testing.T) {
	sink := &fakeSink{}
	snap := models.Snapshot{CPUUsagePercent: 10, Memory: models.MemoryUsage{Percent: 10}}
	m, _ := newTestMonitor(&fakeCapturer{snap: snap}, sink)

	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(sink.alerts) != 0 {
		t.Errorf("Expected no alerts, got %v", sink.alerts)
	}
}

func TestRunSinkErrorsAreNotFatal(t *testing.T) {
	sink := &fakeSink{err: errors.New("disk full")}
	m, hook := newTestMonitor(&fakeCapturer{snap: hotSnapshot()}, sink)
	hook.Reset()

	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Expected sink errors to be swallowed, got %v", err)
	}

	var warnings int
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warnings++
		}
	}
	// snapshot + two alerts
	if warnings != 3 {
		t.Errorf("Expected 3 warnings, got %d", warnings)
	}
}

func TestRunCaptureErrorIsReturned(t *testing.T) {
	sink := &fakeSink{}
	m, _ := newTestMonitor(&fakeCapturer{err: collector.ErrProviderUnavailable}, sink)

	err := m.Run(context.Background())
	if !errors.Is(err, collector.ErrProviderUnavailable) {
		t.Errorf("Expected ErrProviderUnavailable, got %v", err)
	}
	if len(sink.snapshots) != 0 {
		t.Error("Expected nothing recorded after capture failure")
	}
}

func TestThresholds(t *testing.T) {
	m, _ := newTestMonitor(&fakeCapturer{}, &fakeSink{})
	if m.Thresholds() != alerter.DefaultThresholds() {
		t.Errorf("Expected default thresholds, got %+v", m.Thresholds())
	}
}
