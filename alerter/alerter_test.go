package alerter

import (
	"testing"
	"time"

	"github.com/NaveLIL/sysmond/models"
)

func createTestSnapshot(cpu, mem float64, disks ...models.DiskUsage) models.Snapshot {
	return models.Snapshot{
		TakenAt:         time.Unix(1700000000, 0),
		CPUUsagePercent: cpu,
		Memory:          models.MemoryUsage{Percent: mem},
		Disks:           disks,
	}
}

func TestDefaultThresholds(t *testing.T) {
	th := DefaultThresholds()
	if th.CPUPercent != 85 || th.MemoryPercent != 80 || th.DiskPercent != 90 {
		t.Errorf("Unexpected defaults: %+v", th)
	}
	if errs := th.Validate(); len(errs) != 0 {
		t.Errorf("Expected defaults to validate, got %v", errs)
	}
}

func TestValidate(t *testing.T) {
	th := Thresholds{CPUPercent: -1, MemoryPercent: 101, DiskPercent: 50}
	if errs := th.Validate(); len(errs) != 2 {
		t.Errorf("Expected 2 errors, got %v", errs)
	}
}

func TestEvaluateStrictlyGreater(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name string
		cpu  float64
		want int
	}{
		{"below", 84.9, 0},
		{"equal", 85.0, 0},
		{"above", 85.1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := Evaluate(createTestSnapshot(tt.cpu, 0), th)
			if len(alerts) != tt.want {
				t.Fatalf("Expected %d alerts for cpu=%.1f, got %d", tt.want, tt.cpu, len(alerts))
			}
			if tt.want == 1 {
				a := alerts[0]
				if a.Kind != models.AlertKindCPU || a.Subject != "" || a.Observed != tt.cpu || a.Threshold != 85 {
					t.Errorf("Unexpected alert: %+v", a)
				}
			}
		})
	}
}

func TestEvaluateOrder(t *testing.T) {
	snap := createTestSnapshot(99, 99,
		models.DiskUsage{Device: "/dev/sdb1", MountPoint: "/data", Percent: 95},
		models.DiskUsage{Device: "/dev/sda1", MountPoint: "/", Percent: 10},
		models.DiskUsage{Device: "/dev/sda2", MountPoint: "/var", Percent: 91},
	)

	alerts := Evaluate(snap, DefaultThresholds())

	want := []struct {
		kind    models.AlertKind
		subject string
	}{
		{models.AlertKindCPU, ""},
		{models.AlertKindMemory, ""},
		{models.AlertKindDisk, "/dev/sdb1"},
		{models.AlertKindDisk, "/dev/sda2"},
	}
	if len(alerts) != len(want) {
		t.Fatalf("Expected %d alerts, got %d: %+v", len(want), len(alerts), alerts)
	}
	for i, w := range want {
		if alerts[i].Kind != w.kind || alerts[i].Subject != w.subject {
			t.Errorf("At index %d expected %s/%q, got %s/%q", i, w.kind, w.subject, alerts[i].Kind, alerts[i].Subject)
		}
		if !alerts[i].At.Equal(snap.TakenAt) {
			t.Errorf("Expected alert time to match snapshot time")
		}
		if alerts[i].Message == "" {
			t.Errorf("Expected alert message at index %d", i)
		}
	}
}

func TestEvaluateNoComparableValues(t *testing.T) {
	alerts := Evaluate(models.Snapshot{}, DefaultThresholds())
	if len(alerts) != 0 {
		t.Errorf("Expected no alerts for empty snapshot, got %+v", alerts)
	}
}

func TestEvaluateMessage(t *testing.T) {
	alerts := Evaluate(createTestSnapshot(0, 81.25), DefaultThresholds())
	if len(alerts) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(alerts))
	}
	want := "Memory usage (81.2%) exceeds threshold of 80.0%"
	if alerts[0].Message != want {
		t.Errorf("Expected message %q, got %q", want, alerts[0].Message)
	}
}
