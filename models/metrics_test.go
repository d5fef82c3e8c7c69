package models

import "testing"

func TestSnapshotDisk(t *testing.T) {
	snap := Snapshot{
		Disks: []DiskUsage{
			{Device: "/dev/sda1", MountPoint: "/", Percent: 40},
			{Device: "/dev/sdb1", MountPoint: "/data", Percent: 80},
		},
	}

	d, ok := snap.Disk("/dev/sdb1")
	if !ok {
		t.Fatal("Expected /dev/sdb1 to be found")
	}
	if d.MountPoint != "/data" {
		t.Errorf("Expected mount point /data, got %s", d.MountPoint)
	}

	if _, ok := snap.Disk("/dev/sdc1"); ok {
		t.Error("Expected /dev/sdc1 to be missing")
	}
}
