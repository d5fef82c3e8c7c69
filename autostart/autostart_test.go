package autostart

import (
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func newTestManager(t *testing.T) *Manager {
	log, _ := test.NewNullLogger()
	return NewWithDir(t.TempDir(), "default.target", "/etc/sysmond/config.yaml", logrus.NewEntry(log))
}

func TestRender(t *testing.T) {
	m := newTestManager(t)

	unit, err := m.Render("/usr/local/bin/sysmond")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	s := string(unit)
	if !strings.Contains(s, "ExecStart=/usr/local/bin/sysmond -config /etc/sysmond/config.yaml") {
		t.Errorf("Expected ExecStart line, got:\n%s", s)
	}
	if !strings.Contains(s, "WantedBy=default.target") {
		t.Errorf("Expected WantedBy line, got:\n%s", s)
	}
}

func TestInstallAndDisable(t *testing.T) {
	m := newTestManager(t)

	enabled, err := m.IsEnabled()
	if err != nil || enabled {
		t.Fatalf("Expected disabled before install, got %v, %v", enabled, err)
	}

	if err := m.install("/usr/local/bin/sysmond"); err != nil {
		t.Fatalf("install() error = %v", err)
	}
	if _, err := os.Stat(m.UnitPath()); err != nil {
		t.Errorf("Expected unit file: %v", err)
	}
	if enabled, _ := m.IsEnabled(); !enabled {
		t.Error("Expected enabled after install")
	}

	if err := m.Disable(); err != nil {
		t.Fatalf("Disable() error = %v", err)
	}
	if enabled, _ := m.IsEnabled(); enabled {
		t.Error("Expected disabled after Disable")
	}

	// Disabling twice is not an error
	if err := m.Disable(); err != nil {
		t.Errorf("Expected second Disable to succeed, got %v", err)
	}
}

func TestToggle(t *testing.T) {
	m := newTestManager(t)

	enabled, err := m.Toggle()
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if !enabled {
		t.Error("Expected first toggle to enable")
	}

	enabled, err = m.Toggle()
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if enabled {
		t.Error("Expected second toggle to disable")
	}
}
