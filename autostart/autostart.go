// Package autostart installs sysmond as a systemd service.
package autostart

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/sirupsen/logrus"
)

// UnitName is the systemd unit file name.
const UnitName = "sysmond.service"

const (
	systemUnitDir = "/etc/systemd/system"
	userUnitDir   = "systemd/user"
)

var unitTemplate = template.Must(template.New("unit").Parse(`[Unit]
Description=SysMon host metrics daemon
After=network.target

[Service]
Type=simple
ExecStart={{.ExecStart}}{{if .ConfigPath}} -config {{.ConfigPath}}{{end}}
Restart=on-failure
RestartSec=10

[Install]
WantedBy={{.WantedBy}}
`))

// Manager manages the systemd unit for the daemon.
type Manager struct {
	unitDir    string
	wantedBy   string
	configPath string
	log        *logrus.Entry
}

// New creates a manager targeting the system unit directory when running as
// root and the user unit directory otherwise.
func New(configPath string, log *logrus.Entry) (*Manager, error) {
	if os.Geteuid() == 0 {
		return NewWithDir(systemUnitDir, "multi-user.target", configPath, log), nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user config dir: %w", err)
	}
	return NewWithDir(filepath.Join(configDir, userUnitDir), "default.target", configPath, log), nil
}

// NewWithDir creates a manager writing units into unitDir.
func NewWithDir(unitDir, wantedBy, configPath string, log *logrus.Entry) *Manager {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Manager{
		unitDir:    unitDir,
		wantedBy:   wantedBy,
		configPath: configPath,
		log:        log.WithField("component", "autostart"),
	}
}

// UnitPath returns the full path of the unit file.
func (m *Manager) UnitPath() string {
	return filepath.Join(m.unitDir, UnitName)
}

// IsEnabled checks if the unit file is installed.
func (m *Manager) IsEnabled() (bool, error) {
	_, err := os.Stat(m.UnitPath())
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat unit file: %w", err)
	}
	return true, nil
}

// Enable writes the unit file pointing at the running executable.
func (m *Manager) Enable() error {
	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	// Get absolute path
	exePath, err = filepath.Abs(exePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	return m.install(exePath)
}

func (m *Manager) install(exePath string) error {
	unit, err := m.Render(exePath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(m.unitDir, 0755); err != nil {
		return fmt.Errorf("failed to create unit directory: %w", err)
	}
	if err := os.WriteFile(m.UnitPath(), unit, 0644); err != nil {
		return fmt.Errorf("failed to write unit file: %w", err)
	}

	m.log.Infof("Autostart enabled: %s", m.UnitPath())
	return nil
}

// Render returns the unit file contents for the given executable.
func (m *Manager) Render(exePath string) ([]byte, error) {
	var buf bytes.Buffer
	err := unitTemplate.Execute(&buf, struct {
		ExecStart  string
		ConfigPath string
		WantedBy   string
	}{exePath, m.configPath, m.wantedBy})
	if err != nil {
		return nil, fmt.Errorf("failed to render unit file: %w", err)
	}
	return buf.Bytes(), nil
}

// Disable removes the unit file.
func (m *Manager) Disable() error {
	err := os.Remove(m.UnitPath())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove unit file: %w", err)
	}

	m.log.Info("Autostart disabled")
	return nil
}

// Toggle toggles the autostart setting.
func (m *Manager) Toggle() (bool, error) {
	enabled, err := m.IsEnabled()
	if err != nil {
		return false, err
	}

	if enabled {
		err = m.Disable()
		return false, err
	}

	err = m.Enable()
	return true, err
}
