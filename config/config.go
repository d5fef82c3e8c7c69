// Package config provides configuration management for sysmond.
package config

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/NaveLIL/sysmond/alerter"
)

//go:embed config.yaml
var defaultConfig embed.FS

// EnvPrefix is the prefix for environment overrides, e.g. SYSMOND_DAEMON_NAME.
const EnvPrefix = "SYSMOND"

// Loop interval profiles.
const (
	ProfileFast     = "fast"
	ProfileStandard = "standard"
	ProfileSlow     = "slow"
)

var profileIntervals = map[string]time.Duration{
	ProfileFast:     5 * time.Second,
	ProfileStandard: 20 * time.Second,
	ProfileSlow:     300 * time.Second,
}

// Config holds all application configuration.
type Config struct {
	Daemon     DaemonConfig       `mapstructure:"daemon"`
	Collection CollectionConfig   `mapstructure:"collection"`
	Thresholds alerter.Thresholds `mapstructure:"thresholds"`
	Logging    LoggingConfig      `mapstructure:"logging"`
	Records    RecordsConfig      `mapstructure:"records"`
}

// DaemonConfig holds worker daemon settings.
type DaemonConfig struct {
	// Name identifies the daemon in log lines.
	Name string `mapstructure:"name"`
	// LoopInterval is the wait between sampling cycles. When zero, the
	// profile decides.
	LoopInterval time.Duration `mapstructure:"loop_interval"`
	// Profile is one of "fast" (5s), "standard" (20s) or "slow" (300s).
	Profile string `mapstructure:"profile"`
}

// CollectionConfig holds snapshot collection settings.
type CollectionConfig struct {
	// CPUSampleWindow is how long CPU utilization is sampled.
	CPUSampleWindow time.Duration `mapstructure:"cpu_sample_window"`
	// TopProcessCount is how many processes are kept, at most 5.
	TopProcessCount int `mapstructure:"top_process_count"`
}

// LoggingConfig holds logging-related settings.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string `mapstructure:"level"`
	// Format is "text" or "json".
	Format string `mapstructure:"format"`
	// ToFile enables logging to a file.
	ToFile bool `mapstructure:"to_file"`
	// FilePath is the path to the log file (relative to config dir if not absolute).
	FilePath string `mapstructure:"file_path"`
	// MaxSizeMB is the maximum log file size before rotation.
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the maximum number of old log files to retain.
	MaxBackups int `mapstructure:"max_backups"`
	// MaxAgeDays is the maximum age of log files in days.
	MaxAgeDays int `mapstructure:"max_age_days"`
	// Compress gzips rotated files.
	Compress bool `mapstructure:"compress"`
}

// RecordsConfig holds settings for the metrics record file.
type RecordsConfig struct {
	// Path is the JSON-lines record file (relative to config dir if not absolute).
	Path string `mapstructure:"path"`
	// CSVExport enables a CSV summary of each snapshot.
	CSVExport bool `mapstructure:"csv_export"`
	// CSVPath is the path to the CSV file.
	CSVPath string `mapstructure:"csv_path"`
}

// Manager handles configuration loading.
type Manager struct {
	mu       sync.RWMutex
	config   *Config
	viper    *viper.Viper
	filePath string
}

// NewManager creates a configuration manager.
func NewManager() *Manager {
	return &Manager{
		viper: viper.New(),
	}
}

// Load loads the configuration from the specified file path.
// If the file doesn't exist, it is created from the embedded defaults.
// An empty path uses the embedded defaults without touching the disk.
func (m *Manager) Load(configPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.filePath = configPath

	// Set up viper
	m.viper.SetConfigType("yaml")
	m.viper.SetEnvPrefix(EnvPrefix)
	m.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.viper.AutomaticEnv()

	// Set defaults
	m.setDefaults()

	// Try to read the config file
	if configPath != "" {
		m.viper.SetConfigFile(configPath)
		if err := m.viper.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				return fmt.Errorf("failed to read config: %w", err)
			}
			if err := createDefaultConfig(configPath); err != nil {
				return fmt.Errorf("failed to create default config: %w", err)
			}
			if err := m.viper.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}
		}
	} else {
		data, err := defaultConfig.ReadFile("config.yaml")
		if err != nil {
			return fmt.Errorf("failed to read embedded config: %w", err)
		}
		if err := m.viper.ReadConfig(bytes.NewReader(data)); err != nil {
			return fmt.Errorf("failed to parse embedded config: %w", err)
		}
	}

	// Unmarshal into config struct
	cfg := &Config{}
	if err := m.viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.applyProfile()

	m.config = cfg
	return nil
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// FilePath returns the path the configuration was loaded from.
func (m *Manager) FilePath() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filePath
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() (string, error) {
	if os.Geteuid() == 0 {
		return "/etc/sysmond", nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "sysmond"), nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{
		Daemon: DaemonConfig{
			Name:    "SysMon",
			Profile: ProfileSlow,
		},
		Collection: CollectionConfig{
			CPUSampleWindow: time.Second,
			TopProcessCount: 5,
		},
		Thresholds: alerter.DefaultThresholds(),
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			ToFile:     true,
			FilePath:   "logs/sysmond.log",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 7,
			Compress:   true,
		},
		Records: RecordsConfig{
			Path:      "logs/system_monitoring.log",
			CSVExport: false,
			CSVPath:   "logs/metrics.csv",
		},
	}
	cfg.applyProfile()
	return cfg
}

// setDefaults sets default configuration values.
func (m *Manager) setDefaults() {
	d := Default()

	// Daemon defaults; loop_interval has no default so the profile applies
	m.viper.SetDefault("daemon.name", d.Daemon.Name)
	m.viper.SetDefault("daemon.profile", d.Daemon.Profile)
	if err := m.viper.BindEnv("daemon.loop_interval"); err != nil {
		panic(err)
	}

	// Collection defaults
	m.viper.SetDefault("collection.cpu_sample_window", d.Collection.CPUSampleWindow.String())
	m.viper.SetDefault("collection.top_process_count", d.Collection.TopProcessCount)

	// Threshold defaults
	m.viper.SetDefault("thresholds.cpu_percent", d.Thresholds.CPUPercent)
	m.viper.SetDefault("thresholds.memory_percent", d.Thresholds.MemoryPercent)
	m.viper.SetDefault("thresholds.disk_percent", d.Thresholds.DiskPercent)

	// Logging defaults
	m.viper.SetDefault("logging.level", d.Logging.Level)
	m.viper.SetDefault("logging.format", d.Logging.Format)
	m.viper.SetDefault("logging.to_file", d.Logging.ToFile)
	m.viper.SetDefault("logging.file_path", d.Logging.FilePath)
	m.viper.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	m.viper.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	m.viper.SetDefault("logging.max_age_days", d.Logging.MaxAgeDays)
	m.viper.SetDefault("logging.compress", d.Logging.Compress)

	// Records defaults
	m.viper.SetDefault("records.path", d.Records.Path)
	m.viper.SetDefault("records.csv_export", d.Records.CSVExport)
	m.viper.SetDefault("records.csv_path", d.Records.CSVPath)
}

// applyProfile fills LoopInterval from the profile when it was not given.
func (c *Config) applyProfile() {
	if c.Daemon.LoopInterval > 0 {
		return
	}
	if d, ok := profileIntervals[c.Daemon.Profile]; ok {
		c.Daemon.LoopInterval = d
		return
	}
	c.Daemon.LoopInterval = profileIntervals[ProfileSlow]
}

// createDefaultConfig creates a default configuration file.
func createDefaultConfig(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Read embedded default config
	data, err := defaultConfig.ReadFile("config.yaml")
	if err != nil {
		return err
	}

	// Write to file
	return os.WriteFile(path, data, 0644)
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() []error {
	var errs []error

	// Validate daemon config
	if strings.TrimSpace(c.Daemon.Name) == "" {
		errs = append(errs, fmt.Errorf("daemon name must not be empty"))
	}
	if c.Daemon.LoopInterval < time.Second {
		errs = append(errs, fmt.Errorf("loop_interval must be at least 1s"))
	}
	if _, ok := profileIntervals[c.Daemon.Profile]; !ok && c.Daemon.Profile != "" {
		errs = append(errs, fmt.Errorf("invalid profile: %s", c.Daemon.Profile))
	}

	// Validate collection config
	if c.Collection.CPUSampleWindow <= 0 {
		errs = append(errs, fmt.Errorf("cpu_sample_window must be positive"))
	} else if c.Collection.CPUSampleWindow >= c.Daemon.LoopInterval {
		errs = append(errs, fmt.Errorf("cpu_sample_window must be shorter than loop_interval"))
	}
	if c.Collection.TopProcessCount < 1 || c.Collection.TopProcessCount > 5 {
		errs = append(errs, fmt.Errorf("top_process_count must be between 1 and 5"))
	}

	// Validate alert thresholds
	errs = append(errs, c.Thresholds.Validate()...)

	// Validate logging config
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, fmt.Errorf("invalid log level: %s", c.Logging.Level))
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		errs = append(errs, fmt.Errorf("invalid log format: %s", c.Logging.Format))
	}

	if strings.TrimSpace(c.Records.Path) == "" {
		errs = append(errs, fmt.Errorf("records path must not be empty"))
	}

	return errs
}
