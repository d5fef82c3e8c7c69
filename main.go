// sysmond - host metrics sampling daemon
//
// Periodically samples CPU, memory, disk, network, temperature and process
// metrics, checks them against alert thresholds and appends the results to a
// rotating record file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/NaveLIL/sysmond/alerter"
	"github.com/NaveLIL/sysmond/autostart"
	"github.com/NaveLIL/sysmond/collector"
	"github.com/NaveLIL/sysmond/config"
	"github.com/NaveLIL/sysmond/logger"
	"github.com/NaveLIL/sysmond/models"
	"github.com/NaveLIL/sysmond/monitor"
	"github.com/NaveLIL/sysmond/utils"
	"github.com/NaveLIL/sysmond/worker"
)

const (
	appName    = "sysmond"
	appVersion = "1.0.0"

	livenessInterval = time.Second
	shutdownTimeout  = 10 * time.Second
)

// Application holds all application components.
type Application struct {
	config     *config.Config
	configPath string
	log        *logger.Logger
	provider   *collector.PsutilProvider
	builder    *collector.Builder
	sink       *logger.Sink
	daemon     *worker.Daemon
}

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	version := flag.Bool("version", false, "Print version and exit")
	interval := flag.Duration("interval", 0, "Override the loop interval (e.g. 20s)")
	once := flag.Bool("once", false, "Capture a single snapshot, print it as JSON and exit")
	install := flag.Bool("install", false, "Install the systemd unit and exit")
	uninstall := flag.Bool("uninstall", false, "Remove the systemd unit and exit")
	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", appName, appVersion)
		os.Exit(0)
	}

	// Create application
	app := &Application{}

	// Initialize and run
	if err := app.init(*configPath, *debug, *interval); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer app.close()

	var err error
	switch {
	case *install || *uninstall:
		err = app.installUnit(*install)
	case *once:
		err = app.runOnce()
	default:
		app.run()
	}
	if err != nil {
		app.log.Error(err)
		app.close()
		os.Exit(1)
	}
}

// init loads configuration and builds all components.
func (app *Application) init(configPath string, debug bool, interval time.Duration) error {
	var err error

	if configPath == "" {
		configPath, err = config.GetDefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}
	app.configPath = configPath

	// Load configuration
	mgr := config.NewManager()
	if err := mgr.Load(configPath); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.config = mgr.Get()

	// Command line overrides
	if debug {
		app.config.Logging.Level = "debug"
	}
	if interval > 0 {
		app.config.Daemon.LoopInterval = interval
	}

	if errs := app.config.Validate(); len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		}
		return fmt.Errorf("invalid configuration in %s", configPath)
	}

	// Get config directory for log and record files
	configDir := filepath.Dir(configPath)

	app.log, err = logger.New(&app.config.Logging, configDir)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.log.Infof("Starting %s v%s", appName, appVersion)
	app.log.Infof("Config loaded from: %s", configPath)

	app.provider = collector.NewPsutilProvider()
	app.builder = collector.NewBuilder(
		app.provider,
		app.log.Component("collector"),
		collector.WithSampleWindow(app.config.Collection.CPUSampleWindow),
		collector.WithTopProcesses(app.config.Collection.TopProcessCount),
	)

	app.sink, err = logger.NewSink(&app.config.Records, &app.config.Logging, configDir, app.log.Component("sink"))
	if err != nil {
		return fmt.Errorf("failed to open record sink: %w", err)
	}

	return nil
}

// run starts the daemon and blocks until a signal arrives or the daemon
// stops itself.
func (app *Application) run() {
	// Set up signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, unix.SIGINT, unix.SIGTERM, unix.SIGHUP)
	defer signal.Stop(sigCh)

	app.logSystemInfo()

	mon := monitor.New(app.builder, app.config.Thresholds, app.sink, app.log.Component("monitor"))
	app.daemon = worker.New(app.config.Daemon.Name, app.config.Daemon.LoopInterval, mon.Run, app.log.Component("worker"))

	thresholds := mon.Thresholds()
	app.log.WithFields(logrus.Fields{
		"daemon":         app.daemon.Name(),
		"interval":       app.daemon.Interval(),
		"sample_window":  app.builder.SampleWindow(),
		"cpu_percent":    thresholds.CPUPercent,
		"memory_percent": thresholds.MemoryPercent,
		"disk_percent":   thresholds.DiskPercent,
	}).Info("Daemon configured")

	app.daemon.Start()
	fmt.Println("System monitor is running. Press Ctrl+C to stop.")

	ticker := time.NewTicker(livenessInterval)
	defer ticker.Stop()

	for {
		select {
		case sig := <-sigCh:
			app.shutdown(sig)
			return
		case <-app.daemon.Done():
			app.log.Warn("Daemon stopped on its own, exiting")
			return
		case <-ticker.C:
			if !app.daemon.IsRunning() {
				app.log.Warn("Daemon is no longer running, exiting")
				return
			}
		}
	}
}

// shutdown forwards the signal to the daemon and waits a bounded time for it.
func (app *Application) shutdown(sig os.Signal) {
	if sig == unix.SIGINT {
		fmt.Println("\nCtrl+C detected. Shutting down...")
	} else {
		fmt.Printf("\nReceived %s. Shutting down...\n", sig)
	}

	done := make(chan struct{})
	go func() {
		app.daemon.HandleSignal(sig)
		close(done)
	}()

	select {
	case <-done:
		app.log.Info("Shutdown complete")
	case <-time.After(shutdownTimeout):
		app.log.Warn("Shutdown timeout, forcing exit")
	}
}

// runOnce captures and evaluates a single snapshot and prints it.
func (app *Application) runOnce() error {
	ctx, cancel := signal.NotifyContext(context.Background(), unix.SIGINT, unix.SIGTERM)
	defer cancel()

	snap, err := app.builder.Capture(ctx)
	if err != nil {
		return fmt.Errorf("capture failed: %w", err)
	}

	out := struct {
		Snapshot models.Snapshot `json:"snapshot"`
		Alerts   []models.Alert  `json:"alerts"`
	}{snap, alerter.Evaluate(snap, app.config.Thresholds)}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// installUnit installs or removes the systemd unit.
func (app *Application) installUnit(enable bool) error {
	configPath, err := filepath.Abs(app.configPath)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}

	m, err := autostart.New(configPath, app.log.Component("autostart"))
	if err != nil {
		return err
	}
	if enable {
		if err := m.Enable(); err != nil {
			return err
		}
		fmt.Printf("Installed %s\n", m.UnitPath())
		return nil
	}
	if err := m.Disable(); err != nil {
		return err
	}
	fmt.Printf("Removed %s\n", m.UnitPath())
	return nil
}

// logSystemInfo logs static host information.
func (app *Application) logSystemInfo() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	info, err := app.provider.HostInfo(ctx)
	if err != nil {
		app.log.Warnf("Failed to read host info: %v", err)
		return
	}

	app.log.Info("=== Host Detected ===")
	app.log.Infof("Host: %s (%s, kernel %s)", info.Hostname, info.Platform, info.Kernel)
	app.log.Infof("CPU cores: %d", info.CPUCores)
	if boot, err := app.provider.BootTime(ctx); err == nil {
		app.log.Infof("Uptime: %s", utils.FormatUptime(time.Since(boot)))
	}
	app.log.Info("=====================")
}

// close releases the record sink and the logger.
func (app *Application) close() {
	if app.sink != nil {
		if err := app.sink.Close(); err != nil {
			app.log.Warnf("Failed to close record sink: %v", err)
		}
		app.sink = nil
	}
	if app.log != nil {
		app.log.Close()
		app.log = nil
	}
}
