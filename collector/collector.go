// Package collector provides system metrics collection functionality.
package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/NaveLIL/sysmond/models"
)

const (
	// DefaultSampleWindow is how long CPU utilization is sampled per capture.
	DefaultSampleWindow = time.Second
	// MaxTopProcesses is the number of processes kept in a snapshot.
	MaxTopProcesses = 5
)

// Builder assembles Snapshots from a Provider.
type Builder struct {
	provider     Provider
	sampleWindow time.Duration
	topCount     int
	log          *logrus.Entry
}

// Option configures a Builder.
type Option func(*Builder)

// WithSampleWindow sets the CPU sampling window.
func WithSampleWindow(d time.Duration) Option {
	return func(b *Builder) {
		if d > 0 {
			b.sampleWindow = d
		}
	}
}

// WithTopProcesses sets how many processes are kept, capped at MaxTopProcesses.
func WithTopProcesses(n int) Option {
	return func(b *Builder) {
		if n > 0 && n <= MaxTopProcesses {
			b.topCount = n
		}
	}
}

// NewBuilder creates a new snapshot Builder.
func NewBuilder(provider Provider, log *logrus.Entry, opts ...Option) *Builder {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	b := &Builder{
		provider:     provider,
		sampleWindow: DefaultSampleWindow,
		topCount:     MaxTopProcesses,
		log:          log.WithField("component", "collector"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SampleWindow returns the configured CPU sampling window.
func (b *Builder) SampleWindow() time.Duration {
	return b.sampleWindow
}

// capture tracks per-category failures for a single Capture call.
type capture struct {
	b        *Builder
	snap     models.Snapshot
	attempts int
	failures int
	fatal    error
}

// fail records a category failure. It returns true when the capture must abort.
func (c *capture) fail(category string, err error) bool {
	c.failures++
	if errors.Is(err, ErrProviderUnavailable) {
		c.fatal = err
		return true
	}
	c.warn(category, err)
	return false
}

// unavailable records a category that returned no data without an error.
func (c *capture) unavailable(category string, err error) {
	c.failures++
	c.warn(category, err)
}

func (c *capture) warn(category string, err error) {
	msg := fmt.Sprintf("%s: %v", category, err)
	c.snap.Warnings = append(c.snap.Warnings, msg)
	c.b.log.WithField("category", category).Warnf("Partial collection failure: %v", err)
}

// Capture samples every metric category and returns a new Snapshot.
// It blocks for at least the CPU sample window. Failures of single
// categories are logged and leave that field empty; only a provider that
// cannot be reached at all yields an error wrapping ErrProviderUnavailable.
// If ctx is cancelled the capture is abandoned and ctx's error returned, so
// no half-sampled snapshot escapes.
func (b *Builder) Capture(ctx context.Context) (models.Snapshot, error) {
	c := &capture{
		b: b,
		snap: models.Snapshot{
			TakenAt:      time.Now(),
			Disks:        make([]models.DiskUsage, 0),
			Temperatures: make(map[string]float64),
			TopProcesses: make([]models.ProcessInfo, 0, b.topCount),
		},
	}

	steps := []struct {
		name string
		fn   func(context.Context, *capture) error
	}{
		{"cpu", collectCPU},
		{"load", collectLoad},
		{"memory", collectMemory},
		{"network", collectNetwork},
		{"disk", collectDisks},
		{"processes", collectProcesses},
		{"temperatures", collectTemperatures},
		{"boot_time", collectBootTime},
	}

	for _, step := range steps {
		c.attempts++
		err := step.fn(ctx, c)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return models.Snapshot{}, fmt.Errorf("capture interrupted during %s: %w", step.name, ctxErr)
		}
		if err != nil {
			if c.fail(step.name, err) {
				return models.Snapshot{}, c.fatal
			}
		}
	}

	if c.failures == c.attempts {
		return models.Snapshot{}, fmt.Errorf("all %d categories failed: %w", c.attempts, ErrProviderUnavailable)
	}

	return c.snap, nil
}

func collectCPU(ctx context.Context, c *capture) error {
	usage, err := c.b.provider.CPUPercent(ctx, c.b.sampleWindow)
	if err != nil {
		return err
	}
	c.snap.CPUUsagePercent = usage
	return nil
}

// collectLoad normalizes load figures to a percentage of total core capacity.
func collectLoad(ctx context.Context, c *capture) error {
	avg, err := c.b.provider.LoadAverage(ctx)
	if err != nil {
		return err
	}
	cores, err := c.b.provider.CPUCoreCount(ctx)
	if err != nil {
		return err
	}
	if cores <= 0 {
		return fmt.Errorf("invalid core count %d", cores)
	}

	n := float64(cores)
	c.snap.CPULoadAverage = []float64{
		avg.Load1 / n * 100,
		avg.Load5 / n * 100,
		avg.Load15 / n * 100,
	}
	return nil
}

func collectMemory(ctx context.Context, c *capture) error {
	vm, err := c.b.provider.VirtualMemory(ctx)
	if err != nil {
		return err
	}
	c.snap.Memory = models.MemoryUsage{
		Percent:    vm.Percent,
		UsedBytes:  vm.Used,
		TotalBytes: vm.Total,
	}
	return nil
}

func collectNetwork(ctx context.Context, c *capture) error {
	io, err := c.b.provider.NetIOCounters(ctx)
	if err != nil {
		return err
	}
	c.snap.Network = models.NetworkCounters{
		BytesSent:     io.Sent,
		BytesReceived: io.Recv,
		ErrorsIn:      io.ErrIn,
		ErrorsOut:     io.ErrOut,
		DropsIn:       io.DropIn,
		DropsOut:      io.DropOut,
	}
	return nil
}

// collectDisks omits partitions whose usage cannot be read.
func collectDisks(ctx context.Context, c *capture) error {
	partitions, err := c.b.provider.DiskPartitions(ctx)
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(partitions))
	for _, partition := range partitions {
		if seen[partition.Device] {
			continue
		}

		usage, err := c.b.provider.DiskUsage(ctx, partition.MountPoint)
		if err != nil {
			if errors.Is(err, ErrProviderUnavailable) {
				return err
			}
			c.warn("disk", fmt.Errorf("%s on %s: %w", partition.Device, partition.MountPoint, err))
			continue
		}

		seen[partition.Device] = true
		c.snap.Disks = append(c.snap.Disks, models.DiskUsage{
			Device:     partition.Device,
			MountPoint: partition.MountPoint,
			Percent:    usage.Percent,
			UsedBytes:  usage.Used,
			TotalBytes: usage.Total,
			FreeBytes:  usage.Free,
		})
	}
	return nil
}

func collectProcesses(ctx context.Context, c *capture) error {
	procs, err := c.b.provider.Processes(ctx)
	if err != nil {
		return err
	}
	c.snap.TopProcesses = TopByMemory(procs, c.b.topCount)
	return nil
}

func collectTemperatures(ctx context.Context, c *capture) error {
	temps, err := c.b.provider.SensorsTemperatures(ctx)
	if err != nil {
		if errors.Is(err, ErrNotSupported) {
			c.unavailable("temperatures", errors.New("temperature monitoring not supported on this system"))
			return nil
		}
		return err
	}
	if len(temps) == 0 {
		c.unavailable("temperatures", errors.New("temperature sensors not found"))
		return nil
	}

	for _, t := range temps {
		c.snap.Temperatures[temperatureLabel(t)] = t.Current
	}
	return nil
}

func collectBootTime(ctx context.Context, c *capture) error {
	boot, err := c.b.provider.BootTime(ctx)
	if err != nil {
		return err
	}
	c.snap.BootTime = boot
	return nil
}

func temperatureLabel(t TemperatureStat) string {
	if t.Label == "" {
		return t.Sensor
	}
	return t.Sensor + " - " + t.Label
}

// TopByMemory returns at most n processes sorted descending by memory
// percent. Processes without a memory reading are discarded and ties keep
// their enumeration order.
func TopByMemory(procs []ProcessStat, n int) []models.ProcessInfo {
	result := make([]models.ProcessInfo, 0, len(procs))
	for _, p := range procs {
		if p.MemoryPercent == nil {
			continue
		}
		result = append(result, models.ProcessInfo{
			PID:           p.PID,
			Name:          p.Name,
			MemoryPercent: *p.MemoryPercent,
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].MemoryPercent > result[j].MemoryPercent
	})

	if len(result) > n {
		result = result[:n]
	}
	return result
}
