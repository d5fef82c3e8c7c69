// Package worker runs a single unit of work on a fixed cadence.
package worker

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// State is the lifecycle state of a Daemon.
type State int

const (
	Idle State = iota
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// WorkFunc is one cycle of work. Its context is never cancelled by Stop:
// a cycle in progress always runs to completion.
type WorkFunc func(ctx context.Context) error

// Daemon runs a WorkFunc repeatedly on one goroutine, waiting Interval
// between cycles. Any error or panic from the work stops the daemon;
// restarting it requires an explicit Start.
type Daemon struct {
	name     string
	interval time.Duration
	work     WorkFunc
	log      *logrus.Entry

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a new Daemon. The interval is fixed for the daemon's lifetime.
func New(name string, interval time.Duration, work WorkFunc, log *logrus.Entry) *Daemon {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	done := make(chan struct{})
	close(done)

	return &Daemon{
		name:     name,
		interval: interval,
		work:     work,
		log:      log.WithFields(logrus.Fields{"component": "worker", "daemon": name}),
		done:     done,
	}
}

// Name returns the daemon name used for log correlation.
func (d *Daemon) Name() string {
	return d.name
}

// Interval returns the wait between cycles.
func (d *Daemon) Interval() time.Duration {
	return d.interval
}

// Start launches the worker. It is a no-op unless the daemon is idle.
func (d *Daemon) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != Idle {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.done = make(chan struct{})
	d.state = Running

	go d.loop(ctx, d.done)

	d.log.Debugf("Starting worker with %v interval", d.interval)
}

// Stop signals the worker and blocks until it has exited.
// Calling Stop on an idle daemon returns immediately.
func (d *Daemon) Stop() {
	_ = d.StopContext(context.Background())
}

// StopContext is like Stop but gives up waiting when ctx is done. The
// shutdown signal stays raised, so the worker still exits at its next
// checkpoint.
func (d *Daemon) StopContext(ctx context.Context) error {
	d.mu.Lock()
	if d.state == Idle {
		d.mu.Unlock()
		return nil
	}
	if d.state == Running {
		d.state = Stopping
		d.cancel()
	}
	done := d.done
	d.mu.Unlock()

	select {
	case <-done:
		d.log.Debug("Worker stopped")
		return nil
	case <-ctx.Done():
		d.log.Warn("Timed out waiting for worker to stop")
		return ctx.Err()
	}
}

// HandleSignal handles an external interrupt request by stopping the
// daemon. The daemon is not resumed afterwards.
func (d *Daemon) HandleSignal(sig os.Signal) {
	d.log.WithField("signal", sig.String()).Info("Interrupt received, shutting down")
	d.Stop()
}

// IsRunning reports whether a worker is active and not stopping.
func (d *Daemon) IsRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state == Running
}

// State returns the current lifecycle state.
func (d *Daemon) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Done returns a channel closed when the current worker exits. For an idle
// daemon the channel is already closed.
func (d *Daemon) Done() <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.done
}

// loop runs cycles until ctx is cancelled or a cycle fails. ctx is the
// shutdown signal and is only observed between cycles.
func (d *Daemon) loop(ctx context.Context, done chan struct{}) {
	defer d.exit(done)

	workCtx := context.WithoutCancel(ctx)
	for {
		if err := d.runCycle(workCtx); err != nil {
			if ctx.Err() != nil {
				return
			}
			d.log.WithError(err).Error("Work unit failed, stopping daemon")
			d.requestStop()
			return
		}

		timer := time.NewTimer(d.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// runCycle executes the work once, converting panics into errors.
func (d *Daemon) runCycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in work unit: %v\n%s", r, debug.Stack())
		}
	}()
	return d.work(ctx)
}

// requestStop raises the shutdown signal from inside the worker. It never
// waits for the worker, which is the caller.
func (d *Daemon) requestStop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == Running {
		d.state = Stopping
		d.cancel()
	}
}

func (d *Daemon) exit(done chan struct{}) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
	}
	d.state = Idle
	close(done)
}
