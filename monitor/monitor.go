// Package monitor binds snapshot capture, threshold evaluation and record
// persistence into the unit of work run by the worker daemon.
package monitor

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/NaveLIL/sysmond/alerter"
	"github.com/NaveLIL/sysmond/models"
)

// StartBanner is written to the record sink when a Monitor is created.
const StartBanner = "Starting new SysMon instance..."

// Capturer produces one metrics snapshot per call.
type Capturer interface {
	Capture(ctx context.Context) (models.Snapshot, error)
}

// RecordSink persists snapshots, alerts and free-form messages.
type RecordSink interface {
	WriteSnapshot(snap models.Snapshot) error
	WriteAlert(alert models.Alert) error
	WriteMessage(msg string) error
}

// Monitor is the work unit: capture, evaluate, record.
type Monitor struct {
	capturer   Capturer
	thresholds alerter.Thresholds
	sink       RecordSink
	log        *logrus.Entry
}

// New creates a Monitor and writes the start banner to the sink.
func New(capturer Capturer, thresholds alerter.Thresholds, sink RecordSink, log *logrus.Entry) *Monitor {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	m := &Monitor{
		capturer:   capturer,
		thresholds: thresholds,
		sink:       sink,
		log:        log.WithField("component", "monitor"),
	}

	if err := sink.WriteMessage(StartBanner); err != nil {
		m.log.WithError(err).Warn("Failed to write start banner")
	}

	return m
}

// Thresholds returns the limits alerts are evaluated against.
func (m *Monitor) Thresholds() alerter.Thresholds {
	return m.thresholds
}

// Run executes one cycle. Capture errors are returned; sink errors are
// logged and swallowed.
func (m *Monitor) Run(ctx context.Context) error {
	snap, err := m.capturer.Capture(ctx)
	if err != nil {
		return fmt.Errorf("capture snapshot: %w", err)
	}

	alerts := alerter.Evaluate(snap, m.thresholds)

	if err := m.sink.WriteSnapshot(snap); err != nil {
		m.log.WithError(err).Warn("Failed to record snapshot")
	}

	for _, alert := range alerts {
		if err := m.sink.WriteAlert(alert); err != nil {
			m.log.WithError(err).WithField("alert_type", string(alert.Kind)).Warn("Failed to record alert")
		}
	}

	m.log.WithField("alerts", len(alerts)).Debug("Cycle complete")
	return nil
}
