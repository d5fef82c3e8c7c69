package logger

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/NaveLIL/sysmond/config"
	"github.com/NaveLIL/sysmond/models"
	"github.com/NaveLIL/sysmond/utils"
)

// Record types written to the record file.
const (
	RecordSnapshot = "snapshot"
	RecordAlert    = "alert"
	RecordMessage  = "message"
)

// Record is one line of the append-only record file.
type Record struct {
	Time     time.Time        `json:"time"`
	Type     string           `json:"type"`
	Snapshot *models.Snapshot `json:"snapshot,omitempty"`
	Alert    *models.Alert    `json:"alert,omitempty"`
	Message  string           `json:"message,omitempty"`
}

var csvHeader = []string{
	"Timestamp",
	"CPU%",
	"Load1%",
	"Load5%",
	"Load15%",
	"RAM_MB",
	"RAM_Total_MB",
	"RAM%",
	"Disks",
	"Max_Disk%",
	"Net_Sent_Bytes",
	"Net_Recv_Bytes",
	"Max_Temp_C",
}

// Sink persists snapshots, alerts and free-form messages as JSON lines,
// optionally mirroring a CSV summary of each snapshot.
type Sink struct {
	mu      sync.Mutex
	records io.WriteCloser
	csvFile *os.File
	csv     *csv.Writer
	log     *logrus.Entry
}

// NewSink opens the record file (rotated like the log file) and, if
// enabled, the CSV summary file.
func NewSink(cfg *config.RecordsConfig, logCfg *config.LoggingConfig, baseDir string, log *logrus.Entry) (*Sink, error) {
	recordsPath := resolvePath(cfg.Path, baseDir)
	if err := os.MkdirAll(filepath.Dir(recordsPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create records directory: %w", err)
	}

	s := &Sink{
		records: newRotatingFile(recordsPath, logCfg),
		log:     log.WithField("component", "sink"),
	}

	if cfg.CSVExport {
		if err := s.initCSV(resolvePath(cfg.CSVPath, baseDir)); err != nil {
			s.log.Warnf("Failed to initialize CSV export: %v", err)
		}
	}

	return s, nil
}

// initCSV initializes the CSV writer.
func (s *Sink) initCSV(path string) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	// Check if file exists
	isNewFile := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		isNewFile = true
	}

	// Open file for appending
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	s.csvFile = file
	s.csv = csv.NewWriter(file)

	// Write header if new file
	if isNewFile {
		if err := s.csv.Write(csvHeader); err != nil {
			return err
		}
		s.csv.Flush()
	}

	return nil
}

// WriteSnapshot appends a snapshot record.
func (s *Sink) WriteSnapshot(snap models.Snapshot) error {
	s.log.WithFields(logrus.Fields{
		"cpu":    utils.FormatPercent(snap.CPUUsagePercent),
		"memory": utils.FormatPercent(snap.Memory.Percent),
		"ram":    fmt.Sprintf("%s/%s", utils.FormatBytes(snap.Memory.UsedBytes), utils.FormatBytes(snap.Memory.TotalBytes)),
		"disks":  len(snap.Disks),
	}).Info("System metrics")

	if err := s.write(Record{Time: snap.TakenAt, Type: RecordSnapshot, Snapshot: &snap}); err != nil {
		return err
	}
	return s.writeCSV(snap)
}

// WriteAlert appends an alert record and logs it as a warning.
func (s *Sink) WriteAlert(alert models.Alert) error {
	s.log.WithFields(logrus.Fields{
		"alert_type": string(alert.Kind),
		"subject":    alert.Subject,
	}).Warn("ALERT: " + alert.Message)

	return s.write(Record{Time: alert.At, Type: RecordAlert, Alert: &alert})
}

// WriteMessage appends a free-form message record.
func (s *Sink) WriteMessage(msg string) error {
	return s.write(Record{Time: time.Now(), Type: RecordMessage, Message: msg})
}

func (s *Sink) write(rec Record) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s record: %w", rec.Type, err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.records == nil {
		return fmt.Errorf("sink closed")
	}
	if _, err := s.records.Write(line); err != nil {
		return fmt.Errorf("write %s record: %w", rec.Type, err)
	}
	return nil
}

func (s *Sink) writeCSV(snap models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.csv == nil {
		return nil
	}

	if err := s.csv.Write(csvRecord(snap)); err != nil {
		return fmt.Errorf("write CSV record: %w", err)
	}
	s.csv.Flush()
	return s.csv.Error()
}

func csvRecord(snap models.Snapshot) []string {
	loads := make([]string, 3)
	for i := range loads {
		if i < len(snap.CPULoadAverage) {
			loads[i] = fmt.Sprintf("%.1f", snap.CPULoadAverage[i])
		}
	}

	var maxDisk float64
	for _, d := range snap.Disks {
		if d.Percent > maxDisk {
			maxDisk = d.Percent
		}
	}

	maxTemp := ""
	var hottest float64
	for _, v := range snap.Temperatures {
		if maxTemp == "" || v > hottest {
			hottest = v
			maxTemp = fmt.Sprintf("%.1f", v)
		}
	}

	return []string{
		snap.TakenAt.Format("2006-01-02 15:04:05"),
		fmt.Sprintf("%.1f", snap.CPUUsagePercent),
		loads[0],
		loads[1],
		loads[2],
		fmt.Sprintf("%d", snap.Memory.UsedBytes/(1024*1024)),
		fmt.Sprintf("%d", snap.Memory.TotalBytes/(1024*1024)),
		fmt.Sprintf("%.1f", snap.Memory.Percent),
		fmt.Sprintf("%d", len(snap.Disks)),
		fmt.Sprintf("%.1f", maxDisk),
		fmt.Sprintf("%d", snap.Network.BytesSent),
		fmt.Sprintf("%d", snap.Network.BytesReceived),
		maxTemp,
	}
}

// Close flushes and closes the record and CSV files.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	if s.csv != nil {
		s.csv.Flush()
	}
	if s.csvFile != nil {
		if err := s.csvFile.Close(); err != nil {
			firstErr = err
		}
		s.csvFile = nil
		s.csv = nil
	}
	if s.records != nil {
		if err := s.records.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.records = nil
	}
	return firstErr
}
