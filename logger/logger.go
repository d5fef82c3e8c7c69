// Package logger provides structured logging and the metrics record sink.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/writer"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/NaveLIL/sysmond/config"
)

// Console levels: info and below go to stdout, warnings and errors to stderr.
var (
	stdoutLevels = []logrus.Level{logrus.InfoLevel, logrus.DebugLevel, logrus.TraceLevel}
	stderrLevels = []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel, logrus.WarnLevel}
)

// Logger is the process-wide logging service. It is created once by the
// entry point and closed at exit; components receive entries derived from it.
type Logger struct {
	*logrus.Logger
	logFile *lumberjack.Logger
	config  *config.LoggingConfig
	stdout  io.Writer
	stderr  io.Writer
}

// New creates a logger configured from cfg. Relative file paths are
// resolved against baseDir.
func New(cfg *config.LoggingConfig, baseDir string) (*Logger, error) {
	return newLogger(cfg, baseDir, os.Stdout, os.Stderr)
}

func newLogger(cfg *config.LoggingConfig, baseDir string, stdout, stderr io.Writer) (*Logger, error) {
	l := &Logger{
		Logger: logrus.New(),
		config: cfg,
		stdout: stdout,
		stderr: stderr,
	}

	// Set log level
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	l.SetFormatter(newFormatter(cfg.Format))

	if cfg.ToFile {
		logPath := resolvePath(cfg.FilePath, baseDir)

		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		l.logFile = newRotatingFile(logPath, cfg)
	}

	// All output goes through the writer hooks
	l.SetOutput(io.Discard)
	l.installHooks()

	l.Debug("Logger initialized")
	return l, nil
}

// installHooks routes entries to the console streams and, if open, the log file.
func (l *Logger) installHooks() {
	hooks := make(logrus.LevelHooks)
	hooks.Add(&writer.Hook{Writer: l.stdout, LogLevels: stdoutLevels})
	hooks.Add(&writer.Hook{Writer: l.stderr, LogLevels: stderrLevels})
	if l.logFile != nil {
		hooks.Add(&writer.Hook{Writer: l.logFile, LogLevels: logrus.AllLevels})
	}
	l.ReplaceHooks(hooks)
}

// Component returns an entry tagged with the component name.
func (l *Logger) Component(name string) *logrus.Entry {
	return l.WithField("component", name)
}

// Close closes the logger and associated resources.
func (l *Logger) Close() error {
	l.Debug("Logger closed")

	if l.logFile != nil {
		err := l.logFile.Close()
		l.logFile = nil
		l.installHooks()
		return err
	}
	return nil
}

// levelAliases are the short level tags used in JSON output.
var levelAliases = map[logrus.Level]string{
	logrus.TraceLevel: "[TRC]",
	logrus.DebugLevel: "[DBG]",
	logrus.InfoLevel:  "[INF]",
	logrus.WarnLevel:  "[WRN]",
	logrus.ErrorLevel: "[ERR]",
	logrus.FatalLevel: "[CRT]",
	logrus.PanicLevel: "[CRT]",
}

// jsonFormatter writes one JSON object per entry with the keys timestamp,
// levelname and message, plus the entry fields.
type jsonFormatter struct {
	timestampFormat string
}

func (f *jsonFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	data := make(logrus.Fields, len(entry.Data)+3)
	for k, v := range entry.Data {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		data[k] = v
	}
	data["timestamp"] = entry.Time.Format(f.timestampFormat)
	data["levelname"] = levelAliases[entry.Level]
	data["message"] = entry.Message

	line, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal log entry: %w", err)
	}
	return append(line, '\n'), nil
}

// newFormatter returns the JSON formatter or a text formatter.
func newFormatter(format string) logrus.Formatter {
	if format == "json" {
		return &jsonFormatter{timestampFormat: "2006-01-02T15:04:05.000Z07:00"}
	}
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	}
}

func newRotatingFile(path string, cfg *config.LoggingConfig) *lumberjack.Logger {
	maxSize := cfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 10
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
}

func resolvePath(path, baseDir string) string {
	if filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}
