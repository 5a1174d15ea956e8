package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var _log = logrus.New()

// Init initializes the global logger with output writer and debug level.
func Init(debug bool, out io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	_log.SetOutput(out)
	if debug {
		_log.SetLevel(logrus.DebugLevel)
		_log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		_log.SetLevel(logrus.InfoLevel)
		_log.SetFormatter(&logrus.JSONFormatter{})
	}
}

// RotatingWriter returns a writer that tees to stdout and a size-rotated
// log file inside logDir. If logDir cannot be created, stdout alone is used.
func RotatingWriter(logDir, name string) io.Writer {
	file := FileWriter(logDir, name)
	if file == nil {
		return os.Stdout
	}
	return io.MultiWriter(os.Stdout, file)
}

// FileWriter returns a size-rotated log file inside logDir without the
// stdout tee, for full-screen terminal programs. It returns nil when logDir
// cannot be created.
func FileWriter(logDir, name string) io.Writer {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(logDir, name),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
}

// Log returns a standard logger entry to use across packages.
func Log() *logrus.Entry {
	return logrus.NewEntry(_log)
}

// WithFields returns a logger entry with provided fields.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Log().WithFields(fields)
}
