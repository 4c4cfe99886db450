package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// Options configure the shared logger. The TUI owns stdout, so output always
// goes to a file (or nowhere).
type Options struct {
	Level string // logrus level name; invalid or empty means info
	File  string // log file path; empty discards output
}

var (
	base    = newDiscard()
	baseMu  sync.Mutex
	logFile *os.File
)

func newDiscard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Setup configures the shared logger. Failing to open the file is not fatal:
// logging falls back to io.Discard and the error is returned for the caller to report.
func Setup(opts Options) error {
	baseMu.Lock()
	defer baseMu.Unlock()

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	base.SetLevel(level)
	base.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	base.SetOutput(io.Discard)

	if opts.File == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(opts.File), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return err
	}
	logFile = f
	base.SetOutput(f)
	return nil
}

// Close releases the log file, if any.
func Close() {
	baseMu.Lock()
	defer baseMu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	base.SetOutput(io.Discard)
}

// NewLogger returns an entry for a specific component.
func NewLogger(component string) *logrus.Entry {
	return base.WithField("component", component)
}

// Discard returns an entry that drops everything. Used as the zero value in tests.
func Discard() *logrus.Entry {
	return newDiscard().WithField("component", "discard")
}
