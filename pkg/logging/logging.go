// Package logging holds the process wide logger. Kernel packages stay
// silent; the script engine, the scene document, the tools and the CLI log
// through here.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const prefix = "brushwork"

var (
	once     sync.Once
	mu       sync.RWMutex
	instance *log.Logger
)

// New returns a logger writing to w at level.
func New(w io.Writer, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          prefix,
	})
	l.SetLevel(level)
	return l
}

// Default returns the shared logger, creating it on first use with info
// level output to stderr.
func Default() *log.Logger {
	once.Do(func() {
		mu.Lock()
		if instance == nil {
			instance = New(os.Stderr, log.InfoLevel)
		}
		mu.Unlock()
	})
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// SetDefault replaces the shared logger.
func SetDefault(l *log.Logger) {
	once.Do(func() {})
	mu.Lock()
	instance = l
	mu.Unlock()
}

// SetLevel parses level ("debug", "info", "warn", "error") and applies it
// to the shared logger.
func SetLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	Default().SetLevel(lvl)
	return nil
}

// For returns the shared logger tagged with a component name.
func For(component string) *log.Logger {
	return Default().WithPrefix(prefix + "/" + component)
}

// Debug, Info, Warn and Error log msg with alternating key/value pairs on
// the shared logger.
func Debug(msg string, keyvals ...interface{}) {
	Default().Debug(msg, keyvals...)
}

func Info(msg string, keyvals ...interface{}) {
	Default().Info(msg, keyvals...)
}

func Warn(msg string, keyvals ...interface{}) {
	Default().Warn(msg, keyvals...)
}

func Error(msg string, keyvals ...interface{}) {
	Default().Error(msg, keyvals...)
}
