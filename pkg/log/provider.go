package log

import (
	"os"
	"sync"

	"github.com/rs/zerolog"

	scierrors "github.com/YuminosukeSato/blockscale/pkg/errors"
)

var (
	providerMu    sync.RWMutex
	defaultLogger Logger = NewZerologLogger(os.Stderr, LevelInfo)
)

func init() {
	scierrors.SetZerologWarnFunc(func(w error) {
		GetLogger().Warn(w.Error(), WarningKey, w)
	})
}

// GetLogger returns the process-wide default logger.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return defaultLogger
}

// GetLoggerWithName returns the default logger tagged with a component name.
func GetLoggerWithName(name string) Logger {
	return GetLogger().With(ComponentKey, name)
}

// SetLogger replaces the process-wide default logger. Loggers already handed
// out keep their previous backend.
func SetLogger(l Logger) {
	if l == nil {
		return
	}
	providerMu.Lock()
	defer providerMu.Unlock()
	defaultLogger = l
}

// SetLevel changes the level of the default logger when it is zerolog-backed.
func SetLevel(level Level) {
	providerMu.Lock()
	defer providerMu.Unlock()
	if zl, ok := defaultLogger.(*ZerologLogger); ok {
		defaultLogger = &ZerologLogger{zl: zl.zl.Level(toZerologLevel(level))}
	}
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return &ZerologLogger{zl: zerolog.Nop()}
}
