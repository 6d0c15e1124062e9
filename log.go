package wlgo

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

// Logger returns the package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	logger.CompareAndSwap(nil, zap.NewNop())
	return logger.Load()
}

// SetLogger configures the package's logger. Safe to call concurrently
// with running clients; subsequent log calls use the new logger.
func SetLogger(l *zap.Logger) {
	logger.Store(l)
}
