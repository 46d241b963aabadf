// Package xlog owns the driver's logger. Core packages never log: they
// return errors and warnings for the driver to record here.
package xlog

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
	mu         sync.Mutex
)

// L returns the process logger. It is a no-op logger until SetVerbose
// installs a real one.
func L() *zap.Logger {
	loggerOnce.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// SetVerbose installs a development logger at Debug level, or reverts to a
// no-op logger when enabled is false. Called once by the driver's CLI
// before any parsing begins.
func SetVerbose(enabled bool) error {
	mu.Lock()
	defer mu.Unlock()
	if !enabled {
		logger = zap.NewNop()
		return nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	l, err := cfg.Build()
	if err != nil {
		return err
	}
	logger = l
	return nil
}
