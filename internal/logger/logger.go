// Package logger exposes the process-wide Zap sugared logger.
// Every package logs through Get(); nothing else constructs loggers.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Init builds the shared logger once. "production" selects the JSON
// encoder with sampling; any other value (including empty) gets the
// console encoder with debug enabled. Later calls are no-ops.
func Init(env string) {
	once.Do(func() {
		var base *zap.Logger
		var err error

		switch env {
		case "production":
			base, err = zap.NewProduction()
		default:
			base, err = zap.NewDevelopment()
		}
		if err != nil {
			// A process that cannot build a logger still has to run.
			base = zap.NewNop()
		}

		sugar = base.Sugar()
	})
}

// Get returns the shared logger, initializing a development one on first
// use if Init was never called (tests rely on this).
func Get() *zap.SugaredLogger {
	if sugar == nil {
		Init("development")
	}
	return sugar
}

// Sync flushes buffered entries. Deferred from main on shutdown.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
