// Package logging provides categorized logging for flowforge, backed by zap.
// Each subsystem logs through a named child logger so log output can be
// filtered per category. Before Initialize is called every logger is a no-op,
// which keeps library packages safe to use from tests.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category identifies a logging subsystem.
type Category string

const (
	CategoryBoot       Category = "boot"       // Startup and configuration
	CategoryAPI        Category = "api"        // Gemini API calls
	CategoryGateway    Category = "gateway"    // Retry/backoff decisions
	CategoryCodec      Category = "codec"      // Audio transcoding
	CategorySchema     Category = "schema"     // Structured-output validation
	CategorySimulation Category = "simulation" // Blueprint dry runs
	CategoryStore      Category = "store"      // Blueprint library persistence
)

var (
	mu   sync.RWMutex
	base = zap.NewNop().Sugar()
)

// Initialize builds the process-wide logger. Verbose enables debug level.
func Initialize(verbose bool) error {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build(zap.AddCallerSkip(2))
	if err != nil {
		return err
	}
	mu.Lock()
	base = logger.Sugar()
	mu.Unlock()
	return nil
}

// Sync flushes buffered log entries. Call on shutdown.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = base.Sync()
}

// Get returns the logger for a category.
func Get(category Category) *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return base.Named(string(category))
}

// Convenience helpers, one trio per category, mirrored across the codebase.

func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Infof(format, args...)
}
func API(format string, args ...interface{}) {
	Get(CategoryAPI).Infof(format, args...)
}
func APIDebug(format string, args ...interface{}) {
	Get(CategoryAPI).Debugf(format, args...)
}
func APIError(format string, args ...interface{}) {
	Get(CategoryAPI).Errorf(format, args...)
}

func Gateway(format string, args ...interface{}) {
	Get(CategoryGateway).Infof(format, args...)
}
func GatewayDebug(format string, args ...interface{}) {
	Get(CategoryGateway).Debugf(format, args...)
}
func GatewayWarn(format string, args ...interface{}) {
	Get(CategoryGateway).Warnf(format, args...)
}

func CodecDebug(format string, args ...interface{}) {
	Get(CategoryCodec).Debugf(format, args...)
}

func Schema(format string, args ...interface{}) {
	Get(CategorySchema).Infof(format, args...)
}
func SchemaDebug(format string, args ...interface{}) {
	Get(CategorySchema).Debugf(format, args...)
}

func Simulation(format string, args ...interface{}) {
	Get(CategorySimulation).Infof(format, args...)
}
func SimulationWarn(format string, args ...interface{}) {
	Get(CategorySimulation).Warnf(format, args...)
}

func Store(format string, args ...interface{}) {
	Get(CategoryStore).Infof(format, args...)
}
func StoreDebug(format string, args ...interface{}) {
	Get(CategoryStore).Debugf(format, args...)
}
