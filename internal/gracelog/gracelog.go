// Package gracelog provides categorized, config-gated logging for the
// emission pipeline, one named logger per subsystem. Logging is silent
// until Init is called; callers that never Init still get a
// safe no-op logger back from Get.
package gracelog

import (
	"sync"

	"go.uber.org/zap"
)

// Category names a logging subsystem.
type Category string

const (
	CategoryModel      Category = "model"
	CategoryClassifier Category = "classifier"
	CategoryWoog       Category = "woog"
	CategoryEmit       Category = "emit"
	CategoryStore      Category = "store"
	CategoryDriver     Category = "driver"
)

var (
	mu      sync.RWMutex
	base    *zap.SugaredLogger
	loggers = make(map[Category]*zap.SugaredLogger)
)

// Init installs the base zap logger used by every category. debug selects
// development-mode (colored, caller-annotated) encoding; otherwise a
// production JSON encoder is used. Init is safe to call more than once;
// the most recent call wins.
func Init(debug bool) error {
	var zl *zap.Logger
	var err error
	if debug {
		zl, err = zap.NewDevelopment()
	} else {
		zl, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}

	mu.Lock()
	base = zl.Sugar()
	loggers = make(map[Category]*zap.SugaredLogger)
	mu.Unlock()
	return nil
}

// Get returns the logger for category, creating it from the base logger on
// first use. If Init was never called, Get returns a discarding no-op
// logger so callers never need a nil check.
func Get(category Category) *zap.SugaredLogger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	b := base
	mu.RUnlock()

	if b == nil {
		return zap.NewNop().Sugar()
	}

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	l := b.Named(string(category))
	loggers[category] = l
	return l
}

// Sync flushes any buffered log entries. Call it once at process exit.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if base != nil {
		_ = base.Sync()
	}
	for _, l := range loggers {
		_ = l.Sync()
	}
}
