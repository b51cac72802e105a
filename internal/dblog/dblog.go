// Package dblog provides the engine's structured logging façade.
//
// EDUCATIONAL NOTES:
// ------------------
// Several operations are report-but-don't-propagate by nature: buffer-pool
// flush failures during teardown, catalog save failures during shutdown,
// the page-full auto-retry. Those need a place to go that isn't a
// returned error. We use a sugared zap logger so call sites can do
// dblog.L().Warnw("...", "page", id, "error", err) without constructing
// fields by hand.
package dblog

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu      sync.RWMutex
	current *zap.SugaredLogger
)

func init() {
	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}
	current = logger.Sugar()
}

// L returns the process-wide sugared logger.
func L() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// SetDevelopment swaps in a human-readable development logger; useful for
// cmd/pagedb and tests that want readable output instead of JSON.
func SetDevelopment() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	current = logger.Sugar()
}

// SetNop silences logging entirely; used by tests that exercise failure
// paths and don't want log noise in test output.
func SetNop() {
	mu.Lock()
	defer mu.Unlock()
	current = zap.NewNop().Sugar()
}
