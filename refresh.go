package main

import (
	"log/slog"
	"time"

	"github.com/lexandro/stylecache-mcp/pass"
)

// runPeriodicRefresh checks the sources at the given interval and recompiles
// when their fingerprint changed. It runs until stop is closed.
func runPeriodicRefresh(interval time.Duration, runner *pass.Runner, logger *slog.Logger, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("periodic refresh started", "interval", interval)

	for {
		select {
		case <-stop:
			logger.Info("periodic refresh stopped")
			return
		case <-ticker.C:
			refreshOnce(runner, logger)
		}
	}
}

// refreshOnce runs a pass if the sources changed and reports whether it did.
func refreshOnce(runner *pass.Runner, logger *slog.Logger) bool {
	result, ran := runner.RunIfChanged()
	if !ran {
		logger.Debug("refresh check complete, sources unchanged")
		return false
	}
	logger.Info("refresh recompiled sources",
		"compiled", result.Compiled,
		"failed", result.Failed,
		"duration", result.Duration,
	)
	return true
}
