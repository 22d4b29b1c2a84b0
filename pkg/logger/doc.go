// Package logger provides structured logging for bedownloader.
//
// It wraps zerolog behind a small Logger interface so components can be
// handed a logger (or a NopLogger / TestLogger in tests) instead of reaching
// for globals:
//
//	log := logger.GetLogger().WithField("component", "collector")
//	log.InfoWithFields("collected projects", map[string]interface{}{
//	    "url":   listingURL,
//	    "count": len(links),
//	})
//
// Console output is coloured and human readable. When a log file is
// configured, JSON lines are appended to it as well.
package logger
