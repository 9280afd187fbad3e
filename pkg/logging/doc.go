// Package logging provides structured logging utilities for sdmon components.
//
// # Overview
//
// This package wraps the standard library slog package with sdmon-specific
// defaults and conventions for consistent logging across all components. It
// supports environment-based log level configuration, module/version context
// injection, and automatic source location tracking for debug logs.
//
// # Log Levels
//
// Supported log levels (case-insensitive):
//   - DEBUG: Detailed diagnostic information with source location
//   - INFO: General informational messages (default)
//   - WARN/WARNING: Warning messages for potentially problematic situations
//   - ERROR: Error messages for failures requiring attention
//
// # Usage
//
// Setting the default logger:
//
//	func main() {
//	    logging.SetDefaultStructuredLoggerWithLevel("sdmon", "v1.0.0", "warn")
//
//	    // Use slog as normal
//	    slog.Info("collection started", "run_id", runID)
//	    slog.Debug("detailed state", "data", complexObject)
//	    slog.Error("collector failed", "error", err)
//	}
//
// # Environment Configuration
//
// The LOG_LEVEL environment variable controls logging verbosity
// through the --log-level flag's environment source:
//
//	LOG_LEVEL=debug sdmon --once
//
// If LOG_LEVEL is not set, defaults to INFO level.
//
// # Output Format
//
// All logs are written to stderr in JSON format:
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "INFO",
//	    "msg": "collection complete",
//	    "module": "sdmon",
//	    "version": "v1.0.0",
//	    "collectors": 6
//	}
//
// Logs go to stderr so that snapshot output on stdout stays parseable.
package logging
