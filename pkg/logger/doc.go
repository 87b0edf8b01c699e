// Package logger provides structured logging for the exporter on top of zerolog.
//
// Console output is colored and goes to stderr so that user-facing progress on
// stdout stays clean; when a log file is configured events are written there
// as JSON lines instead.
//
//	logger.Initialize(&cfg.Logging)
//	logger.WithField("username", "alice").Info("Export started")
//	logger.WithError(err).Error("Listing page failed")
//
// Components receive a Logger explicitly and fall back to GetLogger when given
// nil. Tests use NewTestLogger to capture and assert on messages, or
// NewNopLogger to discard them.
package logger
