// Package logging provides structured logging configuration for httpspy.
//
// It wraps log/slog so the spy server, the CLI and tests share one way of
// building loggers:
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.ParseLevel("debug"),
//	    Format: logging.FormatJSON,
//	})
//	logger.Info("spy started", "url", spy.URL())
//
// Handler builds the bare slog.Handler so several destinations can be
// combined with Tee, for example human-readable text on stderr plus JSON in
// a file.
//
// Components accept a *slog.Logger through an option and fall back to Nop.
package logging
