// Package logging provides structured logging for Luminary.
//
// It wraps log/slog with the service defaults every entry carries
// (service, version) and builds the handler from the logging section of
// config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// *Logger satisfies the small Debug/Info/Warn/Error interfaces declared by
// the engine, show, writequeue and adapter packages.
//
// Usage:
//
//	logger := logging.New(cfg.Logging, version)
//	engineLog := logger.Component("engine")
//	engineLog.Info("show session started", "show_id", id)
package logging
