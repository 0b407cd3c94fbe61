// Package logger provides structured logging for docket using zerolog.
//
// It supports JSON and console output, level configuration down to trace
// (the connector writes one trace line per request) and component-scoped
// loggers.
//
// # Configuration
//
//	logger:
//	  level: "trace"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("connector")
//	log.Info("connector ready", logger.Fields("endpoint", cfg.Endpoint))
package logger
