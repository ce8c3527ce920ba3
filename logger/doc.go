// Package logger provides structured logging for simpleioc using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields. The service registry
// logs through a component logger named "di".
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("di")
//	log.Debug("instance created", logger.Fields("contract", "app.Clock"))
package logger
