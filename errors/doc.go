// Package errors provides the unified error type used across simpleioc.
// Every failure raised by the service registry is an *AppError carrying a
// machine-readable code, so callers can branch on the kind of failure with
// errors.Is against the exported sentinels.
package errors
