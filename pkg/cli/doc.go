// Package cli provides reusable helpers for command wiring and execution.
//
// This package is organized into subpackages for different functionality:
//
//   - cli/cmd: The happyctl command set (init, install, status, update, logs, uninstall)
//   - cli/helpers: Flag handling utilities including timing detection and config overrides
//   - cli/ui: User interface components (confirm, errorhandler)
//
// The utilities in this package follow dependency injection patterns and integrate
// with the happyctl runtime container for testability and flexibility.
package cli
