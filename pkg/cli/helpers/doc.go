// Package helpers provides common CLI utilities for command handling.
//
// Key functionality:
//   - Flag handling utilities including timing detection
//   - Config file override resolution from the persistent --config flag
package helpers
