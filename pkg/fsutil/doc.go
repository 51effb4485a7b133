// Package fsutil provides utilities for file and path operations.
//
// This package contains low-level utilities for reading from and writing to files,
// along with various file operation helper functions.
//
// Key functionality:
//   - File reading: ReadFileSafe
//   - File writing: TryWriteFile
//   - Path operations: ExpandHomePath
//
// This package has no dependencies on other happy-code packages and provides
// reusable file I/O primitives.
package fsutil
