// Package io provides utilities for input and output operations related to configuration management.
//
// This package contains domain-specific I/O utilities focused on configuration
// management, generation, and scaffolding operations.
//
// Subpackages:
//   - configmanager: Deployment configuration loading and management
//   - generator: Deployment file generation (config.yaml, Caddyfile, happy.env)
//   - marshaller: Serialization and deserialization
//   - scaffolder: Deployment scaffolding and file generation
//
// For low-level file I/O operations (reading, writing, path manipulation),
// see the fsutil package.
package io
