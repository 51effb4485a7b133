// Package apis provides API type definitions for Happy deployment resources.
//
// This package contains versioned API types following Kubernetes API conventions:
//
//   - deployment: Deployment configuration types for happyctl declarative configuration
//
// The API types are designed to be serializable to YAML and support
// declarative configuration workflows.
package apis
