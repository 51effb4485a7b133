// Package svc provides service layer components for happyctl.
//
// This package contains the business logic layer that coordinates between
// the CLI commands and the underlying clients/infrastructure.
//
// Subpackages:
//   - installer: Host package installers for the Docker engine and certbot
//   - preflight: Environment checks run before the deployment is touched
//   - provisioner: Container, network, and volume provisioning for the deployment
//   - source: Git checkout management for the Happy server source
//   - verifier: Post-deploy probes for the local server and public endpoints
package svc
