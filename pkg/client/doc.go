// Package client provides clients for the services happyctl drives.
//
// This package contains Go wrappers for the external surfaces of a Happy
// deployment:
//
//   - caddy: Caddy admin API client for proxy config reloads
//   - certbot: Certbot CLI wrapper for Let's Encrypt certificate issuance
//   - docker: Docker container, image, network, and volume operations
//   - netretry: Retry helper for probing endpoints that are still coming up
//
// The Docker engine API is used as a Go library, so happyctl only requires
// a running Docker daemon rather than the docker CLI.
package client
