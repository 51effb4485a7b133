package v1alpha1

import "errors"

// ErrInvalidTLSMode is returned when an invalid TLS mode is specified.
var ErrInvalidTLSMode = errors.New("invalid TLS mode")

// ErrInvalidSourceStrategy is returned when an invalid source strategy is specified.
var ErrInvalidSourceStrategy = errors.New("invalid source strategy")

// ErrDomainRequired is returned when no domain is configured.
var ErrDomainRequired = errors.New("domain is required")

// ErrEmailRequired is returned when an ACME TLS mode is used without a contact email.
var ErrEmailRequired = errors.New("email is required for ACME certificate registration")

// ErrCertFilesRequired is returned when the custom TLS mode lacks certificate paths.
var ErrCertFilesRequired = errors.New("certFile and keyFile are required for custom TLS mode")

// ErrRepositoryRequired is returned when the git source strategy lacks a repository URL.
var ErrRepositoryRequired = errors.New("source repository is required for the git strategy")

// ErrImageRequired is returned when the image source strategy lacks an image reference.
var ErrImageRequired = errors.New("source image is required for the image strategy")
