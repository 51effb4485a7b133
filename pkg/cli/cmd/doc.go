// Package cmd wires the happyctl command tree. Each command binds its flags
// to deployment config fields, resolves collaborators through the di runtime,
// and reports progress through the notify layer.
package cmd
