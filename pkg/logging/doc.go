// Package logging provides the persistent install transcript.
//
// Console output belongs to the notify package; this package records what
// happened to a rotating log file so a failed install can be reconstructed
// after the terminal scrollback is gone.
package logging
