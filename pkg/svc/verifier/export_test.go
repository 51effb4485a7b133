package verifier

import "time"

// SetBackoff shortens the retry backoff so tests do not sleep.
func (v *Verifier) SetBackoff(base, max time.Duration) {
	v.baseWait = base
	v.maxWait = max
}
