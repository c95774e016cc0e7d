package fingerprint

// Tracker remembers the last digest observed on one stream.
// The zero value has seen nothing, so its first Observe always reports a change.
type Tracker struct {
	last Digest
	seen bool
}

// Observe records d and reports whether it differs from the previous digest.
func (t *Tracker) Observe(d Digest) bool {
	changed := !t.seen || Changed(t.last, d)
	t.last = d
	t.seen = true
	return changed
}

// Set records d without reporting anything.
func (t *Tracker) Set(d Digest) {
	t.last = d
	t.seen = true
}
