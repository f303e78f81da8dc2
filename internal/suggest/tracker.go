package suggest

import "sync/atomic"

// Tracker enforces latest-request-wins. Every lookup takes a sequence number
// from Next; when its response arrives it is applied only if Current still
// reports true. Arrival order does not matter.
type Tracker struct {
	seq    atomic.Uint64
	closed atomic.Bool
}

// Next issues a new sequence number, superseding all earlier ones.
func (t *Tracker) Next() uint64 {
	return t.seq.Add(1)
}

// Latest returns the most recently issued sequence number (0 if none).
func (t *Tracker) Latest() uint64 {
	return t.seq.Load()
}

// Current reports whether seq is the latest issued number and the tracker
// is still open.
func (t *Tracker) Current(seq uint64) bool {
	return !t.closed.Load() && seq != 0 && seq == t.seq.Load()
}

// Invalidate supersedes any in-flight request without issuing a new one.
func (t *Tracker) Invalidate() {
	t.seq.Add(1)
}

// Close makes every outstanding and future response stale.
func (t *Tracker) Close() {
	t.closed.Store(true)
}

// Closed reports whether Close has been called.
func (t *Tracker) Closed() bool {
	return t.closed.Load()
}
