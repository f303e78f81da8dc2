// Package search holds the interaction engine behind the search box: the
// query debouncer, the result composer with match highlighting, and the
// keyboard navigator. Nothing here does I/O; the terminal UI drives it.
package search

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DefaultDelay     = 300 * time.Millisecond
	DefaultMinLength = 2
)

// Debouncer decides when a changing query has settled long enough to be
// looked up. It does not own a timer: Change hands out a token, the caller
// schedules a wake-up after Delay, and Settled says whether that token is
// still the one to act on.
//
// A Debouncer is owned by a single event loop and is not safe for
// concurrent use.
type Debouncer struct {
	delay     time.Duration
	minLength int

	issued  uint64
	pending uint64
	stopped bool
}

// NewDebouncer creates a debouncer. Non-positive arguments select the defaults.
func NewDebouncer(delay time.Duration, minLength int) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	return &Debouncer{delay: delay, minLength: minLength}
}

// Delay is the quiet period.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// MinLength is the shortest query that is ever looked up.
func (d *Debouncer) MinLength() int {
	return d.minLength
}

// Eligible reports whether query is long enough to look up.
func (d *Debouncer) Eligible(query string) bool {
	return QueryLength(query) >= d.minLength
}

// Change records a new query value and cancels whatever was pending. When
// the query is too short it returns ok=false and the caller should clear its
// suggestions right away. Otherwise token identifies the new pending
// emission.
func (d *Debouncer) Change(query string) (token uint64, ok bool) {
	d.pending = 0
	if d.stopped || !d.Eligible(query) {
		return 0, false
	}

	d.issued++
	d.pending = d.issued
	return d.pending, true
}

// Settled reports whether token is the pending emission and consumes it. It
// returns true at most once per token, never for a token a later Change
// replaced, and never after Stop.
func (d *Debouncer) Settled(token uint64) bool {
	if d.stopped || token == 0 || token != d.pending {
		return false
	}
	d.pending = 0
	return true
}

// Pending reports whether an emission is waiting for its quiet period.
func (d *Debouncer) Pending() bool {
	return d.pending != 0
}

// Cancel drops the pending emission without stopping the debouncer.
func (d *Debouncer) Cancel() {
	d.pending = 0
}

// Stop cancels the pending emission for good.
func (d *Debouncer) Stop() {
	d.stopped = true
	d.pending = 0
}

// Stopped reports whether Stop has been called.
func (d *Debouncer) Stopped() bool {
	return d.stopped
}

// QueryLength counts the runes of query after trimming surrounding space.
func QueryLength(query string) int {
	return utf8.RuneCountInString(strings.TrimSpace(query))
}
