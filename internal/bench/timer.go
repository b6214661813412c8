// Package bench provides the benchmark pipeline harness and its scoped
// wall-clock timer. The harness runs a fixed sequence of tabular stages
// against a pluggable engine and records per-stage elapsed seconds.
package bench

import "time"

// Timer measures the wall-clock duration of a unit of work. Start is
// captured at construction; End when Stop is called. time.Now carries a
// monotonic reading, so the interval is immune to wall-clock adjustments.
type Timer struct {
	Start time.Time
	End   time.Time
}

// StartTimer returns a timer whose Start is the current instant.
func StartTimer() *Timer {
	return &Timer{Start: time.Now()}
}

// Stop captures the end instant. Stopping an already stopped timer moves
// End forward; callers stop a timer once.
func (t *Timer) Stop() {
	t.End = time.Now()
}

// Interval returns the measured duration in seconds. Before Stop it reports
// the elapsed time so far.
func (t *Timer) Interval() float64 {
	if t.End.IsZero() {
		return time.Since(t.Start).Seconds()
	}
	return t.End.Sub(t.Start).Seconds()
}

// Track runs fn inside a timer scope. End is captured on every exit path,
// including panics, and fn's error is returned unchanged; the timer never
// masks or recovers a failure.
func Track(fn func() error) (timer *Timer, err error) {
	timer = StartTimer()
	defer timer.Stop()
	err = fn()
	return timer, err
}
